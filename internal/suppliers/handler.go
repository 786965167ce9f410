package suppliers

import (
	"log/slog"
	"net/http"

	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
)

// Handler serves the supplier endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the supplier handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form SupplierForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Add(r.Context(), form.toSupplier())
	if err != nil {
		h.fail(w, "create supplier failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IntParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	supplier, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get supplier failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list suppliers failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IntParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form SupplierForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.UpdateFull(r.Context(), id, form.toSupplier())
	if err != nil {
		h.fail(w, "update supplier failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IntParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete supplier failed", err)
		return
	}
	httpx.OK(w, "Supplier Deleted Successfully")
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAll(r.Context()); err != nil {
		h.fail(w, "delete all suppliers failed", err)
		return
	}
	httpx.OK(w, "All Suppliers Deleted Successfully")
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if status, _ := httpx.Classify(err); status >= http.StatusInternalServerError {
		h.logger.Error(msg, slog.Any("error", err))
	} else {
		h.logger.Debug(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
