package inventory

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the product API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the product handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		// only the supplier reference carries rules
		httpx.RespondError(w, ErrMissingSupplier)
		return
	}
	p := Product{Name: req.Name, Stock: req.Stock, MinStock: req.MinStock, Price: req.Price}
	created, err := h.service.Create(r.Context(), p, req.Supplier.ID)
	if err != nil {
		h.fail(w, "create product failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := BuildQuery(ListParams{
		Search:        q.Get("search"),
		StockLevel:    q.Get("stockLevel"),
		Size:          q.Get("size"),
		SortField:     q.Get("sortField"),
		SortDirection: q.Get("sortDirection"),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	products, err := h.service.List(r.Context(), query)
	if err != nil {
		h.fail(w, "list products failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleHealthy(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.HealthyStock(r.Context())
	if err != nil {
		h.fail(w, "list healthy stock failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleLow(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStock(r.Context())
	if err != nil {
		h.fail(w, "list low stock failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IntParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get product failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IntParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.UpdateFull(r.Context(), id, req.toUpdate())
	if err != nil {
		h.fail(w, "update product failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleSell(w http.ResponseWriter, r *http.Request) {
	id, qty, err := idAndQuantity(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Sell(r.Context(), id, qty)
	if err != nil {
		h.fail(w, "sell product failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, SaleResponse{
		Message:  "Product Sold and Stock Updated",
		Product:  res.Product,
		LowStock: res.LowStock,
		Notified: res.Notified,
	})
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	id, qty, err := idAndQuantity(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Restock(r.Context(), id, qty)
	if err != nil {
		h.fail(w, "restock product failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, RestockResponse{Message: "Product Updated Successfully", Product: p})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IntParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete product failed", err)
		return
	}
	httpx.OK(w, "Product Deleted Successfully")
}

func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAll(r.Context()); err != nil {
		h.fail(w, "delete all products failed", err)
		return
	}
	httpx.OK(w, "All Products Deleted Successfully")
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("name") {
		httpx.RespondError(w, fmt.Errorf("%w: name query parameter is required", httpx.ErrValidation))
		return
	}
	products, err := h.service.SearchByName(r.Context(), q.Get("name"))
	if err != nil {
		h.fail(w, "search products failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleSorted(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Sorted(r.Context(), r.URL.Query().Get("sortBy"))
	if err != nil {
		h.fail(w, "sort products failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func idAndQuantity(r *http.Request) (int64, int, error) {
	id, err := httpx.IntParam(r, "id")
	if err != nil {
		return 0, 0, err
	}
	qty, err := httpx.IntParam(r, "qty")
	if err != nil {
		return 0, 0, err
	}
	if qty != int64(int32(qty)) {
		return 0, 0, fmt.Errorf("%w: qty %d out of range", httpx.ErrValidation, qty)
	}
	return id, int(qty), nil
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if status, _ := httpx.Classify(err); status >= http.StatusInternalServerError {
		h.logger.Error(msg, slog.Any("error", err))
	} else {
		h.logger.Debug(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
