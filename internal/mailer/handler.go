package mailer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
)

// SampleResponse is returned by GET /email/product.
type SampleResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// ConnectionResponse is returned by GET /email/test.
type ConnectionResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Handler exposes mail diagnostics.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the mail handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the diagnostic endpoints. Both answer 200; the
// outcome travels in the body.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/product", h.handleSample)
	r.Get("/test", h.handleTest)
}

func (h *Handler) handleSample(w http.ResponseWriter, r *http.Request) {
	if h.service.SendSample(r.Context()) {
		httpx.JSON(w, http.StatusOK, SampleResponse{Sent: true, Message: "Email Sent Successfully"})
		return
	}
	httpx.JSON(w, http.StatusOK, SampleResponse{Sent: false, Message: "Email could not be sent"})
}

func (h *Handler) handleTest(w http.ResponseWriter, r *http.Request) {
	if h.service.TestConnection(r.Context()) {
		httpx.JSON(w, http.StatusOK, ConnectionResponse{OK: true, Message: "Mail connection working fine!"})
		return
	}
	h.logger.Debug("mail connection test failed")
	httpx.JSON(w, http.StatusOK, ConnectionResponse{OK: false, Message: "Mail connection failed!"})
}
