package inventory

import "github.com/go-chi/chi/v5"

// MountRoutes registers the product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/add", h.handleCreate)
	r.Get("/view", h.handleList)
	r.Get("/healthy-stock", h.handleHealthy)
	r.Get("/low-stock", h.handleLow)
	r.Get("/search", h.handleSearch)
	r.Get("/sorted", h.handleSorted)
	r.Get("/{id}", h.handleShow)
	r.Put("/update/{id}", h.handleUpdate)
	r.Put("/{id}/sell/{qty}", h.handleSell)
	r.Put("/restock/{id}/{qty}", h.handleRestock)
	r.Delete("/delete/{id}", h.handleDelete)
	r.Delete("/deleteAll", h.handleDeleteAll)
}
