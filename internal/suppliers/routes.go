package suppliers

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/create", h.Create)
	r.Get("/id/{id}", h.Show)
	r.Get("/view", h.List)
	r.Put("/update/{id}", h.Update)
	r.Delete("/delete/{id}", h.Delete)
	r.Delete("/deleteAll", h.DeleteAll)
}
