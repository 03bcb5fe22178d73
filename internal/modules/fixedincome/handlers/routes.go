package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all fixed income routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fixedincome", func(r chi.Router) {
		r.Post("/flat", h.HandleProjectFlat)
		r.Post("/curve", h.HandleProjectCurve)
		r.Post("/schedule", h.HandleSchedule)
	})
}
