package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all Monte Carlo routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/montecarlo", func(r chi.Router) {
		r.Post("/simulate", h.HandleSimulate)
	})
}
