package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Get("/report", h.HandleGetReport)
		r.Get("/performance", h.HandleGetPerformance)
	})
}
