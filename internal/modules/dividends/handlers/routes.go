package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all dividend routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dividends", func(r chi.Router) {
		r.Get("/projection", h.HandleGetProjection)
		r.Get("/upcoming", h.HandleGetUpcoming)
		r.Post("/events", h.HandleSaveEvents)
		r.Get("/events/{ticker}", h.HandleGetEvents)
	})
}
