package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/marketdata", func(r chi.Router) {
		r.Get("/prices/{ticker}", h.HandleGetPrices)
		r.Put("/prices/{ticker}", h.HandleSavePrices)
		r.Get("/curve", h.HandleGetCurve)
		r.Put("/curve", h.HandleSaveCurve)
	})
}
