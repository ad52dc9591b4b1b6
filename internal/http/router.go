package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationID)
	r.Use(requestLogger(log))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/messages", h.PostMessage)

		r.Get("/products", h.ListProducts)
		r.Put("/products/{productId}", h.PutProduct)
		r.Post("/products/stock", h.SetStock)

		r.Get("/orders/{orderId}", h.GetOrder)
		r.Get("/customers/{customerId}/orders", h.ListCustomerOrders)
	})

	return r
}
