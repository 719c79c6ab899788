// Package httpapi is the protocol adapter: it maps the commerce engine
// onto the UCP wire surface (envelopes, required headers, the discovery
// document and the error taxonomy).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mittal-parth/agentic-commerce/internal/cart"
	"github.com/mittal-parth/agentic-commerce/internal/catalogue"
	"github.com/mittal-parth/agentic-commerce/internal/checkout"
	"github.com/mittal-parth/agentic-commerce/internal/domain"
	"github.com/mittal-parth/agentic-commerce/internal/payment"
)

// OrderReader serves order lookups from the ledger.
type OrderReader interface {
	GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListOrdersByBuyerID(ctx context.Context, buyerID string) ([]*domain.Order, error)
}

type Handler struct {
	cart      *cart.Service
	catalogue *catalogue.Service
	checkout  *checkout.Service
	payments  *payment.Reconciler
	orders    OrderReader
	discovery *DiscoveryDocument
}

func NewHandler(
	cartSvc *cart.Service,
	catalogueSvc *catalogue.Service,
	checkoutSvc *checkout.Service,
	payments *payment.Reconciler,
	orders OrderReader,
	discovery *DiscoveryDocument,
) *Handler {
	return &Handler{
		cart:      cartSvc,
		catalogue: catalogueSvc,
		checkout:  checkoutSvc,
		payments:  payments,
		orders:    orders,
		discovery: discovery,
	}
}

func (h *Handler) Router(requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/.well-known/ucp", h.GetDiscovery)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{product_id}", h.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(AgentAuthMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Group(func(r chi.Router) {
				r.Use(IdempotencyKeyMiddleware)
				r.Post("/items", h.AddCartItem)
				r.Put("/items/{product_id}", h.UpdateCartItem)
				r.Delete("/items/{product_id}", h.RemoveCartItem)
			})
		})

		r.Route("/checkout-sessions", func(r chi.Router) {
			r.Get("/{session_id}", h.GetCheckout)
			r.Group(func(r chi.Router) {
				r.Use(IdempotencyKeyMiddleware)
				r.Post("/", h.CreateCheckout)
				r.Post("/{session_id}/complete", h.CompleteCheckout)
				r.Post("/{session_id}/cancel", h.CancelCheckout)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Get("/{session_id}", h.GetOrder)
		})
	})

	return r
}
