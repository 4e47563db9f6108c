// Package handler exposes the HTTP API: catalog listing, cart quoting, and
// order placement. It converts between wire JSON and domain types and maps
// domain errors to status codes.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
	"github.com/ovenlight/bakehouse-api/internal/domain/order"
	"github.com/ovenlight/bakehouse-api/internal/domain/pricing"
)

// Handler serves the public API, delegating business logic to the pricing and
// order services.
type Handler struct {
	products catalog.Repository
	quotes   *pricing.Service
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(products catalog.Repository, quotes *pricing.Service, orders *order.Service) *Handler {
	return &Handler{
		products: products,
		quotes:   quotes,
		orders:   orders,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/checkout/quote", h.QuoteCart)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	return mux
}

// writeJSON writes the encoder's buffer as an application/json response.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a JSON error body in the shape {"code": N, "message": S}.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, &e)
}

// internalError logs the error with request context and answers 500 without
// leaking details to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
