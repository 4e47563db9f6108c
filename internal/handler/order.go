package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/ovenlight/bakehouse-api/internal/domain/order"
	"github.com/ovenlight/bakehouse-api/internal/domain/pricing"
)

// cartRequest is the wire shape shared by quote and order endpoints.
type cartRequest struct {
	Items     []order.Item `json:"items"`
	PromoCode string       `json:"promoCode"`
}

// QuoteCart answers POST /api/checkout/quote: it prices the cart without creating an
// order. A promo code that does not apply is reported inside the quote body,
// not as an HTTP error.
func (h *Handler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]pricing.QuoteItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = pricing.QuoteItem{
			ProductID:     item.ProductID,
			FlavorID:      item.FlavorID,
			DiameterID:    item.DiameterID,
			DecorationIDs: item.DecorationIDs,
			Inscription:   item.Inscription,
			Quantity:      item.Quantity,
		}
	}

	res, err := h.quotes.Quote(r.Context(), pricing.QuoteRequest{
		Items:     items,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		mapCartError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeQuote(&e, res)
	writeJSON(w, http.StatusOK, &e)
}

// PlaceOrder answers POST /api/orders: it prices the cart, persists the
// order, and returns the confirmed order with its pricing breakdown.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Items:     req.Items,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		mapCartError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOrder(&e, result)
	writeJSON(w, http.StatusCreated, &e)
}

// mapCartError converts domain errors to HTTP responses. Unknown errors are
// treated as internal.
func mapCartError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyItems) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *pricing.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *pricing.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		writeError(w, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	internalError(w, r, err)
}

func encodeQuote(e *jx.Encoder, res *pricing.Result) {
	e.Obj(func(e *jx.Encoder) {
		encodeQuoteFields(e, res)
	})
}

// encodeQuoteFields writes the pricing result fields into an already open
// object so the order encoder can inline them.
func encodeQuoteFields(e *jx.Encoder, res *pricing.Result) {
	e.Field("subtotal", func(e *jx.Encoder) { e.RawStr(res.Subtotal.String()) })
	e.Field("discountTotal", func(e *jx.Encoder) { e.RawStr(res.DiscountTotal.String()) })
	e.Field("finalTotal", func(e *jx.Encoder) { e.RawStr(res.FinalTotal.String()) })
	e.Field("appliedCode", func(e *jx.Encoder) {
		if res.AppliedCode == nil {
			e.Null()
			return
		}
		e.Str(*res.AppliedCode)
	})
	e.Field("itemBreakdown", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, b := range res.ItemBreakdown {
				e.Obj(func(e *jx.Encoder) {
					e.Field("productId", func(e *jx.Encoder) { e.Str(string(b.ProductID)) })
					e.Field("quantity", func(e *jx.Encoder) { e.Int(b.Quantity) })
					e.Field("unitPrice", func(e *jx.Encoder) { e.RawStr(b.UnitPrice.String()) })
					e.Field("discount", func(e *jx.Encoder) { e.RawStr(b.Discount.String()) })
					e.Field("lineTotal", func(e *jx.Encoder) { e.RawStr(b.LineTotal.String()) })
					if b.DiscountName != "" {
						e.Field("discountName", func(e *jx.Encoder) { e.Str(b.DiscountName) })
					}
				})
			}
		})
	})
	if res.Error != nil {
		e.Field("error", func(e *jx.Encoder) { e.Str(*res.Error) })
	}
}

func encodeOrder(e *jx.Encoder, result *order.PlaceOrderResult) {
	o := result.Order
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(string(item.ProductID)) })
						if !item.FlavorID.IsZero() {
							e.Field("flavorId", func(e *jx.Encoder) { e.Str(string(item.FlavorID)) })
						}
						if !item.DiameterID.IsZero() {
							e.Field("diameterId", func(e *jx.Encoder) { e.Str(string(item.DiameterID)) })
						}
						if len(item.DecorationIDs) > 0 {
							e.Field("decorationIds", func(e *jx.Encoder) { encodeIDs(e, item.DecorationIDs) })
						}
						if item.Inscription {
							e.Field("inscription", func(e *jx.Encoder) { e.Bool(true) })
						}
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
					})
				}
			})
		})
		encodeQuoteFields(e, result.Pricing)
	})
}
