package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/ovenlight/bakehouse-api/internal/domain/discount"
	"github.com/ovenlight/bakehouse-api/internal/domain/pricing"
)

// ErrEmptyItems is returned when an order is placed with no line items.
var ErrEmptyItems = errors.New("items required")

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items     []Item
	PromoCode string
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order   *Order
	Pricing *pricing.Result
}

// Service encapsulates order placement: quote the cart, persist the order,
// then account for the redeemed code. Pricing itself stays pure; the usage
// counter increment is the one side effect and it happens only after the
// order exists.
type Service struct {
	quotes    *pricing.Service
	discounts discount.Repository
	orders    Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(quotes *pricing.Service, discounts discount.Repository, orders Repository) *Service {
	return &Service{
		quotes:    quotes,
		discounts: discounts,
		orders:    orders,
	}
}

// PlaceOrder prices the requested cart, persists the resulting order, and
// increments the applied code discount's usage counter. A promo code that
// turned out invalid does not block the order: the quote's informational
// error rides along on the stored pricing result.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	quoteItems := make([]pricing.QuoteItem, len(req.Items))
	for i, item := range req.Items {
		quoteItems[i] = pricing.QuoteItem{
			ProductID:     item.ProductID,
			FlavorID:      item.FlavorID,
			DiameterID:    item.DiameterID,
			DecorationIDs: item.DecorationIDs,
			Inscription:   item.Inscription,
			Quantity:      item.Quantity,
		}
	}

	quote, err := s.quotes.Quote(ctx, pricing.QuoteRequest{
		Items:     quoteItems,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return nil, errors.Wrap(err, "quote cart")
	}

	o := &Order{
		ID:            uuid.New().String(),
		Items:         req.Items,
		Subtotal:      quote.Subtotal,
		DiscountTotal: quote.DiscountTotal,
		Total:         quote.FinalTotal,
		PromoCode:     req.PromoCode,
		Breakdown:     quote.ItemBreakdown,
	}
	if quote.AppliedCode != nil {
		o.AppliedCode = *quote.AppliedCode
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// Redemption accounting happens after the order is persisted, never as
	// part of pricing. The repository update is conditional on the usage
	// limit, so concurrent checkouts cannot overshoot the cap.
	if o.AppliedCode != "" {
		if err := s.discounts.IncrementUsage(ctx, o.AppliedCode); err != nil {
			return nil, errors.Wrap(err, "increment discount usage")
		}
	}

	return &PlaceOrderResult{Order: o, Pricing: quote}, nil
}
