package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
	"github.com/ovenlight/bakehouse-api/internal/domain/pricing"
)

// Item is one line of a placed order, as requested by the customer.
type Item struct {
	ProductID     catalog.EntityID   `json:"productId"`
	FlavorID      catalog.EntityID   `json:"flavorId,omitempty"`
	DiameterID    catalog.EntityID   `json:"diameterId,omitempty"`
	DecorationIDs []catalog.EntityID `json:"decorationIds,omitempty"`
	Inscription   bool               `json:"inscription,omitempty"`
	Quantity      int                `json:"quantity"`
}

// Order is a confirmed customer order with its computed pricing breakdown.
type Order struct {
	ID            string
	Items         []Item
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
	PromoCode     string
	AppliedCode   string
	Breakdown     []pricing.ItemBreakdown
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
}
