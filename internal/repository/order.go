package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ovenlight/bakehouse-api/internal/domain/order"
)

const createOrderSQL = `INSERT INTO orders
	(id, items, breakdown, subtotal, discount_total, total, promo_code, applied_code)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Line items and the pricing breakdown are
// serialized to JSON for storage in JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	breakdownJSON, err := json.Marshal(o.Breakdown)
	if err != nil {
		return fmt.Errorf("marshaling order breakdown: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, itemsJSON, breakdownJSON,
		o.Subtotal, o.DiscountTotal, o.Total,
		o.PromoCode, o.AppliedCode,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}
