package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
	"github.com/ovenlight/bakehouse-api/internal/domain/discount"
)

const (
	listCurrentDiscountsSQL = `SELECT id, name, code, discount_type, value, trigger_kind,
		target_type, target_ids, starts_at, ends_at, active,
		min_order_value, usage_limit, used_count
		FROM discounts
		WHERE active = TRUE AND starts_at <= $1 AND ends_at >= $1
		ORDER BY created_at, id`

	// The WHERE clause makes the increment conditional on the cap, so two
	// concurrent checkouts cannot push used_count past usage_limit.
	incrementDiscountUsageSQL = `UPDATE discounts
		SET used_count = used_count + 1
		WHERE UPPER(code) = UPPER($1)
		  AND (usage_limit = 0 OR used_count < usage_limit)`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// ListCurrent returns active discounts whose validity window contains now.
// Rows are ordered by creation time so resolver tie-breaking is stable
// across requests.
func (r *DiscountRepository) ListCurrent(ctx context.Context, now time.Time) ([]discount.Discount, error) {
	rows, err := r.pool.Query(ctx, listCurrentDiscountsSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing current discounts: %w", err)
	}

	discounts, err := pgx.CollectRows(rows, scanDiscount)
	if err != nil {
		return nil, fmt.Errorf("listing current discounts: %w", err)
	}
	return discounts, nil
}

// IncrementUsage atomically bumps the used counter for the discount with the
// given code, bounded by its usage limit.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, incrementDiscountUsageSQL, code)
	if err != nil {
		return fmt.Errorf("incrementing usage for discount code %q: %w", code, err)
	}
	return nil
}

func scanDiscount(row pgx.CollectableRow) (discount.Discount, error) {
	var (
		d            discount.Discount
		discountType string
		triggerKind  string
		targetType   string
		targetIDs    []byte
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Code, &discountType, &d.Value, &triggerKind,
		&targetType, &targetIDs, &d.StartsAt, &d.EndsAt, &d.Active,
		&d.MinOrderValue, &d.UsageLimit, &d.UsedCount,
	)
	if err != nil {
		return d, err
	}

	d.Type = discount.Type(discountType)
	d.Trigger = discount.Trigger(triggerKind)
	d.TargetType = discount.TargetType(targetType)

	var ids []catalog.EntityID
	if err := json.Unmarshal(targetIDs, &ids); err != nil {
		return d, fmt.Errorf("decoding target ids for discount %q: %w", d.ID, err)
	}
	d.TargetIDs = catalog.NewIDSet(ids...)

	return d, nil
}
