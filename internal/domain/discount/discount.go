package discount

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
)

// Type enumerates the supported discount arithmetic strategies.
type Type string

const (
	// TypePercentage reduces the line price by Value percent.
	TypePercentage Type = "percentage"
	// TypeFixed reduces the line price by a fixed Value, floored at zero.
	TypeFixed Type = "fixed"
)

// Trigger says how a discount is activated at checkout.
type Trigger string

const (
	// TriggerAutomatic discounts apply to every qualifying order.
	TriggerAutomatic Trigger = "automatic"
	// TriggerCode discounts apply only when the matching code is supplied.
	TriggerCode Trigger = "code"
)

// TargetType is the catalog dimension a discount's scope is matched against.
type TargetType string

const (
	TargetAll        TargetType = "all"
	TargetProduct    TargetType = "product"
	TargetCategory   TargetType = "category"
	TargetCollection TargetType = "collection"
	TargetSeasonal   TargetType = "seasonal"
)

// Discount is one promotional rule. TargetIDs is interpreted against
// TargetType and ignored for TargetAll; a non-all target with an empty id
// set can never match. A zero UsageLimit means unlimited redemptions.
type Discount struct {
	ID      catalog.EntityID
	Name    string
	Code    string
	Type    Type
	Value   decimal.Decimal
	Trigger Trigger

	TargetType TargetType
	TargetIDs  catalog.IDSet

	// StartsAt and EndsAt bound the validity window, both inclusive.
	StartsAt time.Time
	EndsAt   time.Time
	Active   bool

	// MinOrderValue is a floor on the order's gross subtotal.
	MinOrderValue decimal.Decimal
	UsageLimit    int
	UsedCount     int
}

// InWindow reports whether now falls inside [StartsAt, EndsAt].
func (d Discount) InWindow(now time.Time) bool {
	return !now.Before(d.StartsAt) && !now.After(d.EndsAt)
}

// UsageExhausted reports whether the redemption cap has been reached.
func (d Discount) UsageExhausted() bool {
	return d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit
}

// Repository provides lookup and redemption accounting for discounts.
type Repository interface {
	// ListCurrent returns discounts whose validity window contains now and
	// whose active flag is set. Finer-grained eligibility (usage limits,
	// scope, minimum order value) stays in the domain layer.
	ListCurrent(ctx context.Context, now time.Time) ([]Discount, error)

	// IncrementUsage atomically bumps the used counter for the discount with
	// the given code. The update is conditional on the usage limit so two
	// concurrent checkouts cannot push the counter past its cap.
	IncrementUsage(ctx context.Context, code string) error
}
