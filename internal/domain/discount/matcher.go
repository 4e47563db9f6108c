package discount

import (
	"strings"
	"time"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
)

// LineContext carries the catalog memberships of one cart line, used to test
// a discount's scope against it.
type LineContext struct {
	ProductID     catalog.EntityID
	CategoryID    catalog.EntityID
	CollectionIDs catalog.IDSet
	SeasonalIDs   catalog.IDSet
}

// ContextForProduct builds the line context from a product's memberships.
func ContextForProduct(p catalog.Product) LineContext {
	return LineContext{
		ProductID:     p.ID,
		CategoryID:    p.CategoryID,
		CollectionIDs: catalog.NewIDSet(p.CollectionIDs...),
		SeasonalIDs:   catalog.NewIDSet(p.SeasonalIDs...),
	}
}

// IsEligible reports whether the discount can apply to the given line at the
// given instant: it must be active, inside its validity window, under its
// usage cap, and its scope must match the line. Minimum-order-value and
// trigger filtering are order-level concerns handled by the aggregator.
func IsEligible(d Discount, lc LineContext, now time.Time) bool {
	return EligibleAt(d, now) && MatchesScope(d, lc)
}

// EligibleAt checks the line-independent conditions: active flag, validity
// window, and usage cap.
func EligibleAt(d Discount, now time.Time) bool {
	return d.Active && d.InWindow(now) && !d.UsageExhausted()
}

// MatchesScope tests the discount's target scope against the line's catalog
// memberships. A non-all target with an empty id set matches nothing.
func MatchesScope(d Discount, lc LineContext) bool {
	switch d.TargetType {
	case TargetAll:
		return true
	case TargetProduct:
		return d.TargetIDs.Contains(lc.ProductID)
	case TargetCategory:
		return d.TargetIDs.Contains(lc.CategoryID)
	case TargetCollection:
		return d.TargetIDs.Intersects(lc.CollectionIDs)
	case TargetSeasonal:
		return d.TargetIDs.Intersects(lc.SeasonalIDs)
	default:
		return false
	}
}

// MatchesCode reports whether the discount is code-triggered and its code
// equals the supplied one, compared case-insensitively.
func MatchesCode(d Discount, code string) bool {
	return d.Trigger == TriggerCode && d.Code != "" && strings.EqualFold(d.Code, code)
}
