package discount

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Apply returns the price after applying the discount to base. The result is
// clamped at zero: fixed discounts larger than the base, or percentage values
// past 100 that slipped through admin validation, never produce a negative
// price. An unknown type leaves the base untouched.
func Apply(d Discount, base decimal.Decimal) decimal.Decimal {
	var price decimal.Decimal
	switch d.Type {
	case TypePercentage:
		price = base.Sub(base.Mul(d.Value).Div(hundred))
	case TypeFixed:
		price = base.Sub(d.Value)
	default:
		return base
	}
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// ResolveBest picks the single discount yielding the lowest price for base.
// Ties keep the first discount encountered in input order, which makes the
// result deterministic for a stable pool ordering. When no candidate gets
// strictly below base the line stays undiscounted and applied is nil.
// Stacking is not supported: at most one discount applies per line.
func ResolveBest(eligible []Discount, base decimal.Decimal) (final decimal.Decimal, applied *Discount) {
	final = base
	best := -1
	for i := range eligible {
		price := Apply(eligible[i], base)
		if price.LessThan(final) {
			final = price
			best = i
		}
	}
	if best >= 0 {
		applied = &eligible[best]
	}
	return final, applied
}
