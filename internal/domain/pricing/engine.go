// Package pricing computes deterministic order totals for carts of
// configurable bakery products, resolving at most one discount per line.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
	"github.com/ovenlight/bakehouse-api/internal/domain/discount"
)

// InvalidCodeMessage is reported on the quote when a supplied promo code does
// not resolve to any applicable discount. It is informational: the quote is
// still fully computed using automatic discounts, and checkout proceeds.
const InvalidCodeMessage = "Invalid or not applicable code"

// LineItem is one configured product within a cart, with resolved catalog
// records. It exists only for the duration of a pricing request.
type LineItem struct {
	Product   catalog.Product
	Selection catalog.Selection
	Quantity  int
}

// ItemBreakdown reports how one line was priced.
type ItemBreakdown struct {
	ProductID    catalog.EntityID `json:"productId"`
	Quantity     int              `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unitPrice"`
	Discount     decimal.Decimal  `json:"discount"`
	LineTotal    decimal.Decimal  `json:"lineTotal"`
	DiscountName string           `json:"discountName,omitempty"`
}

// Result is the outcome of one pricing computation. FinalTotal is always
// Subtotal minus DiscountTotal, floored at zero; all amounts are rounded to
// two decimal places.
type Result struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	FinalTotal    decimal.Decimal `json:"finalTotal"`
	AppliedCode   *string         `json:"appliedCode"`
	ItemBreakdown []ItemBreakdown `json:"itemBreakdown"`
	Error         *string         `json:"error"`
}

// Engine computes cart pricing. It is pure: it never mutates its inputs,
// performs no I/O, and is safe for concurrent use. The clock is a field so
// tests can pin the evaluation instant.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine evaluating discounts against wall-clock time.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Quote prices the cart against the supplied discount pool.
//
// The pool is gated once per request: a discount must be active, inside its
// validity window, under its usage cap, and its minimum order value must not
// exceed the gross subtotal. Gated discounts are then partitioned by trigger.
// A supplied promo code that matches at least one gated code discount selects
// the code partition for every line; otherwise the automatic partition is
// used and, if a code was supplied, the result carries InvalidCodeMessage.
// Per line, the matcher narrows the partition by scope and the resolver picks
// the single cheapest outcome.
func (e *Engine) Quote(items []LineItem, pool []discount.Discount, promoCode string) Result {
	res := Result{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		FinalTotal:    decimal.Zero,
		ItemBreakdown: make([]ItemBreakdown, 0, len(items)),
	}
	if len(items) == 0 {
		return res
	}

	now := e.now()

	// Gross line totals and subtotal, before any discount.
	units := make([]decimal.Decimal, len(items))
	grosses := make([]decimal.Decimal, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		units[i], grosses[i] = catalog.PriceLine(item.Product, item.Selection, item.Quantity)
		subtotal = subtotal.Add(grosses[i])
	}

	candidates, codeMatched := gatePool(pool, promoCode, subtotal, now)
	if promoCode != "" && !codeMatched {
		msg := InvalidCodeMessage
		res.Error = &msg
	}

	discountTotal := decimal.Zero
	var appliedCode string
	for i, item := range items {
		lc := discount.ContextForProduct(item.Product)

		eligible := candidates[:0:0]
		for _, d := range candidates {
			if discount.IsEligible(d, lc, now) {
				eligible = append(eligible, d)
			}
		}

		final, applied := discount.ResolveBest(eligible, grosses[i])
		lineDiscount := grosses[i].Sub(final).Round(2)

		entry := ItemBreakdown{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			UnitPrice: units[i].Round(2),
			Discount:  lineDiscount,
			LineTotal: grosses[i].Sub(lineDiscount).Round(2),
		}
		if applied != nil && lineDiscount.IsPositive() {
			entry.DiscountName = applied.Name
			if applied.Trigger == discount.TriggerCode {
				appliedCode = applied.Code
			}
		}
		res.ItemBreakdown = append(res.ItemBreakdown, entry)

		discountTotal = discountTotal.Add(lineDiscount)
	}

	res.Subtotal = subtotal.Round(2)
	res.DiscountTotal = discountTotal.Round(2)

	final := res.Subtotal.Sub(res.DiscountTotal)
	if final.IsNegative() {
		final = decimal.Zero
	}
	res.FinalTotal = final

	if appliedCode != "" {
		res.AppliedCode = &appliedCode
	}

	return res
}

// gatePool applies the order-level gates (activity, window, usage cap,
// minimum order value against the gross subtotal) and picks the trigger
// partition. codeMatched reports whether the supplied code selected the code
// partition; it is vacuously false when no code was supplied.
func gatePool(pool []discount.Discount, promoCode string, subtotal decimal.Decimal, now time.Time) (candidates []discount.Discount, codeMatched bool) {
	var automatic, coded []discount.Discount
	for _, d := range pool {
		if !discount.EligibleAt(d, now) {
			continue
		}
		if subtotal.LessThan(d.MinOrderValue) {
			continue
		}
		switch {
		case promoCode != "" && discount.MatchesCode(d, promoCode):
			coded = append(coded, d)
		case d.Trigger == discount.TriggerAutomatic:
			automatic = append(automatic, d)
		}
	}
	if len(coded) > 0 {
		return coded, true
	}
	return automatic, false
}
