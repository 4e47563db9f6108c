package catalog

import "github.com/shopspring/decimal"

// Selection is one requested configuration of a product. Flavor and
// decorations carry their resolved records; ids the caller could not resolve
// simply do not appear here.
type Selection struct {
	// Flavor is the selected flavor record, nil when none was selected.
	Flavor *Flavor
	// DiameterID selects a size from the product's diameter configs.
	DiameterID EntityID
	// Decorations are priced add-ons for this line.
	Decorations []Decoration
	// Inscription requests the product's fixed-price inscription.
	Inscription bool
}

// PriceLine computes the undiscounted price of one configured line:
// base price, plus flavor surcharge, scaled by the diameter multiplier,
// plus decorations and inscription, times quantity.
//
// Mismatched selections never fail: a flavor the product does not allow, a
// flavor restricted to another category, or a diameter with no matching
// config all degrade to "no adjustment". A non-positive quantity yields
// zero for both unit and total.
func PriceLine(p Product, sel Selection, quantity int) (unit, total decimal.Decimal) {
	if quantity <= 0 {
		return decimal.Zero, decimal.Zero
	}

	unit = p.BasePrice

	if sel.Flavor != nil && p.AllowsFlavor(sel.Flavor.ID) && flavorFitsCategory(*sel.Flavor, p) {
		unit = unit.Add(sel.Flavor.Surcharge)
	}

	// The multiplier scales the structural price (base + flavor) only.
	// Decorations and inscription are flat additions on top.
	if m, ok := p.DiameterMultiplier(sel.DiameterID); ok {
		unit = unit.Mul(m)
	}

	for _, d := range sel.Decorations {
		unit = unit.Add(d.Price)
	}

	if sel.Inscription && p.AllowInscription {
		unit = unit.Add(p.InscriptionPrice)
	}

	total = unit.Mul(decimal.NewFromInt(int64(quantity)))
	return unit, total
}

// flavorFitsCategory reports whether the flavor's category restriction, if
// any, matches the product's category.
func flavorFitsCategory(f Flavor, p Product) bool {
	return f.CategoryID.IsZero() || f.CategoryID == p.CategoryID
}
