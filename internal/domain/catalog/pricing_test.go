package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct() Product {
	return Product{
		ID:        "cake-1",
		Name:      "Layer cake",
		BasePrice: dec("40"),
		FlavorIDs: []EntityID{"vanilla", "pistachio"},
		Diameters: []DiameterConfig{
			{ID: "d15", Multiplier: dec("1")},
			{ID: "d20", Multiplier: dec("1.5")},
			{ID: "d25", Multiplier: dec("2")},
		},
		AllowInscription: true,
		InscriptionPrice: dec("3"),
		CategoryID:       "cakes",
	}
}

func TestPriceLine(t *testing.T) {
	vanilla := Flavor{ID: "vanilla", Name: "Vanilla", Surcharge: dec("2")}
	pistachio := Flavor{ID: "pistachio", Name: "Pistachio", Surcharge: dec("5")}
	matcha := Flavor{ID: "matcha", Name: "Matcha", Surcharge: dec("4")}
	tartOnly := Flavor{ID: "vanilla", Name: "Vanilla", Surcharge: dec("2"), CategoryID: "tarts"}

	tests := []struct {
		name      string
		sel       Selection
		quantity  int
		wantUnit  string
		wantTotal string
	}{
		{
			name:      "base price only",
			sel:       Selection{},
			quantity:  1,
			wantUnit:  "40",
			wantTotal: "40",
		},
		{
			name:      "flavor surcharge added",
			sel:       Selection{Flavor: &pistachio},
			quantity:  1,
			wantUnit:  "45",
			wantTotal: "45",
		},
		{
			name:      "flavor not in allowed list is ignored",
			sel:       Selection{Flavor: &matcha},
			quantity:  1,
			wantUnit:  "40",
			wantTotal: "40",
		},
		{
			name:      "flavor restricted to another category is ignored",
			sel:       Selection{Flavor: &tartOnly},
			quantity:  1,
			wantUnit:  "40",
			wantTotal: "40",
		},
		{
			name:      "diameter multiplier scales base plus flavor",
			sel:       Selection{Flavor: &vanilla, DiameterID: "d20"},
			quantity:  1,
			wantUnit:  "63",
			wantTotal: "63",
		},
		{
			name:      "unknown diameter skips the multiplier",
			sel:       Selection{DiameterID: "d99"},
			quantity:  1,
			wantUnit:  "40",
			wantTotal: "40",
		},
		{
			name: "decorations added after the multiplier",
			sel: Selection{
				DiameterID: "d20",
				Decorations: []Decoration{
					{ID: "gold-leaf", Price: dec("6")},
					{ID: "sugar-flowers", Price: dec("4")},
				},
			},
			quantity:  1,
			wantUnit:  "70",
			wantTotal: "70",
		},
		{
			name:      "inscription added when supported",
			sel:       Selection{Inscription: true},
			quantity:  1,
			wantUnit:  "43",
			wantTotal: "43",
		},
		{
			name:      "quantity multiplies the line total",
			sel:       Selection{Flavor: &vanilla},
			quantity:  3,
			wantUnit:  "42",
			wantTotal: "126",
		},
		{
			name:      "zero quantity yields zero",
			sel:       Selection{Flavor: &vanilla},
			quantity:  0,
			wantUnit:  "0",
			wantTotal: "0",
		},
		{
			name:      "negative quantity yields zero",
			sel:       Selection{},
			quantity:  -2,
			wantUnit:  "0",
			wantTotal: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, total := PriceLine(testProduct(), tt.sel, tt.quantity)
			assert.True(t, dec(tt.wantUnit).Equal(unit), "unit: want %s, got %s", tt.wantUnit, unit)
			assert.True(t, dec(tt.wantTotal).Equal(total), "total: want %s, got %s", tt.wantTotal, total)
		})
	}
}

func TestPriceLine_InscriptionUnsupported(t *testing.T) {
	p := testProduct()
	p.AllowInscription = false

	unit, total := PriceLine(p, Selection{Inscription: true}, 1)
	assert.True(t, dec("40").Equal(unit), "got %s", unit)
	assert.True(t, dec("40").Equal(total), "got %s", total)
}
