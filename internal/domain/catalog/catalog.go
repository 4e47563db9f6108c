package catalog

import (
	"context"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a requested product does not exist.
var ErrProductNotFound = errors.New("product not found")

// EntityID identifies a catalog entity (product, flavor, category, collection,
// seasonal event). It is an opaque value type: equality is the only operation
// callers may rely on, regardless of how the backing store represents ids.
type EntityID string

// IsZero reports whether the id is empty.
func (id EntityID) IsZero() bool { return id == "" }

// IDSet is a set of entity ids with constant-time membership tests.
type IDSet map[EntityID]struct{}

// NewIDSet builds a set from the given ids, skipping empty ones.
func NewIDSet(ids ...EntityID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			s[id] = struct{}{}
		}
	}
	return s
}

// Contains reports whether id is a member of the set.
func (s IDSet) Contains(id EntityID) bool {
	_, ok := s[id]
	return ok
}

// Intersects reports whether the two sets share at least one id.
func (s IDSet) Intersects(other IDSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for id := range small {
		if large.Contains(id) {
			return true
		}
	}
	return false
}

// Slice returns the set's members in lexicographic order.
func (s IDSet) Slice() []EntityID {
	out := make([]EntityID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DiameterConfig is one available size for a product: selecting it scales the
// structural price (base + flavor surcharge) by Multiplier.
type DiameterConfig struct {
	ID         EntityID
	Multiplier decimal.Decimal
}

// Product is one configurable catalog item.
type Product struct {
	ID        EntityID
	Name      string
	BasePrice decimal.Decimal

	// FlavorIDs lists the flavors this product can be ordered with.
	FlavorIDs []EntityID
	// Diameters lists the available sizes and their price multipliers.
	Diameters []DiameterConfig

	AllowInscription bool
	InscriptionPrice decimal.Decimal

	CategoryID    EntityID
	CollectionIDs []EntityID
	SeasonalIDs   []EntityID
}

// AllowsFlavor reports whether the flavor id is in the product's allowed list.
func (p Product) AllowsFlavor(id EntityID) bool {
	for _, fid := range p.FlavorIDs {
		if fid == id {
			return true
		}
	}
	return false
}

// DiameterMultiplier returns the multiplier for the given diameter id.
// The second return value is false when the product has no matching config.
func (p Product) DiameterMultiplier(id EntityID) (decimal.Decimal, bool) {
	if id.IsZero() {
		return decimal.Decimal{}, false
	}
	for _, d := range p.Diameters {
		if d.ID == id {
			return d.Multiplier, true
		}
	}
	return decimal.Decimal{}, false
}

// Flavor is an additive option on a product. A non-zero CategoryID restricts
// the flavor to products of that category.
type Flavor struct {
	ID         EntityID
	Name       string
	Surcharge  decimal.Decimal
	CategoryID EntityID
}

// Decoration is a priced add-on applied to a single line item.
type Decoration struct {
	ID    EntityID
	Name  string
	Price decimal.Decimal
}

// Repository defines read operations for the catalog.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProductsByIDs(ctx context.Context, ids []EntityID) ([]Product, error)
	GetFlavorsByIDs(ctx context.Context, ids []EntityID) ([]Flavor, error)
	GetDecorationsByIDs(ctx context.Context, ids []EntityID) ([]Decoration, error)
}
