package pricing

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
	"github.com/ovenlight/bakehouse-api/internal/domain/discount"
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID catalog.EntityID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID catalog.EntityID
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// QuoteItem is one wire-level cart line: a product id plus the selected
// configuration, all by id.
type QuoteItem struct {
	ProductID     catalog.EntityID
	FlavorID      catalog.EntityID
	DiameterID    catalog.EntityID
	DecorationIDs []catalog.EntityID
	Inscription   bool
	Quantity      int
}

// QuoteRequest is the input to a pricing computation.
type QuoteRequest struct {
	Items     []QuoteItem
	PromoCode string
}

// Service resolves quote requests against the catalog and discount
// repositories and runs the pricing engine. An unknown product id is rejected
// here, at the API boundary; unknown flavor or decoration ids are dropped so
// a malformed selection degrades instead of failing the quote.
type Service struct {
	catalog   catalog.Repository
	discounts discount.Repository
	engine    *Engine
}

// NewService creates a quote Service with the required dependencies.
func NewService(cat catalog.Repository, discounts discount.Repository, engine *Engine) *Service {
	return &Service{
		catalog:   cat,
		discounts: discounts,
		engine:    engine,
	}
}

// Quote resolves the request's catalog references, fetches the currently
// valid discounts, and prices the cart. An empty cart is not an error: it
// yields an all-zero result.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Result, error) {
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	pool, err := s.discounts.ListCurrent(ctx, s.engine.now())
	if err != nil {
		return nil, errors.Wrap(err, "list current discounts")
	}

	res := s.engine.Quote(items, pool, req.PromoCode)
	return &res, nil
}

// resolveItems batch-fetches the products, flavors, and decorations the
// request refers to and assembles engine line items.
func (s *Service) resolveItems(ctx context.Context, items []QuoteItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	productIDs := make([]catalog.EntityID, 0, len(items))
	var flavorIDs, decorationIDs []catalog.EntityID
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		productIDs = append(productIDs, item.ProductID)
		if !item.FlavorID.IsZero() {
			flavorIDs = append(flavorIDs, item.FlavorID)
		}
		decorationIDs = append(decorationIDs, item.DecorationIDs...)
	}

	products, err := s.catalog.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[catalog.EntityID]catalog.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	flavorMap, err := s.flavorsByID(ctx, flavorIDs)
	if err != nil {
		return nil, err
	}
	decorationMap, err := s.decorationsByID(ctx, decorationIDs)
	if err != nil {
		return nil, err
	}

	resolved := make([]LineItem, 0, len(items))
	for _, item := range items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		sel := catalog.Selection{
			DiameterID:  item.DiameterID,
			Inscription: item.Inscription,
		}
		if f, ok := flavorMap[item.FlavorID]; ok {
			sel.Flavor = &f
		}
		for _, id := range item.DecorationIDs {
			if d, ok := decorationMap[id]; ok {
				sel.Decorations = append(sel.Decorations, d)
			}
		}

		resolved = append(resolved, LineItem{
			Product:   p,
			Selection: sel,
			Quantity:  item.Quantity,
		})
	}
	return resolved, nil
}

func (s *Service) flavorsByID(ctx context.Context, ids []catalog.EntityID) (map[catalog.EntityID]catalog.Flavor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	flavors, err := s.catalog.GetFlavorsByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get flavors")
	}
	m := make(map[catalog.EntityID]catalog.Flavor, len(flavors))
	for _, f := range flavors {
		m[f.ID] = f
	}
	return m, nil
}

func (s *Service) decorationsByID(ctx context.Context, ids []catalog.EntityID) (map[catalog.EntityID]catalog.Decoration, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	decorations, err := s.catalog.GetDecorationsByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get decorations")
	}
	m := make(map[catalog.EntityID]catalog.Decoration, len(decorations))
	for _, d := range decorations {
		m[d.ID] = d
	}
	return m, nil
}
