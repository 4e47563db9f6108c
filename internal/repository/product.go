package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
)

const (
	productColumns = `id, name, base_price, flavor_ids, diameters,
		allow_inscription, inscription_price, category_id, collection_ids, seasonal_ids`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY name`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	getFlavorsByIDsSQL = `SELECT id, name, surcharge, category_id FROM flavors WHERE id = ANY($1)`

	getDecorationsByIDsSQL = `SELECT id, name, price FROM decorations WHERE id = ANY($1)`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
// Product membership lists (flavors, diameters, collections, seasonal events)
// live in JSONB columns on the products row.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListProducts returns all catalog products ordered by name.
func (r *ProductRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetProductsByIDs fetches the products with the given ids in one query.
// Missing ids are simply absent from the result.
func (r *ProductRepository) GetProductsByIDs(ctx context.Context, ids []catalog.EntityID) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return products, nil
}

// GetFlavorsByIDs fetches the flavors with the given ids in one query.
func (r *ProductRepository) GetFlavorsByIDs(ctx context.Context, ids []catalog.EntityID) ([]catalog.Flavor, error) {
	rows, err := r.pool.Query(ctx, getFlavorsByIDsSQL, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("getting flavors by ids: %w", err)
	}

	flavors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Flavor, error) {
		var f catalog.Flavor
		err := row.Scan(&f.ID, &f.Name, &f.Surcharge, &f.CategoryID)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting flavors by ids: %w", err)
	}
	return flavors, nil
}

// GetDecorationsByIDs fetches the decorations with the given ids in one query.
func (r *ProductRepository) GetDecorationsByIDs(ctx context.Context, ids []catalog.EntityID) ([]catalog.Decoration, error) {
	rows, err := r.pool.Query(ctx, getDecorationsByIDsSQL, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("getting decorations by ids: %w", err)
	}

	decorations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Decoration, error) {
		var d catalog.Decoration
		err := row.Scan(&d.ID, &d.Name, &d.Price)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting decorations by ids: %w", err)
	}
	return decorations, nil
}

// diameterJSON is the JSONB shape of one diameter config.
type diameterJSON struct {
	ID         catalog.EntityID `json:"id"`
	Multiplier decimal.Decimal  `json:"multiplier"`
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p             catalog.Product
		flavorIDs     []byte
		diameters     []byte
		collectionIDs []byte
		seasonalIDs   []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.BasePrice, &flavorIDs, &diameters,
		&p.AllowInscription, &p.InscriptionPrice, &p.CategoryID, &collectionIDs, &seasonalIDs,
	)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(flavorIDs, &p.FlavorIDs); err != nil {
		return p, fmt.Errorf("decoding flavor ids for product %q: %w", p.ID, err)
	}
	var dias []diameterJSON
	if err := json.Unmarshal(diameters, &dias); err != nil {
		return p, fmt.Errorf("decoding diameters for product %q: %w", p.ID, err)
	}
	p.Diameters = make([]catalog.DiameterConfig, len(dias))
	for i, d := range dias {
		p.Diameters[i] = catalog.DiameterConfig{ID: d.ID, Multiplier: d.Multiplier}
	}
	if err := json.Unmarshal(collectionIDs, &p.CollectionIDs); err != nil {
		return p, fmt.Errorf("decoding collection ids for product %q: %w", p.ID, err)
	}
	if err := json.Unmarshal(seasonalIDs, &p.SeasonalIDs); err != nil {
		return p, fmt.Errorf("decoding seasonal ids for product %q: %w", p.ID, err)
	}

	return p, nil
}

// idStrings converts entity ids to plain strings for pgx array binding.
func idStrings(ids []catalog.EntityID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
