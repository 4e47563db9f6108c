// Command seed-db loads the catalog and discount seed file into PostgreSQL.
// It is idempotent: every row is upserted by id.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakehouse-api/internal/repository"
)

type diameterJSON struct {
	ID         string          `json:"id"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type productJSON struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	FlavorIDs        []string        `json:"flavorIds"`
	Diameters        []diameterJSON  `json:"diameters"`
	AllowInscription bool            `json:"allowInscription"`
	InscriptionPrice decimal.Decimal `json:"inscriptionPrice"`
	CategoryID       string          `json:"categoryId"`
	CollectionIDs    []string        `json:"collectionIds"`
	SeasonalIDs      []string        `json:"seasonalIds"`
}

type flavorJSON struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Surcharge  decimal.Decimal `json:"surcharge"`
	CategoryID string          `json:"categoryId"`
}

type decorationJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type discountJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discountType"`
	Value         decimal.Decimal `json:"value"`
	Trigger       string          `json:"trigger"`
	TargetType    string          `json:"targetType"`
	TargetIDs     []string        `json:"targetIds"`
	StartsAt      time.Time       `json:"startsAt"`
	EndsAt        time.Time       `json:"endsAt"`
	Active        bool            `json:"active"`
	MinOrderValue decimal.Decimal `json:"minOrderValue"`
	UsageLimit    int             `json:"usageLimit"`
}

type seedFile struct {
	Flavors     []flavorJSON     `json:"flavors"`
	Decorations []decorationJSON `json:"decorations"`
	Products    []productJSON    `json:"products"`
	Discounts   []discountJSON   `json:"discounts"`
}

const (
	upsertFlavorSQL = `INSERT INTO flavors (id, name, surcharge, category_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, surcharge = EXCLUDED.surcharge,
			category_id = EXCLUDED.category_id`

	upsertDecorationSQL = `INSERT INTO decorations (id, name, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price`

	upsertProductSQL = `INSERT INTO products
		(id, name, base_price, flavor_ids, diameters, allow_inscription,
		 inscription_price, category_id, collection_ids, seasonal_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, base_price = EXCLUDED.base_price,
			flavor_ids = EXCLUDED.flavor_ids, diameters = EXCLUDED.diameters,
			allow_inscription = EXCLUDED.allow_inscription,
			inscription_price = EXCLUDED.inscription_price,
			category_id = EXCLUDED.category_id,
			collection_ids = EXCLUDED.collection_ids,
			seasonal_ids = EXCLUDED.seasonal_ids`

	upsertDiscountSQL = `INSERT INTO discounts
		(id, name, code, discount_type, value, trigger_kind, target_type,
		 target_ids, starts_at, ends_at, active, min_order_value, usage_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, code = EXCLUDED.code,
			discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
			trigger_kind = EXCLUDED.trigger_kind,
			target_type = EXCLUDED.target_type, target_ids = EXCLUDED.target_ids,
			starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at,
			active = EXCLUDED.active,
			min_order_value = EXCLUDED.min_order_value,
			usage_limit = EXCLUDED.usage_limit`
)

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to catalog seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, seed); err != nil {
		return err
	}
	return seedDiscounts(ctx, pool, seed.Discounts)
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	slog.Info("upserting flavors", slog.Int("count", len(seed.Flavors)))
	for _, f := range seed.Flavors {
		if _, err := pool.Exec(ctx, upsertFlavorSQL, f.ID, f.Name, f.Surcharge, f.CategoryID); err != nil {
			return errors.Wrapf(err, "upsert flavor %s", f.ID)
		}
	}

	slog.Info("upserting decorations", slog.Int("count", len(seed.Decorations)))
	for _, d := range seed.Decorations {
		if _, err := pool.Exec(ctx, upsertDecorationSQL, d.ID, d.Name, d.Price); err != nil {
			return errors.Wrapf(err, "upsert decoration %s", d.ID)
		}
	}

	slog.Info("upserting products", slog.Int("count", len(seed.Products)))
	for _, p := range seed.Products {
		flavorIDs, err := json.Marshal(orEmpty(p.FlavorIDs))
		if err != nil {
			return errors.Wrapf(err, "marshal flavor ids for %s", p.ID)
		}
		diameters, err := json.Marshal(p.Diameters)
		if err != nil {
			return errors.Wrapf(err, "marshal diameters for %s", p.ID)
		}
		collectionIDs, err := json.Marshal(orEmpty(p.CollectionIDs))
		if err != nil {
			return errors.Wrapf(err, "marshal collection ids for %s", p.ID)
		}
		seasonalIDs, err := json.Marshal(orEmpty(p.SeasonalIDs))
		if err != nil {
			return errors.Wrapf(err, "marshal seasonal ids for %s", p.ID)
		}

		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.BasePrice, flavorIDs, diameters,
			p.AllowInscription, p.InscriptionPrice, p.CategoryID,
			collectionIDs, seasonalIDs,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool, discounts []discountJSON) error {
	slog.Info("upserting discounts", slog.Int("count", len(discounts)))

	for _, d := range discounts {
		targetIDs, err := json.Marshal(orEmpty(d.TargetIDs))
		if err != nil {
			return errors.Wrapf(err, "marshal target ids for %s", d.ID)
		}

		if _, err := pool.Exec(ctx, upsertDiscountSQL,
			d.ID, d.Name, d.Code, d.DiscountType, d.Value, d.Trigger,
			d.TargetType, targetIDs, d.StartsAt, d.EndsAt, d.Active,
			d.MinOrderValue, d.UsageLimit,
		); err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.ID)
		}

		slog.Info("upserted discount", slog.String("id", d.ID), slog.String("name", d.Name))
	}

	return nil
}

// orEmpty keeps JSONB columns as [] instead of null for absent lists.
func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
