// Command code-ingest imports promo codes from partner export dumps.
//
// Each export is a gzipped file with one code per line. Exports are noisy:
// a code is trusted only when it appears in at least two of the three dumps.
// The files are far too large to hold in memory, so the tool makes two
// streaming passes: the first builds one bloom filter per file, the second
// re-streams each file and tests codes against the other files' filters.
// Trusted codes are upserted into the discounts table as code-triggered
// discounts.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ovenlight/bakehouse-api/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	numFiles      = 3
	progressEvery = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10
	codeValidity  = 365 * 24 * time.Hour
)

// rule is the discount applied when an ingested code is redeemed.
type rule struct {
	name  string
	kind  string
	value string
}

var namedRules = map[string]rule{
	"TENPCTOFF": {name: "Partner code: 10% off", kind: "percentage", value: "10"},
	"QUARTEROF": {name: "Partner code: 25% off", kind: "percentage", value: "25"},
	"FIVEROFFS": {name: "Partner code: $5 off", kind: "fixed", value: "5"},
	"SWEETDEAL": {name: "Partner code: $8 off", kind: "fixed", value: "8"},
}

var defaultRule = rule{
	name:  "Partner promo code: 10% off",
	kind:  "percentage",
	value: "10",
}

const upsertCodeDiscountSQL = `INSERT INTO discounts
	(id, name, code, discount_type, value, trigger_kind, target_type,
	 target_ids, starts_at, ends_at, active)
	VALUES ($1, $2, $3, $4, $5, 'code', 'all', '[]', $6, $7, TRUE)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, discount_type = EXCLUDED.discount_type,
		value = EXCLUDED.value, starts_at = EXCLUDED.starts_at,
		ends_at = EXCLUDED.ends_at, active = TRUE`

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing promocodesN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("code ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("code ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("promocodes%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", numFiles))

	filters, err := buildFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: cross-checking codes")

	trusted, err := trustedCodes(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "cross-check codes")
	}

	slog.Info("trusted codes found", slog.Int("count", len(trusted)))
	if len(trusted) == 0 {
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return writeDiscounts(ctx, pool, trusted)
}

// buildFilters streams every file once, concurrently, and fills one bloom
// filter per file with its length-valid codes.
func buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var count uint64

			if err := streamLines(ctx, path, func(code string) {
				if len(code) < minCodeLen || len(code) > maxCodeLen {
					return
				}
				filter.AddString(code)
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("codes", count))
				}
			}); err != nil {
				return errors.Wrapf(err, "filter file %d", i+1)
			}

			slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("total_codes", count))
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// trustedCodes re-streams every file and keeps codes that at least one other
// file's filter also contains. Per-file hits are merged as bitmasks so a code
// counts each file only once regardless of duplicates within a dump.
func trustedCodes(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	perFile := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			hits := make(map[string]uint)
			fileBit := uint(1) << uint(i)
			var count uint64

			if err := streamLines(ctx, path, func(code string) {
				if len(code) < minCodeLen || len(code) > maxCodeLen {
					return
				}
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 2 progress", slog.Int("file", i+1), slog.Uint64("codes", count))
				}
				for j, f := range filters {
					if j == i {
						continue
					}
					if f.TestString(code) {
						hits[code] |= fileBit
						break
					}
				}
			}); err != nil {
				return errors.Wrapf(err, "cross-check file %d", i+1)
			}

			slog.Info("pass 2 complete",
				slog.Int("file", i+1),
				slog.Uint64("total_codes", count),
				slog.Int("candidates", len(hits)),
			)
			perFile[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, hits := range perFile {
		for code, mask := range hits {
			merged[code] |= mask
		}
	}

	var trusted []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			trusted = append(trusted, code)
		}
	}
	return trusted, nil
}

// streamLines opens a gzip-compressed file and calls fn for each line.
func streamLines(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// writeDiscounts upserts every trusted code as a code-triggered discount
// valid for one year from ingest time.
func writeDiscounts(ctx context.Context, pool *pgxpool.Pool, codes []string) error {
	slog.Info("writing discounts", slog.Int("count", len(codes)))

	startsAt := time.Now().UTC()
	endsAt := startsAt.Add(codeValidity)

	for i, code := range codes {
		r, ok := namedRules[code]
		if !ok {
			r = defaultRule
		}

		value, err := decimal.NewFromString(r.value)
		if err != nil {
			return errors.Wrapf(err, "parse value for code %s", code)
		}

		id := "promo-" + strings.ToLower(code)
		if _, err := pool.Exec(ctx, upsertCodeDiscountSQL,
			id, r.name, code, r.kind, value, startsAt, endsAt,
		); err != nil {
			return errors.Wrapf(err, "upsert discount for code %s", code)
		}

		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}

	return nil
}
