// Command coupon-import bulk-loads coupon records from gzip-compressed JSON
// lines files. A code that occurs in more than one file is ambiguous and is
// not imported.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"slices"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/xenking/tour-discount/internal/cache"
	"github.com/xenking/tour-discount/internal/repository"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		redisOpts   redis.Options
		opts        importOptions
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz coupon files (ignored when files are given as arguments)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.UintVar(&opts.capacity, "bloom-capacity", defaultBloomCapacity, "expected number of codes per file")
	flag.Float64Var(&opts.falsePositiveRate, "bloom-fpr", defaultBloomFPR, "bloom filter false positive rate")
	flag.IntVar(&opts.batchSize, "batch-size", defaultBatchSize, "coupons upserted per round trip")
	flag.StringVar(&redisOpts.Addr, "redis-addr", "", "Redis address of the API rule cache; imported codes are evicted from it")
	flag.StringVar(&redisOpts.Password, "redis-password", "", "Redis password")
	flag.IntVar(&redisOpts.DB, "redis-db", 0, "Redis logical database")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	files := flag.Args()
	if len(files) == 0 {
		files, err = filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
		if err != nil {
			lg.Fatal("List coupon files", zap.Error(err))
		}
		slices.Sort(files)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, &redisOpts, files, opts); err != nil {
		lg.Fatal("Coupon import failed", zap.Error(err))
	}
	lg.Info("Coupon import completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, redisOpts *redis.Options, files []string, opts importOptions) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	coupons := repository.NewCouponRepository(pool)
	if redisOpts.Addr != "" {
		client, err := cache.NewClient(ctx, redisOpts, otel.GetTracerProvider(), otel.GetMeterProvider())
		if err != nil {
			return errors.Wrap(err, "connect to redis")
		}
		defer func() { _ = client.Close() }()
		opts.evict = cache.NewCoupons(coupons, client, 0).Invalidate
		lg.Info("Evicting imported codes from the rule cache", zap.String("redis", redisOpts.Addr))
	}

	stats, err := newImporter(lg, coupons, opts).Import(ctx, files)
	if err != nil {
		return err
	}
	lg.Info("Import summary",
		zap.Int("files", len(files)),
		zap.Int("imported", stats.Imported),
		zap.Int("ambiguous", stats.Ambiguous),
		zap.Int("invalid_lines", stats.Invalid),
	)
	return nil
}
