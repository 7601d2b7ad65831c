package main

import (
	"bufio"
	"context"
	"math/bits"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/wire"
)

const (
	defaultBloomCapacity = 10_000_000
	defaultBloomFPR      = 0.001
	defaultBatchSize     = 500
	maxFiles             = bits.UintSize
	maxLineSize          = 1 << 20
	progressEvery        = 1_000_000
)

type importOptions struct {
	capacity          uint
	falsePositiveRate float64
	batchSize         int
	// evict drops cached copies of codes that were just written. Optional.
	evict func(ctx context.Context, codes ...string) error
}

type couponWriter interface {
	UpsertBatch(ctx context.Context, cs []coupon.Coupon) error
}

// importStats summarises a finished import.
type importStats struct {
	Imported  int
	Ambiguous int
	Invalid   int
}

type importer struct {
	lg   *zap.Logger
	out  couponWriter
	opts importOptions
}

func newImporter(lg *zap.Logger, out couponWriter, opts importOptions) *importer {
	if opts.capacity == 0 {
		opts.capacity = defaultBloomCapacity
	}
	if opts.falsePositiveRate <= 0 || opts.falsePositiveRate >= 1 {
		opts.falsePositiveRate = defaultBloomFPR
	}
	if opts.batchSize < 1 {
		opts.batchSize = defaultBatchSize
	}
	return &importer{lg: lg, out: out, opts: opts}
}

// Import runs three passes over files. Pass 1 builds a bloom filter of the
// codes in each file. Pass 2 collects, per file, the codes that some other
// file's filter may contain and marks them with the file's bit. A code whose
// merged mask has two or more bits really occurs in two or more files. Pass 3
// upserts every other valid record.
func (im *importer) Import(ctx context.Context, files []string) (importStats, error) {
	var stats importStats
	if len(files) == 0 {
		return stats, errors.New("no coupon files given")
	}
	if len(files) > maxFiles {
		return stats, errors.Errorf("at most %d files per import, got %d", maxFiles, len(files))
	}

	im.lg.Info("Pass 1: building bloom filters", zap.Int("files", len(files)))
	filters, err := im.buildFilters(ctx, files)
	if err != nil {
		return stats, errors.Wrap(err, "build bloom filters")
	}

	im.lg.Info("Pass 2: finding codes shared between files")
	ambiguous, err := im.findAmbiguous(ctx, files, filters)
	if err != nil {
		return stats, errors.Wrap(err, "find ambiguous codes")
	}
	stats.Ambiguous = len(ambiguous)
	im.lg.Info("Ambiguous codes found", zap.Int("count", len(ambiguous)))

	im.lg.Info("Pass 3: writing coupons")
	batch := make([]coupon.Coupon, 0, im.opts.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.out.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		im.evictBatch(ctx, batch)
		stats.Imported += len(batch)
		batch = batch[:0]
		return nil
	}
	for _, path := range files {
		invalid, err := streamCoupons(ctx, path, func(c coupon.Coupon) error {
			if _, skip := ambiguous[c.Code]; skip {
				return nil
			}
			batch = append(batch, c)
			if len(batch) < im.opts.batchSize {
				return nil
			}
			return flush()
		})
		if err != nil {
			return stats, errors.Wrapf(err, "import %s", path)
		}
		stats.Invalid += invalid
		if invalid > 0 {
			im.lg.Warn("Skipped invalid lines", zap.String("file", path), zap.Int("count", invalid))
		}
	}
	if err := flush(); err != nil {
		return stats, errors.Wrap(err, "import")
	}
	return stats, nil
}

// evictBatch removes stale cached copies of the written coupons. A failure is
// logged only: cached entries still expire on their own.
func (im *importer) evictBatch(ctx context.Context, batch []coupon.Coupon) {
	if im.opts.evict == nil {
		return
	}
	codes := make([]string, len(batch))
	for i, c := range batch {
		codes[i] = c.Code
	}
	if err := im.opts.evict(ctx, codes...); err != nil {
		im.lg.Warn("Coupon cache eviction failed", zap.Int("codes", len(codes)), zap.Error(err))
	}
}

func (im *importer) buildFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(im.opts.capacity, im.opts.falsePositiveRate)
			var count uint64
			if _, err := streamCoupons(ctx, path, func(c coupon.Coupon) error {
				filter.AddString(c.Code)
				count++
				if count%progressEvery == 0 {
					im.lg.Info("Pass 1 progress", zap.String("file", path), zap.Uint64("codes", count))
				}
				return nil
			}); err != nil {
				return errors.Wrapf(err, "filter %s", path)
			}
			im.lg.Info("Pass 1 complete", zap.String("file", path), zap.Uint64("codes", count))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func (im *importer) findAmbiguous(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]struct{}, error) {
	candidates := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			found := make(map[string]uint)
			bit := uint(1) << uint(i)
			if _, err := streamCoupons(ctx, path, func(c coupon.Coupon) error {
				for j, f := range filters {
					if j != i && f.TestString(c.Code) {
						found[c.Code] |= bit
						break
					}
				}
				return nil
			}); err != nil {
				return errors.Wrapf(err, "scan %s", path)
			}
			im.lg.Info("Pass 2 complete", zap.String("file", path), zap.Int("candidates", len(found)))
			candidates[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, found := range candidates {
		for code, mask := range found {
			merged[code] |= mask
		}
	}
	ambiguous := make(map[string]struct{})
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			ambiguous[code] = struct{}{}
		}
	}
	return ambiguous, nil
}

// streamCoupons decodes every line of a gzip JSON-lines file and passes the
// valid coupons to fn. It returns the number of lines that were skipped.
func streamCoupons(ctx context.Context, path string, fn func(c coupon.Coupon) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	var invalid int
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return invalid, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		c, err := wire.DecodeCoupon(jx.DecodeBytes(line))
		if err != nil || c.IssueEnd.Before(c.IssueStart) {
			invalid++
			continue
		}
		if err := fn(c); err != nil {
			return invalid, err
		}
	}
	if err := scanner.Err(); err != nil {
		return invalid, errors.Wrapf(err, "scan %s", path)
	}
	return invalid, nil
}
