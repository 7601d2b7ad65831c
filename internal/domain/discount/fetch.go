package discount

import (
	"cmp"
	"context"
	"slices"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
)

// collect calls fetch for every key with at most limit calls in flight and
// returns the non-nil results in key order. The first error cancels the
// remaining calls.
func collect[K, V any](ctx context.Context, limit int, keys []K, fetch func(context.Context, K) (*V, error)) ([]V, error) {
	found := make([]*V, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, key := range keys {
		g.Go(func() error {
			v, err := fetch(gctx, key)
			if err != nil {
				return err
			}
			found[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]V, 0, len(keys))
	for _, v := range found {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func sortConditions(cs []condition.Condition) {
	slices.SortStableFunc(cs, func(a, b condition.Condition) int { return cmp.Compare(a.ID, b.ID) })
}

func sortCoupons(cs []coupon.Coupon) {
	slices.SortStableFunc(cs, func(a, b coupon.Coupon) int { return cmp.Compare(a.ID, b.ID) })
}

// conditionsByID fetches the given conditions, skipping unknown ids.
func (s *Service) conditionsByID(ctx context.Context, ids []int64) ([]condition.Condition, error) {
	return collect(ctx, s.concurrency, ids, func(ctx context.Context, id int64) (*condition.Condition, error) {
		c, err := s.conditions.FindByID(ctx, id)
		if errors.Is(err, condition.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "find condition %d", id)
		}
		return c, nil
	})
}

// couponsByCode fetches the given coupons, skipping unknown codes.
func (s *Service) couponsByCode(ctx context.Context, codes []string) ([]coupon.Coupon, error) {
	return collect(ctx, s.concurrency, codes, func(ctx context.Context, code string) (*coupon.Coupon, error) {
		c, err := s.coupons.FindByCode(ctx, code)
		if errors.Is(err, coupon.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "find coupon %q", code)
		}
		return c, nil
	})
}
