package cache

import (
	"context"
	"time"

	"github.com/go-faster/jx"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/wire"
)

func couponKey(code string) string {
	return keyPrefix + "coupon:" + code
}

var _ coupon.Repository = (*Coupons)(nil)

// Coupons caches FindByCode of the wrapped coupon.Repository. ListActive
// depends on the clock and always goes to the wrapped repository.
type Coupons struct {
	next  coupon.Repository
	store store
}

// NewCoupons wraps next with a Redis cache whose entries expire after ttl.
func NewCoupons(next coupon.Repository, client redis.UniversalClient, ttl time.Duration) *Coupons {
	return &Coupons{next: next, store: newStore(client, ttl)}
}

func (c *Coupons) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	key := couponKey(code)

	var cached coupon.Coupon
	if c.store.get(ctx, key, func(d *jx.Decoder) (err error) {
		cached, err = wire.DecodeCoupon(d)
		return err
	}) {
		return &cached, nil
	}

	found, err := c.next.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.store.set(ctx, key, func(e *jx.Encoder) { wire.EncodeCoupon(e, *found) })
	return found, nil
}

func (c *Coupons) ListActive(ctx context.Context, at time.Time) ([]coupon.Coupon, error) {
	return c.next.ListActive(ctx, at)
}

// Invalidate drops the cached records for codes.
func (c *Coupons) Invalidate(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = couponKey(code)
	}
	return c.store.del(ctx, keys...)
}
