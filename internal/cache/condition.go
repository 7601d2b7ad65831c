package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/jx"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/wire"
)

const conditionsEnabledKey = keyPrefix + "conditions:enabled"

func conditionKey(id int64) string {
	return keyPrefix + "condition:" + strconv.FormatInt(id, 10)
}

var _ condition.Repository = (*Conditions)(nil)

// Conditions caches lookups of the wrapped condition.Repository. Misses and
// errors from the wrapped repository are not cached.
type Conditions struct {
	next  condition.Repository
	store store
}

// NewConditions wraps next with a Redis cache whose entries expire after ttl.
func NewConditions(next condition.Repository, client redis.UniversalClient, ttl time.Duration) *Conditions {
	return &Conditions{next: next, store: newStore(client, ttl)}
}

func (c *Conditions) FindByID(ctx context.Context, id int64) (*condition.Condition, error) {
	key := conditionKey(id)

	var cached condition.Condition
	if c.store.get(ctx, key, func(d *jx.Decoder) (err error) {
		cached, err = wire.DecodeCondition(d)
		return err
	}) {
		return &cached, nil
	}

	found, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store.set(ctx, key, func(e *jx.Encoder) { wire.EncodeCondition(e, *found) })
	return found, nil
}

func (c *Conditions) ListEnabled(ctx context.Context) ([]condition.Condition, error) {
	var cached []condition.Condition
	if c.store.get(ctx, conditionsEnabledKey, func(d *jx.Decoder) (err error) {
		cached, err = wire.DecodeConditions(d)
		return err
	}) {
		return cached, nil
	}

	list, err := c.next.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	c.store.set(ctx, conditionsEnabledKey, func(e *jx.Encoder) { wire.EncodeConditions(e, list) })
	return list, nil
}

// Invalidate drops the cached records for ids together with the enabled list.
func (c *Conditions) Invalidate(ctx context.Context, ids ...int64) error {
	keys := []string{conditionsEnabledKey}
	for _, id := range ids {
		keys = append(keys, conditionKey(id))
	}
	return c.store.del(ctx, keys...)
}
