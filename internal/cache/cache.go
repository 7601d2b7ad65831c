// Package cache provides Redis read-through decorators for the rule
// repositories.
package cache

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultTTL is used when a non-positive TTL is configured.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "discount:"

// NewClient connects to Redis and instruments the client with the given
// providers.
func NewClient(ctx context.Context, opts *redis.Options, tp trace.TracerProvider, mp metric.MeterProvider) (*redis.Client, error) {
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client, redisotel.WithTracerProvider(tp)); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(client, redisotel.WithMeterProvider(mp)); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "instrument redis metrics")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// store reads and writes jx-encoded payloads. Redis failures never reach the
// caller: they are logged and treated as a miss.
type store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func newStore(client redis.UniversalClient, ttl time.Duration) store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return store{client: client, ttl: ttl}
}

func (s store) get(ctx context.Context, key string, decode func(d *jx.Decoder) error) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zctx.From(ctx).Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := decode(jx.DecodeBytes(data)); err != nil {
		zctx.From(ctx).Warn("Cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s store) set(ctx context.Context, key string, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	if err := s.client.Set(ctx, key, e.Bytes(), s.ttl).Err(); err != nil {
		zctx.From(ctx).Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s store) del(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "cache delete")
	}
	return nil
}
