// Package discount prices a booking by applying discount conditions and
// coupons to its base amount.
package discount

import (
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
)

const instrumentationName = "github.com/xenking/tour-discount/internal/domain/discount"

// DefaultConcurrency bounds concurrent repository reads when no option is
// given.
const DefaultConcurrency = 8

// Service is the discount calculation and validation engine. It holds no
// mutable state and is safe for concurrent use.
type Service struct {
	conditions  condition.Repository
	coupons     coupon.Repository
	now         func() time.Time
	concurrency int

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	tracer  trace.Tracer
	metrics serviceMetrics
}

type serviceMetrics struct {
	calculations metric.Int64Counter
	rejections   metric.Int64Counter
	applied      metric.Int64Counter
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency bounds the number of concurrent repository reads issued by
// a single call. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the time source used for coupon issue windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracerProvider sets the tracer provider. Defaults to a no-op provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider. Defaults to a no-op provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		if mp != nil {
			s.meterProvider = mp
		}
	}
}

// NewService creates a Service reading rules from the given repositories.
func NewService(conditions condition.Repository, coupons coupon.Repository, opts ...Option) (*Service, error) {
	s := &Service{
		conditions:     conditions,
		coupons:        coupons,
		now:            time.Now,
		concurrency:    DefaultConcurrency,
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tracer = s.tracerProvider.Tracer(instrumentationName)
	meter := s.meterProvider.Meter(instrumentationName)

	var err error
	if s.metrics.calculations, err = meter.Int64Counter("discount.calculations",
		metric.WithDescription("Discount calculations by outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "calculations counter")
	}
	if s.metrics.rejections, err = meter.Int64Counter("discount.rejections",
		metric.WithDescription("Candidate rules rejected during calculation"),
	); err != nil {
		return nil, errors.Wrap(err, "rejections counter")
	}
	if s.metrics.applied, err = meter.Int64Counter("discount.applied",
		metric.WithDescription("Discounts applied during calculation"),
	); err != nil {
		return nil, errors.Wrap(err, "applied counter")
	}

	return s, nil
}
