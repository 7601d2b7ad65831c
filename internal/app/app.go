// Package app wires configuration, storage, the discount engine and the HTTP
// server into a runnable service.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/tour-discount/internal/cache"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/discount"
	"github.com/xenking/tour-discount/internal/handler"
	"github.com/xenking/tour-discount/internal/repository"
	"github.com/xenking/tour-discount/pkg/health"
	"github.com/xenking/tour-discount/pkg/httpmiddleware"
)

const serviceName = "tour-discount"

// Telemetry provides the OpenTelemetry providers shared by the HTTP layer,
// the rule cache and the discount engine.
type Telemetry = httpmiddleware.Telemetry

// service is the assembled application: its HTTP handler plus the resources
// that must be released on shutdown.
type service struct {
	handler http.Handler
	health  *health.Health
	closers []func()
}

func (s *service) Close() {
	s.health.Stop()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	svc, err := build(ctx, lg, m, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           svc.handler,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		svc.health.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// build connects storage, assembles the discount engine and returns the
// fully wrapped HTTP handler. The returned service is already marked ready.
func build(ctx context.Context, lg *zap.Logger, m Telemetry, cfg *Config) (_ *service, rerr error) {
	s := &service{health: health.New()}
	defer func() {
		if rerr != nil {
			s.Close()
		}
	}()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}
	s.closers = append(s.closers, pool.Close)

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return nil, errors.Wrap(err, "run migrations")
	}

	s.health.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	s.health.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	s.health.AddLivenessCheck("gc", time.Second, health.GCPauseCheck(time.Second))

	conditionRepo := repository.NewConditionRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)

	var (
		conditions  condition.Repository = conditionRepo
		coupons     coupon.Repository    = couponRepo
		handlerOpts []handler.Option
	)
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, m.TracerProvider(), m.MeterProvider())
		if err != nil {
			return nil, errors.Wrap(err, "create redis client")
		}
		s.closers = append(s.closers, func() { _ = client.Close() })

		s.health.AddReadinessCheck("redis", 2*time.Second, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})

		cachedConditions := cache.NewConditions(conditionRepo, client, cfg.Redis.TTL)
		conditions = cachedConditions
		cachedCoupons := cache.NewCoupons(couponRepo, client, cfg.Redis.TTL)
		coupons = cachedCoupons
		handlerOpts = append(handlerOpts,
			handler.WithConditionInvalidator(cachedConditions.Invalidate),
			handler.WithCouponInvalidator(cachedCoupons.Invalidate),
		)
		lg.Info("Rule cache enabled", zap.String("redis", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}

	engine, err := discount.NewService(conditions, coupons,
		discount.WithConcurrency(cfg.Lookup.Concurrency),
		discount.WithTracerProvider(m.TracerProvider()),
		discount.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create discount service")
	}

	router := handler.New(engine, conditionRepo, couponRepo, promotionRepo, handlerOpts...).Routes()
	router.Get("/livez", s.health.LiveEndpoint)
	router.Get("/readyz", s.health.ReadyEndpoint)

	s.handler = httpmiddleware.Wrap(router,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
			ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Route(),
		httpmiddleware.Instrument(serviceName, m),
		httpmiddleware.LogRequests(),
		httpmiddleware.Labeler(),
	)

	s.health.Start(ctx, 10*time.Second)
	s.health.SetReady(true)
	return s, nil
}
