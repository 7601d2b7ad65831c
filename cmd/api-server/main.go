// Command api-server serves the tour discount HTTP API.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	discountapp "github.com/xenking/tour-discount/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := discountapp.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		lg.Info("Configuration loaded",
			zap.Bool("rule_cache", cfg.Redis.Addr != ""),
			zap.Int("lookup_concurrency", cfg.Lookup.Concurrency),
		)
		return discountapp.Run(ctx, lg, m, cfg)
	})
}
