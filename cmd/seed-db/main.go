// Command seed-db loads the reference discount conditions, coupons and
// promotion used by the end-to-end scenarios.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/promotion"
	"github.com/xenking/tour-discount/internal/repository"
)

func main() {
	var (
		databaseURL string
		window      time.Duration
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.DurationVar(&window, "window", 30*24*time.Hour, "coupon and promotion validity on each side of now")
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, time.Now(), window); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, now time.Time, window time.Duration) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	conditions := repository.NewConditionRepository(pool)
	for _, c := range seedConditions() {
		if err := conditions.Upsert(ctx, c); err != nil {
			return err
		}
		lg.Info("Seeded condition", zap.Int64("id", c.ID), zap.String("description", c.Description))
	}

	coupons := repository.NewCouponRepository(pool)
	for _, c := range seedCoupons(now, window) {
		id, err := coupons.Upsert(ctx, c)
		if err != nil {
			return err
		}
		lg.Info("Seeded coupon", zap.Int64("id", id), zap.String("code", c.Code))
	}

	id, err := repository.NewPromotionRepository(pool).Save(ctx, seedPromotion(now, window))
	if err != nil {
		return err
	}
	lg.Info("Seeded promotion", zap.Int64("id", id))
	return nil
}

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func seedConditions() []condition.Condition {
	leadDays := 20
	return []condition.Condition{
		{
			ID:          3,
			Number:      3,
			Kind:        condition.KindImmediate,
			Description: "Adult instant discount",
			Enabled:     true,
			AmountKind:  condition.AmountFixed,
			Value:       decimal.NewFromInt(50000),
			Target:      booking.TargetAdult,
		},
		{
			ID:          22,
			Number:      22,
			Kind:        condition.KindPeriod,
			Description: "Early booking discount",
			Enabled:     true,
			AmountKind:  condition.AmountFixed,
			Value:       decimal.NewFromInt(30000),
			Target:      booking.TargetAll,
			LeadDays:    &leadDays,
		},
		{
			ID:              26,
			Number:          26,
			Kind:            condition.KindImmediate,
			Description:     "3% off the whole booking",
			Enabled:         true,
			AmountKind:      condition.AmountPercentage,
			Value:           decimal.RequireFromString("0.03"),
			MinimumAmount:   amount(0),
			MaximumDiscount: amount(100000),
			Target:          booking.TargetAll,
		},
	}
}

func seedCoupons(now time.Time, window time.Duration) []coupon.Coupon {
	return []coupon.Coupon{
		{
			Code:       "CMP-SOMU-RJMQ-TGKY",
			Name:       "Korean Air 5,000 coupon",
			Status:     coupon.StatusIssuing,
			IssueStart: now.Add(-window),
			IssueEnd:   now.Add(window),
			Fixed:      true,
			FlatAmount: amount(5000),
			Airline:    coupon.Restriction{Active: true, Allow: "Korean Air"},
		},
		{
			Code:        "CMP-VJCK-895K-N7I2",
			Name:        "Japan 5% coupon",
			Status:      coupon.StatusIssuing,
			IssueStart:  now.Add(-window),
			IssueEnd:    now.Add(window),
			Percentage:  true,
			Rate:        decimal.NewNullDecimal(decimal.RequireFromString("0.05")),
			RateMinimum: amount(200000),
			RateCap:     amount(20000),
			Country:     coupon.Restriction{Active: true, Allow: "Japan"},
			City:        coupon.Restriction{Active: true, Deny: "Okinawa"},
		},
	}
}

func seedPromotion(now time.Time, window time.Duration) promotion.Promotion {
	return promotion.Promotion{
		Number:      1,
		Type:        "seasonal",
		Description: "Summer travel promotion",
		Start:       now.Add(-window),
		End:         now.Add(window),
		Status:      promotion.StatusActive,
		Budget:      decimal.NewFromInt(10_000_000),
		Conditions: []promotion.Link{
			{RuleID: 3, Priority: 1},
			{RuleID: 22, Priority: 2},
			{RuleID: 26, Priority: 3},
		},
		Coupons: []promotion.Link{
			{Code: "CMP-SOMU-RJMQ-TGKY", Priority: 1},
			{Code: "CMP-VJCK-895K-N7I2", Priority: 2},
		},
	}
}
