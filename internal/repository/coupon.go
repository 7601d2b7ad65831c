package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/tour-discount/internal/domain/coupon"
)

const (
	couponColumns = `id, code, name, description, issue_type, status, issue_start, issue_end,
		percentage, rate, rate_minimum, rate_cap, fixed, flat_amount, fixed_minimum,
		country_active, country_allow, country_deny,
		city_active, city_allow, city_deny,
		airline_active, airline_allow`

	getCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM discount_coupons WHERE code = $1 AND NOT deleted`

	listActiveCouponsSQL = `SELECT ` + couponColumns + `
		FROM discount_coupons
		WHERE NOT deleted AND status = 'issuing' AND issue_start <= $1 AND issue_end >= $1
		ORDER BY id`

	upsertCouponSQL = `INSERT INTO discount_coupons (
			code, name, description, issue_type, status, issue_start, issue_end,
			percentage, rate, rate_minimum, rate_cap, fixed, flat_amount, fixed_minimum,
			country_active, country_allow, country_deny,
			city_active, city_allow, city_deny,
			airline_active, airline_allow
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (code) DO UPDATE SET
			name           = EXCLUDED.name,
			description    = EXCLUDED.description,
			issue_type     = EXCLUDED.issue_type,
			status         = EXCLUDED.status,
			issue_start    = EXCLUDED.issue_start,
			issue_end      = EXCLUDED.issue_end,
			percentage     = EXCLUDED.percentage,
			rate           = EXCLUDED.rate,
			rate_minimum   = EXCLUDED.rate_minimum,
			rate_cap       = EXCLUDED.rate_cap,
			fixed          = EXCLUDED.fixed,
			flat_amount    = EXCLUDED.flat_amount,
			fixed_minimum  = EXCLUDED.fixed_minimum,
			country_active = EXCLUDED.country_active,
			country_allow  = EXCLUDED.country_allow,
			country_deny   = EXCLUDED.country_deny,
			city_active    = EXCLUDED.city_active,
			city_allow     = EXCLUDED.city_allow,
			city_deny      = EXCLUDED.city_deny,
			airline_active = EXCLUDED.airline_active,
			airline_allow  = EXCLUDED.airline_allow,
			deleted        = FALSE,
			updated_at     = now()
		RETURNING id`

	softDeleteCouponSQL = `UPDATE discount_coupons SET deleted = TRUE, updated_at = now()
		WHERE code = $1 AND NOT deleted`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a live coupon by its exact code.
// Returns coupon.ErrNotFound when no such coupon exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}
	return &c, nil
}

// ListActive returns issuing coupons whose window contains at, ordered by id.
func (r *CouponRepository) ListActive(ctx context.Context, at time.Time) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listActiveCouponsSQL, at)
	if err != nil {
		return nil, errors.Wrap(err, "list active coupons")
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// Upsert inserts c or overwrites the coupon with the same code and returns
// the stored id. The id on c is ignored.
func (r *CouponRepository) Upsert(ctx context.Context, c coupon.Coupon) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, upsertCouponSQL,
		c.Code, c.Name, c.Description, c.IssueType, string(c.Status), c.IssueStart, c.IssueEnd,
		c.Percentage, c.Rate, c.RateMinimum, c.RateCap, c.Fixed, c.FlatAmount, c.FixedMinimum,
		c.Country.Active, c.Country.Allow, c.Country.Deny,
		c.City.Active, c.City.Allow, c.City.Deny,
		c.Airline.Active, c.Airline.Allow,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "upsert coupon %q", c.Code)
	}
	return id, nil
}

// UpsertBatch upserts coupons in a single round trip.
func (r *CouponRepository) UpsertBatch(ctx context.Context, cs []coupon.Coupon) error {
	batch := &pgx.Batch{}
	for _, c := range cs {
		batch.Queue(upsertCouponSQL,
			c.Code, c.Name, c.Description, c.IssueType, string(c.Status), c.IssueStart, c.IssueEnd,
			c.Percentage, c.Rate, c.RateMinimum, c.RateCap, c.Fixed, c.FlatAmount, c.FixedMinimum,
			c.Country.Active, c.Country.Allow, c.Country.Deny,
			c.City.Active, c.City.Allow, c.City.Deny,
			c.Airline.Active, c.Airline.Allow,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "upsert %d coupons", len(cs))
	}
	return nil
}

// Delete soft-deletes the coupon with the given code.
func (r *CouponRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, softDeleteCouponSQL, code)
	if err != nil {
		return errors.Wrapf(err, "delete coupon %q", code)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c      coupon.Coupon
		status string
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.Description, &c.IssueType, &status, &c.IssueStart, &c.IssueEnd,
		&c.Percentage, &c.Rate, &c.RateMinimum, &c.RateCap, &c.Fixed, &c.FlatAmount, &c.FixedMinimum,
		&c.Country.Active, &c.Country.Allow, &c.Country.Deny,
		&c.City.Active, &c.City.Allow, &c.City.Deny,
		&c.Airline.Active, &c.Airline.Allow,
	)
	c.Status = coupon.Status(status)
	return c, err
}
