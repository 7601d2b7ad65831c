package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/tour-discount/internal/domain/promotion"
)

const (
	promotionColumns = `id, promotion_number, type, description, start_at, end_at, status,
		budget, support, prefix_code, product_category`

	getPromotionByIDSQL = `SELECT ` + promotionColumns + `
		FROM promotions WHERE id = $1 AND NOT deleted`

	listActivePromotionsSQL = `SELECT ` + promotionColumns + `
		FROM promotions
		WHERE NOT deleted AND status = 'active' AND start_at <= $1 AND end_at >= $1
		ORDER BY id`

	promotionConditionLinksSQL = `SELECT pc.promotion_id, pc.condition_id, ''::text AS code, pc.priority
		FROM promotion_conditions pc
		JOIN discount_conditions c ON c.id = pc.condition_id AND NOT c.deleted
		WHERE pc.active AND pc.promotion_id = ANY($1)
		ORDER BY pc.promotion_id, pc.priority, pc.condition_id`

	promotionCouponLinksSQL = `SELECT pc.promotion_id, pc.coupon_id, c.code, pc.priority
		FROM promotion_coupons pc
		JOIN discount_coupons c ON c.id = pc.coupon_id AND NOT c.deleted
		WHERE pc.active AND pc.promotion_id = ANY($1)
		ORDER BY pc.promotion_id, pc.priority, pc.coupon_id`

	upsertPromotionSQL = `INSERT INTO promotions (
			promotion_number, type, description, start_at, end_at, status,
			budget, support, prefix_code, product_category
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (promotion_number) DO UPDATE SET
			type             = EXCLUDED.type,
			description      = EXCLUDED.description,
			start_at         = EXCLUDED.start_at,
			end_at           = EXCLUDED.end_at,
			status           = EXCLUDED.status,
			budget           = EXCLUDED.budget,
			support          = EXCLUDED.support,
			prefix_code      = EXCLUDED.prefix_code,
			product_category = EXCLUDED.product_category,
			deleted          = FALSE,
			updated_at       = now()
		RETURNING id`

	softDeletePromotionSQL = `UPDATE promotions SET deleted = TRUE, updated_at = now()
		WHERE id = $1 AND NOT deleted`

	clearPromotionConditionsSQL = `DELETE FROM promotion_conditions WHERE promotion_id = $1`
	clearPromotionCouponsSQL    = `DELETE FROM promotion_coupons WHERE promotion_id = $1`

	linkPromotionConditionSQL = `INSERT INTO promotion_conditions (promotion_id, condition_id, priority)
		VALUES ($1, $2, $3)`

	linkPromotionCouponSQL = `INSERT INTO promotion_coupons (promotion_id, coupon_id, priority)
		SELECT $1, id, $3 FROM discount_coupons WHERE code = $2 AND NOT deleted`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByID returns a live promotion with its active links.
func (r *PromotionRepository) FindByID(ctx context.Context, id int64) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "find promotion %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find promotion %d", id)
	}

	ps := []promotion.Promotion{p}
	if err := r.attachLinks(ctx, ps); err != nil {
		return nil, err
	}
	return &ps[0], nil
}

// ListActive returns promotions running at the given time, ordered by id.
func (r *PromotionRepository) ListActive(ctx context.Context, at time.Time) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL, at)
	if err != nil {
		return nil, errors.Wrap(err, "list active promotions")
	}
	ps, err := pgx.CollectRows(rows, scanPromotion)
	if err != nil {
		return nil, errors.Wrap(err, "list active promotions")
	}
	if err := r.attachLinks(ctx, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Save upserts p by its number and replaces its links in one transaction.
// Coupon links are resolved by code; condition links by rule id. It returns
// the stored promotion id.
func (r *PromotionRepository) Save(ctx context.Context, p promotion.Promotion) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, upsertPromotionSQL,
			p.Number, p.Type, p.Description, p.Start, p.End, string(p.Status),
			p.Budget, p.Support, p.PrefixCode, p.ProductCategory,
		).Scan(&id); err != nil {
			return errors.Wrap(err, "upsert")
		}

		batch := &pgx.Batch{}
		batch.Queue(clearPromotionConditionsSQL, id)
		batch.Queue(clearPromotionCouponsSQL, id)
		for _, l := range p.Conditions {
			batch.Queue(linkPromotionConditionSQL, id, l.RuleID, l.Priority)
		}
		for _, l := range p.Coupons {
			batch.Queue(linkPromotionCouponSQL, id, l.Code, l.Priority)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "link rules")
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "save promotion %d", p.Number)
	}
	return id, nil
}

// Delete soft-deletes the promotion. It returns promotion.ErrNotFound when no
// live record has the id.
func (r *PromotionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, softDeletePromotionSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete promotion %d", id)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}
	return nil
}

type promotionLink struct {
	promotionID int64
	link        promotion.Link
}

func (r *PromotionRepository) attachLinks(ctx context.Context, ps []promotion.Promotion) error {
	if len(ps) == 0 {
		return nil
	}
	ids := make([]int64, len(ps))
	index := make(map[int64]int, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
		index[p.ID] = i
		ps[i].Conditions = []promotion.Link{}
		ps[i].Coupons = []promotion.Link{}
	}

	conds, err := r.links(ctx, promotionConditionLinksSQL, ids)
	if err != nil {
		return errors.Wrap(err, "promotion conditions")
	}
	for _, l := range conds {
		i := index[l.promotionID]
		ps[i].Conditions = append(ps[i].Conditions, l.link)
	}

	coups, err := r.links(ctx, promotionCouponLinksSQL, ids)
	if err != nil {
		return errors.Wrap(err, "promotion coupons")
	}
	for _, l := range coups {
		i := index[l.promotionID]
		ps[i].Coupons = append(ps[i].Coupons, l.link)
	}
	return nil
}

func (r *PromotionRepository) links(ctx context.Context, query string, ids []int64) ([]promotionLink, error) {
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (promotionLink, error) {
		var (
			l        promotionLink
			priority int32
		)
		err := row.Scan(&l.promotionID, &l.link.RuleID, &l.link.Code, &priority)
		l.link.Priority = int(priority)
		return l, err
	})
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var (
		p      promotion.Promotion
		status string
	)
	err := row.Scan(
		&p.ID, &p.Number, &p.Type, &p.Description, &p.Start, &p.End, &status,
		&p.Budget, &p.Support, &p.PrefixCode, &p.ProductCategory,
	)
	p.Status = promotion.Status(status)
	return p, err
}
