package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
)

const (
	conditionColumns = `id, condition_number, kind, description, enabled, amount_kind, value,
		minimum_amount, maximum_discount, target, lead_days`

	getConditionByIDSQL = `SELECT ` + conditionColumns + `
		FROM discount_conditions WHERE id = $1 AND NOT deleted`

	listEnabledConditionsSQL = `SELECT ` + conditionColumns + `
		FROM discount_conditions WHERE enabled AND NOT deleted ORDER BY id`

	upsertConditionSQL = `INSERT INTO discount_conditions (
			id, condition_number, kind, description, enabled, amount_kind, value,
			minimum_amount, maximum_discount, target, lead_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			condition_number = EXCLUDED.condition_number,
			kind             = EXCLUDED.kind,
			description      = EXCLUDED.description,
			enabled          = EXCLUDED.enabled,
			amount_kind      = EXCLUDED.amount_kind,
			value            = EXCLUDED.value,
			minimum_amount   = EXCLUDED.minimum_amount,
			maximum_discount = EXCLUDED.maximum_discount,
			target           = EXCLUDED.target,
			lead_days        = EXCLUDED.lead_days,
			deleted          = FALSE,
			updated_at       = now()`

	softDeleteConditionSQL = `UPDATE discount_conditions SET deleted = TRUE, updated_at = now()
		WHERE id = $1 AND NOT deleted`
)

var _ condition.Repository = (*ConditionRepository)(nil)

// ConditionRepository implements condition.Repository backed by PostgreSQL.
type ConditionRepository struct {
	pool *pgxpool.Pool
}

// NewConditionRepository returns a ConditionRepository that uses the given pool.
func NewConditionRepository(pool *pgxpool.Pool) *ConditionRepository {
	return &ConditionRepository{pool: pool}
}

// FindByID returns the live condition with the given id, or
// condition.ErrNotFound.
func (r *ConditionRepository) FindByID(ctx context.Context, id int64) (*condition.Condition, error) {
	rows, err := r.pool.Query(ctx, getConditionByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "find condition %d", id)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCondition)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, condition.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find condition %d", id)
	}
	return &c, nil
}

// ListEnabled returns every enabled, live condition ordered by id.
func (r *ConditionRepository) ListEnabled(ctx context.Context) ([]condition.Condition, error) {
	rows, err := r.pool.Query(ctx, listEnabledConditionsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list enabled conditions")
	}
	return pgx.CollectRows(rows, scanCondition)
}

// Upsert inserts c or overwrites the record with the same id, reviving it if
// it was deleted.
func (r *ConditionRepository) Upsert(ctx context.Context, c condition.Condition) error {
	var leadDays *int32
	if c.LeadDays != nil {
		v := int32(*c.LeadDays)
		leadDays = &v
	}
	_, err := r.pool.Exec(ctx, upsertConditionSQL,
		c.ID, c.Number, string(c.Kind), c.Description, c.Enabled, string(c.AmountKind), c.Value,
		c.MinimumAmount, c.MaximumDiscount, string(c.Target), leadDays,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert condition %d", c.ID)
	}
	return nil
}

// Delete soft-deletes the condition. It returns condition.ErrNotFound when no
// live record has the id.
func (r *ConditionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, softDeleteConditionSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete condition %d", id)
	}
	if tag.RowsAffected() == 0 {
		return condition.ErrNotFound
	}
	return nil
}

func scanCondition(row pgx.CollectableRow) (condition.Condition, error) {
	var (
		c          condition.Condition
		kind       string
		amountKind string
		target     string
		leadDays   *int32
	)
	err := row.Scan(
		&c.ID, &c.Number, &kind, &c.Description, &c.Enabled, &amountKind, &c.Value,
		&c.MinimumAmount, &c.MaximumDiscount, &target, &leadDays,
	)
	c.Kind = condition.Kind(kind)
	c.AmountKind = condition.AmountKind(amountKind)
	c.Target = booking.Target(target)
	if leadDays != nil {
		v := int(*leadDays)
		c.LeadDays = &v
	}
	return c, err
}
