package discount

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

// ValidateCondition reports whether the condition with the given id applies
// to b. The error is only set for repository failures; an unknown id is an
// invalid result.
func (s *Service) ValidateCondition(ctx context.Context, id int64, b booking.Booking) (rule.ValidationResult, error) {
	c, err := s.conditions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, condition.ErrNotFound) {
			return rule.Result(rule.Reject(rule.ReasonNotFound, "discount condition not found")), nil
		}
		return rule.ValidationResult{}, errors.Wrapf(err, "find condition %d", id)
	}
	return rule.Result(condition.Check(c, b)), nil
}

// ValidateCoupon reports whether the coupon with the given code applies to b
// now.
func (s *Service) ValidateCoupon(ctx context.Context, code string, b booking.Booking) (rule.ValidationResult, error) {
	c, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return rule.Result(rule.Reject(rule.ReasonNotFound, "coupon not found")), nil
		}
		return rule.ValidationResult{}, errors.Wrapf(err, "find coupon %q", code)
	}
	return rule.Result(coupon.Check(c, b, s.now())), nil
}

// ListApplicableConditions returns every enabled condition that validates
// against b, ordered by ID.
func (s *Service) ListApplicableConditions(ctx context.Context, b booking.Booking) ([]condition.Condition, error) {
	ctx, span := s.tracer.Start(ctx, "ListApplicableConditions")
	defer span.End()

	enabled, err := s.conditions.ListEnabled(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list enabled conditions")
	}

	out, err := collect(ctx, s.concurrency, enabled, func(ctx context.Context, c condition.Condition) (*condition.Condition, error) {
		res, err := s.ValidateCondition(ctx, c.ID, b)
		if err != nil || !res.Valid {
			return nil, err
		}
		return &c, nil
	})
	if err != nil {
		return nil, err
	}
	sortConditions(out)
	return out, nil
}

// ListApplicableCoupons returns every active coupon that validates against b,
// ordered by ID.
func (s *Service) ListApplicableCoupons(ctx context.Context, b booking.Booking) ([]coupon.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "ListApplicableCoupons")
	defer span.End()

	active, err := s.coupons.ListActive(ctx, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "list active coupons")
	}

	out, err := collect(ctx, s.concurrency, active, func(ctx context.Context, c coupon.Coupon) (*coupon.Coupon, error) {
		res, err := s.ValidateCoupon(ctx, c.Code, b)
		if err != nil || !res.Valid {
			return nil, err
		}
		return &c, nil
	})
	if err != nil {
		return nil, err
	}
	sortCoupons(out)
	return out, nil
}
