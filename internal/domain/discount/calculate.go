package discount

import (
	"context"
	"strconv"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

// Calculate prices req.Booking. Conditions are applied first, in ascending ID
// order, each against the booking itself. Coupons follow, in ascending ID
// order, each against the amount left after every earlier discount.
// Rejected candidates become warnings.
//
// Calculate does not return an error: a repository failure aborts the
// calculation and yields a result with Success unset and only the original
// amount filled in.
func (s *Service) Calculate(ctx context.Context, req Request) Result {
	ctx, span := s.tracer.Start(ctx, "Calculate",
		trace.WithAttributes(attribute.String("discount.product_code", req.Booking.ProductCode)),
	)
	defer span.End()

	lg := zctx.From(ctx).With(zap.String("product_code", req.Booking.ProductCode))
	original := booking.BaseAmount(req.Booking)

	res, err := s.calculate(ctx, req, original)
	if err != nil {
		lg.Error("Discount calculation failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "calculation failed")
		s.metrics.calculations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", false)))
		return failed(original)
	}

	lg.Info("Discount calculated",
		zap.Stringer("original", res.OriginalAmount),
		zap.Stringer("discount", res.TotalDiscount),
		zap.Stringer("final", res.FinalAmount),
		zap.Int("applied", len(res.Applied)),
		zap.Int("warnings", len(res.Warnings)),
	)
	s.metrics.calculations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", true)))
	return res
}

func (s *Service) calculate(ctx context.Context, req Request, original decimal.Decimal) (Result, error) {
	b := req.Booking

	conditions, err := s.candidateConditions(ctx, req)
	if err != nil {
		return Result{}, err
	}
	coupons, err := s.candidateCoupons(ctx, req)
	if err != nil {
		return Result{}, err
	}

	l := newLedger(original)

	for i := range conditions {
		c := &conditions[i]
		res, err := s.ValidateCondition(ctx, c.ID, b)
		if err != nil {
			return Result{}, err
		}
		if !res.Valid {
			s.reject(ctx, l, rule.KindCondition, res)
			continue
		}
		d := condition.Apply(c, b)
		s.record(ctx, l, AppliedDiscount{
			Kind:     rule.KindCondition,
			Code:     strconv.FormatInt(c.Number, 10),
			Name:     c.Description,
			Amount:   d.Amount,
			Detail:   d.Detail,
			Priority: PriorityCondition,
		})
	}

	for i := range coupons {
		c := &coupons[i]
		res, err := s.ValidateCoupon(ctx, c.Code, b)
		if err != nil {
			return Result{}, err
		}
		if !res.Valid {
			s.reject(ctx, l, rule.KindCoupon, res)
			continue
		}
		d := coupon.Apply(c, l.remaining())
		s.record(ctx, l, AppliedDiscount{
			Kind:     rule.KindCoupon,
			Code:     c.Code,
			Name:     c.Name,
			Amount:   d.Amount,
			Detail:   d.Detail,
			Priority: PriorityCoupon,
		})
	}

	return l.result(), nil
}

// candidateConditions resolves the conditions to try, ordered by ID.
func (s *Service) candidateConditions(ctx context.Context, req Request) ([]condition.Condition, error) {
	if req.ConditionIDs == nil {
		return s.ListApplicableConditions(ctx, req.Booking)
	}
	cs, err := s.conditionsByID(ctx, req.ConditionIDs)
	if err != nil {
		return nil, err
	}
	sortConditions(cs)
	return cs, nil
}

// candidateCoupons resolves the coupons to try, ordered by ID.
func (s *Service) candidateCoupons(ctx context.Context, req Request) ([]coupon.Coupon, error) {
	if req.CouponCodes == nil {
		return s.ListApplicableCoupons(ctx, req.Booking)
	}
	cs, err := s.couponsByCode(ctx, req.CouponCodes)
	if err != nil {
		return nil, err
	}
	sortCoupons(cs)
	return cs, nil
}

func (s *Service) reject(ctx context.Context, l *ledger, kind rule.Kind, res rule.ValidationResult) {
	l.warn(res)

	reason := "unknown"
	if len(res.Reasons) > 0 {
		reason = string(res.Reasons[0])
	}
	zctx.From(ctx).Debug("Discount rule rejected",
		zap.String("kind", string(kind)),
		zap.String("reason", reason),
		zap.Strings("messages", res.Messages),
	)
	s.metrics.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("reason", reason),
	))
}

func (s *Service) record(ctx context.Context, l *ledger, d AppliedDiscount) {
	if l.record(d) {
		s.metrics.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(d.Kind))))
	}
}
