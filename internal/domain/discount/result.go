package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

// Application priorities recorded on AppliedDiscount.
const (
	PriorityCondition = 1
	PriorityCoupon    = 2
)

// FailureMessage is the opaque message set on a failed calculation.
const FailureMessage = "discount calculation failed"

// Request is the input of Calculate.
//
// A nil ConditionIDs (or CouponCodes) selects every applicable rule of that
// kind; a non-nil empty slice selects none.
type Request struct {
	Booking      booking.Booking
	ConditionIDs []int64
	CouponCodes  []string
}

// AppliedDiscount is one rule that contributed to the total discount.
type AppliedDiscount struct {
	Kind     rule.Kind
	Code     string
	Name     string
	Amount   decimal.Decimal
	Detail   string
	Priority int
}

// Result is the outcome of Calculate.
type Result struct {
	OriginalAmount decimal.Decimal
	TotalDiscount  decimal.Decimal
	FinalAmount    decimal.Decimal
	Applied        []AppliedDiscount
	Success        bool
	ErrorMessage   string
	// Warnings holds one message per rejected candidate.
	Warnings []string
}

// ledger accumulates applied discounts in order.
type ledger struct {
	original decimal.Decimal
	total    decimal.Decimal
	applied  []AppliedDiscount
	warnings []string
}

func newLedger(original decimal.Decimal) *ledger {
	return &ledger{
		original: original,
		total:    decimal.Zero,
		applied:  []AppliedDiscount{},
		warnings: []string{},
	}
}

// remaining is the amount still payable.
func (l *ledger) remaining() decimal.Decimal {
	return l.original.Sub(l.total)
}

// record adds d when it has a positive amount and reports whether it did.
func (l *ledger) record(d AppliedDiscount) bool {
	if !d.Amount.IsPositive() {
		return false
	}
	l.applied = append(l.applied, d)
	l.total = l.total.Add(d.Amount)
	return true
}

func (l *ledger) warn(res rule.ValidationResult) {
	l.warnings = append(l.warnings, res.Messages...)
}

func (l *ledger) result() Result {
	final := l.remaining()
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Result{
		OriginalAmount: l.original,
		TotalDiscount:  l.total,
		FinalAmount:    final,
		Applied:        l.applied,
		Success:        true,
		Warnings:       l.warnings,
	}
}

// failed builds the result of an aborted calculation: only the original
// amount survives.
func failed(original decimal.Decimal) Result {
	return Result{
		OriginalAmount: original,
		TotalDiscount:  decimal.Zero,
		FinalAmount:    decimal.Zero,
		Applied:        []AppliedDiscount{},
		ErrorMessage:   FailureMessage,
		Warnings:       []string{},
	}
}
