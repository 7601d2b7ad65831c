// Package condition models merchandising-configured discount rules that apply
// without a user-presented code.
package condition

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/tour-discount/internal/domain/booking"
)

// Kind tells whether a condition applies immediately or only to bookings
// made far enough ahead of departure.
type Kind string

const (
	KindImmediate Kind = "immediate"
	KindPeriod    Kind = "period"
)

// AmountKind selects how Value is interpreted.
type AmountKind string

const (
	// AmountFixed treats Value as a currency amount.
	AmountFixed AmountKind = "fixed"
	// AmountPercentage treats Value as a fraction in [0,1].
	AmountPercentage AmountKind = "percentage"
)

// ErrNotFound is returned by a Repository when no live condition matches.
var ErrNotFound = errors.New("discount condition not found")

// Condition is a flat discount rule.
type Condition struct {
	ID          int64
	Number      int64
	Kind        Kind
	Description string
	Enabled     bool

	AmountKind AmountKind
	Value      decimal.Decimal

	MinimumAmount   decimal.NullDecimal
	MaximumDiscount decimal.NullDecimal

	Target booking.Target
	// LeadDays is only consulted for KindPeriod.
	LeadDays *int
}

// Discount is the computed effect of a rule on a booking.
type Discount struct {
	Amount decimal.Decimal
	Detail string
}

// Repository provides read access to conditions. Soft-deleted records are
// never returned.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Condition, error)
	// ListEnabled returns every enabled condition ordered by ID.
	ListEnabled(ctx context.Context) ([]Condition, error)
}
