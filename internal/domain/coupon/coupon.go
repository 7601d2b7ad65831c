// Package coupon models code-activated discount rules and their eligibility
// restrictions.
package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the issue state of a coupon.
type Status string

const (
	// StatusIssuing is the only state in which a coupon can be redeemed.
	StatusIssuing Status = "issuing"
	StatusEnded   Status = "ended"
	StatusWaiting Status = "waiting"
)

// ErrNotFound is returned by a Repository when no live coupon has the code.
var ErrNotFound = errors.New("coupon not found")

// Restriction is an allow/deny pair over a raw delimited list, evaluated only
// when Active is set. An empty list imposes nothing.
type Restriction struct {
	Active bool
	Allow  string
	Deny   string
}

// Allows reports whether v passes the allow-list. Matching is substring
// containment over the raw list, so "Osaka" passes "Osaka,Kyoto" and any
// value passes a list containing it as a fragment.
func (r Restriction) Allows(v string) bool {
	return r.Allow == "" || strings.Contains(r.Allow, v)
}

// Denies reports whether v is caught by the deny-list.
func (r Restriction) Denies(v string) bool {
	return r.Deny != "" && strings.Contains(r.Deny, v)
}

// Coupon is a code-activated discount rule.
type Coupon struct {
	ID          int64
	Code        string
	Name        string
	Description string
	IssueType   string
	Status      Status
	IssueStart  time.Time
	IssueEnd    time.Time

	Percentage  bool
	Rate        decimal.NullDecimal
	RateMinimum decimal.NullDecimal
	RateCap     decimal.NullDecimal

	Fixed        bool
	FlatAmount   decimal.NullDecimal
	FixedMinimum decimal.NullDecimal

	Country Restriction
	City    Restriction
	// Airline only uses Allow.
	Airline Restriction
}

// Discount is the computed effect of a coupon.
type Discount struct {
	Amount decimal.Decimal
	Detail string
}

// Repository provides read access to coupons. Soft-deleted records are never
// returned.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// ListActive returns coupons that are issuing and whose issue window
	// contains at, ordered by ID.
	ListActive(ctx context.Context, at time.Time) ([]Coupon, error)
}
