// Package promotion groups discount conditions and coupons into a
// merchandising campaign.
package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a promotion.
type Status string

const (
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
	StatusWaiting Status = "waiting"
)

// ErrNotFound is returned by a Repository when no live promotion matches.
var ErrNotFound = errors.New("promotion not found")

// Link attaches a condition or coupon to a promotion with a display priority.
type Link struct {
	RuleID   int64
	Code     string
	Priority int
}

// Promotion is a campaign with its linked discount rules.
type Promotion struct {
	ID              int64
	Number          int64
	Type            string
	Description     string
	Start           time.Time
	End             time.Time
	Status          Status
	Budget          decimal.Decimal
	Support         decimal.Decimal
	PrefixCode      string
	ProductCategory string

	Conditions []Link
	Coupons    []Link
}

// Running reports whether p is active and at falls within its window.
func (p Promotion) Running(at time.Time) bool {
	return p.Status == StatusActive && !at.Before(p.Start) && !at.After(p.End)
}

// Repository provides read access to promotions and their active links.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Promotion, error)
	// ListActive returns promotions running at the given time, ordered by ID.
	ListActive(ctx context.Context, at time.Time) ([]Promotion, error)
}
