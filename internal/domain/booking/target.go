package booking

import "github.com/shopspring/decimal"

// Target is the category label a discount rule is computed against.
// Besides the five categories it may be TargetAll.
type Target string

const (
	TargetAll    Target = "all"
	TargetAdult  Target = "adult"
	TargetChildN Target = "child_n"
	TargetChildE Target = "child_e"
	TargetInfant Target = "infant"
	TargetLand   Target = "land"
)

var targetCategories = map[Target]Category{
	TargetAdult:  Adult,
	TargetChildN: ChildN,
	TargetChildE: ChildE,
	TargetInfant: Infant,
	TargetLand:   Land,
}

// Category returns the category the target names. It reports false for
// TargetAll and for any unrecognized label.
func (t Target) Category() (Category, bool) {
	c, ok := targetCategories[t]
	return c, ok
}

// Label returns the display name used in calculation traces.
func (t Target) Label() string {
	if c, ok := t.Category(); ok {
		return c.String()
	}
	return "All"
}

// TargetAmount returns the subtotal a rule with the given target is computed
// against: the category's own subtotal, or the full base amount for
// TargetAll and unrecognized labels.
func TargetAmount(b Booking, t Target) decimal.Decimal {
	if c, ok := t.Category(); ok {
		return b.Line(c).Subtotal()
	}
	return BaseAmount(b)
}

// HasTravellers reports whether the booking contains the target category.
// TargetAll (and any unrecognized label) always matches.
func HasTravellers(b Booking, t Target) bool {
	if c, ok := t.Category(); ok {
		return b.Line(c).Count > 0
	}
	return true
}
