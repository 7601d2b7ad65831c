package coupon

import (
	"time"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

// Check runs the eligibility checks for c against b at time now, in order,
// and returns the first failure as a *rule.Rejection.
//
// Minimum amounts are compared with the booking's full base amount, not with
// what remains after conditions are applied.
func Check(c *Coupon, b booking.Booking, now time.Time) error {
	if c.Status != StatusIssuing {
		return rule.Reject(rule.ReasonNotIssuing, "coupon is not usable")
	}
	if now.Before(c.IssueStart) || now.After(c.IssueEnd) {
		return rule.Reject(rule.ReasonOutsideWindow, "coupon is not within its usage period")
	}

	if c.Country.Active {
		if !c.Country.Allows(b.DestinationCountry) {
			return rule.Reject(rule.ReasonCountry, "not an applicable country")
		}
		if c.Country.Denies(b.DestinationCountry) {
			return rule.Reject(rule.ReasonExcludedCountry, "excluded country")
		}
	}

	if c.City.Active {
		if !c.City.Allows(b.DestinationCity) {
			return rule.Reject(rule.ReasonCity, "not an applicable city")
		}
		if c.City.Denies(b.DestinationCity) {
			return rule.Reject(rule.ReasonExcludedCity, "excluded city")
		}
	}

	if c.Airline.Active && !c.Airline.Allows(b.Airline) {
		return rule.Reject(rule.ReasonAirline, "not an applicable airline")
	}

	total := booking.BaseAmount(b)
	if c.Percentage && c.RateMinimum.Valid && total.LessThan(c.RateMinimum.Decimal) {
		return rule.Reject(rule.ReasonMinimumAmount,
			"minimum applicable amount (%s) not met", rule.FormatAmount(c.RateMinimum.Decimal))
	}
	if c.Fixed && c.FixedMinimum.Valid && total.LessThan(c.FixedMinimum.Decimal) {
		return rule.Reject(rule.ReasonMinimumAmount,
			"minimum applicable amount (%s) not met", rule.FormatAmount(c.FixedMinimum.Decimal))
	}

	return nil
}
