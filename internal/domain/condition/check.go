package condition

import (
	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

// Check runs the eligibility checks for c against b in order and returns the
// first failure as a *rule.Rejection. A nil result means the condition
// applies.
func Check(c *Condition, b booking.Booking) error {
	if !c.Enabled {
		return rule.Reject(rule.ReasonDisabled, "discount condition is disabled")
	}

	if c.Kind == KindPeriod && c.LeadDays != nil {
		if booking.LeadDays(b) < *c.LeadDays {
			return rule.Reject(rule.ReasonLeadTime,
				"booking must be made at least %d days before departure", *c.LeadDays)
		}
	}

	if c.MinimumAmount.Valid {
		if booking.TargetAmount(b, c.Target).LessThan(c.MinimumAmount.Decimal) {
			return rule.Reject(rule.ReasonMinimumAmount,
				"minimum applicable amount (%s) not met", rule.FormatAmount(c.MinimumAmount.Decimal))
		}
	}

	if !booking.HasTravellers(b, c.Target) {
		return rule.Reject(rule.ReasonTarget,
			"booking is not applicable to the discount target (%s)", c.Target.Label())
	}

	return nil
}
