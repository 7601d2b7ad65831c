package condition

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

// Apply computes the discount c grants on b. The amount never exceeds the
// subtotal of the condition's target and is never negative. An unknown amount
// kind grants nothing. Eligibility is not re-checked.
func Apply(c *Condition, b booking.Booking) Discount {
	subtotal := booking.TargetAmount(b, c.Target)

	var (
		amount decimal.Decimal
		detail string
	)
	switch c.AmountKind {
	case AmountPercentage:
		amount = subtotal.Mul(c.Value).Ceil()
		detail = fmt.Sprintf("%s %s%% off (rounded up)", c.Target.Label(), rule.FormatRate(c.Value))
	case AmountFixed:
		amount = c.Value
		if n := perTravellerCount(c.Target, b); n > 0 {
			amount = amount.Mul(decimal.NewFromInt(int64(n)))
		}
		detail = fmt.Sprintf("%s %s off", c.Target.Label(), rule.FormatAmount(c.Value))
	default:
		amount = decimal.Zero
		detail = fmt.Sprintf("%s unsupported amount kind %q", c.Target.Label(), c.AmountKind)
	}

	if c.MaximumDiscount.Valid {
		amount = decimal.Min(amount, c.MaximumDiscount.Decimal)
	}
	amount = decimal.Min(amount, subtotal)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return Discount{
		Amount: amount,
		Detail: detail + " = " + rule.FormatAmount(amount),
	}
}

// perTravellerCount returns the multiplier for a fixed discount. Infant and
// All targets are never multiplied.
func perTravellerCount(t booking.Target, b booking.Booking) int {
	c, ok := t.Category()
	if !ok || c == booking.Infant {
		return 0
	}
	return b.Line(c).Count
}
