package coupon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/tour-discount/internal/domain/rule"
)

// Apply computes the discount c grants on current, the amount still payable
// after earlier discounts. A percentage rate takes precedence over a flat
// amount when both are configured.
func Apply(c *Coupon, current decimal.Decimal) Discount {
	var (
		amount decimal.Decimal
		detail string
	)
	switch {
	case c.Percentage && c.Rate.Valid:
		amount = current.Mul(c.Rate.Decimal)
		detail = rule.FormatRate(c.Rate.Decimal) + "% off"
		if c.RateCap.Valid {
			amount = decimal.Min(amount, c.RateCap.Decimal)
			detail += fmt.Sprintf(" (max %s)", rule.FormatAmount(c.RateCap.Decimal))
		}
	case c.Fixed && c.FlatAmount.Valid:
		amount = c.FlatAmount.Decimal
		detail = rule.FormatAmount(amount) + " off"
	default:
		detail = "discount applied"
	}

	amount = decimal.Min(amount, current)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return Discount{
		Amount: amount,
		Detail: detail + " = " + rule.FormatAmount(amount),
	}
}
