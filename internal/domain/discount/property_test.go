package discount

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

var targets = []booking.Target{
	booking.TargetAll,
	booking.TargetAdult,
	booking.TargetChildN,
	booking.TargetChildE,
	booking.TargetInfant,
	booking.TargetLand,
}

func randomLine(r *rand.Rand) booking.Line {
	if r.IntN(3) == 0 {
		return booking.Line{}
	}
	return booking.Line{
		Price: decimal.NewFromInt(int64(r.IntN(2_000_000))),
		Count: r.IntN(4),
	}
}

func randomBooking(r *rand.Rand) booking.Booking {
	return booking.Booking{
		Adult:              randomLine(r),
		ChildN:             randomLine(r),
		ChildE:             randomLine(r),
		Infant:             randomLine(r),
		Land:               randomLine(r),
		BookingDate:        fixedNow,
		DepartureDate:      fixedNow.AddDate(0, 0, r.IntN(40)),
		DestinationCountry: []string{"Japan", "Vietnam", "Korea"}[r.IntN(3)],
		DestinationCity:    []string{"Osaka", "Okinawa", "Hanoi"}[r.IntN(3)],
		Airline:            []string{"Korean Air", "Asiana"}[r.IntN(2)],
	}
}

func randomCondition(r *rand.Rand, id int64) condition.Condition {
	c := condition.Condition{
		ID:      id,
		Number:  id,
		Kind:    condition.KindImmediate,
		Enabled: r.IntN(5) != 0,
		Target:  targets[r.IntN(len(targets))],
	}
	if r.IntN(2) == 0 {
		c.AmountKind = condition.AmountFixed
		c.Value = decimal.NewFromInt(int64(r.IntN(300_000)))
	} else {
		c.AmountKind = condition.AmountPercentage
		c.Value = decimal.NewFromInt(int64(r.IntN(30))).Div(decimal.NewFromInt(100))
	}
	if r.IntN(3) == 0 {
		c.MaximumDiscount = decimal.NewNullDecimal(decimal.NewFromInt(int64(r.IntN(100_000))))
	}
	if r.IntN(3) == 0 {
		c.MinimumAmount = decimal.NewNullDecimal(decimal.NewFromInt(int64(r.IntN(1_000_000))))
	}
	if r.IntN(3) == 0 {
		c.Kind = condition.KindPeriod
		c.LeadDays = intPtr(r.IntN(30))
	}
	return c
}

func randomCoupon(r *rand.Rand, id int64) coupon.Coupon {
	c := coupon.Coupon{
		ID:         id,
		Code:       "C" + strconv.FormatInt(id, 10),
		Status:     coupon.StatusIssuing,
		IssueStart: fixedNow.AddDate(0, 0, -1),
		IssueEnd:   fixedNow.AddDate(0, 0, 1),
	}
	if r.IntN(2) == 0 {
		c.Percentage = true
		c.Rate = decimal.NewNullDecimal(decimal.NewFromInt(int64(r.IntN(20))).Div(decimal.NewFromInt(100)))
		if r.IntN(2) == 0 {
			c.RateCap = decimal.NewNullDecimal(decimal.NewFromInt(int64(r.IntN(50_000))))
		}
	} else {
		c.Fixed = true
		c.FlatAmount = decimal.NewNullDecimal(decimal.NewFromInt(int64(r.IntN(500_000))))
	}
	if r.IntN(3) == 0 {
		c.City = coupon.Restriction{Active: true, Deny: "Okinawa"}
	}
	return c
}

func TestService_Calculate_Invariants(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for round := range 200 {
		t.Run(fmt.Sprintf("round %d", round), func(t *testing.T) {
			var conds []condition.Condition
			for id := range int64(r.IntN(5)) {
				conds = append(conds, randomCondition(r, id+1))
			}
			var coups []coupon.Coupon
			for id := range int64(r.IntN(4)) {
				coups = append(coups, randomCoupon(r, id+1))
			}
			byNumber := make(map[string]condition.Condition, len(conds))
			for _, c := range conds {
				byNumber[strconv.FormatInt(c.Number, 10)] = c
			}

			svc := newTestService(t, newFakeConditions(conds...), newFakeCoupons(coups...))
			b := randomBooking(r)

			res := svc.Calculate(context.Background(), Request{Booking: b})
			require.True(t, res.Success)
			require.True(t, booking.BaseAmount(b).Equal(res.OriginalAmount))

			want := decimal.Max(decimal.Zero, res.OriginalAmount.Sub(res.TotalDiscount))
			assert.True(t, want.Equal(res.FinalAmount), "final %s, want %s", res.FinalAmount, want)

			sum := decimal.Zero
			for _, a := range res.Applied {
				assert.True(t, a.Amount.IsPositive(), "%s: amount %s", a.Code, a.Amount)

				switch a.Kind {
				case rule.KindCondition:
					c := byNumber[a.Code]
					limit := booking.TargetAmount(b, c.Target)
					assert.True(t, a.Amount.LessThanOrEqual(limit), "%s: %s > %s", a.Code, a.Amount, limit)
					if c.AmountKind == condition.AmountPercentage {
						assert.True(t, a.Amount.Equal(a.Amount.Truncate(0)), "%s: %s not whole", a.Code, a.Amount)
						if !c.MaximumDiscount.Valid {
							floor := decimal.Min(limit.Mul(c.Value), limit)
							assert.True(t, a.Amount.GreaterThanOrEqual(floor), "%s: %s < %s", a.Code, a.Amount, floor)
						}
					}
					assert.Equal(t, PriorityCondition, a.Priority)
				case rule.KindCoupon:
					remaining := res.OriginalAmount.Sub(sum)
					assert.True(t, a.Amount.LessThanOrEqual(remaining), "%s: %s > %s", a.Code, a.Amount, remaining)
					assert.Equal(t, PriorityCoupon, a.Priority)
				}
				sum = sum.Add(a.Amount)
			}
			assert.True(t, sum.Equal(res.TotalDiscount), "sum %s, total %s", sum, res.TotalDiscount)
		})
	}
}
