package wire

import (
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
	"github.com/xenking/tour-discount/internal/domain/discount"
	"github.com/xenking/tour-discount/internal/domain/promotion"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestDecodeBooking(t *testing.T) {
	const input = `{
		"productCode": "JPN-OSA-0425",
		"adultPrice": 907900,
		"adultCount": 2,
		"childNPrice": "450000.50",
		"childNCount": 1,
		"childEPrice": null,
		"infantPrice": 90000,
		"infantCount": 0,
		"departureDate": "2025-07-10",
		"bookingDate": "2025-06-15T09:30:00Z",
		"destinationCountry": "Japan",
		"destinationCity": "Osaka",
		"airline": "Korean Air",
		"userId": "u-1",
		"somethingElse": {"nested": [1, 2, 3]}
	}`

	b, err := DecodeBooking(jx.DecodeStr(input))
	require.NoError(t, err)

	assert.Equal(t, "JPN-OSA-0425", b.ProductCode)
	assert.True(t, d("907900").Equal(b.Adult.Price))
	assert.Equal(t, 2, b.Adult.Count)
	assert.True(t, d("450000.5").Equal(b.ChildN.Price))
	assert.True(t, b.ChildE.Price.IsZero())
	assert.Equal(t, 0, b.Infant.Count)
	assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), b.DepartureDate)
	assert.Equal(t, time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC), b.BookingDate.UTC())
	assert.Equal(t, "Japan", b.DestinationCountry)
	assert.Equal(t, "Osaka", b.DestinationCity)
	assert.Equal(t, "Korean Air", b.Airline)
	assert.Equal(t, "u-1", b.UserID)
	assert.True(t, d("2265800.5").Equal(booking.BaseAmount(b)))
}

func TestDecodeBooking_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"not an object":  `[1]`,
		"bad price":      `{"adultPrice": "abc"}`,
		"bad date":       `{"departureDate": "10/07/2025"}`,
		"negative count": `{"adultCount": -1}`,
		"truncated":      `{"adultPrice": 1`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBooking(jx.DecodeStr(input))
			require.Error(t, err)
		})
	}
}

func TestDecoders_SingleField(t *testing.T) {
	t.Run("booking", func(t *testing.T) {
		b, err := DecodeBooking(jx.DecodeStr(`{"adultCount": 1}`))
		require.NoError(t, err)
		assert.Equal(t, 1, b.Adult.Count)
	})
	t.Run("condition", func(t *testing.T) {
		c, err := DecodeCondition(jx.DecodeStr(`{"id": 7}`))
		require.NoError(t, err)
		assert.Equal(t, int64(7), c.ID)
	})
	t.Run("coupon", func(t *testing.T) {
		c, err := DecodeCoupon(jx.DecodeStr(`{"code": "CMP-AAAA-0001", "fixed": true, "flatAmount": 10000}`))
		require.NoError(t, err)
		assert.Equal(t, "CMP-AAAA-0001", c.Code)
		assert.True(t, c.Fixed)
		assert.True(t, d("10000").Equal(c.FlatAmount.Decimal))
	})
	t.Run("failing field is named", func(t *testing.T) {
		_, err := DecodeBooking(jx.DecodeStr(`{"adultCount": 1, "adultPrice": "abc"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "adultPrice")
	})
}

func TestDecodeCalculateRequest(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantIDs     []int64
		wantCodes   []string
		wantIDsNil  bool
		wantCodeNil bool
	}{
		{
			name:        "lists absent",
			input:       `{"bookingInfo": {"adultPrice": 1, "adultCount": 1}}`,
			wantIDsNil:  true,
			wantCodeNil: true,
		},
		{
			name:        "lists null",
			input:       `{"bookingInfo": {}, "discountConditionIds": null, "couponCodes": null}`,
			wantIDsNil:  true,
			wantCodeNil: true,
		},
		{
			name:      "lists empty",
			input:     `{"bookingInfo": {}, "discountConditionIds": [], "couponCodes": []}`,
			wantIDs:   []int64{},
			wantCodes: []string{},
		},
		{
			name:      "lists given",
			input:     `{"discountConditionIds": [26, 3], "couponCodes": ["CMP-SOMU-RJMQ-TGKY"], "bookingInfo": {}}`,
			wantIDs:   []int64{26, 3},
			wantCodes: []string{"CMP-SOMU-RJMQ-TGKY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeCalculateRequest(jx.DecodeStr(tt.input))
			require.NoError(t, err)

			if tt.wantIDsNil {
				assert.Nil(t, req.ConditionIDs)
			} else {
				require.NotNil(t, req.ConditionIDs)
				assert.Equal(t, tt.wantIDs, req.ConditionIDs)
			}
			if tt.wantCodeNil {
				assert.Nil(t, req.CouponCodes)
			} else {
				require.NotNil(t, req.CouponCodes)
				assert.Equal(t, tt.wantCodes, req.CouponCodes)
			}
		})
	}

	t.Run("booking required", func(t *testing.T) {
		_, err := DecodeCalculateRequest(jx.DecodeStr(`{"couponCodes": []}`))
		require.Error(t, err)
	})

	t.Run("bad id", func(t *testing.T) {
		_, err := DecodeCalculateRequest(jx.DecodeStr(`{"bookingInfo": {}, "discountConditionIds": ["x"]}`))
		require.Error(t, err)
	})
}

func TestEncodeResult(t *testing.T) {
	res := discount.Result{
		OriginalAmount: d("1364200"),
		TotalDiscount:  d("70000"),
		FinalAmount:    d("1294200"),
		Applied: []discount.AppliedDiscount{
			{
				Kind:     rule.KindCondition,
				Code:     "3",
				Name:     "Adult instant discount",
				Amount:   d("50000"),
				Detail:   "Adult 50,000 off = 50,000",
				Priority: discount.PriorityCondition,
			},
			{
				Kind:     rule.KindCoupon,
				Code:     "CMP-VJCK-895K-N7I2",
				Name:     "Japan 5% coupon",
				Amount:   d("20000"),
				Detail:   "5% off (max 20,000) = 20,000",
				Priority: discount.PriorityCoupon,
			},
		},
		Success:  true,
		Warnings: []string{"excluded city"},
	}

	var e jx.Encoder
	EncodeResult(&e, res)

	assert.JSONEq(t, `{
		"originalAmount": 1364200,
		"totalDiscountAmount": 70000,
		"finalAmount": 1294200,
		"appliedDiscounts": [
			{"type": "condition", "code": "3", "name": "Adult instant discount", "discountAmount": 50000,
			 "calculationDetail": "Adult 50,000 off = 50,000", "priority": 1},
			{"type": "coupon", "code": "CMP-VJCK-895K-N7I2", "name": "Japan 5% coupon", "discountAmount": 20000,
			 "calculationDetail": "5% off (max 20,000) = 20,000", "priority": 2}
		],
		"success": true,
		"warnings": ["excluded city"]
	}`, e.String())
}

func TestEncodeResult_Failure(t *testing.T) {
	var e jx.Encoder
	EncodeResult(&e, discount.Result{
		OriginalAmount: d("100"),
		TotalDiscount:  decimal.Zero,
		FinalAmount:    decimal.Zero,
		ErrorMessage:   discount.FailureMessage,
	})

	assert.JSONEq(t, `{
		"originalAmount": 100,
		"totalDiscountAmount": 0,
		"finalAmount": 0,
		"appliedDiscounts": [],
		"success": false,
		"errorMessage": "discount calculation failed",
		"warnings": []
	}`, e.String())
}

func TestEncodeValidation(t *testing.T) {
	var e jx.Encoder
	EncodeValidation(&e, rule.Result(rule.Reject(rule.ReasonExcludedCity, "excluded city")))
	assert.JSONEq(t, `{"valid": false, "errorMessages": ["excluded city"], "reasons": ["excluded_city"]}`, e.String())

	e.Reset()
	EncodeValidation(&e, rule.Result(nil))
	assert.JSONEq(t, `{"valid": true, "errorMessages": [], "reasons": []}`, e.String())
}

func TestConditionCodec(t *testing.T) {
	lead := 20
	in := []condition.Condition{
		{
			ID:          22,
			Number:      22,
			Kind:        condition.KindPeriod,
			Description: "Early booking discount",
			Enabled:     true,
			AmountKind:  condition.AmountFixed,
			Value:       d("30000"),
			Target:      booking.TargetAll,
			LeadDays:    &lead,
		},
		{
			ID:              26,
			Number:          26,
			Kind:            condition.KindImmediate,
			Enabled:         true,
			AmountKind:      condition.AmountPercentage,
			Value:           d("0.03"),
			MinimumAmount:   decimal.NewNullDecimal(decimal.Zero),
			MaximumDiscount: decimal.NewNullDecimal(d("100000")),
			Target:          booking.TargetAll,
		},
	}

	var e jx.Encoder
	EncodeConditions(&e, in)

	out, err := DecodeConditions(jx.DecodeBytes(e.Bytes()))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, in[0].Kind, out[0].Kind)
	require.NotNil(t, out[0].LeadDays)
	assert.Equal(t, 20, *out[0].LeadDays)
	assert.False(t, out[0].MinimumAmount.Valid)
	assert.True(t, in[0].Value.Equal(out[0].Value))

	assert.Nil(t, out[1].LeadDays)
	assert.True(t, out[1].MinimumAmount.Valid)
	assert.True(t, out[1].MinimumAmount.Decimal.IsZero())
	assert.True(t, d("100000").Equal(out[1].MaximumDiscount.Decimal))
	assert.True(t, d("0.03").Equal(out[1].Value))
	assert.Equal(t, booking.TargetAll, out[1].Target)
}

func TestDecodeCoupon(t *testing.T) {
	const input = `{
		"code": "CMP-VJCK-895K-N7I2",
		"name": "Japan 5% coupon",
		"issueStart": "2025-06-01",
		"issueEnd": "2025-06-30T23:59:59",
		"percentage": true,
		"rate": "0.05",
		"rateMinimum": 200000,
		"rateCap": 20000,
		"flatAmount": null,
		"country": {"active": true, "allow": "Japan"},
		"city": {"active": true, "deny": "Okinawa"}
	}`

	c, err := DecodeCoupon(jx.DecodeStr(input))
	require.NoError(t, err)

	assert.Equal(t, coupon.StatusIssuing, c.Status)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), c.IssueStart)
	assert.Equal(t, time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC), c.IssueEnd)
	assert.True(t, d("0.05").Equal(c.Rate.Decimal))
	assert.True(t, d("20000").Equal(c.RateCap.Decimal))
	assert.False(t, c.FlatAmount.Valid)
	assert.Equal(t, coupon.Restriction{Active: true, Allow: "Japan"}, c.Country)
	assert.Equal(t, coupon.Restriction{Active: true, Deny: "Okinawa"}, c.City)
	assert.False(t, c.Airline.Active)

	var e jx.Encoder
	EncodeCoupon(&e, c)
	again, err := DecodeCoupon(jx.DecodeBytes(e.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, c.Code, again.Code)
	assert.True(t, c.IssueEnd.Equal(again.IssueEnd))
	assert.Equal(t, c.City, again.City)

	_, err = DecodeCoupon(jx.DecodeStr(`{"name": "no code"}`))
	require.Error(t, err)
}

func TestEncodePromotion(t *testing.T) {
	p := promotion.Promotion{
		ID:          1,
		Number:      1001,
		Type:        "display",
		Description: "Summer Japan",
		Start:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		Status:      promotion.StatusActive,
		Budget:      d("10000000"),
		Support:     d("0"),
		Conditions:  []promotion.Link{{RuleID: 3, Priority: 1}},
		Coupons:     []promotion.Link{{RuleID: 2, Code: "CMP-VJCK-895K-N7I2", Priority: 2}},
	}

	var e jx.Encoder
	EncodePromotion(&e, p)
	assert.JSONEq(t, `{
		"id": 1, "number": 1001, "type": "display", "description": "Summer Japan",
		"start": "2025-06-01T00:00:00Z", "end": "2025-08-31T00:00:00Z",
		"status": "active", "budget": 10000000, "support": 0,
		"prefixCode": "", "productCategory": "",
		"conditions": [{"ruleId": 3, "priority": 1}],
		"coupons": [{"ruleId": 2, "code": "CMP-VJCK-895K-N7I2", "priority": 2}]
	}`, e.String())
}

func TestDecodePromotion(t *testing.T) {
	t.Run("admin payload", func(t *testing.T) {
		p, err := DecodePromotion(jx.DecodeStr(`{
			"number": 1001, "type": "display", "description": "Summer Japan",
			"start": "2025-06-01", "end": "2025-08-31T00:00:00Z",
			"status": "active", "budget": "10000000", "support": null,
			"conditions": [{"ruleId": 3, "priority": 1}],
			"coupons": [{"code": "CMP-VJCK-895K-N7I2", "priority": "2"}],
			"createdAt": "ignored"
		}`))
		require.NoError(t, err)

		assert.Equal(t, int64(1001), p.Number)
		assert.Equal(t, promotion.StatusActive, p.Status)
		assert.True(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Equal(p.Start))
		assert.True(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC).Equal(p.End))
		assert.True(t, d("10000000").Equal(p.Budget))
		assert.True(t, p.Support.IsZero())
		assert.Equal(t, []promotion.Link{{RuleID: 3, Priority: 1}}, p.Conditions)
		assert.Equal(t, []promotion.Link{{Code: "CMP-VJCK-895K-N7I2", Priority: 2}}, p.Coupons)
	})

	t.Run("missing links are empty", func(t *testing.T) {
		p, err := DecodePromotion(jx.DecodeStr(`{"number": 1, "coupons": null}`))
		require.NoError(t, err)
		assert.Empty(t, p.Conditions)
		assert.Empty(t, p.Coupons)
	})

	t.Run("bad start", func(t *testing.T) {
		_, err := DecodePromotion(jx.DecodeStr(`{"start": "June"}`))
		assert.ErrorContains(t, err, "start")
	})
}
