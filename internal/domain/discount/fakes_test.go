package discount

import (
	"cmp"
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
	"github.com/xenking/tour-discount/internal/domain/coupon"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func nd(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(v))
}

func intPtr(v int) *int { return &v }

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeConditions struct {
	byID    map[int64]condition.Condition
	err     error
	finds   atomic.Int64
	listing atomic.Int64
}

func newFakeConditions(cs ...condition.Condition) *fakeConditions {
	f := &fakeConditions{byID: make(map[int64]condition.Condition, len(cs))}
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeConditions) FindByID(_ context.Context, id int64) (*condition.Condition, error) {
	f.finds.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, condition.ErrNotFound
	}
	return &c, nil
}

func (f *fakeConditions) ListEnabled(_ context.Context) ([]condition.Condition, error) {
	f.listing.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []condition.Condition
	for _, c := range f.byID {
		if c.Enabled {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b condition.Condition) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

type fakeCoupons struct {
	byCode  map[string]coupon.Coupon
	err     error
	listing atomic.Int64
}

func newFakeCoupons(cs ...coupon.Coupon) *fakeCoupons {
	f := &fakeCoupons{byCode: make(map[string]coupon.Coupon, len(cs))}
	for _, c := range cs {
		f.byCode[c.Code] = c
	}
	return f
}

func (f *fakeCoupons) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byCode[code]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCoupons) ListActive(_ context.Context, at time.Time) ([]coupon.Coupon, error) {
	f.listing.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []coupon.Coupon
	for _, c := range f.byCode {
		if c.Status == coupon.StatusIssuing && !at.Before(c.IssueStart) && !at.After(c.IssueEnd) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b coupon.Coupon) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Reference rules mirroring the seeded data set.

func adultFixed() condition.Condition {
	return condition.Condition{
		ID:          3,
		Number:      3,
		Kind:        condition.KindImmediate,
		Description: "Adult instant discount",
		Enabled:     true,
		AmountKind:  condition.AmountFixed,
		Value:       d("50000"),
		Target:      booking.TargetAdult,
	}
}

func earlyBird() condition.Condition {
	return condition.Condition{
		ID:          22,
		Number:      22,
		Kind:        condition.KindPeriod,
		Description: "Early booking discount",
		Enabled:     true,
		AmountKind:  condition.AmountFixed,
		Value:       d("30000"),
		Target:      booking.TargetAll,
		LeadDays:    intPtr(20),
	}
}

func wholePercent() condition.Condition {
	return condition.Condition{
		ID:              26,
		Number:          26,
		Kind:            condition.KindImmediate,
		Description:     "3% off the whole booking",
		Enabled:         true,
		AmountKind:      condition.AmountPercentage,
		Value:           d("0.03"),
		MinimumAmount:   nd("0"),
		MaximumDiscount: nd("100000"),
		Target:          booking.TargetAll,
	}
}

func koreanAir() coupon.Coupon {
	return coupon.Coupon{
		ID:         1,
		Code:       "CMP-SOMU-RJMQ-TGKY",
		Name:       "Korean Air 5,000 coupon",
		Status:     coupon.StatusIssuing,
		IssueStart: fixedNow.AddDate(0, 0, -30),
		IssueEnd:   fixedNow.AddDate(0, 0, 30),
		Fixed:      true,
		FlatAmount: nd("5000"),
		Airline:    coupon.Restriction{Active: true, Allow: "Korean Air"},
	}
}

func japanPercent() coupon.Coupon {
	return coupon.Coupon{
		ID:          2,
		Code:        "CMP-VJCK-895K-N7I2",
		Name:        "Japan 5% coupon",
		Status:      coupon.StatusIssuing,
		IssueStart:  fixedNow.AddDate(0, 0, -30),
		IssueEnd:    fixedNow.AddDate(0, 0, 30),
		Percentage:  true,
		Rate:        nd("0.05"),
		RateMinimum: nd("200000"),
		RateCap:     nd("20000"),
		Country:     coupon.Restriction{Active: true, Allow: "Japan"},
		City:        coupon.Restriction{Active: true, Deny: "Okinawa"},
	}
}

func adults(price string, count int) booking.Booking {
	return booking.Booking{
		ProductCode:   "PKG-TEST",
		Adult:         booking.Line{Price: d(price), Count: count},
		BookingDate:   fixedNow,
		DepartureDate: fixedNow.AddDate(0, 0, 30),
	}
}
