package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestBaseAmount(t *testing.T) {
	tests := []struct {
		name    string
		booking Booking
		want    decimal.Decimal
	}{
		{
			name:    "single adult",
			booking: Booking{Adult: Line{Price: d("1015100"), Count: 1}},
			want:    d("1015100"),
		},
		{
			name: "adult, extra-bed child and land",
			booking: Booking{
				Adult:  Line{Price: d("1065100"), Count: 1},
				ChildE: Line{Price: d("1065100"), Count: 1},
				Land:   Line{Price: d("958590"), Count: 1},
			},
			want: d("3088790"),
		},
		{
			name: "zero count ignores price",
			booking: Booking{
				Adult:  Line{Price: d("100"), Count: 2},
				Infant: Line{Price: d("999999"), Count: 0},
			},
			want: d("200"),
		},
		{
			name:    "missing prices default to zero",
			booking: Booking{Adult: Line{Count: 3}, ChildN: Line{Count: 1}},
			want:    decimal.Zero,
		},
		{
			name: "all five categories",
			booking: Booking{
				Adult:  Line{Price: d("10"), Count: 2},
				ChildN: Line{Price: d("7"), Count: 1},
				ChildE: Line{Price: d("8"), Count: 1},
				Infant: Line{Price: d("1"), Count: 3},
				Land:   Line{Price: d("5"), Count: 2},
			},
			want: d("48"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseAmount(tt.booking)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestTargetAmount(t *testing.T) {
	b := Booking{
		Adult:  Line{Price: d("100"), Count: 2},
		ChildN: Line{Price: d("70"), Count: 1},
		Infant: Line{Price: d("10"), Count: 1},
		Land:   Line{Price: d("50"), Count: 0},
	}

	tests := []struct {
		target Target
		want   decimal.Decimal
	}{
		{TargetAdult, d("200")},
		{TargetChildN, d("70")},
		{TargetChildE, decimal.Zero},
		{TargetInfant, d("10")},
		{TargetLand, decimal.Zero},
		{TargetAll, d("280")},
		{Target("something-else"), d("280")},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			got := TargetAmount(b, tt.target)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestHasTravellers(t *testing.T) {
	b := Booking{Adult: Line{Count: 1}}

	assert.True(t, HasTravellers(b, TargetAdult))
	assert.False(t, HasTravellers(b, TargetChildE))
	assert.False(t, HasTravellers(b, TargetInfant))
	assert.True(t, HasTravellers(b, TargetAll))
	assert.True(t, HasTravellers(Booking{}, TargetAll))
	assert.True(t, HasTravellers(Booking{}, Target("unknown")))
}

func TestTargetLabel(t *testing.T) {
	assert.Equal(t, "Adult", TargetAdult.Label())
	assert.Equal(t, "ChildE", TargetChildE.Label())
	assert.Equal(t, "All", TargetAll.Label())
	assert.Equal(t, "All", Target("bogus").Label())
}

func TestLeadDays(t *testing.T) {
	booked := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		departure time.Time
		want      int
	}{
		{"same instant", booked, 0},
		{"exactly 20 days", booked.AddDate(0, 0, 20), 20},
		{"partial day truncated", booked.Add(20*24*time.Hour - time.Minute), 19},
		{"25 days", booked.AddDate(0, 0, 25), 25},
		{"departure before booking", booked.AddDate(0, 0, -2), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LeadDays(Booking{BookingDate: booked, DepartureDate: tt.departure})
			assert.Equal(t, tt.want, got)
		})
	}
}
