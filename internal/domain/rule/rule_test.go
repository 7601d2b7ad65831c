package rule

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	t.Run("nil error is valid", func(t *testing.T) {
		res := Result(nil)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Messages)
		assert.Empty(t, res.Reasons)
	})

	t.Run("rejection carries reason and message", func(t *testing.T) {
		res := Result(Reject(ReasonLeadTime, "at least %d days", 20))
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"at least 20 days"}, res.Messages)
		assert.Equal(t, []Reason{ReasonLeadTime}, res.Reasons)
	})

	t.Run("wrapped rejection is still recognised", func(t *testing.T) {
		err := errors.Wrap(Reject(ReasonCity, "excluded city"), "check")
		r, ok := AsRejection(err)
		require.True(t, ok)
		assert.Equal(t, ReasonCity, r.Reason)
	})

	t.Run("plain error has no reason", func(t *testing.T) {
		res := Result(errors.New("boom"))
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"boom"}, res.Messages)
		assert.Empty(t, res.Reasons)
	})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"50000", "50,000"},
		{"1015100", "1,015,100"},
		{"45395.5", "45,395.5"},
		{"-1234567", "-1,234,567"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "3", FormatRate(decimal.RequireFromString("0.03")))
	assert.Equal(t, "5", FormatRate(decimal.RequireFromString("0.05")))
	assert.Equal(t, "3.5", FormatRate(decimal.RequireFromString("0.035")))
	assert.Equal(t, "12.35", FormatRate(decimal.RequireFromString("0.123456")))
}
