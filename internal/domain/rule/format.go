package rule

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatAmount renders a currency amount with comma thousands separators,
// e.g. 1015100 -> "1,015,100". Fractional digits are kept as-is.
func FormatAmount(v decimal.Decimal) string {
	s := v.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatRate renders a fractional rate as a percentage with at most two
// decimals, e.g. 0.035 -> "3.5".
func FormatRate(rate decimal.Decimal) string {
	return rate.Mul(hundred).Round(2).String()
}
