// Package rule holds the vocabulary shared by discount conditions and
// coupons: rule kinds, rejection reasons and validation results.
package rule

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Kind distinguishes the two families of discount rules.
type Kind string

const (
	// KindCondition is a merchandising-configured flat discount rule.
	KindCondition Kind = "condition"
	// KindCoupon is a code-activated discount rule.
	KindCoupon Kind = "coupon"
)

// Reason is a machine-readable cause of a rule rejection.
type Reason string

const (
	ReasonNotFound        Reason = "not_found"
	ReasonDisabled        Reason = "disabled"
	ReasonLeadTime        Reason = "lead_time"
	ReasonMinimumAmount   Reason = "minimum_amount"
	ReasonTarget          Reason = "target"
	ReasonNotIssuing      Reason = "not_issuing"
	ReasonOutsideWindow   Reason = "outside_window"
	ReasonCountry         Reason = "country"
	ReasonExcludedCountry Reason = "excluded_country"
	ReasonCity            Reason = "city"
	ReasonExcludedCity    Reason = "excluded_city"
	ReasonAirline         Reason = "airline"
)

// Rejection is the expected, non-fatal outcome of an eligibility check: the
// rule exists but does not apply to the booking.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Reject builds a Rejection with a formatted message.
func Reject(reason Reason, format string, args ...any) error {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AsRejection extracts a Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// ValidationResult reports whether a rule applies to a booking and, if not,
// why.
type ValidationResult struct {
	Valid    bool
	Messages []string
	Reasons  []Reason
}

// Result converts the outcome of an eligibility check into a
// ValidationResult. A nil error is a pass. Any other error is reported with
// its message; rejections also carry their reason.
func Result(err error) ValidationResult {
	if err == nil {
		return ValidationResult{Valid: true}
	}
	res := ValidationResult{Messages: []string{err.Error()}}
	if r, ok := AsRejection(err); ok {
		res.Reasons = []Reason{r.Reason}
	}
	return res
}
