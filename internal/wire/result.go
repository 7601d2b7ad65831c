package wire

import (
	"github.com/go-faster/jx"

	"github.com/xenking/tour-discount/internal/domain/discount"
	"github.com/xenking/tour-discount/internal/domain/rule"
)

// EncodeResult writes a calculation result.
func EncodeResult(e *jx.Encoder, r discount.Result) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("originalAmount", func(e *jx.Encoder) { encodeDecimal(e, r.OriginalAmount) })
		e.Field("totalDiscountAmount", func(e *jx.Encoder) { encodeDecimal(e, r.TotalDiscount) })
		e.Field("finalAmount", func(e *jx.Encoder) { encodeDecimal(e, r.FinalAmount) })
		e.Field("appliedDiscounts", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, a := range r.Applied {
					encodeApplied(e, a)
				}
			})
		})
		e.Field("success", func(e *jx.Encoder) { e.Bool(r.Success) })
		if r.ErrorMessage != "" {
			e.Field("errorMessage", func(e *jx.Encoder) { e.Str(r.ErrorMessage) })
		}
		e.Field("warnings", func(e *jx.Encoder) { encodeStrings(e, r.Warnings) })
	})
}

func encodeApplied(e *jx.Encoder, a discount.AppliedDiscount) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str(string(a.Kind)) })
		e.Field("code", func(e *jx.Encoder) { e.Str(a.Code) })
		e.Field("name", func(e *jx.Encoder) { e.Str(a.Name) })
		e.Field("discountAmount", func(e *jx.Encoder) { encodeDecimal(e, a.Amount) })
		e.Field("calculationDetail", func(e *jx.Encoder) { e.Str(a.Detail) })
		e.Field("priority", func(e *jx.Encoder) { e.Int(a.Priority) })
	})
}

// EncodeValidation writes a validation result.
func EncodeValidation(e *jx.Encoder, v rule.ValidationResult) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("valid", func(e *jx.Encoder) { e.Bool(v.Valid) })
		e.Field("errorMessages", func(e *jx.Encoder) { encodeStrings(e, v.Messages) })
		e.Field("reasons", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, r := range v.Reasons {
					e.Str(string(r))
				}
			})
		})
	})
}
