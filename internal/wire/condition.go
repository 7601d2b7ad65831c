package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/tour-discount/internal/domain/booking"
	"github.com/xenking/tour-discount/internal/domain/condition"
)

// EncodeCondition writes a condition record.
func EncodeCondition(e *jx.Encoder, c condition.Condition) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(c.ID) })
		e.Field("number", func(e *jx.Encoder) { e.Int64(c.Number) })
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(c.Kind)) })
		e.Field("description", func(e *jx.Encoder) { e.Str(c.Description) })
		e.Field("enabled", func(e *jx.Encoder) { e.Bool(c.Enabled) })
		e.Field("amountKind", func(e *jx.Encoder) { e.Str(string(c.AmountKind)) })
		e.Field("value", func(e *jx.Encoder) { encodeDecimal(e, c.Value) })
		e.Field("minimumAmount", func(e *jx.Encoder) { encodeNullDecimal(e, c.MinimumAmount) })
		e.Field("maximumDiscount", func(e *jx.Encoder) { encodeNullDecimal(e, c.MaximumDiscount) })
		e.Field("target", func(e *jx.Encoder) { e.Str(string(c.Target)) })
		e.Field("leadDays", func(e *jx.Encoder) {
			if c.LeadDays == nil {
				e.Null()
				return
			}
			e.Int(*c.LeadDays)
		})
	})
}

// EncodeConditions writes a list of condition records.
func EncodeConditions(e *jx.Encoder, cs []condition.Condition) {
	e.Arr(func(e *jx.Encoder) {
		for _, c := range cs {
			EncodeCondition(e, c)
		}
	})
}

// DecodeCondition reads a condition record written by EncodeCondition.
func DecodeCondition(d *jx.Decoder) (condition.Condition, error) {
	var c condition.Condition
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			c.ID, err = d.Int64()
		case "number":
			c.Number, err = d.Int64()
		case "kind":
			var s string
			s, err = d.Str()
			c.Kind = condition.Kind(s)
		case "description":
			c.Description, err = decodeString(d)
		case "enabled":
			c.Enabled, err = d.Bool()
		case "amountKind":
			var s string
			s, err = d.Str()
			c.AmountKind = condition.AmountKind(s)
		case "value":
			c.Value, err = decodeDecimal(d)
		case "minimumAmount":
			c.MinimumAmount, err = decodeNullDecimal(d)
		case "maximumDiscount":
			c.MaximumDiscount, err = decodeNullDecimal(d)
		case "target":
			var s string
			s, err = d.Str()
			c.Target = booking.Target(s)
		case "leadDays":
			if d.Next() == jx.Null {
				err = d.Null()
				break
			}
			var n int
			n, err = d.Int()
			c.LeadDays = &n
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return condition.Condition{}, errors.Wrap(err, "decode condition")
	}
	return c, nil
}

// DecodeConditions reads a list written by EncodeConditions.
func DecodeConditions(d *jx.Decoder) ([]condition.Condition, error) {
	out := []condition.Condition{}
	err := d.Arr(func(d *jx.Decoder) error {
		c, err := DecodeCondition(d)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
