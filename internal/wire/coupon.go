package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/tour-discount/internal/domain/coupon"
)

func encodeRestriction(e *jx.Encoder, r coupon.Restriction) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("active", func(e *jx.Encoder) { e.Bool(r.Active) })
		e.Field("allow", func(e *jx.Encoder) { e.Str(r.Allow) })
		e.Field("deny", func(e *jx.Encoder) { e.Str(r.Deny) })
	})
}

func decodeRestriction(d *jx.Decoder) (coupon.Restriction, error) {
	var r coupon.Restriction
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "active":
			r.Active, err = d.Bool()
		case "allow":
			r.Allow, err = decodeString(d)
		case "deny":
			r.Deny, err = decodeString(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return r, err
}

// EncodeCoupon writes a coupon record.
func EncodeCoupon(e *jx.Encoder, c coupon.Coupon) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(c.ID) })
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(c.Description) })
		e.Field("issueType", func(e *jx.Encoder) { e.Str(c.IssueType) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(c.Status)) })
		e.Field("issueStart", func(e *jx.Encoder) { encodeTime(e, c.IssueStart) })
		e.Field("issueEnd", func(e *jx.Encoder) { encodeTime(e, c.IssueEnd) })
		e.Field("percentage", func(e *jx.Encoder) { e.Bool(c.Percentage) })
		e.Field("rate", func(e *jx.Encoder) { encodeNullDecimal(e, c.Rate) })
		e.Field("rateMinimum", func(e *jx.Encoder) { encodeNullDecimal(e, c.RateMinimum) })
		e.Field("rateCap", func(e *jx.Encoder) { encodeNullDecimal(e, c.RateCap) })
		e.Field("fixed", func(e *jx.Encoder) { e.Bool(c.Fixed) })
		e.Field("flatAmount", func(e *jx.Encoder) { encodeNullDecimal(e, c.FlatAmount) })
		e.Field("fixedMinimum", func(e *jx.Encoder) { encodeNullDecimal(e, c.FixedMinimum) })
		e.Field("country", func(e *jx.Encoder) { encodeRestriction(e, c.Country) })
		e.Field("city", func(e *jx.Encoder) { encodeRestriction(e, c.City) })
		e.Field("airline", func(e *jx.Encoder) { encodeRestriction(e, c.Airline) })
	})
}

// EncodeCoupons writes a list of coupon records.
func EncodeCoupons(e *jx.Encoder, cs []coupon.Coupon) {
	e.Arr(func(e *jx.Encoder) {
		for _, c := range cs {
			EncodeCoupon(e, c)
		}
	})
}

// DecodeCoupon reads a coupon record. A missing status defaults to issuing.
func DecodeCoupon(d *jx.Decoder) (coupon.Coupon, error) {
	c := coupon.Coupon{Status: coupon.StatusIssuing}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			c.ID, err = d.Int64()
		case "code":
			c.Code, err = d.Str()
		case "name":
			c.Name, err = decodeString(d)
		case "description":
			c.Description, err = decodeString(d)
		case "issueType":
			c.IssueType, err = decodeString(d)
		case "status":
			var s string
			s, err = d.Str()
			c.Status = coupon.Status(s)
		case "issueStart":
			c.IssueStart, err = decodeTime(d)
		case "issueEnd":
			c.IssueEnd, err = decodeTime(d)
		case "percentage":
			c.Percentage, err = d.Bool()
		case "rate":
			c.Rate, err = decodeNullDecimal(d)
		case "rateMinimum":
			c.RateMinimum, err = decodeNullDecimal(d)
		case "rateCap":
			c.RateCap, err = decodeNullDecimal(d)
		case "fixed":
			c.Fixed, err = d.Bool()
		case "flatAmount":
			c.FlatAmount, err = decodeNullDecimal(d)
		case "fixedMinimum":
			c.FixedMinimum, err = decodeNullDecimal(d)
		case "country":
			c.Country, err = decodeRestriction(d)
		case "city":
			c.City, err = decodeRestriction(d)
		case "airline":
			c.Airline, err = decodeRestriction(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return coupon.Coupon{}, errors.Wrap(err, "decode coupon")
	}
	if c.Code == "" {
		return coupon.Coupon{}, errors.New("decode coupon: code is required")
	}
	return c, nil
}
