package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/tour-discount/internal/domain/discount"
)

// DecodeCalculateRequest reads a calculation request:
//
//	{"bookingInfo": {...}, "discountConditionIds": [1, 2], "couponCodes": ["A"]}
//
// An absent or null list leaves the field nil so that applicable rules are
// looked up; an empty list selects no rules.
func DecodeCalculateRequest(d *jx.Decoder) (discount.Request, error) {
	var (
		req        discount.Request
		hasBooking bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "bookingInfo":
			b, err := DecodeBooking(d)
			if err != nil {
				return err
			}
			req.Booking, hasBooking = b, true
			return nil
		case "discountConditionIds":
			if d.Next() == jx.Null {
				return d.Null()
			}
			ids := []int64{}
			if err := d.Arr(func(d *jx.Decoder) error {
				id, err := d.Int64()
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			}); err != nil {
				return errors.Wrap(err, key)
			}
			req.ConditionIDs = ids
			return nil
		case "couponCodes":
			if d.Next() == jx.Null {
				return d.Null()
			}
			codes := []string{}
			if err := d.Arr(func(d *jx.Decoder) error {
				code, err := d.Str()
				if err != nil {
					return err
				}
				codes = append(codes, code)
				return nil
			}); err != nil {
				return errors.Wrap(err, key)
			}
			req.CouponCodes = codes
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return discount.Request{}, errors.Wrap(err, "decode calculate request")
	}
	if !hasBooking {
		return discount.Request{}, errors.New("decode calculate request: bookingInfo is required")
	}
	return req, nil
}
