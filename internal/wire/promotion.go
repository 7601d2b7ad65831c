package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/tour-discount/internal/domain/promotion"
)

func encodeLinks(e *jx.Encoder, links []promotion.Link) {
	e.Arr(func(e *jx.Encoder) {
		for _, l := range links {
			e.Obj(func(e *jx.Encoder) {
				e.Field("ruleId", func(e *jx.Encoder) { e.Int64(l.RuleID) })
				if l.Code != "" {
					e.Field("code", func(e *jx.Encoder) { e.Str(l.Code) })
				}
				e.Field("priority", func(e *jx.Encoder) { e.Int(l.Priority) })
			})
		}
	})
}

// EncodePromotion writes a promotion with its linked rules.
func EncodePromotion(e *jx.Encoder, p promotion.Promotion) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("number", func(e *jx.Encoder) { e.Int64(p.Number) })
		e.Field("type", func(e *jx.Encoder) { e.Str(p.Type) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("start", func(e *jx.Encoder) { encodeTime(e, p.Start) })
		e.Field("end", func(e *jx.Encoder) { encodeTime(e, p.End) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(p.Status)) })
		e.Field("budget", func(e *jx.Encoder) { encodeDecimal(e, p.Budget) })
		e.Field("support", func(e *jx.Encoder) { encodeDecimal(e, p.Support) })
		e.Field("prefixCode", func(e *jx.Encoder) { e.Str(p.PrefixCode) })
		e.Field("productCategory", func(e *jx.Encoder) { e.Str(p.ProductCategory) })
		e.Field("conditions", func(e *jx.Encoder) { encodeLinks(e, p.Conditions) })
		e.Field("coupons", func(e *jx.Encoder) { encodeLinks(e, p.Coupons) })
	})
}

// EncodePromotions writes a list of promotions.
func EncodePromotions(e *jx.Encoder, ps []promotion.Promotion) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range ps {
			EncodePromotion(e, p)
		}
	})
}

func decodeLinks(d *jx.Decoder) ([]promotion.Link, error) {
	links := []promotion.Link{}
	if d.Next() == jx.Null {
		return links, d.Null()
	}
	err := d.Arr(func(d *jx.Decoder) error {
		var l promotion.Link
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "ruleId":
				l.RuleID, err = d.Int64()
			case "code":
				l.Code, err = decodeString(d)
			case "priority":
				l.Priority, err = decodeInt(d)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		links = append(links, l)
		return nil
	})
	return links, err
}

// DecodePromotion reads a promotion written by EncodePromotion. Condition
// links are keyed by ruleId, coupon links by code.
func DecodePromotion(d *jx.Decoder) (promotion.Promotion, error) {
	p := promotion.Promotion{
		Conditions: []promotion.Link{},
		Coupons:    []promotion.Link{},
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "number":
			p.Number, err = d.Int64()
		case "type":
			p.Type, err = decodeString(d)
		case "description":
			p.Description, err = decodeString(d)
		case "start":
			p.Start, err = decodeTime(d)
		case "end":
			p.End, err = decodeTime(d)
		case "status":
			var s string
			s, err = decodeString(d)
			p.Status = promotion.Status(s)
		case "budget":
			p.Budget, err = decodeDecimal(d)
		case "support":
			p.Support, err = decodeDecimal(d)
		case "prefixCode":
			p.PrefixCode, err = decodeString(d)
		case "productCategory":
			p.ProductCategory, err = decodeString(d)
		case "conditions":
			p.Conditions, err = decodeLinks(d)
		case "coupons":
			p.Coupons, err = decodeLinks(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return promotion.Promotion{}, errors.Wrap(err, "decode promotion")
	}
	return p, nil
}
