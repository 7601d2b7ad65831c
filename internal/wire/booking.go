package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/tour-discount/internal/domain/booking"
)

// DecodeBooking reads a booking object. Missing prices and counts are zero;
// unknown fields are ignored.
func DecodeBooking(d *jx.Decoder) (booking.Booking, error) {
	var b booking.Booking
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productCode":
			b.ProductCode, err = decodeString(d)
		case "adultPrice":
			b.Adult.Price, err = decodeDecimal(d)
		case "adultCount":
			b.Adult.Count, err = decodeInt(d)
		case "childNPrice":
			b.ChildN.Price, err = decodeDecimal(d)
		case "childNCount":
			b.ChildN.Count, err = decodeInt(d)
		case "childEPrice":
			b.ChildE.Price, err = decodeDecimal(d)
		case "childECount":
			b.ChildE.Count, err = decodeInt(d)
		case "infantPrice":
			b.Infant.Price, err = decodeDecimal(d)
		case "infantCount":
			b.Infant.Count, err = decodeInt(d)
		case "landPrice":
			b.Land.Price, err = decodeDecimal(d)
		case "landCount":
			b.Land.Count, err = decodeInt(d)
		case "departureDate":
			b.DepartureDate, err = decodeTime(d)
		case "bookingDate":
			b.BookingDate, err = decodeTime(d)
		case "destinationCountry":
			b.DestinationCountry, err = decodeString(d)
		case "destinationCity":
			b.DestinationCity, err = decodeString(d)
		case "airline":
			b.Airline, err = decodeString(d)
		case "userId":
			b.UserID, err = decodeString(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return booking.Booking{}, errors.Wrap(err, "decode booking")
	}

	for _, c := range booking.Categories {
		if b.Line(c).Count < 0 {
			return booking.Booking{}, errors.Errorf("decode booking: negative %s count", c)
		}
	}
	return b, nil
}
