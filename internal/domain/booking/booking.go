package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a priced passenger or ground segment of a travel booking.
type Category int

const (
	// Adult is a full-fare adult traveller.
	Adult Category = iota + 1
	// ChildN is a child travelling without a bed of their own.
	ChildN
	// ChildE is a child occupying an extra bed.
	ChildE
	// Infant is an infant traveller.
	Infant
	// Land is the ground package purchased alongside (or instead of) the flight.
	Land
)

// Categories lists every priced category in summation order.
var Categories = [...]Category{Adult, ChildN, ChildE, Infant, Land}

func (c Category) String() string {
	switch c {
	case Adult:
		return "Adult"
	case ChildN:
		return "ChildN"
	case ChildE:
		return "ChildE"
	case Infant:
		return "Infant"
	case Land:
		return "Land"
	default:
		return "Unknown"
	}
}

// Line holds the unit price and headcount booked for one category.
type Line struct {
	Price decimal.Decimal
	Count int
}

// Subtotal returns price * count. A line with zero count contributes zero
// regardless of its price.
func (l Line) Subtotal() decimal.Decimal {
	if l.Count == 0 {
		return decimal.Zero
	}
	return l.Price.Mul(decimal.NewFromInt(int64(l.Count)))
}

// Booking is the immutable input of a single discount calculation.
// Prices left unset default to zero.
type Booking struct {
	ProductCode string

	Adult  Line
	ChildN Line
	ChildE Line
	Infant Line
	Land   Line

	DepartureDate      time.Time
	BookingDate        time.Time
	DestinationCountry string
	DestinationCity    string
	Airline            string
	UserID             string
}

// Line returns the booked line for the given category.
func (b Booking) Line(c Category) Line {
	switch c {
	case Adult:
		return b.Adult
	case ChildN:
		return b.ChildN
	case ChildE:
		return b.ChildE
	case Infant:
		return b.Infant
	case Land:
		return b.Land
	default:
		return Line{}
	}
}

// BaseAmount returns the payable amount before any discount: the sum of
// every category subtotal.
func BaseAmount(b Booking) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range Categories {
		sum = sum.Add(b.Line(c).Subtotal())
	}
	return sum
}

// LeadDays returns the number of whole days between booking and departure.
// Partial days are truncated toward zero.
func LeadDays(b Booking) int {
	return int(b.DepartureDate.Sub(b.BookingDate) / (24 * time.Hour))
}
