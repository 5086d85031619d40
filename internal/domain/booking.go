package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of check-in/check-out dates.
const DateLayout = "2006-01-02"

type RoomType string

const (
	RoomStandard     RoomType = "standard"
	RoomDeluxe       RoomType = "deluxe"
	RoomSuite        RoomType = "suite"
	RoomPresidential RoomType = "presidential"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomStandard, RoomDeluxe, RoomSuite, RoomPresidential:
		return true
	}
	return false
}

type BookingRequest struct {
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          int       `json:"guests"`
	RoomType        RoomType  `json:"room_type"`
	SpecialRequests string    `json:"special_requests"`
}

func (r BookingRequest) HasDates() bool { return !r.CheckIn.IsZero() && !r.CheckOut.IsZero() }

// Nights is ceil((CheckOut-CheckIn) in days), or 0 when the range is unset or not positive.
func (r BookingRequest) Nights() int {
	if !r.HasDates() || !r.CheckOut.After(r.CheckIn) {
		return 0
	}
	return int(math.Ceil(r.CheckOut.Sub(r.CheckIn).Hours() / 24))
}

// Total is Nights x nightly price.
func (r BookingRequest) Total(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(r.Nights())))
}

type BookingState string

const (
	BookingEnteringDates        BookingState = "entering-dates"
	BookingCheckingAvailability BookingState = "checking-availability"
	BookingAvailabilityKnown    BookingState = "availability-known"
	BookingInProgress           BookingState = "booking-in-progress"
	BookingConfirmed            BookingState = "confirmed"
)

// Pending reports whether a simulated call is in flight.
func (s BookingState) Pending() bool {
	return s == BookingCheckingAvailability || s == BookingInProgress
}

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	Ref           string          `json:"booking_ref"`
	HotelID       int64           `json:"hotel_id"`
	HotelName     string          `json:"hotel_name"`
	Request       BookingRequest  `json:"request"`
	Nights        int             `json:"nights"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Total         decimal.Decimal `json:"total"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}
