package domain

import "context"

type HotelRepository interface {
	// Write paths
	CreateHotel(ctx context.Context, h Hotel) error
	UpdateHotel(ctx context.Context, h Hotel) error
	UpsertHotel(ctx context.Context, h Hotel) error
	DeleteHotel(ctx context.Context, id int64) error

	// Read paths
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context, q HotelsQuery) ([]Hotel, error)
}

type ReviewRepository interface {
	AddReview(ctx context.Context, r Review) error
	UpsertReview(ctx context.Context, r Review) error
	LikeReview(ctx context.Context, id int64) (int, error)
	GetReview(ctx context.Context, id int64) (Review, error)
	ListReviews(ctx context.Context, q ReviewsQuery) ([]Review, error)
	ReviewStats(ctx context.Context, hotelID int64) (ReviewStats, error)
}

type BookingRepository interface {
	SaveBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, ref string) (Booking, error)
	ListBookings(ctx context.Context) ([]Booking, error)
	SetPaymentStatus(ctx context.Context, ref string, st PaymentStatus) error
	// CancelBooking fails with ErrAlreadyPaid once the booking is paid.
	CancelBooking(ctx context.Context, ref string) (Booking, error)
}

type PaymentRepository interface {
	SavePayment(ctx context.Context, p Payment) error
	ListPayments(ctx context.Context, bookingRef string) ([]Payment, error)
}

// AvailabilityChecker answers how many rooms are free for a stay.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, hotelID int64, req BookingRequest) (int, error)
}

type PaymentGateway interface {
	Charge(ctx context.Context, c Charge) (ChargeResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
