package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"luxestay/internal/adapters/observability"
	"luxestay/internal/domain"
)

// Invoice is a booking's bill: what was charged for it and what is left.
type Invoice struct {
	Booking  domain.Booking        `json:"booking"`
	Summary  domain.PaymentSummary `json:"summary"`
	Payments []domain.Payment      `json:"payments"`
	Paid     decimal.Decimal       `json:"paid"`
	Balance  decimal.Decimal       `json:"balance"`
}

// LedgerService is the admin's view of bookings and payments.
type LedgerService struct {
	bookings domain.BookingRepository
	payments domain.PaymentRepository
	taxRate  decimal.Decimal
}

func NewLedgerService(bookings domain.BookingRepository, payments domain.PaymentRepository, taxRate decimal.Decimal) *LedgerService {
	return &LedgerService{bookings: bookings, payments: payments, taxRate: taxRate}
}

func (s *LedgerService) Bookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListBookings(ctx)
}

func (s *LedgerService) Booking(ctx context.Context, ref string) (domain.Booking, error) {
	return s.bookings.GetBooking(ctx, ref)
}

// Payments filters by booking ref; an empty ref lists all of them.
func (s *LedgerService) Payments(ctx context.Context, ref string) ([]domain.Payment, error) {
	out, err := s.payments.ListPayments(ctx, ref)
	if out == nil {
		out = []domain.Payment{}
	}
	return out, err
}

// Cancel marks the booking cancelled; later payment attempts for it fail with
// domain.ErrBookingCancelled. Paid bookings stay as they are.
func (s *LedgerService) Cancel(ctx context.Context, ref string) (domain.Booking, error) {
	b, err := s.bookings.CancelBooking(ctx, ref)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("cancel booking: %w", err)
	}
	observability.ObserveAdmin("cancel")
	log.Info().Str("ref", ref).Msg("booking cancelled")
	return b, nil
}

func (s *LedgerService) Invoice(ctx context.Context, ref string) (Invoice, error) {
	b, err := s.bookings.GetBooking(ctx, ref)
	if err != nil {
		return Invoice{}, err
	}
	ps, err := s.Payments(ctx, ref)
	if err != nil {
		return Invoice{}, err
	}
	inv := Invoice{Booking: b, Summary: summaryFor(b, s.taxRate), Payments: ps, Paid: decimal.Zero}
	for _, p := range ps {
		if p.Status == domain.PaymentSuccess {
			inv.Paid = inv.Paid.Add(p.Amount)
		}
	}
	inv.Balance = inv.Summary.GrandTotal.Sub(inv.Paid)
	if b.Status == domain.BookingStatusCancelled {
		inv.Balance = decimal.Zero
	}
	return inv, nil
}
