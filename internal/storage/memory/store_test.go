package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"luxestay/internal/domain"
	"luxestay/internal/storage/memory"
)

func TestStore_ListHotelsFiltersAndOrders(t *testing.T) {
	s := memory.Seeded()
	ctx := context.Background()

	all, err := s.ListHotels(ctx, domain.HotelsQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != 1 || all[2].ID != 3 {
		t.Fatalf("unexpected list: %+v", all)
	}

	got, _ := s.ListHotels(ctx, domain.HotelsQuery{Search: "ocean"})
	if len(got) != 1 || got[0].Name != "Oceanview Resort" {
		t.Fatalf("search ocean: %+v", got)
	}
	got, _ = s.ListHotels(ctx, domain.HotelsQuery{Location: "denver"})
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("location denver: %+v", got)
	}
	got, _ = s.ListHotels(ctx, domain.HotelsQuery{Search: "palace", Location: "Miami"})
	if len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestStore_InactiveHiddenUnlessRequested(t *testing.T) {
	s := memory.Seeded()
	ctx := context.Background()

	h, _ := s.GetHotel(ctx, 2)
	h.Status = domain.HotelInactive
	if err := s.UpdateHotel(ctx, h); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.ListHotels(ctx, domain.HotelsQuery{})
	if len(got) != 2 {
		t.Fatalf("inactive hotel should be hidden: %+v", got)
	}
	got, _ = s.ListHotels(ctx, domain.HotelsQuery{IncludeInactive: true})
	if len(got) != 3 {
		t.Fatalf("admin listing should include inactive: %+v", got)
	}
}

func TestStore_HotelCopiesAreIndependent(t *testing.T) {
	s := memory.Seeded()
	ctx := context.Background()

	h, _ := s.GetHotel(ctx, 1)
	h.Amenities[0] = "changed"
	again, _ := s.GetHotel(ctx, 1)
	if again.Amenities[0] != "WiFi" {
		t.Fatalf("store leaked its slice: %v", again.Amenities)
	}
}

func TestStore_HotelCRUDErrors(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	h := domain.Hotel{ID: 7, Name: "x", Price: decimal.NewFromInt(10), Status: domain.HotelActive}

	if err := s.CreateHotel(ctx, h); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateHotel(ctx, h); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("duplicate create: %v", err)
	}
	if err := s.UpdateHotel(ctx, domain.Hotel{ID: 8}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	if err := s.DeleteHotel(ctx, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetHotel(ctx, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
	if err := s.DeleteHotel(ctx, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

func TestStore_ReviewsNewestFirstAndLikes(t *testing.T) {
	s := memory.Seeded()
	ctx := context.Background()

	r := domain.Review{ID: 99, HotelID: 1, HotelName: "Grand Palace Hotel", Author: "Current User", Rating: 3, Comment: "ok", Date: "2024-03-01"}
	if err := s.AddReview(ctx, r); err != nil {
		t.Fatalf("add: %v", err)
	}
	list, _ := s.ListReviews(ctx, domain.ReviewsQuery{})
	if len(list) != 4 || list[0].ID != 99 {
		t.Fatalf("new review should be first: %+v", list)
	}

	hotel := int64(1)
	list, _ = s.ListReviews(ctx, domain.ReviewsQuery{HotelID: &hotel, Limit: 1})
	if len(list) != 1 || list[0].ID != 99 {
		t.Fatalf("filtered list: %+v", list)
	}

	n, err := s.LikeReview(ctx, 1)
	if err != nil || n != 13 {
		t.Fatalf("like: n=%d err=%v", n, err)
	}
	if _, err := s.LikeReview(ctx, 12345); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("like missing: %v", err)
	}

	st, _ := s.ReviewStats(ctx, 1)
	if st.TotalReviews != 2 || st.AverageRating != 4 || st.ByStars[5] != 1 || st.ByStars[3] != 1 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestStore_BookingsAndPayments(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	t0 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_ = s.SaveBooking(ctx, domain.Booking{Ref: "BK100001", CreatedAt: t0, PaymentStatus: domain.PaymentIdle})
	_ = s.SaveBooking(ctx, domain.Booking{Ref: "BK100002", CreatedAt: t0.Add(time.Minute), PaymentStatus: domain.PaymentIdle})
	if err := s.SaveBooking(ctx, domain.Booking{Ref: "BK100001"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("duplicate ref: %v", err)
	}

	list, _ := s.ListBookings(ctx)
	if len(list) != 2 || list[0].Ref != "BK100002" {
		t.Fatalf("bookings newest first: %+v", list)
	}

	if err := s.SetPaymentStatus(ctx, "BK100001", domain.PaymentSuccess); err != nil {
		t.Fatalf("set status: %v", err)
	}
	b, _ := s.GetBooking(ctx, "BK100001")
	if b.PaymentStatus != domain.PaymentSuccess {
		t.Fatalf("payment status not stored: %+v", b)
	}
	if err := s.SetPaymentStatus(ctx, "BK999999", domain.PaymentSuccess); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing booking: %v", err)
	}

	_ = s.SavePayment(ctx, domain.Payment{TransactionID: "TXN-A", BookingRef: "BK100001"})
	_ = s.SavePayment(ctx, domain.Payment{TransactionID: "TXN-B"})
	ps, _ := s.ListPayments(ctx, "BK100001")
	if len(ps) != 1 || ps[0].TransactionID != "TXN-A" {
		t.Fatalf("payments by ref: %+v", ps)
	}
	ps, _ = s.ListPayments(ctx, "")
	if len(ps) != 2 {
		t.Fatalf("all payments: %+v", ps)
	}
}

func TestStore_CancelBooking(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_ = s.SaveBooking(ctx, domain.Booking{Ref: "BK100001", Status: domain.BookingStatusConfirmed, PaymentStatus: domain.PaymentIdle})
	_ = s.SaveBooking(ctx, domain.Booking{Ref: "BK100002", Status: domain.BookingStatusConfirmed, PaymentStatus: domain.PaymentSuccess})

	for i := 0; i < 2; i++ {
		b, err := s.CancelBooking(ctx, "BK100001")
		if err != nil || b.Status != domain.BookingStatusCancelled {
			t.Fatalf("cancel #%d: %+v, %v", i+1, b, err)
		}
	}
	if b, _ := s.GetBooking(ctx, "BK100001"); b.Status != domain.BookingStatusCancelled {
		t.Fatalf("status not stored: %+v", b)
	}

	if _, err := s.CancelBooking(ctx, "BK100002"); !errors.Is(err, domain.ErrAlreadyPaid) {
		t.Fatalf("paid booking: err = %v", err)
	}
	if b, _ := s.GetBooking(ctx, "BK100002"); b.Status != domain.BookingStatusConfirmed {
		t.Fatalf("paid booking changed: %+v", b)
	}
	if _, err := s.CancelBooking(ctx, "BK999999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
}
