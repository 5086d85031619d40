// Package memory keeps every repository in process memory. It backs the
// default STORE=memory mode and the tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"luxestay/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	hotels   map[int64]domain.Hotel
	reviews  []domain.Review // newest first
	bookings map[string]domain.Booking
	payments []domain.Payment
}

func New() *Store {
	return &Store{
		hotels:   map[int64]domain.Hotel{},
		bookings: map[string]domain.Booking{},
	}
}

// Seeded returns a store holding the demo catalog and reviews.
func Seeded() *Store {
	s := New()
	for _, h := range SeedHotels() {
		s.hotels[h.ID] = h
	}
	s.reviews = SeedReviews()
	return s
}

func cloneHotel(h domain.Hotel) domain.Hotel {
	h.Amenities = append([]string(nil), h.Amenities...)
	return h
}

// ---- hotels ----

func (s *Store) CreateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; ok {
		return fmt.Errorf("%w: hotel %d already exists", domain.ErrValidation, h.ID)
	}
	s.hotels[h.ID] = cloneHotel(h)
	return nil
}

func (s *Store) UpdateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	s.hotels[h.ID] = cloneHotel(h)
	return nil
}

func (s *Store) UpsertHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	s.hotels[h.ID] = cloneHotel(h)
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteHotel(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.hotels, id)
	return nil
}

func (s *Store) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return cloneHotel(h), nil
}

// ListHotels returns matches ordered by id, which is creation order.
func (s *Store) ListHotels(_ context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	s.mu.RLock()
	out := make([]domain.Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		if q.Match(h) {
			out = append(out, cloneHotel(h))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- reviews ----

func (s *Store) AddReview(_ context.Context, r domain.Review) error {
	s.mu.Lock()
	s.reviews = append([]domain.Review{r}, s.reviews...)
	s.mu.Unlock()
	return nil
}

// UpsertReview replaces a review with the same id or files it by date, newest first.
func (s *Store) UpsertReview(_ context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == r.ID {
			r.Likes = max(r.Likes, s.reviews[i].Likes)
			s.reviews[i] = r
			return nil
		}
	}
	i := sort.Search(len(s.reviews), func(i int) bool {
		o := s.reviews[i]
		return o.Date < r.Date || (o.Date == r.Date && o.ID < r.ID)
	})
	s.reviews = append(s.reviews, domain.Review{})
	copy(s.reviews[i+1:], s.reviews[i:])
	s.reviews[i] = r
	return nil
}

func (s *Store) LikeReview(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			s.reviews[i].Likes++
			return s.reviews[i].Likes, nil
		}
	}
	return 0, domain.ErrNotFound
}

func (s *Store) GetReview(_ context.Context, id int64) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Review{}, domain.ErrNotFound
}

func (s *Store) ListReviews(_ context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if q.HotelID != nil && r.HotelID != *q.HotelID {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ReviewStats(_ context.Context, hotelID int64) (domain.ReviewStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := domain.ReviewStats{HotelID: hotelID, ByStars: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, r := range s.reviews {
		if r.HotelID != hotelID {
			continue
		}
		st.TotalReviews++
		st.ByStars[r.Rating]++
		sum += r.Rating
	}
	st.AverageRating = domain.AverageRating(sum, st.TotalReviews)
	return st, nil
}

// ---- bookings ----

func (s *Store) SaveBooking(_ context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.Ref]; ok {
		return fmt.Errorf("%w: booking %s already exists", domain.ErrValidation, b.Ref)
	}
	s.bookings[b.Ref] = b
	return nil
}

func (s *Store) GetBooking(_ context.Context, ref string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[ref]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

// ListBookings returns newest first.
func (s *Store) ListBookings(_ context.Context) ([]domain.Booking, error) {
	s.mu.RLock()
	out := make([]domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Ref > out[j].Ref
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) SetPaymentStatus(_ context.Context, ref string, st domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[ref]
	if !ok {
		return domain.ErrNotFound
	}
	b.PaymentStatus = st
	s.bookings[ref] = b
	return nil
}

// CancelBooking marks an unpaid booking cancelled. Cancelling twice is a no-op.
func (s *Store) CancelBooking(_ context.Context, ref string) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[ref]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	if b.PaymentStatus == domain.PaymentSuccess {
		return b, fmt.Errorf("booking %s: %w", ref, domain.ErrAlreadyPaid)
	}
	b.Status = domain.BookingStatusCancelled
	s.bookings[ref] = b
	return b, nil
}

// ---- payments ----

func (s *Store) SavePayment(_ context.Context, p domain.Payment) error {
	s.mu.Lock()
	s.payments = append(s.payments, p)
	s.mu.Unlock()
	return nil
}

// ListPayments filters by booking ref; an empty ref returns all of them.
func (s *Store) ListPayments(_ context.Context, bookingRef string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Payment
	for _, p := range s.payments {
		if bookingRef == "" || p.BookingRef == bookingRef {
			out = append(out, p)
		}
	}
	return out, nil
}
