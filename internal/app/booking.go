package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"luxestay/internal/adapters/observability"
	"luxestay/internal/domain"
)

// HotelLookup resolves a hotel by id. CatalogService implements it.
type HotelLookup interface {
	GetHotel(ctx context.Context, id int64) (domain.Hotel, error)
}

type BookingOptions struct {
	ProcessingDelay time.Duration // stand-in for the booking service call
	Now             func() time.Time
	Rand            func(n int) int // [0,n)

	// Hotels is consulted again at submit time; nil books the hotel as selected.
	Hotels HotelLookup
}

// BookingView is a consistent snapshot of the booking form.
type BookingView struct {
	State          domain.BookingState   `json:"state"`
	Hotel          *domain.Hotel         `json:"hotel,omitempty"`
	Request        domain.BookingRequest `json:"request"`
	AvailableRooms int                   `json:"available_rooms"`
	Nights         int                   `json:"nights"`
	Total          decimal.Decimal       `json:"total"`
	Booking        *domain.Booking       `json:"booking,omitempty"`
}

// BookingWorkflow sequences date entry, availability check and confirmation
// for one client. Calls that would start a second simulated request while one
// is pending fail with domain.ErrBusy.
type BookingWorkflow struct {
	avail    domain.AvailabilityChecker
	bookings domain.BookingRepository
	opts     BookingOptions

	mu          sync.Mutex
	state       domain.BookingState
	hotel       *domain.Hotel
	req         domain.BookingRequest
	available   int
	confirmed   *domain.Booking
	onConfirmed func(domain.Booking)
}

func NewBookingWorkflow(avail domain.AvailabilityChecker, bookings domain.BookingRepository, opts BookingOptions) *BookingWorkflow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.IntN
	}
	return &BookingWorkflow{
		avail:    avail,
		bookings: bookings,
		opts:     opts,
		state:    domain.BookingEnteringDates,
		req:      domain.BookingRequest{Guests: 1, RoomType: domain.RoomStandard},
	}
}

// OnConfirmed registers fn to run after a booking is confirmed.
func (w *BookingWorkflow) OnConfirmed(fn func(domain.Booking)) {
	w.mu.Lock()
	w.onConfirmed = fn
	w.mu.Unlock()
}

func (w *BookingWorkflow) State() domain.BookingState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *BookingWorkflow) Snapshot() BookingView {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := BookingView{
		State:          w.state,
		Request:        w.req,
		AvailableRooms: w.available,
		Nights:         w.req.Nights(),
		Total:          decimal.Zero,
	}
	if w.hotel != nil {
		h := *w.hotel
		v.Hotel = &h
		v.Total = w.req.Total(h.Price)
	}
	if w.confirmed != nil {
		b := *w.confirmed
		v.Booking = &b
	}
	return v
}

// must hold w.mu
func (w *BookingWorkflow) setState(to domain.BookingState) {
	from := w.state
	w.state = to
	observability.ObserveTransition("booking", string(from), string(to))
	log.Debug().Str("workflow", "booking").Str("from", string(from)).Str("to", string(to)).Msg("state change")
}

// must hold w.mu
func (w *BookingWorkflow) editable() error {
	switch {
	case w.state.Pending():
		return domain.ErrBusy
	case w.state == domain.BookingConfirmed:
		return domain.ErrConfirmed
	}
	return nil
}

// must hold w.mu
func (w *BookingWorkflow) discardAvailability() {
	w.available = 0
	if w.state != domain.BookingEnteringDates {
		w.setState(domain.BookingEnteringDates)
	}
}

func (w *BookingWorkflow) SelectHotel(h domain.Hotel) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if w.hotel == nil || w.hotel.ID != h.ID {
		w.discardAvailability()
	}
	w.hotel = &h
	return nil
}

// SetRequest replaces the form fields. New dates invalidate a known availability.
func (w *BookingWorkflow) SetRequest(req domain.BookingRequest) error {
	if req.Guests == 0 {
		req.Guests = 1
	}
	if req.RoomType == "" {
		req.RoomType = domain.RoomStandard
	}
	if req.Guests < 0 {
		return fmt.Errorf("%w: guests must be positive", domain.ErrValidation)
	}
	if !req.RoomType.Valid() {
		return fmt.Errorf("%w: unknown room type %q", domain.ErrValidation, req.RoomType)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if !req.CheckIn.Equal(w.req.CheckIn) || !req.CheckOut.Equal(w.req.CheckOut) {
		w.discardAvailability()
	}
	w.req = req
	return nil
}

// ---- availability ----

type checkCall struct {
	hotelID int64
	req     domain.BookingRequest
	prev    domain.BookingState
}

func (w *BookingWorkflow) beginCheck() (checkCall, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return checkCall{}, err
	}
	if !w.req.HasDates() {
		return checkCall{}, domain.ErrMissingDates
	}
	if !w.req.CheckOut.After(w.req.CheckIn) {
		return checkCall{}, domain.ErrInvalidDates
	}
	c := checkCall{req: w.req, prev: w.state}
	if w.hotel != nil {
		c.hotelID = w.hotel.ID
	}
	w.setState(domain.BookingCheckingAvailability)
	return c, nil
}

func (w *BookingWorkflow) finishCheck(ctx context.Context, c checkCall) (int, error) {
	n, err := w.avail.CheckAvailability(ctx, c.hotelID, c.req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.setState(c.prev)
		log.Warn().Err(err).Int64("hotel", c.hotelID).Msg("availability check failed")
		return 0, fmt.Errorf("check availability: %w", err)
	}
	if n < 0 {
		n = 0
	}
	w.available = n
	w.setState(domain.BookingAvailabilityKnown)
	return n, nil
}

// CheckAvailability asks the availability port for the current dates.
func (w *BookingWorkflow) CheckAvailability(ctx context.Context) (int, error) {
	c, err := w.beginCheck()
	if err != nil {
		return 0, err
	}
	return w.finishCheck(ctx, c)
}

// StartCheckAvailability is CheckAvailability as a Task. Guard errors are
// reported synchronously.
func (w *BookingWorkflow) StartCheckAvailability(ctx context.Context) (*Task[int], error) {
	c, err := w.beginCheck()
	if err != nil {
		return nil, err
	}
	return Go(ctx, func(ctx context.Context) (int, error) { return w.finishCheck(ctx, c) }), nil
}

// ---- submission ----

type submitCall struct {
	hotel domain.Hotel
	req   domain.BookingRequest
	prev  domain.BookingState
}

func (w *BookingWorkflow) beginSubmit() (submitCall, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return submitCall{}, err
	}
	if w.hotel == nil || w.available == 0 {
		return submitCall{}, domain.ErrNotReady
	}
	c := submitCall{hotel: *w.hotel, req: w.req, prev: w.state}
	w.setState(domain.BookingInProgress)
	return c, nil
}

// bookable re-reads the selected hotel. A hotel that was removed or
// deactivated since selection is domain.ErrNotFound.
func (w *BookingWorkflow) bookable(ctx context.Context, selected domain.Hotel) (domain.Hotel, error) {
	if w.opts.Hotels == nil {
		return selected, nil
	}
	h, err := w.opts.Hotels.GetHotel(ctx, selected.ID)
	if err == nil && h.Status != domain.HotelActive {
		err = domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %d: %w", selected.ID, err)
	}
	return h, nil
}

func (w *BookingWorkflow) finishSubmit(ctx context.Context, c submitCall) (domain.Booking, error) {
	hotel, err := w.bookable(ctx, c.hotel)
	if err != nil {
		w.mu.Lock()
		if errors.Is(err, domain.ErrNotFound) {
			w.hotel, w.available = nil, 0
			w.setState(domain.BookingEnteringDates)
		} else {
			w.setState(c.prev)
		}
		w.mu.Unlock()
		log.Warn().Err(err).Int64("hotel", c.hotel.ID).Msg("booking refused")
		return domain.Booking{}, fmt.Errorf("submit booking: %w", err)
	}

	b := domain.Booking{
		Ref:           fmt.Sprintf("BK%06d", 100000+w.opts.Rand(900000)),
		HotelID:       hotel.ID,
		HotelName:     hotel.Name,
		Request:       c.req,
		Nights:        c.req.Nights(),
		PricePerNight: hotel.Price,
		Total:         c.req.Total(hotel.Price),
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: domain.PaymentIdle,
		CreatedAt:     w.opts.Now().UTC(),
	}
	err = sleepCtx(ctx, w.opts.ProcessingDelay)
	if err == nil {
		err = w.bookings.SaveBooking(ctx, b)
	}

	w.mu.Lock()
	if err != nil {
		w.setState(c.prev)
		w.mu.Unlock()
		log.Warn().Err(err).Int64("hotel", hotel.ID).Msg("booking failed")
		return domain.Booking{}, fmt.Errorf("submit booking: %w", err)
	}
	w.hotel = &hotel
	w.confirmed = &b
	w.setState(domain.BookingConfirmed)
	cb := w.onConfirmed
	w.mu.Unlock()

	log.Info().Str("ref", b.Ref).Int64("hotel", b.HotelID).Int("nights", b.Nights).Str("total", b.Total.StringFixed(2)).Msg("booking confirmed")
	if cb != nil {
		cb(b)
	}
	return b, nil
}

// SubmitBooking confirms the stay. It needs a selected hotel and a non-zero
// availability; otherwise it fails with domain.ErrNotReady and changes nothing.
// If the hotel is gone or inactive by then, the selection is dropped and the
// error wraps domain.ErrNotFound.
func (w *BookingWorkflow) SubmitBooking(ctx context.Context) (domain.Booking, error) {
	c, err := w.beginSubmit()
	if err != nil {
		return domain.Booking{}, err
	}
	return w.finishSubmit(ctx, c)
}

func (w *BookingWorkflow) StartSubmitBooking(ctx context.Context) (*Task[domain.Booking], error) {
	c, err := w.beginSubmit()
	if err != nil {
		return nil, err
	}
	return Go(ctx, func(ctx context.Context) (domain.Booking, error) { return w.finishSubmit(ctx, c) }), nil
}

// Reset clears the form and the availability result. The selected hotel stays.
func (w *BookingWorkflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Pending() {
		return domain.ErrBusy
	}
	w.req = domain.BookingRequest{Guests: 1, RoomType: domain.RoomStandard}
	w.available = 0
	w.confirmed = nil
	if w.state != domain.BookingEnteringDates {
		w.setState(domain.BookingEnteringDates)
	}
	return nil
}
