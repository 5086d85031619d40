package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"luxestay/internal/domain"
)

// AppState owns the logged-in flag, the admin flag and the active tab.
type AppState struct {
	mu sync.Mutex
	s  domain.AppState
}

func NewAppState() *AppState {
	return &AppState{s: domain.AppState{ActiveTab: domain.TabLogin}}
}

func (a *AppState) Snapshot() domain.AppState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.s
}

// Login switches to the first screen for the role. Credentials are not checked.
func (a *AppState) Login(admin bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s = domain.AppState{LoggedIn: true, Admin: admin, ActiveTab: domain.TabHotels}
	if admin {
		a.s.ActiveTab = domain.TabAdmin
	}
}

func (a *AppState) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s = domain.AppState{ActiveTab: domain.TabLogin}
}

// Select makes tab the visible workflow. Admins only have the admin screen.
func (a *AppState) Select(tab domain.Tab) error {
	if !tab.Valid() || tab == domain.TabLogin {
		return fmt.Errorf("%w: unknown tab %q", domain.ErrValidation, tab)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.s.LoggedIn {
		return domain.ErrNotLoggedIn
	}
	if a.s.Admin != (tab == domain.TabAdmin) {
		return domain.ErrForbidden
	}
	a.s.ActiveTab = tab
	return nil
}

// RequireAdmin is the gate in front of the admin workflow.
func (a *AppState) RequireAdmin() error {
	s := a.Snapshot()
	switch {
	case !s.LoggedIn:
		return domain.ErrNotLoggedIn
	case !s.Admin:
		return domain.ErrForbidden
	}
	return nil
}

// Session is one client's state: its screen plus its own booking and payment
// workflows.
type Session struct {
	ID        string
	State     *AppState
	Booking   *BookingWorkflow
	Payment   *PaymentWorkflow
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	pending  map[string]*pendingStep
}

// pendingStep is one detached call; its address identifies it in Session.pending.
type pendingStep struct{ cancel context.CancelFunc }

// Detached returns a context for a step that keeps running after the request
// that started it returns. Nothing is registered until Track is called.
func Detached(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(context.WithoutCancel(parent))
}

// Track makes a started step cancellable through CancelPending(kind). The
// entry is dropped once done closes, unless a later step replaced it.
func (s *Session) Track(kind string, cancel context.CancelFunc, done <-chan struct{}) {
	p := &pendingStep{cancel: cancel}
	s.mu.Lock()
	s.pending[kind] = p
	s.mu.Unlock()
	go func() {
		<-done
		s.mu.Lock()
		if s.pending[kind] == p {
			delete(s.pending, kind)
		}
		s.mu.Unlock()
		cancel()
	}()
}

// Tracking reports whether a detached step of the given kind is still running.
func (s *Session) Tracking(kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[kind]
	return ok
}

// CancelPending cancels the detached step of the given kind, if any.
func (s *Session) CancelPending(kind string) bool {
	s.mu.Lock()
	p, ok := s.pending[kind]
	delete(s.pending, kind)
	s.mu.Unlock()
	if ok {
		p.cancel()
	}
	return ok
}

func (s *Session) cancelAll() {
	s.mu.Lock()
	for k, p := range s.pending {
		p.cancel()
		delete(s.pending, k)
	}
	s.mu.Unlock()
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) busy() bool {
	return s.Booking.State().Pending() || s.Payment.Status() == domain.PaymentProcessing
}

type Sessions struct {
	ttl        time.Duration
	now        func() time.Time
	newBooking func() *BookingWorkflow
	newPayment func() *PaymentWorkflow

	mu sync.RWMutex
	m  map[string]*Session
}

// NewSessions keeps sessions until they are closed or idle for ttl (0 keeps them forever).
func NewSessions(ttl time.Duration, newBooking func() *BookingWorkflow, newPayment func() *PaymentWorkflow, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{ttl: ttl, now: now, newBooking: newBooking, newPayment: newPayment, m: map[string]*Session{}}
}

// Open starts a logged-in session. A confirmed booking is handed to the
// session's payment workflow.
func (r *Sessions) Open(admin bool) *Session {
	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		State:     NewAppState(),
		Booking:   r.newBooking(),
		Payment:   r.newPayment(),
		CreatedAt: now,
		lastSeen:  now,
		pending:   map[string]*pendingStep{},
	}
	s.State.Login(admin)
	pay := s.Payment
	s.Booking.OnConfirmed(func(b domain.Booking) {
		if err := pay.AttachBooking(b); err != nil {
			log.Warn().Err(err).Str("ref", b.Ref).Msg("attach booking to payment failed")
		}
	})

	r.mu.Lock()
	r.m[s.ID] = s
	r.mu.Unlock()
	log.Info().Str("session", s.ID).Bool("admin", admin).Msg("session opened")
	return s
}

func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.m[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	s.touch(r.now())
	return s, nil
}

// Close logs the session out and forgets it.
func (r *Sessions) Close(id string) error {
	r.mu.Lock()
	s, ok := r.m[id]
	delete(r.m, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	s.cancelAll()
	s.State.Logout()
	log.Info().Str("session", id).Msg("session closed")
	return nil
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Sweep drops sessions idle for longer than the ttl, skipping those with a
// call in flight. It returns how many were dropped.
func (r *Sessions) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.m {
		if s.idleSince().Before(cutoff) && !s.busy() {
			delete(r.m, id)
			n++
		}
	}
	if n > 0 {
		log.Info().Int("dropped", n).Int("remaining", len(r.m)).Msg("idle sessions swept")
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Sessions) Run(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Sweep()
		}
	}
}
