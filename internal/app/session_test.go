package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"luxestay/internal/app"
	"luxestay/internal/domain"
	"luxestay/internal/storage/memory"
)

func TestAppState_GuestTabs(t *testing.T) {
	a := app.NewAppState()
	if s := a.Snapshot(); s.LoggedIn || s.ActiveTab != domain.TabLogin {
		t.Fatalf("initial: %+v", s)
	}
	if err := a.Select(domain.TabHotels); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("logged out: err = %v", err)
	}

	a.Login(false)
	if s := a.Snapshot(); !s.LoggedIn || s.Admin || s.ActiveTab != domain.TabHotels {
		t.Fatalf("after login: %+v", s)
	}
	for _, tab := range []domain.Tab{domain.TabBooking, domain.TabReviews, domain.TabPayment, domain.TabHotels} {
		if err := a.Select(tab); err != nil {
			t.Fatalf("select %s: %v", tab, err)
		}
		if a.Snapshot().ActiveTab != tab {
			t.Fatalf("active = %s, want %s", a.Snapshot().ActiveTab, tab)
		}
	}
	if err := a.Select(domain.TabAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin tab: err = %v", err)
	}
	if err := a.Select(domain.TabLogin); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("login tab: err = %v", err)
	}
	if err := a.Select("spa"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown tab: err = %v", err)
	}
	if err := a.RequireAdmin(); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("require admin: err = %v", err)
	}

	a.Logout()
	if s := a.Snapshot(); s.LoggedIn || s.ActiveTab != domain.TabLogin {
		t.Fatalf("after logout: %+v", s)
	}
}

func TestAppState_AdminOnlySeesAdmin(t *testing.T) {
	a := app.NewAppState()
	a.Login(true)
	if s := a.Snapshot(); !s.Admin || s.ActiveTab != domain.TabAdmin {
		t.Fatalf("after login: %+v", s)
	}
	if err := a.Select(domain.TabHotels); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("hotels tab: err = %v", err)
	}
	if err := a.RequireAdmin(); err != nil {
		t.Fatalf("require admin: %v", err)
	}
}

type sessionRig struct {
	sessions *app.Sessions
	store    *memory.Store
	clk      *clock
	avail    domain.AvailabilityChecker
}

func newSessionRig(ttl time.Duration, avail domain.AvailabilityChecker) *sessionRig {
	r := &sessionRig{store: memory.Seeded(), clk: newClock(), avail: avail}
	r.sessions = app.NewSessions(ttl,
		func() *app.BookingWorkflow {
			return app.NewBookingWorkflow(r.avail, r.store, app.BookingOptions{Now: r.clk.Now, Rand: func(int) int { return 1 }})
		},
		func() *app.PaymentWorkflow {
			return app.NewPaymentWorkflow(&fakeGateway{}, r.store, r.store, app.PaymentOptions{TaxRate: tenPercent, Now: r.clk.Now})
		},
		r.clk.Now,
	)
	return r
}

func TestSessions_OpenGetClose(t *testing.T) {
	r := newSessionRig(0, &fixedAvail{n: 1})
	s := r.sessions.Open(false)
	if s.ID == "" || s.State.Snapshot().ActiveTab != domain.TabHotels {
		t.Fatalf("open: %+v", s.State.Snapshot())
	}
	other := r.sessions.Open(true)
	if other.ID == s.ID || other.Booking == s.Booking {
		t.Fatalf("sessions share state")
	}

	got, err := r.sessions.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("get: %v", err)
	}
	if err := r.sessions.Close(s.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.State.Snapshot().LoggedIn {
		t.Fatalf("closed session still logged in")
	}
	if _, err := r.sessions.Get(s.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after close: err = %v", err)
	}
	if err := r.sessions.Close(s.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("double close: err = %v", err)
	}
	if r.sessions.Len() != 1 {
		t.Fatalf("len = %d", r.sessions.Len())
	}
}

func TestSessions_ConfirmedBookingReachesPayment(t *testing.T) {
	r := newSessionRig(0, &fixedAvail{n: 2})
	s := r.sessions.Open(false)
	ctx := context.Background()

	_ = s.Booking.SelectHotel(grandPalace)
	_ = s.Booking.SetRequest(fourNights())
	if _, err := s.Booking.CheckAvailability(ctx); err != nil {
		t.Fatalf("check: %v", err)
	}
	b, err := s.Booking.SubmitBooking(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	sum := s.Payment.Snapshot().Summary
	if sum.BookingRef != b.Ref || sum.HotelName != "Grand Palace Hotel" || sum.Nights != 4 {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestSessions_SweepDropsIdle(t *testing.T) {
	r := newSessionRig(10*time.Minute, &fixedAvail{n: 1})
	idle := r.sessions.Open(false)
	r.clk.Advance(6 * time.Minute)
	fresh := r.sessions.Open(false)
	r.clk.Advance(5 * time.Minute)

	if n := r.sessions.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, err := r.sessions.Get(idle.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("idle session kept: %v", err)
	}
	if _, err := r.sessions.Get(fresh.ID); err != nil {
		t.Fatalf("fresh session dropped: %v", err)
	}
}

func TestSessions_SweepSkipsBusy(t *testing.T) {
	avail := newBlockingAvail(1)
	r := newSessionRig(time.Minute, avail)
	s := r.sessions.Open(false)
	_ = s.Booking.SelectHotel(grandPalace)
	_ = s.Booking.SetRequest(fourNights())

	ctx, stop := app.Detached(context.Background())
	task, err := s.Booking.StartCheckAvailability(ctx)
	if err != nil {
		stop()
		t.Fatalf("start: %v", err)
	}
	s.Track("availability", stop, task.Done())
	<-avail.entered
	r.clk.Advance(time.Hour)
	if n := r.sessions.Sweep(); n != 0 {
		t.Fatalf("swept a busy session")
	}

	if !s.CancelPending("availability") {
		t.Fatalf("nothing pending")
	}
	ctx, cancel := waitCtx()
	defer cancel()
	if _, err := task.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("wait: err = %v", err)
	}
	if s.CancelPending("availability") || s.Tracking("availability") {
		t.Fatalf("cancelled twice")
	}
	if n := r.sessions.Sweep(); n != 1 {
		t.Fatalf("swept %d after cancel, want 1", n)
	}
}

func TestSessions_NoTTLKeepsEverything(t *testing.T) {
	r := newSessionRig(0, &fixedAvail{})
	r.sessions.Open(false)
	r.clk.Advance(24 * time.Hour)
	if n := r.sessions.Sweep(); n != 0 || r.sessions.Len() != 1 {
		t.Fatalf("swept %d", n)
	}
}

func TestSession_FinishedStepIsForgotten(t *testing.T) {
	r := newSessionRig(0, &fixedAvail{n: 1})
	s := r.sessions.Open(false)

	ctx, stop := app.Detached(context.Background())
	done := make(chan struct{})
	s.Track("booking", stop, done)
	if !s.Tracking("booking") {
		t.Fatalf("step not tracked")
	}
	close(done)
	<-ctx.Done()
	if s.Tracking("booking") {
		t.Fatalf("finished step still tracked")
	}
	if s.CancelPending("booking") {
		t.Fatalf("cancelled a finished step")
	}
}

func TestSession_LaterStepSurvivesEarlierFinish(t *testing.T) {
	r := newSessionRig(0, &fixedAvail{n: 1})
	s := r.sessions.Open(false)

	first, stopFirst := app.Detached(context.Background())
	firstDone := make(chan struct{})
	s.Track("booking", stopFirst, firstDone)

	second, stopSecond := app.Detached(context.Background())
	s.Track("booking", stopSecond, make(chan struct{}))
	if first.Err() != nil {
		t.Fatalf("tracking a new step cancelled the old one")
	}

	close(firstDone)
	<-first.Done()
	if !s.Tracking("booking") {
		t.Fatalf("later step was forgotten")
	}
	if !s.CancelPending("booking") {
		t.Fatalf("nothing to cancel")
	}
	if !errors.Is(second.Err(), context.Canceled) {
		t.Fatalf("second step err = %v", second.Err())
	}
}
