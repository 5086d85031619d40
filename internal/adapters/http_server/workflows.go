package httpserver

import (
	"context"
	"net/http"

	"luxestay/internal/app"
	"luxestay/internal/domain"
)

// Steps started with ?async=true keep running after the response and are
// cancelled through the matching DELETE .../pending route.
const (
	pendingBooking = "booking"
	pendingPayment = "payment"
)

func async(r *http.Request) bool {
	v := r.URL.Query().Get("async")
	return v == "1" || v == "true"
}

func session(r *http.Request) *app.Session { return SessionFromContext(r.Context()) }

// startDetached runs start under a context that outlives r. The step becomes
// cancellable under kind only after start got past the workflow's guards.
func startDetached[T any](r *http.Request, kind string, start func(context.Context) (*app.Task[T], error)) error {
	ctx, cancel := app.Detached(r.Context())
	task, err := start(ctx)
	if err != nil {
		cancel()
		return err
	}
	session(r).Track(kind, cancel, task.Done())
	return nil
}

// ---- sessions ----

func (h *Handlers) openSession(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	s := h.Sessions.Open(req.Admin)
	w.Header().Set(SessionHeader, s.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, State: s.State.Snapshot()})
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, State: s.State.Snapshot()})
}

func (h *Handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Close(session(r).ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) selectTab(w http.ResponseWriter, r *http.Request) {
	var req selectTabRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s := session(r)
	if err := s.State.Select(domain.Tab(req.Tab)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, State: s.State.Snapshot()})
}

// ---- booking ----

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).Booking.Snapshot())
}

func (h *Handlers) selectHotel(w http.ResponseWriter, r *http.Request) {
	var req selectHotelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hotel, err := h.Catalog.GetHotel(r.Context(), req.HotelID)
	if err == nil && hotel.Status != domain.HotelActive {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeError(w, err)
		return
	}
	wf := session(r).Booking
	if err := wf.SelectHotel(hotel); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (h *Handlers) setBookingRequest(w http.ResponseWriter, r *http.Request) {
	var req bookingRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	wf := session(r).Booking
	if err := wf.SetRequest(req.toDomain()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	if async(r) {
		if err := startDetached(r, pendingBooking, s.Booking.StartCheckAvailability); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, s.Booking.Snapshot())
		return
	}
	if _, err := s.Booking.CheckAvailability(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Booking.Snapshot())
}

func (h *Handlers) submitBooking(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	if async(r) {
		if err := startDetached(r, pendingBooking, s.Booking.StartSubmitBooking); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, s.Booking.Snapshot())
		return
	}
	if _, err := s.Booking.SubmitBooking(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Booking.Snapshot())
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	if !s.Booking.State().Pending() || !s.CancelPending(pendingBooking) {
		writeProblem(w, http.StatusConflict, "Nothing Pending", "no booking step in progress")
		return
	}
	writeJSON(w, http.StatusAccepted, s.Booking.Snapshot())
}

func (h *Handlers) resetBooking(w http.ResponseWriter, r *http.Request) {
	wf := session(r).Booking
	if err := wf.Reset(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

// ---- payment ----

func (h *Handlers) getPayment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).Payment.Snapshot())
}

func (h *Handlers) setPaymentDetails(w http.ResponseWriter, r *http.Request) {
	var req paymentDetailsDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	wf := session(r).Payment
	if err := wf.SetDetails(req.toDomain()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (h *Handlers) submitPayment(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	if async(r) {
		if err := startDetached(r, pendingPayment, s.Payment.StartSubmitPayment); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, s.Payment.Snapshot())
		return
	}
	if _, err := s.Payment.SubmitPayment(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Payment.Snapshot())
}

func (h *Handlers) cancelPayment(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	if s.Payment.Status() != domain.PaymentProcessing || !s.CancelPending(pendingPayment) {
		writeProblem(w, http.StatusConflict, "Nothing Pending", "no payment in progress")
		return
	}
	writeJSON(w, http.StatusAccepted, s.Payment.Snapshot())
}

func (h *Handlers) resetPayment(w http.ResponseWriter, r *http.Request) {
	wf := session(r).Payment
	if err := wf.Reset(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}
