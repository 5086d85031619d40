package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"luxestay/internal/domain"
)

func (h *Handlers) adminListHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Admin.ListHotels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) adminCreateHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hotel, err := h.Admin.Create(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/hotels/"+strconv.FormatInt(hotel.ID, 10))
	writeJSON(w, http.StatusCreated, hotel)
}

func (h *Handlers) adminUpdateHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req hotelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hotel, err := h.Admin.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

// adminDeleteHotel needs ?confirm=true; the confirmation sees the hotel that
// is about to go.
func (h *Handlers) adminDeleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	err := h.Admin.Delete(r.Context(), id, func(domain.Hotel) bool { return confirmed })
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) adminListBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Ledger.Bookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) adminGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Ledger.Booking(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// adminCancelBooking marks the booking cancelled; paid bookings answer 409.
func (h *Handlers) adminCancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Ledger.Cancel(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) adminInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Ledger.Invoice(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handlers) adminListPayments(w http.ResponseWriter, r *http.Request) {
	out, err := h.Ledger.Payments(r.Context(), r.URL.Query().Get("booking_ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
