package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"luxestay/internal/app"
	"luxestay/internal/domain"
)

type Handlers struct {
	Catalog  *app.CatalogService
	Admin    *app.AdminService
	Reviews  *app.ReviewService
	Sessions *app.Sessions
	Ledger   *app.LedgerService
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		// public reads
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/hotels/{id}/reviews/stats", h.reviewStats)
		r.Get("/reviews", h.listReviews)

		r.Post("/sessions", h.openSession)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.Sessions))

			r.Get("/session", h.getSession)
			r.Delete("/session", h.closeSession)
			r.Put("/session/tab", h.selectTab)

			r.Group(func(r chi.Router) {
				r.Use(RequireGuest)

				r.Post("/reviews", h.submitReview)
				r.Post("/reviews/{id}/like", h.likeReview)

				r.Get("/booking", h.getBooking)
				r.Put("/booking/hotel", h.selectHotel)
				r.Put("/booking/request", h.setBookingRequest)
				r.Post("/booking/availability", h.checkAvailability)
				r.Post("/booking/submit", h.submitBooking)
				r.Delete("/booking/pending", h.cancelBooking)
				r.Post("/booking/reset", h.resetBooking)

				r.Get("/payment", h.getPayment)
				r.Put("/payment/details", h.setPaymentDetails)
				r.Post("/payment/submit", h.submitPayment)
				r.Delete("/payment/pending", h.cancelPayment)
				r.Post("/payment/reset", h.resetPayment)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/hotels", h.adminListHotels)
				r.Post("/hotels", h.adminCreateHotel)
				r.Put("/hotels/{id}", h.adminUpdateHotel)
				r.Delete("/hotels/{id}", h.adminDeleteHotel)
				r.Get("/bookings", h.adminListBookings)
				r.Get("/bookings/{ref}", h.adminGetBooking)
				r.Delete("/bookings/{ref}", h.adminCancelBooking)
				r.Get("/bookings/{ref}/invoice", h.adminInvoice)
				r.Get("/payments", h.adminListPayments)
			})
		})
	})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", name+" must be a positive number")
		return 0, false
	}
	return id, true
}

// ---- catalog ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q := domain.HotelsQuery{
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Location: strings.TrimSpace(r.URL.Query().Get("location")),
	}
	out, err := h.Catalog.ListHotels(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeETagged(w, r, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	hotel, err := h.Catalog.GetHotel(r.Context(), id)
	if err == nil && hotel.Status != domain.HotelActive {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeETagged(w, r, hotel)
}

// ---- reviews ----

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	var q domain.ReviewsQuery
	if hs := r.URL.Query().Get("hotel_id"); hs != "" {
		id, err := strconv.ParseInt(hs, 10, 64)
		if err != nil || id <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid hotel_id", "hotel_id must be a positive number")
			return
		}
		q.HotelID = &id
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		q.Limit = l
	}
	out, err := h.Reviews.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeETagged(w, r, out)
}

func (h *Handlers) reviewStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.Catalog.GetHotel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	st, err := h.Reviews.Stats(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeETagged(w, r, st)
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rv, err := h.Reviews.Submit(r.Context(), req.toApp())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) likeReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.Reviews.Like(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{ID: id, Likes: n})
}
