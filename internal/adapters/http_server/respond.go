package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"luxestay/internal/domain"
)

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// errorStatus maps domain errors to a status and a problem title.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyComment):
		return http.StatusUnprocessableEntity, "Validation Failed"
	case errors.Is(err, domain.ErrMissingDates):
		return http.StatusUnprocessableEntity, "Missing Dates"
	case errors.Is(err, domain.ErrInvalidDates):
		return http.StatusUnprocessableEntity, "Invalid Dates"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "Request In Progress"
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusConflict, "Not Ready"
	case errors.Is(err, domain.ErrConfirmed):
		return http.StatusConflict, "Already Confirmed"
	case errors.Is(err, domain.ErrAlreadyPaid):
		return http.StatusConflict, "Already Paid"
	case errors.Is(err, domain.ErrBookingCancelled):
		return http.StatusConflict, "Booking Cancelled"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusPreconditionRequired, "Confirmation Required"
	case errors.Is(err, domain.ErrNotLoggedIn):
		return http.StatusUnauthorized, "Not Logged In"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired, "Payment Declined"
	case errors.Is(err, context.Canceled):
		return http.StatusConflict, "Cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Timed Out"
	}
	return http.StatusInternalServerError, "Internal Error"
}

func writeError(w http.ResponseWriter, err error) {
	status, title := errorStatus(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		detail = "" // don't leak internals
	}
	writeProblem(w, status, title, detail)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeETagged answers 304 when the client already holds this version.
func writeETagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a bounded body into dst and validates its tags.
// Problems are written to w; the caller only checks ok.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Validation Failed", validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
