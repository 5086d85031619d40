package domain

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	ErrMissingDates = errors.New("check-in and check-out dates are required")
	ErrInvalidDates = errors.New("check-out must be after check-in")
	ErrNotReady     = errors.New("select a hotel and check availability first")
	ErrBusy         = errors.New("another operation is still pending")
	ErrConfirmed    = errors.New("booking already confirmed; reset first")

	ErrEmptyComment         = errors.New("review comment is empty")
	ErrConfirmationRequired = errors.New("delete requires confirmation")

	ErrNotLoggedIn = errors.New("not logged in")
	ErrForbidden   = errors.New("forbidden")

	ErrPaymentDeclined  = errors.New("payment declined")
	ErrAlreadyPaid      = errors.New("payment already completed; reset first")
	ErrBookingCancelled = errors.New("booking was cancelled")
)
