package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"luxestay/internal/adapters/observability"
	"luxestay/internal/domain"
)

type PaymentOptions struct {
	ProcessingDelay time.Duration // stand-in for the gateway round trip
	TaxRate         decimal.Decimal
	Currency        string
	Now             func() time.Time
}

// MockSummary is what the payment screen shows when no booking was made in
// the same session.
func MockSummary(taxRate decimal.Decimal) domain.PaymentSummary {
	return summarize(domain.PaymentSummary{
		HotelName:     "Grand Palace Hotel",
		CheckIn:       "2024-02-01",
		CheckOut:      "2024-02-05",
		Nights:        4,
		PricePerNight: decimal.NewFromInt(299),
	}, taxRate)
}

func summarize(s domain.PaymentSummary, taxRate decimal.Decimal) domain.PaymentSummary {
	s.Subtotal = s.PricePerNight.Mul(decimal.NewFromInt(int64(s.Nights)))
	s.Taxes = s.Subtotal.Mul(taxRate).Round(2)
	s.GrandTotal = s.Subtotal.Add(s.Taxes)
	return s
}

func summaryFor(b domain.Booking, taxRate decimal.Decimal) domain.PaymentSummary {
	return summarize(domain.PaymentSummary{
		BookingRef:    b.Ref,
		HotelName:     b.HotelName,
		CheckIn:       b.Request.CheckIn.Format(domain.DateLayout),
		CheckOut:      b.Request.CheckOut.Format(domain.DateLayout),
		Nights:        b.Nights,
		PricePerNight: b.PricePerNight,
	}, taxRate)
}

type PaymentView struct {
	Status  domain.PaymentStatus  `json:"status"`
	Details domain.PaymentDetails `json:"details"`
	Summary domain.PaymentSummary `json:"summary"`
	Payment *domain.Payment       `json:"payment,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// PaymentWorkflow collects card details and submits them once.
type PaymentWorkflow struct {
	gateway  domain.PaymentGateway
	payments domain.PaymentRepository
	bookings domain.BookingRepository
	opts     PaymentOptions

	mu      sync.Mutex
	status  domain.PaymentStatus
	details domain.PaymentDetails
	booking *domain.Booking
	last    *domain.Payment
	lastErr error
}

func NewPaymentWorkflow(g domain.PaymentGateway, payments domain.PaymentRepository, bookings domain.BookingRepository, opts PaymentOptions) *PaymentWorkflow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	return &PaymentWorkflow{
		gateway:  g,
		payments: payments,
		bookings: bookings,
		opts:     opts,
		status:   domain.PaymentIdle,
		details:  domain.PaymentDetails{Method: domain.MethodCredit},
	}
}

func (w *PaymentWorkflow) Status() domain.PaymentStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// must hold w.mu
func (w *PaymentWorkflow) summary() domain.PaymentSummary {
	if w.booking != nil {
		return summaryFor(*w.booking, w.opts.TaxRate)
	}
	return MockSummary(w.opts.TaxRate)
}

func (w *PaymentWorkflow) Snapshot() PaymentView {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := PaymentView{Status: w.status, Details: w.details, Summary: w.summary()}
	if w.last != nil {
		p := *w.last
		v.Payment = &p
	}
	if w.lastErr != nil {
		v.Error = w.lastErr.Error()
	}
	return v
}

// must hold w.mu
func (w *PaymentWorkflow) setStatus(to domain.PaymentStatus) {
	from := w.status
	w.status = to
	observability.ObserveTransition("payment", string(from), string(to))
	log.Debug().Str("workflow", "payment").Str("from", string(from)).Str("to", string(to)).Msg("state change")
}

// must hold w.mu
func (w *PaymentWorkflow) editable() error {
	switch w.status {
	case domain.PaymentProcessing:
		return domain.ErrBusy
	case domain.PaymentSuccess:
		return domain.ErrAlreadyPaid
	}
	return nil
}

// AttachBooking makes b the thing being paid for and starts a fresh payment.
func (w *PaymentWorkflow) AttachBooking(b domain.Booking) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == domain.PaymentProcessing {
		return domain.ErrBusy
	}
	w.booking = &b
	w.last, w.lastErr = nil, nil
	if w.status != domain.PaymentIdle {
		w.setStatus(domain.PaymentIdle)
	}
	return nil
}

// SetDetails stores the form, reformatting card number, expiry and CVV the
// way the input masks do.
func (w *PaymentWorkflow) SetDetails(d domain.PaymentDetails) error {
	if d.Method == "" {
		d.Method = domain.MethodCredit
	}
	if d.Method != domain.MethodCredit && d.Method != domain.MethodDebit {
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, d.Method)
	}
	d.CardNumber = FormatCardNumber(d.CardNumber)
	d.Expiry = FormatExpiry(d.Expiry)
	d.CVV = FormatCVV(d.CVV)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	w.details = d
	if w.status == domain.PaymentError {
		w.lastErr = nil
		w.setStatus(domain.PaymentIdle)
	}
	return nil
}

func validateDetails(d domain.PaymentDetails) error {
	var problems []string
	if strings.TrimSpace(d.CardholderName) == "" {
		problems = append(problems, "cardholder name is required")
	}
	if len(digitsOnly(d.CardNumber, cardDigits+1)) != cardDigits {
		problems = append(problems, "card number must have 16 digits")
	}
	if !validExpiry(d.Expiry) {
		problems = append(problems, "expiry must be MM/YY")
	}
	if n := len(d.CVV); n < 3 || n > cvvDigits {
		problems = append(problems, "cvv must have 3 or 4 digits")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func validExpiry(s string) bool {
	if len(s) != 5 || s[2] != '/' {
		return false
	}
	m, err := strconv.Atoi(s[:2])
	if err != nil || m < 1 || m > 12 {
		return false
	}
	_, err = strconv.Atoi(s[3:])
	return err == nil
}

type payCall struct {
	details domain.PaymentDetails
	summary domain.PaymentSummary
	prev    domain.PaymentStatus
	prevErr error
}

func (w *PaymentWorkflow) beginSubmit() (payCall, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return payCall{}, err
	}
	c := payCall{details: w.details, summary: w.summary(), prev: w.status, prevErr: w.lastErr}
	w.lastErr = nil
	w.setStatus(domain.PaymentProcessing)
	return c, nil
}

func (w *PaymentWorkflow) fail(err error) error {
	w.mu.Lock()
	w.lastErr = err
	w.setStatus(domain.PaymentError)
	w.mu.Unlock()
	observability.ObservePayment("error")
	log.Warn().Err(err).Msg("payment failed")
	return err
}

// payable refuses a booking that was cancelled after it was attached.
func (w *PaymentWorkflow) payable(ctx context.Context, ref string) error {
	if ref == "" || w.bookings == nil {
		return nil
	}
	b, err := w.bookings.GetBooking(ctx, ref)
	if err != nil {
		return fmt.Errorf("booking %s: %w", ref, err)
	}
	if b.Status == domain.BookingStatusCancelled {
		return fmt.Errorf("booking %s: %w", ref, domain.ErrBookingCancelled)
	}
	return nil
}

func (w *PaymentWorkflow) finishSubmit(ctx context.Context, c payCall) (domain.Payment, error) {
	if err := validateDetails(c.details); err != nil {
		return domain.Payment{}, w.fail(err)
	}
	if err := w.payable(ctx, c.summary.BookingRef); err != nil {
		return domain.Payment{}, w.fail(err)
	}

	digits := digitsOnly(c.details.CardNumber, cardDigits)
	res, err := func() (domain.ChargeResult, error) {
		if err := sleepCtx(ctx, w.opts.ProcessingDelay); err != nil {
			return domain.ChargeResult{}, err
		}
		return w.gateway.Charge(ctx, domain.Charge{
			Amount:     c.summary.GrandTotal,
			Currency:   w.opts.Currency,
			Method:     c.details.Method,
			CardDigits: digits,
			Expiry:     c.details.Expiry,
			CVV:        c.details.CVV,
			Cardholder: c.details.CardholderName,
		})
	}()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// the caller went away; the payment never happened
			w.mu.Lock()
			w.lastErr = c.prevErr
			w.setStatus(c.prev)
			w.mu.Unlock()
			return domain.Payment{}, err
		}
		return domain.Payment{}, w.fail(err)
	}

	p := domain.Payment{
		TransactionID: res.TransactionID,
		BookingRef:    c.summary.BookingRef,
		Amount:        c.summary.GrandTotal,
		Currency:      w.opts.Currency,
		Method:        c.details.Method,
		CardLastFour:  digits[len(digits)-4:],
		Status:        domain.PaymentSuccess,
		CreatedAt:     w.opts.Now().UTC(),
	}
	if err := w.payments.SavePayment(ctx, p); err != nil {
		return domain.Payment{}, w.fail(fmt.Errorf("record payment: %w", err))
	}
	if p.BookingRef != "" && w.bookings != nil {
		if err := w.bookings.SetPaymentStatus(ctx, p.BookingRef, domain.PaymentSuccess); err != nil {
			log.Error().Err(err).Str("ref", p.BookingRef).Msg("mark booking paid failed")
		}
	}

	w.mu.Lock()
	w.last = &p
	w.setStatus(domain.PaymentSuccess)
	w.mu.Unlock()
	observability.ObservePayment("success")
	log.Info().Str("txn", p.TransactionID).Str("ref", p.BookingRef).Str("amount", p.Amount.StringFixed(2)).Msg("payment completed")
	return p, nil
}

// SubmitPayment validates the form and charges the summary's grand total.
// Invalid details or a gateway decline leave the workflow in the error state.
func (w *PaymentWorkflow) SubmitPayment(ctx context.Context) (domain.Payment, error) {
	c, err := w.beginSubmit()
	if err != nil {
		return domain.Payment{}, err
	}
	return w.finishSubmit(ctx, c)
}

func (w *PaymentWorkflow) StartSubmitPayment(ctx context.Context) (*Task[domain.Payment], error) {
	c, err := w.beginSubmit()
	if err != nil {
		return nil, err
	}
	return Go(ctx, func(ctx context.Context) (domain.Payment, error) { return w.finishSubmit(ctx, c) }), nil
}

// Reset returns to idle with an empty form.
func (w *PaymentWorkflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == domain.PaymentProcessing {
		return domain.ErrBusy
	}
	w.details = domain.PaymentDetails{Method: domain.MethodCredit}
	w.last, w.lastErr = nil, nil
	if w.status != domain.PaymentIdle {
		w.setStatus(domain.PaymentIdle)
	}
	return nil
}
