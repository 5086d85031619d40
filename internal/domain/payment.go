package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentIdle       PaymentStatus = "idle"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSuccess    PaymentStatus = "success"
	PaymentError      PaymentStatus = "error"
)

type PaymentMethod string

const (
	MethodCredit PaymentMethod = "credit"
	MethodDebit  PaymentMethod = "debit"
)

// PaymentDetails holds the card form exactly as displayed (formatted).
type PaymentDetails struct {
	Method         PaymentMethod `json:"method"`
	CardNumber     string        `json:"card_number"` // "4242 4242 4242 4242"
	Expiry         string        `json:"expiry"`      // "MM/YY"
	CVV            string        `json:"-"`
	CardholderName string        `json:"cardholder_name"`
	BillingAddress string        `json:"billing_address"`
	City           string        `json:"city"`
	ZipCode        string        `json:"zip_code"`
}

type PaymentSummary struct {
	BookingRef    string          `json:"booking_ref,omitempty"`
	HotelName     string          `json:"hotel_name"`
	CheckIn       string          `json:"check_in"`
	CheckOut      string          `json:"check_out"`
	Nights        int             `json:"nights"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Taxes         decimal.Decimal `json:"taxes"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// Charge is what a gateway sees. Only the digits of the card are passed on.
type Charge struct {
	Amount     decimal.Decimal
	Currency   string
	Method     PaymentMethod
	CardDigits string
	Expiry     string
	CVV        string
	Cardholder string
}

type ChargeResult struct {
	TransactionID string
}

type Payment struct {
	TransactionID string          `json:"transaction_id"`
	BookingRef    string          `json:"booking_ref,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        PaymentMethod   `json:"method"`
	CardLastFour  string          `json:"card_last_four"`
	Status        PaymentStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
