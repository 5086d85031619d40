package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"luxestay/internal/app"
	"luxestay/internal/domain"
)

type loginRequest struct {
	Admin bool `json:"admin"`
}

type sessionResponse struct {
	ID    string          `json:"id"`
	State domain.AppState `json:"state"`
}

type selectTabRequest struct {
	Tab string `json:"tab" validate:"required,oneof=hotels booking reviews payment admin"`
}

type selectHotelRequest struct {
	HotelID int64 `json:"hotel_id" validate:"required,gt=0"`
}

type bookingRequestDTO struct {
	CheckIn         string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Guests          int    `json:"guests" validate:"omitempty,min=1,max=6"`
	RoomType        string `json:"room_type" validate:"omitempty,oneof=standard deluxe suite presidential"`
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

// toDomain relies on the datetime tags having been checked.
func (d bookingRequestDTO) toDomain() domain.BookingRequest {
	parse := func(s string) time.Time {
		if s == "" {
			return time.Time{}
		}
		t, _ := time.Parse(domain.DateLayout, s)
		return t
	}
	return domain.BookingRequest{
		CheckIn:         parse(d.CheckIn),
		CheckOut:        parse(d.CheckOut),
		Guests:          d.Guests,
		RoomType:        domain.RoomType(d.RoomType),
		SpecialRequests: d.SpecialRequests,
	}
}

// paymentDetailsDTO accepts raw keystrokes; the workflow formats them.
type paymentDetailsDTO struct {
	Method         string `json:"method" validate:"omitempty,oneof=credit debit"`
	CardNumber     string `json:"card_number" validate:"max=64"`
	Expiry         string `json:"expiry" validate:"max=16"`
	CVV            string `json:"cvv" validate:"max=16"`
	CardholderName string `json:"cardholder_name" validate:"max=256"`
	BillingAddress string `json:"billing_address" validate:"max=512"`
	City           string `json:"city" validate:"max=256"`
	ZipCode        string `json:"zip_code" validate:"max=32"`
}

func (d paymentDetailsDTO) toDomain() domain.PaymentDetails {
	m := domain.PaymentMethod(d.Method)
	if m == "" {
		m = domain.MethodCredit
	}
	return domain.PaymentDetails{
		Method:         m,
		CardNumber:     d.CardNumber,
		Expiry:         d.Expiry,
		CVV:            d.CVV,
		CardholderName: d.CardholderName,
		BillingAddress: d.BillingAddress,
		City:           d.City,
		ZipCode:        d.ZipCode,
	}
}

type reviewRequest struct {
	HotelID int64  `json:"hotel_id" validate:"required,gt=0"`
	Author  string `json:"author" validate:"max=256"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=5000"`
}

func (d reviewRequest) toApp() app.NewReview {
	return app.NewReview{HotelID: d.HotelID, Author: d.Author, Rating: d.Rating, Comment: d.Comment}
}

type likeResponse struct {
	ID    int64 `json:"id"`
	Likes int   `json:"likes"`
}

// hotelRequest mirrors the admin form: amenities is one comma-separated string.
type hotelRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Location    string          `json:"location" validate:"max=255"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating" validate:"min=0,max=5"`
	Rooms       int             `json:"rooms" validate:"min=0"`
	Amenities   string          `json:"amenities" validate:"max=2000"`
	Description string          `json:"description" validate:"max=5000"`
	Image       string          `json:"image" validate:"omitempty,url,max=1024"`
	Status      string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (d hotelRequest) toDomain() domain.HotelInput {
	return domain.HotelInput{
		Name:        d.Name,
		Location:    d.Location,
		Price:       d.Price,
		Rating:      d.Rating,
		Rooms:       d.Rooms,
		Amenities:   d.Amenities,
		Description: d.Description,
		Image:       d.Image,
		Status:      domain.HotelStatus(d.Status),
	}
}
