package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type HotelStatus string

const (
	HotelActive   HotelStatus = "active"
	HotelInactive HotelStatus = "inactive"
)

func (s HotelStatus) Valid() bool { return s == HotelActive || s == HotelInactive }

type Hotel struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	Price       decimal.Decimal `json:"price"` // per night
	Rating      float64         `json:"rating"`
	Rooms       int             `json:"rooms"`
	Amenities   []string        `json:"amenities"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Status      HotelStatus     `json:"status"`
}

// HotelInput is the editable part of a hotel as entered on the admin form.
// Amenities arrive as one comma-separated string.
type HotelInput struct {
	Name        string
	Location    string
	Price       decimal.Decimal
	Rating      float64
	Rooms       int
	Amenities   string
	Description string
	Image       string
	Status      HotelStatus
}

type HotelsQuery struct {
	Search          string // case-insensitive substring of the name
	Location        string // case-insensitive substring of the location
	IncludeInactive bool
}

// Match applies the query to a single hotel.
func (q HotelsQuery) Match(h Hotel) bool {
	if !q.IncludeInactive && h.Status != HotelActive {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(q.Search)) {
		return false
	}
	if q.Location != "" && !strings.Contains(strings.ToLower(h.Location), strings.ToLower(q.Location)) {
		return false
	}
	return true
}
