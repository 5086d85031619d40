package domain

type Tab string

const (
	TabLogin   Tab = "login"
	TabHotels  Tab = "hotels"
	TabBooking Tab = "booking"
	TabReviews Tab = "reviews"
	TabPayment Tab = "payment"
	TabAdmin   Tab = "admin"
)

func (t Tab) Valid() bool {
	switch t {
	case TabHotels, TabBooking, TabReviews, TabPayment, TabAdmin:
		return true
	}
	return false
}

// AppState is the screen/session state every workflow is rendered under.
type AppState struct {
	LoggedIn  bool `json:"logged_in"`
	Admin     bool `json:"admin"`
	ActiveTab Tab  `json:"active_tab"`
}
