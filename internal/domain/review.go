package domain

import "math"

type Review struct {
	ID        int64  `json:"id"`
	HotelID   int64  `json:"hotel_id"`
	HotelName string `json:"hotel_name"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"` // 1..5
	Comment   string `json:"comment"`
	Date      string `json:"date"` // YYYY-MM-DD
	Likes     int    `json:"likes"`
}

type ReviewsQuery struct {
	HotelID *int64
	Limit   int // 0 means no limit
}

type ReviewStats struct {
	HotelID       int64       `json:"hotel_id"`
	TotalReviews  int         `json:"total_reviews"`
	AverageRating float64     `json:"average_rating"`
	ByStars       map[int]int `json:"by_stars"`
}

// AverageRating rounds to one decimal place.
func AverageRating(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}
