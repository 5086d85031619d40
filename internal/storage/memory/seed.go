package memory

import (
	"github.com/shopspring/decimal"

	"luxestay/internal/domain"
)

// SeedHotels is the demo catalog shown before anything is loaded.
func SeedHotels() []domain.Hotel {
	return []domain.Hotel{
		{
			ID: 1, Name: "Grand Palace Hotel", Location: "New York, NY",
			Price: decimal.NewFromInt(299), Rating: 4.8, Rooms: 150,
			Amenities:   []string{"WiFi", "Parking", "Restaurant", "Spa"},
			Description: "Luxury hotel in the heart of Manhattan with exceptional service.",
			Image:       "https://images.pexels.com/photos/258154/pexels-photo-258154.jpeg?auto=compress&cs=tinysrgb&w=800",
			Status:      domain.HotelActive,
		},
		{
			ID: 2, Name: "Oceanview Resort", Location: "Miami, FL",
			Price: decimal.NewFromInt(399), Rating: 4.6, Rooms: 200,
			Amenities:   []string{"WiFi", "Pool", "Beach Access", "Restaurant"},
			Description: "Beachfront resort with stunning ocean views and world-class amenities.",
			Image:       "https://images.pexels.com/photos/2034335/pexels-photo-2034335.jpeg?auto=compress&cs=tinysrgb&w=800",
			Status:      domain.HotelActive,
		},
		{
			ID: 3, Name: "Mountain Lodge", Location: "Denver, CO",
			Price: decimal.NewFromInt(249), Rating: 4.7, Rooms: 80,
			Amenities:   []string{"WiFi", "Fireplace", "Hiking", "Restaurant"},
			Description: "Cozy mountain retreat perfect for outdoor enthusiasts.",
			Image:       "https://images.pexels.com/photos/1134176/pexels-photo-1134176.jpeg?auto=compress&cs=tinysrgb&w=800",
			Status:      domain.HotelActive,
		},
	}
}

// SeedReviews are newest first.
func SeedReviews() []domain.Review {
	return []domain.Review{
		{
			ID: 1, HotelID: 1, HotelName: "Grand Palace Hotel", Author: "Sarah Johnson", Rating: 5,
			Comment: "Amazing stay! The service was exceptional and the room was beautiful. Will definitely come back.",
			Date:    "2024-01-15", Likes: 12,
		},
		{
			ID: 2, HotelID: 2, HotelName: "Oceanview Resort", Author: "Mike Chen", Rating: 4,
			Comment: "Great location with stunning ocean views. The breakfast was fantastic, though the WiFi could be better.",
			Date:    "2024-01-10", Likes: 8,
		},
		{
			ID: 3, HotelID: 3, HotelName: "Mountain Lodge", Author: "Emily Davis", Rating: 5,
			Comment: "Perfect for our mountain getaway. The staff was friendly and the hiking trails were amazing.",
			Date:    "2024-01-08", Likes: 15,
		},
	}
}
