package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"luxestay/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"id":          {"id", "hotel_id", "hotelId"},
	"name":        {"name", "hotel_name", "hotelName", "title"},
	"location":    {"location", "city", "address.city", "address"},
	"price":       {"price", "price_per_night", "pricePerNight", "rate.amount"},
	"rating":      {"rating", "stars", "score", "rating.value"},
	"rooms":       {"rooms", "room_count", "roomCount", "total_rooms"},
	"amenities":   {"amenities", "facilities", "features"},
	"description": {"description", "summary", "about"},
	"image":       {"image", "image_url", "imageUrl", "photo", "main_image"},
	"status":      {"status", "state"},
}

var reviewAliases = map[string][]string{
	"id":      {"id", "review_id", "reviewId"},
	"author":  {"author", "userName", "user_name", "name", "reviewer", "reviewer.name"},
	"rating":  {"rating", "rate", "score", "rating.value"},
	"comment": {"comment", "text", "review", "content", "body"},
	"date":    {"date", "created_at", "createdAt"},
	"likes":   {"likes", "helpful", "helpful_count"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstStr returns the first non-empty string among the alias paths.
func firstStr(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s, ok := lookupAny(m, p).(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstFloat: number from several paths (float64/int/string like "4,5").
func firstFloat(m map[string]any, aliases map[string][]string, key string) *float64 {
	for _, k := range aliases[key] {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstInt64(m map[string]any, aliases map[string][]string, key string) *int64 {
	for _, k := range aliases[key] {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// firstDecimal keeps prices exact: strings parse directly, JSON numbers go
// through their shortest float representation.
func firstDecimal(m map[string]any, aliases map[string][]string, key string) (decimal.Decimal, bool) {
	for _, k := range aliases[key] {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return decimal.NewFromFloat(v), true
		case string:
			if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

// firstStrings accepts []any holding strings or {name/label} objects, or a
// comma-separated string.
func firstStrings(m map[string]any, aliases map[string][]string, key string) []string {
	for _, k := range aliases[key] {
		switch raw := lookupAny(m, k).(type) {
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
					if n, ok := t["label"].(string); ok && n != "" {
						out = append(out, n)
					}
				}
			}
			if len(out) > 0 {
				return ParseAmenities(strings.Join(out, ","))
			}
		case string:
			if a := ParseAmenities(raw); len(a) > 0 {
				return a
			}
		}
	}
	return []string{}
}

/********** hotel mapper **********/

// mapHotel turns a loosely shaped hotel record into a Hotel. id and name are
// required; everything else falls back to a zero value.
func mapHotel(p map[string]any) (domain.Hotel, error) {
	id := firstInt64(p, hotelAliases, "id")
	if id == nil || *id <= 0 {
		return domain.Hotel{}, fmt.Errorf("%w: hotel record without id", domain.ErrValidation)
	}
	h := domain.Hotel{
		ID:          *id,
		Name:        firstStr(p, hotelAliases, "name"),
		Location:    firstStr(p, hotelAliases, "location"),
		Amenities:   firstStrings(p, hotelAliases, "amenities"),
		Description: firstStr(p, hotelAliases, "description"),
		Image:       firstStr(p, hotelAliases, "image"),
		Status:      domain.HotelStatus(strings.ToLower(firstStr(p, hotelAliases, "status"))),
	}
	if h.Name == "" {
		return domain.Hotel{}, fmt.Errorf("%w: hotel %d has no name", domain.ErrValidation, h.ID)
	}
	if d, ok := firstDecimal(p, hotelAliases, "price"); ok && !d.IsNegative() {
		h.Price = d
	}
	if r := firstFloat(p, hotelAliases, "rating"); r != nil {
		h.Rating = *r
	}
	if n := firstInt64(p, hotelAliases, "rooms"); n != nil && *n > 0 {
		h.Rooms = int(*n)
	}
	if !h.Status.Valid() {
		h.Status = domain.HotelActive
	}
	return h, nil
}

/********** reviews mapper **********/

// mapReviews keeps only records with a usable id, a 1..5 rating and a comment.
// A missing or malformed date becomes today.
func mapReviews(h domain.Hotel, in []map[string]any, today string) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		id := firstInt64(r, reviewAliases, "id")
		rating := firstInt64(r, reviewAliases, "rating")
		comment := firstStr(r, reviewAliases, "comment")
		if id == nil || rating == nil || *rating < 1 || *rating > 5 || comment == "" {
			continue
		}
		rv := domain.Review{
			ID:        *id,
			HotelID:   h.ID,
			HotelName: h.Name,
			Author:    firstStr(r, reviewAliases, "author"),
			Rating:    int(*rating),
			Comment:   comment,
			Date:      firstStr(r, reviewAliases, "date"),
		}
		if rv.Author == "" {
			rv.Author = DefaultAuthor
		}
		// timestamps are cut to their date part
		if len(rv.Date) > len(domain.DateLayout) {
			rv.Date = rv.Date[:len(domain.DateLayout)]
		}
		if _, err := time.Parse(domain.DateLayout, rv.Date); err != nil {
			rv.Date = today
		}
		if n := firstInt64(r, reviewAliases, "likes"); n != nil && *n > 0 {
			rv.Likes = int(*n)
		}
		out = append(out, rv)
	}
	return out
}

// reviewRecords pulls the nested review list out of a hotel record.
func reviewRecords(p map[string]any) []map[string]any {
	raw, _ := p["reviews"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
