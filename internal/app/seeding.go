package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"luxestay/internal/domain"
)

// SeedService loads catalog records (with their reviews) from loosely shaped
// JSON into the stores.
type SeedService struct {
	hotels  domain.HotelRepository
	reviews domain.ReviewRepository
	catalog *CatalogService
	now     func() time.Time
}

func NewSeedService(h domain.HotelRepository, r domain.ReviewRepository, catalog *CatalogService, now func() time.Time) *SeedService {
	if now == nil {
		now = time.Now
	}
	return &SeedService{hotels: h, reviews: r, catalog: catalog, now: now}
}

// SeedHotel upserts one hotel record and its nested reviews. Reruns are safe.
func (s *SeedService) SeedHotel(ctx context.Context, rec map[string]any) (domain.Hotel, int, error) {
	h, err := mapHotel(rec)
	if err != nil {
		return domain.Hotel{}, 0, err
	}
	if err := s.hotels.UpsertHotel(ctx, h); err != nil {
		return domain.Hotel{}, 0, fmt.Errorf("upsert hotel %d: %w", h.ID, err)
	}

	revs := mapReviews(h, reviewRecords(rec), s.now().UTC().Format(domain.DateLayout))
	for _, rv := range revs {
		if err := s.reviews.UpsertReview(ctx, rv); err != nil {
			// do not swallow this; surface so we know inserts failed
			return h, 0, fmt.Errorf("upsert review %d for hotel %d: %w", rv.ID, h.ID, err)
		}
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx, h.ID)
	}
	log.Debug().Int64("hotel", h.ID).Int("reviews", len(revs)).Msg("hotel seeded")
	return h, len(revs), nil
}

// LoadSeedFile reads either a bare JSON array of hotel records or an object
// with a "hotels" array.
func LoadSeedFile(path string) ([]map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []map[string]any
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Hotels []map[string]any `json:"hotels"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return wrapped.Hotels, nil
}
