package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"luxestay/internal/domain"
)

type CatalogService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewCatalogService builds the read side of the hotel list. cache may be nil.
func NewCatalogService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: r, cache: c, cacheTTL: ttl}
}

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }

func listKey(q domain.HotelsQuery) string {
	return fmt.Sprintf("hotels:%s:%s:%t", strings.ToLower(q.Search), strings.ToLower(q.Location), q.IncludeInactive)
}

func (s *CatalogService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

// ListHotels returns hotels whose name contains q.Search and whose location
// contains q.Location. Inactive hotels are hidden unless asked for.
func (s *CatalogService) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	q.Search = strings.TrimSpace(q.Search)
	q.Location = strings.TrimSpace(q.Location)

	// only the unfiltered listings are cached; filtered ones would outlive Invalidate
	cacheable := s.cache != nil && q.Search == "" && q.Location == ""
	key := listKey(q)
	var out []domain.Hotel
	if cacheable {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	hs, err := s.repo.ListHotels(ctx, q)
	if err != nil {
		return nil, err
	}
	// copy so later cache hits never alias the repo's backing array
	out = make([]domain.Hotel, len(hs))
	copy(out, hs)
	if cacheable {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// Invalidate drops the cached copy of one hotel and the default listings.
func (s *CatalogService) Invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, hotelKey(id))
	for _, inactive := range []bool{false, true} {
		_ = s.cache.Del(ctx, listKey(domain.HotelsQuery{IncludeInactive: inactive}))
	}
}
