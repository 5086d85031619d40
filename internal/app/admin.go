package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"luxestay/internal/adapters/observability"
	"luxestay/internal/domain"
)

// Confirm is asked before a destructive admin action. Returning false aborts it.
type Confirm func(h domain.Hotel) bool

type AdminService struct {
	repo    domain.HotelRepository
	catalog *CatalogService
	ids     *TimeIDs
}

func NewAdminService(r domain.HotelRepository, catalog *CatalogService, ids *TimeIDs) *AdminService {
	if ids == nil {
		ids = NewTimeIDs(nil)
	}
	return &AdminService{repo: r, catalog: catalog, ids: ids}
}

// ListHotels returns every hotel, inactive ones included.
func (s *AdminService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	return s.repo.ListHotels(ctx, domain.HotelsQuery{IncludeInactive: true})
}

func (s *AdminService) Create(ctx context.Context, in domain.HotelInput) (domain.Hotel, error) {
	h, err := hotelFromInput(in)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ID = s.ids.Next()
	if err := s.repo.CreateHotel(ctx, h); err != nil {
		return domain.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	s.invalidate(ctx, h.ID)
	observability.ObserveAdmin("create")
	log.Info().Int64("id", h.ID).Str("name", h.Name).Msg("hotel created")
	return h, nil
}

// Update replaces the hotel with the given id, keeping the id.
func (s *AdminService) Update(ctx context.Context, id int64, in domain.HotelInput) (domain.Hotel, error) {
	if _, err := s.repo.GetHotel(ctx, id); err != nil {
		return domain.Hotel{}, err
	}
	h, err := hotelFromInput(in)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ID = id
	if err := s.repo.UpdateHotel(ctx, h); err != nil {
		return domain.Hotel{}, fmt.Errorf("update hotel %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	observability.ObserveAdmin("update")
	log.Info().Int64("id", id).Msg("hotel updated")
	return h, nil
}

// Delete removes the hotel only if confirm approves it.
func (s *AdminService) Delete(ctx context.Context, id int64, confirm Confirm) error {
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(h) {
		return domain.ErrConfirmationRequired
	}
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete hotel %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	observability.ObserveAdmin("delete")
	log.Info().Int64("id", id).Msg("hotel deleted")
	return nil
}

func (s *AdminService) invalidate(ctx context.Context, id int64) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx, id)
	}
}

func hotelFromInput(in domain.HotelInput) (domain.Hotel, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Hotel{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Rooms < 0 {
		return domain.Hotel{}, fmt.Errorf("%w: rooms must not be negative", domain.ErrValidation)
	}
	if in.Price.IsNegative() {
		return domain.Hotel{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = domain.HotelActive
	}
	if !status.Valid() {
		return domain.Hotel{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return domain.Hotel{
		Name:        name,
		Location:    strings.TrimSpace(in.Location),
		Price:       in.Price,
		Rating:      in.Rating,
		Rooms:       in.Rooms,
		Amenities:   ParseAmenities(in.Amenities),
		Description: in.Description,
		Image:       in.Image,
		Status:      status,
	}, nil
}

// ParseAmenities splits "WiFi, Pool,,wifi" into a set, first spelling wins.
func ParseAmenities(csv string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, a := range strings.Split(csv, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		k := strings.ToLower(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
