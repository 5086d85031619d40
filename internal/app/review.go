package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"luxestay/internal/domain"
)

// DefaultAuthor labels reviews submitted without a name.
const DefaultAuthor = "Current User"

type ReviewService struct {
	repo    domain.ReviewRepository
	catalog *CatalogService
	ids     *TimeIDs
	now     func() time.Time
}

func NewReviewService(r domain.ReviewRepository, catalog *CatalogService, ids *TimeIDs, now func() time.Time) *ReviewService {
	if ids == nil {
		ids = NewTimeIDs(now)
	}
	if now == nil {
		now = time.Now
	}
	return &ReviewService{repo: r, catalog: catalog, ids: ids, now: now}
}

type NewReview struct {
	HotelID int64
	Author  string
	Rating  int
	Comment string
}

// Submit adds a review in front of the list. An empty comment is rejected and
// leaves the list as it was.
func (s *ReviewService) Submit(ctx context.Context, in NewReview) (domain.Review, error) {
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return domain.Review{}, domain.ErrEmptyComment
	}
	if in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	h, err := s.catalog.GetHotel(ctx, in.HotelID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("hotel %d: %w", in.HotelID, err)
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = DefaultAuthor
	}
	r := domain.Review{
		ID:        s.ids.Next(),
		HotelID:   h.ID,
		HotelName: h.Name,
		Author:    author,
		Rating:    in.Rating,
		Comment:   comment,
		Date:      s.now().UTC().Format(domain.DateLayout),
	}
	if err := s.repo.AddReview(ctx, r); err != nil {
		return domain.Review{}, fmt.Errorf("add review: %w", err)
	}
	log.Info().Int64("id", r.ID).Int64("hotel", r.HotelID).Int("rating", r.Rating).Msg("review added")
	return r, nil
}

// Like adds exactly one like and returns the new count.
func (s *ReviewService) Like(ctx context.Context, id int64) (int, error) {
	return s.repo.LikeReview(ctx, id)
}

func (s *ReviewService) List(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	return s.repo.ListReviews(ctx, q)
}

func (s *ReviewService) Stats(ctx context.Context, hotelID int64) (domain.ReviewStats, error) {
	return s.repo.ReviewStats(ctx, hotelID)
}
