package app_test

import (
	"context"
	"errors"
	"testing"

	"luxestay/internal/app"
	"luxestay/internal/domain"
	"luxestay/internal/storage/memory"
)

func newReviews(t *testing.T) (*app.ReviewService, *memory.Store, *clock) {
	t.Helper()
	store := memory.Seeded()
	clk := newClock()
	catalog := app.NewCatalogService(store, nil, 0)
	return app.NewReviewService(store, catalog, app.NewTimeIDs(clk.Now), clk.Now), store, clk
}

func TestReviews_SubmitGoesFirst(t *testing.T) {
	s, _, clk := newReviews(t)
	ctx := context.Background()

	r, err := s.Submit(ctx, app.NewReview{HotelID: 2, Rating: 4, Comment: "  Lovely pool.  "})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.HotelName != "Oceanview Resort" || r.Author != app.DefaultAuthor || r.Comment != "Lovely pool." {
		t.Fatalf("unexpected review: %+v", r)
	}
	if r.Date != "2024-02-01" || r.ID != clk.Now().UnixMilli() || r.Likes != 0 {
		t.Fatalf("unexpected review: %+v", r)
	}

	all, _ := s.List(ctx, domain.ReviewsQuery{})
	if len(all) != 4 || all[0].ID != r.ID {
		t.Fatalf("new review not first: %+v", all)
	}
}

func TestReviews_EmptyCommentLeavesListUnchanged(t *testing.T) {
	s, _, _ := newReviews(t)
	ctx := context.Background()
	before, _ := s.List(ctx, domain.ReviewsQuery{})

	if _, err := s.Submit(ctx, app.NewReview{HotelID: 1, Rating: 5, Comment: " \n\t"}); !errors.Is(err, domain.ErrEmptyComment) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Submit(ctx, app.NewReview{HotelID: 1, Rating: 0, Comment: "ok"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("rating: err = %v", err)
	}
	if _, err := s.Submit(ctx, app.NewReview{HotelID: 42, Rating: 3, Comment: "ok"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("hotel: err = %v", err)
	}

	after, _ := s.List(ctx, domain.ReviewsQuery{})
	if len(after) != len(before) {
		t.Fatalf("list changed: %d -> %d", len(before), len(after))
	}
}

func TestReviews_LikeAddsOneEachTime(t *testing.T) {
	s, store, _ := newReviews(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		n, err := s.Like(ctx, 2)
		if err != nil {
			t.Fatalf("like: %v", err)
		}
		if n != 8+i {
			t.Fatalf("after %d likes: %d", i, n)
		}
	}
	r, _ := store.GetReview(ctx, 2)
	if r.Likes != 13 {
		t.Fatalf("likes = %d", r.Likes)
	}
	if _, err := s.Like(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
}

func TestReviews_Stats(t *testing.T) {
	s, _, _ := newReviews(t)
	ctx := context.Background()
	_, _ = s.Submit(ctx, app.NewReview{HotelID: 1, Rating: 2, Comment: "noisy"})
	_, _ = s.Submit(ctx, app.NewReview{HotelID: 1, Rating: 4, Comment: "fine"})

	st, err := s.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalReviews != 3 || st.AverageRating != 3.7 || st.ByStars[5] != 1 || st.ByStars[2] != 1 {
		t.Fatalf("stats: %+v", st)
	}
	if st, _ := s.Stats(ctx, 99); st.TotalReviews != 0 || st.AverageRating != 0 {
		t.Fatalf("empty stats: %+v", st)
	}
}
