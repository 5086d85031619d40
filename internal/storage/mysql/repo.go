package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"luxestay/internal/domain"
)

func valNullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// Repo implements the hotel and review repositories on MySQL.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

type scanner interface{ Scan(dest ...any) error }

func hotelArgs(h domain.Hotel) []any {
	return []any{h.Name, h.Location, h.Price, h.Rating, h.Rooms, valJSON(h.Amenities), h.Description, h.Image, string(h.Status)}
}

func scanHotel(s scanner) (domain.Hotel, error) {
	var (
		h         domain.Hotel
		amenities []byte
		desc      sql.NullString
		status    string
	)
	if err := s.Scan(&h.ID, &h.Name, &h.Location, &h.Price, &h.Rating, &h.Rooms, &amenities, &desc, &h.Image, &status); err != nil {
		return domain.Hotel{}, err
	}
	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &h.Amenities); err != nil {
			return domain.Hotel{}, fmt.Errorf("hotel %d amenities: %w", h.ID, err)
		}
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	h.Description = desc.String
	h.Status = domain.HotelStatus(status)
	return h, nil
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) error {
	args := append([]any{h.ID}, hotelArgs(h)...)
	_, err := r.db.ExecContext(ctx, insertHotelSQL, args...)
	return err
}

func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	args := append(hotelArgs(h), h.ID)
	res, err := r.db.ExecContext(ctx, updateHotelSQL, args...)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows for a no-op update, so check existence separately.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetHotel(ctx, h.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	args := append([]any{h.ID}, hotelArgs(h)...)
	_, err := r.db.ExecContext(ctx, upsertHotelSQL, args...)
	return err
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL,
		q.IncludeInactive,
		q.Search, q.Search,
		q.Location, q.Location,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ---- reviews ----

func reviewArgs(rv domain.Review) []any {
	return []any{rv.ID, rv.HotelID, rv.HotelName, rv.Author, rv.Rating, rv.Comment, rv.Date, rv.Likes}
}

// reviewDate accepts both DATE encodings the driver can return, depending on parseTime.
func reviewDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format(domain.DateLayout)
	case []byte:
		return string(d)
	case string:
		return d
	}
	return ""
}

func scanReview(s scanner) (domain.Review, error) {
	var (
		rv   domain.Review
		date any
	)
	if err := s.Scan(&rv.ID, &rv.HotelID, &rv.HotelName, &rv.Author, &rv.Rating, &rv.Comment, &date, &rv.Likes); err != nil {
		return domain.Review{}, err
	}
	rv.Date = reviewDate(date)
	return rv, nil
}

func (r *Repo) AddReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, insertReviewSQL, reviewArgs(rv)...)
	return err
}

// UpsertReview is used by the seeder so reruns don't fail on existing ids.
func (r *Repo) UpsertReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, upsertReviewSQL, reviewArgs(rv)...)
	return err
}

func (r *Repo) LikeReview(ctx context.Context, id int64) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, likeReviewSQL, id)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, domain.ErrNotFound
	}
	var likes int
	if err := tx.QueryRowContext(ctx, reviewLikesSQL, id).Scan(&likes); err != nil {
		return 0, err
	}
	return likes, tx.Commit()
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	query := listReviewsSQL
	args := []any{valNullInt64(q.HotelID), valNullInt64(q.HotelID)}
	if q.Limit > 0 {
		query = strings.TrimRight(query, "\n") + "\nLIMIT ?"
		args = append(args, q.Limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ReviewStats(ctx context.Context, hotelID int64) (domain.ReviewStats, error) {
	rows, err := r.db.QueryContext(ctx, reviewStatsSQL, hotelID)
	if err != nil {
		return domain.ReviewStats{}, err
	}
	defer rows.Close()

	st := domain.ReviewStats{HotelID: hotelID, ByStars: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return domain.ReviewStats{}, err
		}
		st.ByStars[rating] = n
		st.TotalReviews += n
		sum += rating * n
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewStats{}, err
	}
	st.AverageRating = domain.AverageRating(sum, st.TotalReviews)
	return st, nil
}
