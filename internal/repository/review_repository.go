package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// RatingSummary aggregates the reviews a tutor has received.
type RatingSummary struct {
	Average float64
	Count   int
}

// ReviewRepository persists booking reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	CountByBooking(ctx context.Context, bookingID string) (int, error)
	ListByTutor(ctx context.Context, tutorID string) ([]domain.Review, error)
	SummaryByTutors(ctx context.Context, tutorIDs []string) (map[string]RatingSummary, error)
	Count(ctx context.Context) (int64, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a Postgres-backed implementation.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (booking_id, reviewer_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		review.BookingID,
		review.ReviewerID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
}

func (r *reviewRepository) CountByBooking(ctx context.Context, bookingID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE booking_id=$1`, bookingID).Scan(&n)
	return n, err
}

func (r *reviewRepository) ListByTutor(ctx context.Context, tutorID string) ([]domain.Review, error) {
	const query = `
        SELECT rv.id, rv.booking_id, rv.reviewer_id, rv.rating, rv.comment, rv.created_at, u.name, u.email
        FROM reviews rv
        JOIN bookings b ON b.id = rv.booking_id
        JOIN users u ON u.id = rv.reviewer_id
        WHERE b.tutor_id=$1
        ORDER BY rv.created_at DESC`
	rows, err := r.pool.Query(ctx, query, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			review   domain.Review
			reviewer domain.UserSummary
		)
		if err := rows.Scan(
			&review.ID,
			&review.BookingID,
			&review.ReviewerID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&reviewer.Name,
			&reviewer.Email,
		); err != nil {
			return nil, err
		}
		reviewer.ID = review.ReviewerID
		review.Reviewer = &reviewer
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) SummaryByTutors(ctx context.Context, tutorIDs []string) (map[string]RatingSummary, error) {
	summaries := make(map[string]RatingSummary, len(tutorIDs))
	if len(tutorIDs) == 0 {
		return summaries, nil
	}
	const query = `
        SELECT b.tutor_id, AVG(rv.rating)::float8, COUNT(*)
        FROM reviews rv
        JOIN bookings b ON b.id = rv.booking_id
        WHERE b.tutor_id = ANY($1::uuid[])
        GROUP BY b.tutor_id`
	rows, err := r.pool.Query(ctx, query, tutorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tutorID string
			summary RatingSummary
		)
		if err := rows.Scan(&tutorID, &summary.Average, &summary.Count); err != nil {
			return nil, err
		}
		summaries[tutorID] = summary
	}
	return summaries, rows.Err()
}

func (r *reviewRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&n)
	return n, err
}
