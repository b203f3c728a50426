package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// TutorFilter captures discovery search parameters.
type TutorFilter struct {
	Subject    *string
	CategoryID *string
	MinRate    *float64
	MaxRate    *float64
	Search     *string
	Limit      int
	Offset     int
}

// TutorProfileRepository persists tutor profiles and their availability.
type TutorProfileRepository interface {
	// Upsert creates the profile on first write and updates it afterwards.
	Upsert(ctx context.Context, profile *domain.TutorProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.TutorProfile, error)
	ReplaceAvailability(ctx context.Context, profileID string, slots []domain.Availability) ([]domain.Availability, error)
	ListTutors(ctx context.Context, filter TutorFilter) ([]domain.TutorListing, error)
}

type tutorProfileRepository struct {
	pool *pgxpool.Pool
}

// NewTutorProfileRepository returns a Postgres-backed implementation.
func NewTutorProfileRepository(pool *pgxpool.Pool) TutorProfileRepository {
	return &tutorProfileRepository{pool: pool}
}

func (r *tutorProfileRepository) Upsert(ctx context.Context, profile *domain.TutorProfile) error {
	const query = `
        INSERT INTO tutor_profiles (user_id, bio, subjects, hourly_rate, category_ids)
        VALUES ($1, $2, $3, $4, $5::uuid[])
        ON CONFLICT (user_id) DO UPDATE
            SET bio=EXCLUDED.bio, subjects=EXCLUDED.subjects, hourly_rate=EXCLUDED.hourly_rate,
                category_ids=EXCLUDED.category_ids, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.Bio,
		nonNilStrings(profile.Subjects),
		profile.HourlyRate,
		nonNilStrings(profile.CategoryIDs),
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *tutorProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.TutorProfile, error) {
	const query = `
        SELECT id, user_id, bio, subjects, hourly_rate::float8, category_ids::text[], created_at, updated_at
        FROM tutor_profiles WHERE user_id=$1`
	var profile domain.TutorProfile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profile.Subjects,
		&profile.HourlyRate,
		&profile.CategoryIDs,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}

	slots, err := r.listAvailability(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	profile.Availability = slots
	return &profile, nil
}

// ReplaceAvailability swaps the full availability set in one transaction.
func (r *tutorProfileRepository) ReplaceAvailability(ctx context.Context, profileID string, slots []domain.Availability) ([]domain.Availability, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM availabilities WHERE profile_id=$1`, profileID); err != nil {
		return nil, err
	}

	const insert = `
        INSERT INTO availabilities (profile_id, day_of_week, start_time, end_time)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	saved := make([]domain.Availability, 0, len(slots))
	for _, slot := range slots {
		slot.ProfileID = profileID
		if err := tx.QueryRow(ctx, insert, profileID, slot.DayOfWeek, slot.StartTime, slot.EndTime).Scan(&slot.ID); err != nil {
			return nil, err
		}
		saved = append(saved, slot)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *tutorProfileRepository) ListTutors(ctx context.Context, filter TutorFilter) ([]domain.TutorListing, error) {
	clauses := []string{"u.role='TUTOR'", "u.status='ACTIVE'"}
	args := []any{}

	if filter.Subject != nil && strings.TrimSpace(*filter.Subject) != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.Subject)))
		clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(p.subjects) s WHERE LOWER(s)=$%d)", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("$%d::uuid = ANY(p.category_ids)", len(args)))
	}
	if filter.MinRate != nil {
		args = append(args, *filter.MinRate)
		clauses = append(clauses, fmt.Sprintf("p.hourly_rate >= $%d", len(args)))
	}
	if filter.MaxRate != nil {
		args = append(args, *filter.MaxRate)
		clauses = append(clauses, fmt.Sprintf("p.hourly_rate <= $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(u.name) LIKE %s OR LOWER(COALESCE(p.bio, '')) LIKE %s)", p, p))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
        SELECT u.id, u.name, u.email,
               p.id, p.bio, p.subjects, p.hourly_rate::float8, p.category_ids::text[], p.created_at, p.updated_at
        FROM users u
        LEFT JOIN tutor_profiles p ON p.user_id = u.id
        WHERE %s
        ORDER BY u.name ASC
        LIMIT %d OFFSET %d`, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []domain.TutorListing{}
	for rows.Next() {
		listing, err := scanTutorListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *listing)
	}
	return listings, rows.Err()
}

func (r *tutorProfileRepository) listAvailability(ctx context.Context, profileID string) ([]domain.Availability, error) {
	const query = `
        SELECT id, profile_id, day_of_week, start_time, end_time
        FROM availabilities WHERE profile_id=$1
        ORDER BY day_of_week, start_time`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []domain.Availability{}
	for rows.Next() {
		var slot domain.Availability
		if err := rows.Scan(&slot.ID, &slot.ProfileID, &slot.DayOfWeek, &slot.StartTime, &slot.EndTime); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func scanTutorListing(row pgx.Row) (*domain.TutorListing, error) {
	var (
		listing     domain.TutorListing
		profileID   *string
		bio         *string
		subjects    []string
		rate        *float64
		categoryIDs []string
		createdAt   *time.Time
		updatedAt   *time.Time
		profile     domain.TutorProfile
	)
	if err := row.Scan(
		&listing.User.ID,
		&listing.User.Name,
		&listing.User.Email,
		&profileID,
		&bio,
		&subjects,
		&rate,
		&categoryIDs,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if profileID != nil {
		if createdAt != nil {
			profile.CreatedAt = *createdAt
		}
		if updatedAt != nil {
			profile.UpdatedAt = *updatedAt
		}
		profile.ID = *profileID
		profile.UserID = listing.User.ID
		if bio != nil {
			profile.Bio = *bio
		}
		if rate != nil {
			profile.HourlyRate = *rate
		}
		profile.Subjects = subjects
		profile.CategoryIDs = categoryIDs
		listing.Profile = &profile
	}
	return &listing, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
