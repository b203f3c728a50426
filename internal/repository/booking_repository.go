package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/skillbridge-api/internal/domain"
)

// ErrStatusChanged is returned when a conditional status update matched no row
// because the booking is no longer in the expected status.
var ErrStatusChanged = errors.New("booking status changed")

// BookingFilter narrows booking listings.
type BookingFilter struct {
	StudentID *string
	TutorID   *string
	Statuses  []domain.BookingStatus
	Limit     int
	Offset    int
}

// BookingRepository encapsulates booking persistence.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.Booking, error)
	ListByTutor(ctx context.Context, tutorID string) ([]domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	// UpdateStatus moves a booking from one status to another only if it is
	// still in the from status. It returns ErrStatusChanged otherwise.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error)
	// CompleteElapsed marks CONFIRMED bookings that ended before now as COMPLETED.
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingSelect = `
        SELECT b.id, b.student_id, b.tutor_id, b.date_time, b.duration, b.notes, b.status,
               b.created_at, b.updated_at, s.name, s.email, t.name, t.email
        FROM bookings b
        JOIN users s ON s.id = b.student_id
        JOIN users t ON t.id = b.tutor_id`

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (student_id, tutor_id, date_time, duration, notes, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		booking.StudentID,
		booking.TutorID,
		booking.DateTime,
		booking.Duration,
		booking.Notes,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, bookingSelect+` WHERE b.id=$1`, id))
}

func (r *bookingRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Booking, error) {
	return r.list(ctx, BookingFilter{StudentID: &studentID}, false)
}

func (r *bookingRepository) ListByTutor(ctx context.Context, tutorID string) ([]domain.Booking, error) {
	return r.list(ctx, BookingFilter{TutorID: &tutorID}, false)
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	return r.list(ctx, filter, true)
}

func (r *bookingRepository) list(ctx context.Context, filter BookingFilter, paged bool) ([]domain.Booking, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("b.student_id=$%d", len(args)))
	}
	if filter.TutorID != nil {
		args = append(args, *filter.TutorID)
		clauses = append(clauses, fmt.Sprintf("b.tutor_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("b.status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY b.date_time DESC`, bookingSelect, strings.Join(clauses, " AND "))
	if paged {
		limit, offset := normalizePage(filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *booking)
	}
	return result, rows.Err()
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error) {
	const query = `
        UPDATE bookings SET status=$3, updated_at=NOW()
        WHERE id=$1 AND status=$2`
	cmd, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrStatusChanged
	}
	return r.GetByID(ctx, id)
}

func (r *bookingRepository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	const query = `
        UPDATE bookings SET status=$1, updated_at=NOW()
        WHERE status=$2 AND date_time + (duration * INTERVAL '1 hour') <= $3`
	cmd, err := r.pool.Exec(ctx, query, domain.BookingStatusCompleted, domain.BookingStatusConfirmed, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *bookingRepository) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.BookingStatus]int64{}
	for rows.Next() {
		var status domain.BookingStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		booking domain.Booking
		student domain.UserSummary
		tutor   domain.UserSummary
	)
	if err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.TutorID,
		&booking.DateTime,
		&booking.Duration,
		&booking.Notes,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&student.Name,
		&student.Email,
		&tutor.Name,
		&tutor.Email,
	); err != nil {
		return nil, err
	}
	student.ID = booking.StudentID
	tutor.ID = booking.TutorID
	booking.Student = &student
	booking.Tutor = &tutor
	return &booking, nil
}
