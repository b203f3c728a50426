package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/domain"
	"github.com/skillbridge/skillbridge-api/internal/events"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// Accepted layouts for booking dateTime, tried in order. Zoneless values are UTC.
var bookingTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// BookingService governs creation, visibility and status changes of bookings.
type BookingService struct {
	bookings   repository.BookingRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	BookingRepo repository.BookingRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Clock       Clock
	Logger      *zap.Logger
}

// BookingCreateInput describes booking creation payload. Duration holds the
// decoded JSON value and is nil when absent.
type BookingCreateInput struct {
	TutorID  string
	DateTime string
	Duration any
	Notes    string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:   deps.BookingRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		clock:      clockOrSystem(deps.Clock),
		logger:     logger,
	}
}

// Create books a session with a tutor on behalf of a student.
// Validation runs in a fixed order and the first failure is returned.
func (s *BookingService) Create(ctx context.Context, requester *domain.User, input BookingCreateInput) (*domain.Booking, error) {
	if err := s.CanCreate(requester); err != nil {
		return nil, err
	}

	tutorID := strings.TrimSpace(input.TutorID)
	rawDateTime := strings.TrimSpace(input.DateTime)

	var missing []string
	if tutorID == "" {
		missing = append(missing, "tutorId")
	}
	if rawDateTime == "" {
		missing = append(missing, "dateTime")
	}
	if input.Duration == nil {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			"Missing required fields: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing},
		)
	}

	dateTime, err := parseBookingTime(rawDateTime)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid dateTime format", map[string]any{"dateTime": rawDateTime})
	}
	if !dateTime.After(s.clock.Now()) {
		return nil, apperrors.NewValidationError("Booking dateTime must be in the future", nil)
	}

	duration, ok := input.Duration.(float64)
	if !ok || !(duration > 0 && duration <= domain.MaxBookingDurationHours) {
		return nil, apperrors.NewValidationError("Duration must be greater than 0 and at most 24 hours", nil)
	}

	if _, err := uuid.Parse(tutorID); err != nil {
		return nil, apperrors.NewNotFound("Tutor", nil)
	}
	if _, err := s.users.GetByIDAndRole(ctx, tutorID, domain.RoleTutor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Tutor", nil)
		}
		return nil, err
	}

	booking := &domain.Booking{
		StudentID: requester.ID,
		TutorID:   tutorID,
		DateTime:  dateTime.UTC(),
		Duration:  duration,
		Notes:     strings.TrimSpace(input.Notes),
		Status:    domain.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	created, err := s.bookings.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", created.ID),
		zap.String("student_id", created.StudentID),
		zap.String("tutor_id", created.TutorID),
		zap.Time("date_time", created.DateTime))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingCreated,
		BookingID: created.ID,
		Actor:     userActor(requester),
		Payload: events.BookingCreatedPayload{
			StudentID: created.StudentID,
			TutorID:   created.TutorID,
			DateTime:  created.DateTime,
			Duration:  created.Duration,
		},
	})
	return created, nil
}

// CanCreate reports whether requester may book sessions at all.
func (s *BookingService) CanCreate(requester *domain.User) error {
	if requester == nil || requester.Role != domain.RoleStudent {
		return apperrors.NewForbidden("Only students can create bookings")
	}
	return nil
}

// List returns the requester's bookings, newest session first.
func (s *BookingService) List(ctx context.Context, requester *domain.User) ([]domain.Booking, error) {
	if requester == nil {
		return nil, apperrors.NewForbidden("Access denied")
	}
	switch requester.Role {
	case domain.RoleStudent:
		return s.bookings.ListByStudent(ctx, requester.ID)
	case domain.RoleTutor:
		return s.bookings.ListByTutor(ctx, requester.ID)
	default:
		return nil, apperrors.NewForbidden("Only students and tutors have bookings")
	}
}

// GetByID returns a booking visible to one of its two participants.
func (s *BookingService) GetByID(ctx context.Context, requester *domain.User, id string) (*domain.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester == nil || !booking.IsParticipant(requester.ID) {
		return nil, apperrors.NewForbidden("You do not have access to this booking")
	}
	return booking, nil
}

// UpdateStatus lets the assigned tutor accept or decline a pending booking.
func (s *BookingService) UpdateStatus(ctx context.Context, requester *domain.User, id string, newStatus domain.BookingStatus) (*domain.Booking, error) {
	if !domain.IsTutorTarget(newStatus) {
		return nil, apperrors.NewValidationError("Status must be CONFIRMED or CANCELLED", map[string]any{"status": newStatus})
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch domain.CanTransition(requester, booking, newStatus) {
	case domain.TransitionAllowed:
	case domain.TransitionForbidden:
		return nil, apperrors.NewForbidden("Only the assigned tutor can update this booking")
	case domain.TransitionInvalidState:
		return nil, pendingConflict(booking.Status)
	default:
		return nil, apperrors.NewValidationError("Status must be CONFIRMED or CANCELLED", nil)
	}

	oldStatus := booking.Status
	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, oldStatus, newStatus)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperrors.NewConflict("Booking was updated by another request", map[string]any{"booking_id": booking.ID})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Booking", nil)
		}
		return nil, err
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", updated.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(updated.Status)))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingStatusChanged,
		BookingID: updated.ID,
		Actor:     userActor(requester),
		Payload: events.BookingStatusChangedPayload{
			StudentID: updated.StudentID,
			TutorID:   updated.TutorID,
			OldStatus: oldStatus,
			NewStatus: updated.Status,
		},
	})
	return updated, nil
}

func (s *BookingService) load(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("Booking", nil)
	}
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Booking", nil)
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.clock, s.logger, event)
}

func pendingConflict(current domain.BookingStatus) error {
	return apperrors.NewConflict("Only pending bookings can be updated", map[string]any{"status": current})
}

func parseBookingTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range bookingTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func publish(ctx context.Context, dispatcher events.Dispatcher, clock Clock, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = clock.Now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func userActor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{System: true}
	}
	id := user.ID
	role := user.Role
	return events.Actor{UserID: &id, Role: &role}
}
