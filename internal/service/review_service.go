package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/domain"
	"github.com/skillbridge/skillbridge-api/internal/events"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// ReviewService lets students rate sessions that have taken place.
type ReviewService struct {
	reviews    repository.ReviewRepository
	bookings   repository.BookingRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	ReviewRepo  repository.ReviewRepository
	BookingRepo repository.BookingRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Clock       Clock
	Logger      *zap.Logger
}

// ReviewCreateInput describes review payload. Rating is nil when absent.
type ReviewCreateInput struct {
	Rating  *float64
	Comment string
}

// TutorReviews is the public review listing of a tutor.
type TutorReviews struct {
	Reviews       []domain.Review
	AverageRating float64
	Count         int
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		reviews:    deps.ReviewRepo,
		bookings:   deps.BookingRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		clock:      clockOrSystem(deps.Clock),
		logger:     logger,
	}
}

// Create records the student's single review of a past booking.
func (s *ReviewService) Create(ctx context.Context, requester *domain.User, bookingID string, input ReviewCreateInput) (*domain.Review, error) {
	rating, ok := validRating(input.Rating)
	if !ok {
		return nil, apperrors.NewValidationError("Rating must be a whole number between 1 and 5", nil)
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if requester == nil || requester.ID != booking.StudentID {
		return nil, apperrors.NewForbidden("Only the student who booked this session can review it")
	}
	if booking.DateTime.After(s.clock.Now()) {
		return nil, apperrors.NewValidationError("Cannot review a session that has not taken place yet", nil)
	}

	existing, err := s.reviews.CountByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.NewConflict("This booking has already been reviewed", map[string]any{"booking_id": booking.ID})
	}

	review := &domain.Review{
		BookingID:  booking.ID,
		ReviewerID: requester.ID,
		Rating:     rating,
		Comment:    strings.TrimSpace(input.Comment),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("This booking has already been reviewed", map[string]any{"booking_id": booking.ID})
		}
		return nil, err
	}
	summary := requester.Summary()
	review.Reviewer = &summary

	s.logger.Info("review created",
		zap.String("review_id", review.ID),
		zap.String("booking_id", booking.ID),
		zap.Int("rating", rating))
	publish(ctx, s.dispatcher, s.clock, s.logger, events.Event{
		Type:      events.EventReviewCreated,
		BookingID: booking.ID,
		Actor:     userActor(requester),
		Payload: events.ReviewCreatedPayload{
			ReviewID: review.ID,
			TutorID:  booking.TutorID,
			Rating:   rating,
		},
	})
	return review, nil
}

// ListForTutor returns all reviews a tutor received with their average.
func (s *ReviewService) ListForTutor(ctx context.Context, tutorID string) (*TutorReviews, error) {
	if _, err := uuid.Parse(tutorID); err != nil {
		return nil, apperrors.NewNotFound("Tutor", nil)
	}
	if _, err := s.users.GetByIDAndRole(ctx, tutorID, domain.RoleTutor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Tutor", nil)
		}
		return nil, err
	}

	reviews, err := s.reviews.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	result := &TutorReviews{Reviews: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		result.AverageRating = float64(total) / float64(len(reviews))
	}
	return result, nil
}

func (s *ReviewService) loadBooking(ctx context.Context, id string) (*domain.Booking, error) {
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

func validRating(rating *float64) (int, bool) {
	if rating == nil {
		return 0, false
	}
	r := *rating
	if r != float64(int(r)) || r < domain.MinRating || r > domain.MaxRating {
		return 0, false
	}
	return int(r), true
}
