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
	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

const slotTimeLayout = "15:04"

// TutorService serves tutor discovery and lets tutors manage their profile.
type TutorService struct {
	profiles   repository.TutorProfileRepository
	users      repository.UserRepository
	reviews    repository.ReviewRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// TutorDependencies bundles collaborators for the tutor service.
type TutorDependencies struct {
	ProfileRepo  repository.TutorProfileRepository
	UserRepo     repository.UserRepository
	ReviewRepo   repository.ReviewRepository
	CategoryRepo repository.CategoryRepository
	Logger       *zap.Logger
}

// TutorQuery describes discovery filters.
type TutorQuery struct {
	Subject    *string
	CategoryID *string
	MinRate    *float64
	MaxRate    *float64
	Search     *string
	Page
}

// ProfileInput describes a tutor profile write. HourlyRate is nil when absent.
type ProfileInput struct {
	Bio         string
	Subjects    []string
	HourlyRate  *float64
	CategoryIDs []string
}

// AvailabilityInput is one weekly slot.
type AvailabilityInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
}

// NewTutorService constructs the service.
func NewTutorService(deps TutorDependencies) *TutorService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorService{
		profiles:   deps.ProfileRepo,
		users:      deps.UserRepo,
		reviews:    deps.ReviewRepo,
		categories: deps.CategoryRepo,
		logger:     logger,
	}
}

// List returns active tutors matching the query with their rating summary.
func (s *TutorService) List(ctx context.Context, query TutorQuery) ([]domain.TutorListing, error) {
	if query.MinRate != nil && query.MaxRate != nil && *query.MinRate > *query.MaxRate {
		return nil, apperrors.NewValidationError("minRate cannot be greater than maxRate", nil)
	}
	if query.CategoryID != nil {
		if _, err := uuid.Parse(*query.CategoryID); err != nil {
			return nil, apperrors.NewValidationError("Invalid categoryId", map[string]any{"categoryId": *query.CategoryID})
		}
	}

	limit, offset := query.Page.limitOffset()
	listings, err := s.profiles.ListTutors(ctx, repository.TutorFilter{
		Subject:    query.Subject,
		CategoryID: query.CategoryID,
		MinRate:    query.MinRate,
		MaxRate:    query.MaxRate,
		Search:     query.Search,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.User.ID)
	}
	summaries, err := s.reviews.SummaryByTutors(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		if summary, ok := summaries[listings[i].User.ID]; ok {
			listings[i].AverageRating = summary.Average
			listings[i].ReviewCount = summary.Count
		}
	}
	return listings, nil
}

// Get returns a single tutor with profile, availability and rating summary.
func (s *TutorService) Get(ctx context.Context, id string) (*domain.TutorListing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("Tutor", nil)
	}
	user, err := s.users.GetByIDAndRole(ctx, id, domain.RoleTutor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Tutor", nil)
		}
		return nil, err
	}

	listing := &domain.TutorListing{User: user.Summary()}
	profile, err := s.profiles.GetByUserID(ctx, id)
	switch {
	case err == nil:
		listing.Profile = profile
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, err
	}

	summaries, err := s.reviews.SummaryByTutors(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if summary, ok := summaries[id]; ok {
		listing.AverageRating = summary.Average
		listing.ReviewCount = summary.Count
	}
	return listing, nil
}

// UpsertProfile creates or updates the requester's tutor profile.
func (s *TutorService) UpsertProfile(ctx context.Context, requester *domain.User, input ProfileInput) (*domain.TutorProfile, error) {
	if requester == nil || requester.Role != domain.RoleTutor {
		return nil, apperrors.NewForbidden("Only tutors can manage a tutor profile")
	}
	if input.HourlyRate == nil {
		return nil, apperrors.NewValidationError("Missing required fields: hourlyRate", map[string]any{"fields": []string{"hourlyRate"}})
	}
	if *input.HourlyRate < 0 {
		return nil, apperrors.NewValidationError("Hourly rate cannot be negative", nil)
	}

	categoryIDs := dedupe(input.CategoryIDs)
	for _, id := range categoryIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.NewNotFound("Category", map[string]any{"id": id})
		}
		if _, err := s.categories.GetByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("Category", map[string]any{"id": id})
			}
			return nil, err
		}
	}

	subjects := make([]string, 0, len(input.Subjects))
	for _, subject := range dedupe(input.Subjects) {
		if trimmed := strings.TrimSpace(subject); trimmed != "" {
			subjects = append(subjects, trimmed)
		}
	}

	profile := &domain.TutorProfile{
		UserID:      requester.ID,
		Bio:         strings.TrimSpace(input.Bio),
		Subjects:    subjects,
		HourlyRate:  *input.HourlyRate,
		CategoryIDs: categoryIDs,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	saved, err := s.profiles.GetByUserID(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tutor profile saved", zap.String("user_id", requester.ID), zap.String("profile_id", saved.ID))
	return saved, nil
}

// ReplaceAvailability swaps the requester's weekly availability for slots.
func (s *TutorService) ReplaceAvailability(ctx context.Context, requester *domain.User, slots []AvailabilityInput) ([]domain.Availability, error) {
	if requester == nil || requester.Role != domain.RoleTutor {
		return nil, apperrors.NewForbidden("Only tutors can manage availability")
	}

	parsed := make([]domain.Availability, 0, len(slots))
	for i, slot := range slots {
		if err := validateSlot(slot); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"index": i})
		}
		parsed = append(parsed, domain.Availability{
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}

	profile, err := s.profiles.GetByUserID(ctx, requester.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Tutor profile", nil)
		}
		return nil, err
	}

	saved, err := s.profiles.ReplaceAvailability(ctx, profile.ID, parsed)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tutor availability replaced", zap.String("profile_id", profile.ID), zap.Int("slots", len(saved)))
	return saved, nil
}

func validateSlot(slot AvailabilityInput) error {
	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return errors.New("dayOfWeek must be between 0 and 6")
	}
	start, err := time.Parse(slotTimeLayout, slot.StartTime)
	if err != nil {
		return errors.New("startTime must be in HH:MM format")
	}
	end, err := time.Parse(slotTimeLayout, slot.EndTime)
	if err != nil {
		return errors.New("endTime must be in HH:MM format")
	}
	if !start.Before(end) {
		return errors.New("startTime must be before endTime")
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
