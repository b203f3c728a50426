package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/domain"
	"github.com/skillbridge/skillbridge-api/internal/observability"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// AdminService backs the moderation console.
type AdminService struct {
	users    repository.UserRepository
	bookings repository.BookingRepository
	reviews  repository.ReviewRepository
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo    repository.UserRepository
	BookingRepo repository.BookingRepository
	ReviewRepo  repository.ReviewRepository
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// UserQuery filters the admin user listing.
type UserQuery struct {
	Role   *domain.Role
	Status *domain.UserStatus
	Search *string
	Page
}

// UserPatch changes role and/or status of an account.
type UserPatch struct {
	Role   *domain.Role
	Status *domain.UserStatus
}

// Stats summarizes marketplace activity.
type Stats struct {
	UsersByRole      map[domain.Role]int64          `json:"usersByRole"`
	BookingsByStatus map[domain.BookingStatus]int64 `json:"bookingsByStatus"`
	Reviews          int64                          `json:"reviews"`
	HTTP             observability.Snapshot         `json:"http"`
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		users:    deps.UserRepo,
		bookings: deps.BookingRepo,
		reviews:  deps.ReviewRepo,
		metrics:  deps.Metrics,
		logger:   logger,
	}
}

// ListUsers returns accounts matching the query.
func (s *AdminService) ListUsers(ctx context.Context, query UserQuery) ([]domain.User, error) {
	if query.Role != nil && !query.Role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": *query.Role})
	}
	if query.Status != nil && !query.Status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": *query.Status})
	}
	limit, offset := query.Page.limitOffset()
	return s.users.List(ctx, repository.UserFilter{
		Role:   query.Role,
		Status: query.Status,
		Search: query.Search,
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateUser changes another user's role or status.
func (s *AdminService) UpdateUser(ctx context.Context, requester *domain.User, id string, patch UserPatch) (*domain.User, error) {
	if requester == nil || requester.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("insufficient role")
	}
	if patch.Role == nil && patch.Status == nil {
		return nil, apperrors.NewValidationError("Nothing to update: provide role or status", nil)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": *patch.Role})
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": *patch.Status})
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("User", nil)
	}
	if id == requester.ID {
		return nil, apperrors.NewConflict("Admins cannot change their own role or status", nil)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, err
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Status != nil {
		user.Status = *patch.Status
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated by admin",
		zap.String("admin_id", requester.ID),
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("status", string(user.Status)))
	return user, nil
}

// ListBookings returns all bookings, optionally filtered by status.
func (s *AdminService) ListBookings(ctx context.Context, status *domain.BookingStatus, page Page) ([]domain.Booking, error) {
	filter := repository.BookingFilter{}
	if status != nil {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": *status})
		}
		filter.Statuses = []domain.BookingStatus{*status}
	}
	filter.Limit, filter.Offset = page.limitOffset()
	return s.bookings.List(ctx, filter)
}

// Stats aggregates counts across the marketplace.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		UsersByRole:      users,
		BookingsByStatus: bookings,
		Reviews:          reviews,
		HTTP:             s.metrics.Snapshot(),
	}, nil
}
