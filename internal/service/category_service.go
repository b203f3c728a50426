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
	"github.com/skillbridge/skillbridge-api/internal/persistence"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/util/errorutil"
)

// CategoriesCacheKey holds the cached public category list.
const CategoriesCacheKey = "categories:all"

// Cache is the JSON cache used for read-heavy listings.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var _ Cache = (*persistence.Redis)(nil)

// CategoryService manages discovery categories.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      Cache
	ttl        time.Duration
	logger     *zap.Logger
}

// CategoryDependencies bundles collaborators for the category service.
type CategoryDependencies struct {
	CategoryRepo repository.CategoryRepository
	Cache        Cache
	TTL          time.Duration
	Logger       *zap.Logger
}

// CategoryInput describes a category write.
type CategoryInput struct {
	Name        string
	Description *string
}

// NewCategoryService constructs the service.
func NewCategoryService(deps CategoryDependencies) *CategoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categories: deps.CategoryRepo,
		cache:      deps.Cache,
		ttl:        deps.TTL,
		logger:     logger,
	}
}

// List returns all categories, served from cache when possible.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	if s.cache != nil {
		var cached []domain.Category
		err := s.cache.GetJSON(ctx, CategoriesCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, persistence.ErrCacheMiss) {
			s.logger.Warn("category cache read failed", zap.Error(err))
		}
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, CategoriesCacheKey, categories, s.ttl); err != nil {
			s.logger.Warn("category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{Name: strings.TrimSpace(input.Name), Description: trimmedOrNil(input.Description)}
	if category.Name == "" {
		return nil, apperrors.NewValidationError("Missing required fields: name", map[string]any{"fields": []string{"name"}})
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, categoryWriteError(err)
	}
	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("name", category.Name))
	s.invalidate(ctx)
	return category, nil
}

// Update renames or re-describes a category.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("Category", nil)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("Missing required fields: name", map[string]any{"fields": []string{"name"}})
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, categoryWriteError(err)
	}
	category.Name = name
	category.Description = trimmedOrNil(input.Description)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, categoryWriteError(err)
	}
	s.logger.Info("category updated", zap.String("category_id", category.ID))
	s.invalidate(ctx)
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("Category", nil)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return categoryWriteError(err)
	}
	s.logger.Info("category deleted", zap.String("category_id", id))
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CategoriesCacheKey); err != nil {
		s.logger.Warn("category cache invalidation failed", zap.Error(err))
	}
}

func categoryWriteError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("Category", nil)
	case apperrors.IsUniqueViolation(err):
		return apperrors.NewConflict("Category name already exists", nil)
	default:
		return err
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
