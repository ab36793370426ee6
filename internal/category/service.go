package category

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/event-management/internal/event"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	// Ensure inserts the category unless a row with the same name exists.
	Ensure(ctx context.Context, category *Category) error
	SetActive(ctx context.Context, name string, active bool) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAllCategories lists active categories only.
func (s *Service) GetAllCategories(ctx context.Context) ([]CategoryResponse, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			responses = append(responses, c.ToResponse())
		}
	}

	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses, nil
}

// IsValidCategory reports whether name maps to a built-in category whose row
// is still active. Store errors are returned, not folded into false.
func (s *Service) IsValidCategory(ctx context.Context, name string) (bool, error) {
	canonical, ok := event.NormalizeCategory(name)
	if !ok {
		return false, nil
	}
	c, err := s.repo.GetByName(ctx, canonical)
	if err != nil {
		s.logger.Error("error checking category validity", "name", name, "error", err)
		return false, err
	}
	return c != nil && c.IsActive, nil
}

// SeedDefaults makes sure every built-in event category has a row.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	names := event.Categories()
	for _, name := range names {
		if err := s.repo.Ensure(ctx, NewCategory(name, DefaultDescription(name))); err != nil {
			s.logger.Error("failed to seed category", "name", name, "error", err)
			return 0, err
		}
	}
	s.logger.Info("categories seeded", "count", len(names))
	return len(names), nil
}

// SetActive toggles whether new events may use the category. Existing events keep it.
func (s *Service) SetActive(ctx context.Context, name string, active bool) (*Category, error) {
	canonical, ok := event.NormalizeCategory(name)
	if !ok {
		return nil, event.ErrInvalidCategory
	}
	if err := s.repo.SetActive(ctx, canonical, active); err != nil {
		s.logger.Error("failed to update category", "name", canonical, "error", err)
		return nil, err
	}
	c, err := s.repo.GetByName(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotSeeded
	}
	s.logger.Info("category updated", "name", canonical, "active", active)
	return c, nil
}

func (s *Service) Deactivate(ctx context.Context, name string) error {
	_, err := s.SetActive(ctx, name, false)
	return err
}
