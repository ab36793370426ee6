package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
	// Ensure inserts the user when the email is new and returns the stored row
	// either way.
	Ensure(ctx context.Context, u *User, passwordHash string) (*User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms, err := s.repo.GetPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}
	if perms == nil {
		perms = []string{}
	}
	u.Permissions = perms

	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Summary, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	summary := u.Summary()
	return &summary, nil
}

// EnsureUser is used by the seed command to create fixture accounts.
func (s *Service) EnsureUser(ctx context.Context, email, name, role, passwordHash string) (*User, error) {
	u, err := s.repo.Ensure(ctx, &User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Name:     name,
		Role:     role,
		Provider: "local",
		IsActive: true,
	}, passwordHash)
	if err != nil {
		s.logger.Error("failed to ensure user", "error", err, "email", email)
		return nil, err
	}
	return u, nil
}
