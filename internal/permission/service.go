package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type RepositoryAPI interface {
	UpsertByName(ctx context.Context, name, description string) (*Permission, error)
	ListAll(ctx context.Context) ([]*Permission, error)
	ReplaceUserPermissions(ctx context.Context, userID int64, permissionIDs []int64) error
	ListUserIDsByRole(ctx context.Context, role string) ([]int64, error)
}

var ErrEmptyName = errors.New("permission name is required")

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

// EnsurePermission inserts the permission if it does not exist and returns
// the stored row. Repeated calls return the same ID.
func (s *Service) EnsurePermission(ctx context.Context, name string) (*Permission, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	perm, err := s.repo.UpsertByName(ctx, name, Description(name))
	if err != nil {
		s.logger.Error("failed to ensure permission", "error", err, "name", name)
		return nil, fmt.Errorf("ensure permission %s: %w", name, err)
	}
	return perm, nil
}

// EnsureCatalog upserts every catalog entry and returns all stored permissions.
func (s *Service) EnsureCatalog(ctx context.Context) ([]*Permission, error) {
	for _, name := range Catalog() {
		if _, err := s.EnsurePermission(ctx, name); err != nil {
			return nil, err
		}
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, err
	}

	s.logger.Info("permission catalog ensured", "count", len(all))
	return all, nil
}

// SelectForRole filters all down to the subset the role is provisioned with.
// Names missing from all are skipped.
func (s *Service) SelectForRole(role Role, all []*Permission) []*Permission {
	byName := make(map[string]*Permission, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}

	var selected []*Permission
	for _, name := range RolePermissionNames(role) {
		p, ok := byName[name]
		if !ok {
			s.logger.Warn("permission not found in catalog, skipping", "role", role, "permission", name)
			continue
		}
		selected = append(selected, p)
	}
	return selected
}

// AssignRolePermissions replaces the user's permission set with the role's subset.
func (s *Service) AssignRolePermissions(ctx context.Context, userID int64, role Role, all []*Permission) ([]*Permission, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	selected := s.SelectForRole(role, all)
	ids := make([]int64, len(selected))
	for i, p := range selected {
		ids[i] = p.ID
	}

	if err := s.repo.ReplaceUserPermissions(ctx, userID, ids); err != nil {
		s.logger.Error("failed to replace user permissions", "error", err, "user_id", userID, "role", role)
		return nil, err
	}

	s.logger.Info("role permissions assigned",
		"user_id", userID,
		"role", role,
		"permissions", Names(selected))

	return selected, nil
}

// ReseedRole reassigns permissions for every user carrying the role.
func (s *Service) ReseedRole(ctx context.Context, role Role, all []*Permission) (int, error) {
	userIDs, err := s.repo.ListUserIDsByRole(ctx, role.String())
	if err != nil {
		s.logger.Error("failed to list users by role", "error", err, "role", role)
		return 0, err
	}

	for _, id := range userIDs {
		if _, err := s.AssignRolePermissions(ctx, id, role, all); err != nil {
			return 0, err
		}
	}
	return len(userIDs), nil
}

// ReseedAll ensures the catalog and then reseeds every role.
func (s *Service) ReseedAll(ctx context.Context) (map[Role]int, error) {
	all, err := s.EnsureCatalog(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[Role]int, len(Roles()))
	for _, role := range Roles() {
		n, err := s.ReseedRole(ctx, role, all)
		if err != nil {
			return nil, fmt.Errorf("reseed role %s: %w", role, err)
		}
		counts[role] = n
	}

	s.logger.Info("permissions reseeded",
		"super_admins", counts[RoleSuperAdmin],
		"admins", counts[RoleAdmin],
		"users", counts[RoleUser])

	return counts, nil
}
