package auth

import (
	"context"
	"sort"
)

// Identity is the authenticated caller for one request. Authorization only
// consults Permissions; Role is informational.
type Identity struct {
	ID          int64               `json:"id"`
	Email       string              `json:"email"`
	Role        string              `json:"role"`
	Permissions map[string]struct{} `json:"-"`
}

func NewIdentity(id int64, email, role string, permissions []string) *Identity {
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}
	return &Identity{
		ID:          id,
		Email:       email,
		Role:        role,
		Permissions: set,
	}
}

// PermissionNames returns the materialized set sorted by name.
func (i *Identity) PermissionNames() []string {
	if i == nil {
		return nil
	}
	names := make([]string, 0, len(i.Permissions))
	for p := range i.Permissions {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

type ctxKey string

const identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns nil, false for anonymous requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}
