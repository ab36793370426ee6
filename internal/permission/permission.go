package permission

import (
	"errors"
	"fmt"

	userDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/user"
)

// Capability names. The catalog is closed: checks against any other name deny.
const (
	EventCreate    = "event.create"
	EventUpdateOwn = "event.update.own"
	EventUpdateAll = "event.update.all"
	EventDeleteOwn = "event.delete.own"
	EventDeleteAll = "event.delete.all"
	EventRSVP      = "event.rsvp"
)

type definition struct {
	Name        string
	Description string
}

var catalog = []definition{
	{EventCreate, "Can create events"},
	{EventUpdateOwn, "Can update own events"},
	{EventUpdateAll, "Can update any event"},
	{EventDeleteOwn, "Can delete own events"},
	{EventDeleteAll, "Can delete any event"},
	{EventRSVP, "Can RSVP to events"},
}

// Catalog returns the capability names in a stable order.
func Catalog() []string {
	names := make([]string, len(catalog))
	for i, d := range catalog {
		names[i] = d.Name
	}
	return names
}

func Description(name string) string {
	for _, d := range catalog {
		if d.Name == name {
			return d.Description
		}
	}
	return ""
}

type Role string

const (
	RoleSuperAdmin Role = "superAdmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

var ErrUnknownRole = errors.New("unknown role")

func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleUser}
}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// grantsAll marks roles that receive the whole catalog. Stored rows whose
// names were dropped from the catalog are never granted.
var grantsAll = map[Role]bool{
	RoleSuperAdmin: true,
	RoleAdmin:      true,
}

var rolePermissions = map[Role][]string{
	RoleUser: {EventCreate, EventUpdateOwn, EventDeleteOwn, EventRSVP},
}

// RolePermissionNames returns the names a role is provisioned with.
func RolePermissionNames(role Role) []string {
	if grantsAll[role] {
		return Catalog()
	}
	names := rolePermissions[role]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func FromDataModel(p *userDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
	}
}

func FromDataModelSlice(perms []*userDatamodel.Permission) []*Permission {
	result := make([]*Permission, len(perms))
	for i, p := range perms {
		result[i] = FromDataModel(p)
	}
	return result
}

func Names(perms []*Permission) []string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Name
	}
	return names
}
