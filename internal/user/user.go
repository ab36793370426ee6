package user

import (
	"time"

	"github.com/frahmantamala/event-management/internal"
)

// User is the public profile of an account together with its materialized
// permission set.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	Role        string    `json:"role" db:"role"`
	Provider    string    `json:"provider,omitempty" db:"provider"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Summary is what other users may see from an email lookup.
type Summary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Name: u.Name}
}

var (
	ErrNotFound        = internal.ErrUserNotFound
	ErrUnauthenticated = internal.ErrUnauthenticated
)
