package auth

import (
	"time"

	"github.com/frahmantamala/event-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Account is the stored credential view of a user.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Provider     string
	ProviderID   *string
	IsActive     bool
	CreatedAt    time.Time
}

// ExternalIdentity is what a verified ID token tells us about the caller.
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
}

const ProviderLocal = "local"

var (
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrInvalidToken       = internal.ErrInvalidToken
	ErrTokenExpired       = internal.ErrTokenExpired
	ErrUserInactive       = internal.ErrUserInactive
	ErrEmailTaken         = internal.ErrEmailTaken
	ErrProviderDisabled   = internal.ErrProviderDisabled
	ErrUserNotFound       = internal.ErrUserNotFound
	ErrUnauthenticated    = internal.ErrUnauthenticated
	ErrForbidden          = internal.ErrPermissionDenied
)
