package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/internal/permission"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
	CreateAccount(ctx context.Context, account *Account) error
	DeleteAccount(ctx context.Context, id int64) error
	LinkProvider(ctx context.Context, userID int64, provider, providerID string) error
	GetPermissionNames(ctx context.Context, userID int64) ([]string, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// PermissionAssigner provisions a freshly registered account.
type PermissionAssigner interface {
	EnsureCatalog(ctx context.Context) ([]*permission.Permission, error)
	AssignRolePermissions(ctx context.Context, userID int64, role permission.Role, all []*permission.Permission) ([]*permission.Permission, error)
}

type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*ExternalIdentity, error)
}

type Service struct {
	repo        RepositoryAPI
	tokens      TokenGeneratorAPI
	permissions PermissionAssigner
	verifier    IDTokenVerifier
	cache       *IdentityCache
	metrics     *observability.Metrics
	logger      *slog.Logger
	bcryptCost  int
	providerTag string
}

type Option func(*Service)

func WithIDTokenVerifier(v IDTokenVerifier, provider string) Option {
	return func(s *Service) {
		s.verifier = v
		s.providerTag = provider
	}
}

func WithIdentityCache(c *IdentityCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithBCryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, permissions PermissionAssigner, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		tokens:      tokens,
		permissions: permissions,
		logger:      logger,
		bcryptCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	account, err := s.repo.GetAccountByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthTokens{}, ErrInvalidCredentials
		}
		s.logger.Error("failed to load account for login", "error", err)
		return AuthTokens{}, err
	}

	if account.PasswordHash == "" {
		return AuthTokens{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(account.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}
	if !account.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(account)
}

// Register creates a local account with role user and provisions its permissions.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*Account, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	email := normalizeEmail(dto.Email)
	if _, err := s.repo.GetAccountByEmail(ctx, email); err == nil {
		return nil, AuthTokens{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, AuthTokens{}, err
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, AuthTokens{}, internal.NewInternalError("Failed to hash password", err)
	}

	account := &Account{
		Email:        email,
		Name:         strings.TrimSpace(dto.Name),
		PasswordHash: hash,
		Role:         permission.RoleUser.String(),
		Provider:     ProviderLocal,
		IsActive:     true,
	}
	if err := s.provision(ctx, account); err != nil {
		return nil, AuthTokens{}, err
	}

	tokens, err := s.issueTokens(account)
	if err != nil {
		return nil, AuthTokens{}, err
	}

	s.logger.Info("account registered", "user_id", account.ID, "email", account.Email)
	return account, tokens, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	account, err := s.repo.GetAccountByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthTokens{}, ErrInvalidToken
		}
		return AuthTokens{}, err
	}
	if !account.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(account)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// ExchangeIDToken verifies an ID token from the configured provider and
// returns local tokens, registering the account on first sign-in.
func (s *Service) ExchangeIDToken(ctx context.Context, rawIDToken string) (AuthTokens, error) {
	if s.verifier == nil {
		return AuthTokens{}, ErrProviderDisabled
	}

	ext, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		s.logger.Warn("id token verification failed", "error", err)
		return AuthTokens{}, ErrInvalidToken
	}
	if ext.Email == "" || !ext.EmailVerified {
		s.logger.Warn("id token rejected: email missing or unverified", "subject", ext.Subject)
		return AuthTokens{}, ErrInvalidToken
	}

	email := normalizeEmail(ext.Email)
	account, err := s.repo.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		if account.ProviderID == nil || *account.ProviderID == "" {
			if err := s.repo.LinkProvider(ctx, account.ID, s.providerTag, ext.Subject); err != nil {
				s.logger.Error("failed to link provider", "error", err, "user_id", account.ID)
				return AuthTokens{}, err
			}
		}
	case errors.Is(err, ErrUserNotFound):
		subject := ext.Subject
		name := ext.Name
		if name == "" {
			name = email
		}
		account = &Account{
			Email:      email,
			Name:       name,
			Role:       permission.RoleUser.String(),
			Provider:   s.providerTag,
			ProviderID: &subject,
			IsActive:   true,
		}
		if err := s.provision(ctx, account); err != nil {
			return AuthTokens{}, err
		}
		s.logger.Info("account registered from identity provider", "user_id", account.ID, "provider", s.providerTag)
	default:
		return AuthTokens{}, err
	}

	if !account.IsActive {
		return AuthTokens{}, ErrUserInactive
	}
	return s.issueTokens(account)
}

// LoadIdentity resolves the caller's current permission set, via the cache when configured.
func (s *Service) LoadIdentity(ctx context.Context, userID int64) (*Identity, error) {
	if s.cache != nil {
		if id, ok := s.cache.Get(userID); ok {
			s.metrics.RecordCacheLookup(true)
			return id, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	account, err := s.repo.GetAccountByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrUserInactive
	}

	names, err := s.repo.GetPermissionNames(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("Failed to load permissions", err)
	}

	id := NewIdentity(account.ID, account.Email, account.Role, names)
	if s.cache != nil {
		s.cache.Add(id)
	}
	return id, nil
}

func (s *Service) provision(ctx context.Context, account *Account) error {
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		s.logger.Error("failed to create account", "error", err, "email", account.Email)
		return err
	}

	all, err := s.permissions.EnsureCatalog(ctx)
	if err == nil {
		_, err = s.permissions.AssignRolePermissions(ctx, account.ID, permission.Role(account.Role), all)
	}
	if err != nil {
		s.logger.Error("failed to provision permissions, removing account", "error", err, "user_id", account.ID)
		if delErr := s.repo.DeleteAccount(ctx, account.ID); delErr != nil {
			s.logger.Error("failed to remove unprovisioned account", "error", delErr, "user_id", account.ID)
		}
		return err
	}
	return nil
}

func (s *Service) issueTokens(account *Account) (AuthTokens, error) {
	id := strconv.FormatInt(account.ID, 10)

	accessToken, err := s.tokens.GenerateAccessToken(id, account.Email)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(id, account.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	tokens := AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if g, ok := s.tokens.(interface{ AccessTTL() time.Duration }); ok {
		tokens.ExpiresIn = int64(g.AccessTTL().Seconds())
	}
	return tokens, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
