package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/event-management/internal/transport"
	"github.com/frahmantamala/event-management/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	Register(ctx context.Context, dto RegisterDTO) (*Account, AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ExchangeIDToken(ctx context.Context, rawIDToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	LoadIdentity(ctx context.Context, userID int64) (*Identity, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

type RegisterResponse struct {
	User   AccountResponse `json:"user"`
	Tokens AuthTokens      `json:"tokens"`
}

type AccountResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, tokens, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Register: registration failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, RegisterResponse{
		User: AccountResponse{
			ID:    account.ID,
			Email: account.Email,
			Name:  account.Name,
			Role:  account.Role,
		},
		Tokens: tokens,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("RefreshToken: token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// ExchangeIDToken trades a provider ID token for local credentials.
func (h *Handler) ExchangeIDToken(w http.ResponseWriter, r *http.Request) {
	var dto ExchangeIDTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.ExchangeIDToken(r.Context(), dto.IDToken)
	if err != nil {
		h.Logger.Warn("ExchangeIDToken: exchange failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware rejects requests without a valid access token.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		id, err := h.resolve(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(h.attach(r.Context(), id)))
	})
}

// OptionalAuthMiddleware attaches an identity when a token is present and
// lets anonymous requests through untouched.
func (h *Handler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := h.resolve(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(h.attach(r.Context(), id)))
	})
}

func (h *Handler) resolve(ctx context.Context, token string) (*Identity, error) {
	claims, err := h.Service.ValidateAccessToken(token)
	if err != nil {
		h.Logger.Warn("auth middleware: token validation failed", "error", err)
		return nil, err
	}

	uid, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		h.Logger.Warn("auth middleware: malformed user id in claims", "value", claims.UserID)
		return nil, ErrInvalidToken
	}

	id, err := h.Service.LoadIdentity(ctx, uid)
	if err != nil {
		h.Logger.Warn("auth middleware: failed to load identity", "user_id", uid, "error", err)
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return id, nil
}

func (h *Handler) attach(ctx context.Context, id *Identity) context.Context {
	ctx = WithIdentity(ctx, id)
	return logger.With(ctx, "user_id", id.ID)
}
