package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/event-management/internal/permission"
	"github.com/frahmantamala/event-management/internal/transport"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type stubAuthService struct {
	tokens   AuthTokens
	err      error
	claims   *Claims
	identity *Identity
	loadErr  error
}

func (s *stubAuthService) Authenticate(_ context.Context, _ LoginDTO) (AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubAuthService) Register(_ context.Context, dto RegisterDTO) (*Account, AuthTokens, error) {
	if s.err != nil {
		return nil, AuthTokens{}, s.err
	}
	return &Account{ID: 5, Email: dto.Email, Name: dto.Name, Role: "user"}, s.tokens, nil
}

func (s *stubAuthService) RefreshTokens(_ context.Context, _ string) (AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubAuthService) ExchangeIDToken(_ context.Context, _ string) (AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubAuthService) ValidateAccessToken(_ string) (*Claims, error) {
	if s.claims == nil {
		return nil, ErrInvalidToken
	}
	return s.claims, nil
}

func (s *stubAuthService) LoadIdentity(_ context.Context, _ int64) (*Identity, error) {
	return s.identity, s.loadErr
}

func decodeError(rec *httptest.ResponseRecorder) transport.ErrorResponse {
	var body transport.ErrorResponse
	gomega.Expect(json.NewDecoder(rec.Body).Decode(&body)).To(gomega.Succeed())
	return body
}

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		svc     *stubAuthService
		handler *Handler
	)

	ginkgo.BeforeEach(func() {
		svc = &stubAuthService{tokens: AuthTokens{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}}
		handler = NewHandler(svc)
		handler.Logger = logger.Discard()
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return tokens on success", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"u@example.com","password":"pw"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var tokens AuthTokens
			gomega.Expect(json.NewDecoder(rec.Body).Decode(&tokens)).To(gomega.Succeed())
			gomega.Expect(tokens.AccessToken).To(gomega.Equal("a"))
		})

		ginkgo.It("should map bad credentials to 401", func() {
			svc.err = ErrInvalidCredentials
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"u@example.com","password":"pw"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeError(rec).ErrorCode).To(gomega.Equal("INVALID_CREDENTIALS"))
		})

		ginkgo.It("should reject malformed bodies", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("should respond 201 with the account and tokens", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"email":"n@example.com","name":"N","password":"longenough"}`))
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			var body RegisterResponse
			gomega.Expect(json.NewDecoder(rec.Body).Decode(&body)).To(gomega.Succeed())
			gomega.Expect(body.User.Email).To(gomega.Equal("n@example.com"))
			gomega.Expect(body.Tokens.RefreshToken).To(gomega.Equal("r"))
		})

		ginkgo.It("should respond 409 when the email is taken", func() {
			svc.err = ErrEmailTaken
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"email":"n@example.com","name":"N","password":"longenough"}`))
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		})
	})

	ginkgo.Describe("ExchangeIDToken", func() {
		ginkgo.It("should respond 404 when no provider is configured", func() {
			svc.err = ErrProviderDisabled
			req := httptest.NewRequest(http.MethodPost, "/auth/oidc/exchange", bytes.NewBufferString(`{"id_token":"raw"}`))
			rec := httptest.NewRecorder()

			handler.ExchangeIDToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("should require an id_token", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/oidc/exchange", bytes.NewBufferString(`{}`))
			rec := httptest.NewRecorder()

			handler.ExchangeIDToken(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var reached *Identity

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached, _ = IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		ginkgo.BeforeEach(func() {
			reached = nil
		})

		ginkgo.It("should reject requests without a token", func() {
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeNil())
		})

		ginkgo.It("should reject invalid tokens", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer nope")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should attach the identity for valid tokens", func() {
			svc.claims = &Claims{UserID: "9", Email: "u@example.com"}
			svc.identity = NewIdentity(9, "u@example.com", "user", []string{permission.EventRSVP})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "bearer good")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(reached).NotTo(gomega.BeNil())
			gomega.Expect(reached.ID).To(gomega.Equal(int64(9)))
		})

		ginkgo.It("should treat a deleted user as an invalid token", func() {
			svc.claims = &Claims{UserID: "9"}
			svc.loadErr = ErrUserNotFound

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer good")
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeError(rec).ErrorCode).To(gomega.Equal("INVALID_TOKEN"))
		})

		ginkgo.It("should let anonymous requests through the optional variant", func() {
			rec := httptest.NewRecorder()
			handler.OptionalAuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(reached).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var rbac *RBACAuthorization

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(id *Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/events", nil)
		if id != nil {
			req = req.WithContext(WithIdentity(req.Context(), id))
		}
		rec := httptest.NewRecorder()
		rbac.Require(permission.EventCreate)(ok).ServeHTTP(rec, req)
		return rec
	}

	ginkgo.BeforeEach(func() {
		rbac = NewRBACAuthorization(logger.Discard(), nil)
	})

	ginkgo.It("should respond 401 without an identity", func() {
		gomega.Expect(serve(nil).Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should respond 403 when the capability is missing", func() {
		rec := serve(NewIdentity(1, "u@example.com", "admin", []string{permission.EventRSVP}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(decodeError(rec).ErrorCode).To(gomega.Equal("PERMISSION_DENIED"))
	})

	ginkgo.It("should pass through when the capability is held", func() {
		rec := serve(NewIdentity(1, "u@example.com", "user", []string{permission.EventCreate}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
	})
})
