package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

var _ = ginkgo.Describe("OIDCVerifier", func() {
	const (
		issuer   = "https://accounts.example.com"
		clientID = "event-management"
	)

	var (
		key      *rsa.PrivateKey
		verifier *OIDCVerifier
	)

	sign := func(claims idTokenClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		raw, err := token.SignedString(key)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return raw
	}

	baseClaims := func() idTokenClaims {
		now := time.Now()
		return idTokenClaims{
			Email:         "oidc@example.com",
			EmailVerified: true,
			Name:          "Oidc User",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "subject-123",
				Audience:  jwt.ClaimStrings{clientID},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	ginkgo.BeforeEach(func() {
		var err error
		key, err = rsa.GenerateKey(rand.Reader, 2048)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
		verifier = NewOIDCVerifierFromKeySet(issuer, clientID, keySet)
	})

	ginkgo.It("should extract the identity from a valid ID token", func() {
		ext, err := verifier.Verify(context.Background(), sign(baseClaims()))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ext.Subject).To(gomega.Equal("subject-123"))
		gomega.Expect(ext.Email).To(gomega.Equal("oidc@example.com"))
		gomega.Expect(ext.EmailVerified).To(gomega.BeTrue())
		gomega.Expect(ext.Name).To(gomega.Equal("Oidc User"))
	})

	ginkgo.It("should reject tokens minted for another client", func() {
		claims := baseClaims()
		claims.Audience = jwt.ClaimStrings{"someone-else"}

		_, err := verifier.Verify(context.Background(), sign(claims))
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should reject tokens from another issuer", func() {
		claims := baseClaims()
		claims.Issuer = "https://evil.example.com"

		_, err := verifier.Verify(context.Background(), sign(claims))
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should reject expired tokens", func() {
		claims := baseClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

		_, err := verifier.Verify(context.Background(), sign(claims))
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should reject tokens signed by an unknown key", func() {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, baseClaims()).SignedString(other)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = verifier.Verify(context.Background(), raw)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
