package auth

import (
	"github.com/frahmantamala/event-management/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ExchangeIDTokenDTO struct {
	IDToken string `json:"id_token" validate:"required"`
}

func (d LoginDTO) Validate() error {
	return validation.Struct(d)
}

func (d RegisterDTO) Validate() error {
	return validation.Struct(d)
}

func (d RefreshTokenDTO) Validate() error {
	return validation.Struct(d)
}

func (d ExchangeIDTokenDTO) Validate() error {
	return validation.Struct(d)
}
