// Package response renders the JSON bodies of the API.
package response

import (
	"net/http"

	deliverycontext "restapi/internal/delivery/context"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// TokenResponse is the token pair handed to clients.
type TokenResponse struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // Minutes
}

// AuthResponse is returned by every flow that opens a session.
type AuthResponse struct {
	Token *TokenResponse   `json:"token"`
	User  *entity.UserView `json:"user"`
}

// NewTokenResponse maps a token pair to its wire form.
func NewTokenResponse(pair *entity.TokenPair) *TokenResponse {
	if pair == nil {
		return nil
	}

	return &TokenResponse{
		TokenType:    pair.TokenType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresInMinutes,
	}
}

// JSON writes data as is.
func JSON(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// Message writes {"message": message}.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, domainerrors.MessageResponse{Message: message})
}

// Error writes the standard error body.
func Error(c echo.Context, statusCode int, name, message string, fieldErrors []domainerrors.FieldError, stack []string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	if fieldErrors == nil {
		fieldErrors = []domainerrors.FieldError{}
	}

	return c.JSON(statusCode, domainerrors.ErrorResponse{
		Status:    statusCode,
		Name:      name,
		Message:   message,
		Errors:    fieldErrors,
		Stack:     stack,
		RequestID: deliverycontext.GetRequestID(c),
	})
}
