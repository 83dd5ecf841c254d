package middleware

import (
	"strings"

	"restapi/config"
	deliverycontext "restapi/internal/delivery/context"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	headerAuthorization = "Authorization"
	keyCurrentUser      = "currentUser"
)

// AuthMiddleware resolves the access token of a request to its user.
type AuthMiddleware struct {
	tokens usecase.TokenIssuer
	scheme string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokens usecase.TokenIssuer, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, scheme: cfg.Auth.HeaderScheme}
}

// IsLoggedIn rejects requests without a valid access token.
func (m *AuthMiddleware) IsLoggedIn(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := m.authenticate(c); err != nil {
			return err
		}

		return next(c)
	}
}

// IsAdmin additionally requires the admin role.
func (m *AuthMiddleware) IsAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := m.authenticate(c); err != nil {
			return err
		}
		if !CurrentUser(c).IsAdmin() {
			return errors.Wrap(domainerrors.ErrInvalidAccess, "admin role required")
		}

		return next(c)
	}
}

// authenticate reuses a user resolved earlier in the same chain.
func (m *AuthMiddleware) authenticate(c echo.Context) error {
	if CurrentUser(c) != nil {
		return nil
	}

	token, ok := m.extractToken(c.Request().Header.Get(headerAuthorization))
	if !ok {
		return errors.Wrap(domainerrors.ErrInvalidAuthorization, "missing or malformed authorization header")
	}

	user, err := m.tokens.Authenticate(c.Request().Context(), token)
	if err != nil {
		return err
	}
	c.Set(keyCurrentUser, user)
	c.SetRequest(c.Request().WithContext(deliverycontext.WithUserID(c.Request().Context(), user.ID.String())))

	return nil
}

// extractToken parses "<scheme> <token>". The scheme is matched case-insensitively.
func (m *AuthMiddleware) extractToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, m.scheme) {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}

// CurrentUser returns the user resolved by IsLoggedIn or IsAdmin.
func CurrentUser(c echo.Context) *entity.User {
	user, _ := c.Get(keyCurrentUser).(*entity.User)

	return user
}
