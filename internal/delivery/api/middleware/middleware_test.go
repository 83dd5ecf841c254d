package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"restapi/config"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func newTestConfig(env string) *config.Config {
	cfg := &config.Config{Auth: &config.AuthConfig{HeaderScheme: "JWT"}}
	cfg.Env.Env = env
	cfg.Error.StackLimit = 3

	return cfg
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewErrorMiddleware(newDiscardLogger(), cfg).HandleHTTPError

	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domainerrors.ErrorResponse {
	t.Helper()

	var body domainerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantName    string
		wantMessage string
		wantFields  int
	}{
		{
			name:        "app error",
			err:         errors.Wrap(domainerrors.ErrNotActive, "signin"),
			wantStatus:  http.StatusUnauthorized,
			wantName:    "NotActive",
			wantMessage: domainerrors.ErrNotActive.Message(),
		},
		{
			name:        "duplicate key names the field",
			err:         domainerrors.NewDuplicateKeyError("email"),
			wantStatus:  http.StatusConflict,
			wantName:    "DuplicateKey",
			wantMessage: domainerrors.ErrDuplicateKey.Message(),
			wantFields:  1,
		},
		{
			name:        "echo not found",
			err:         echo.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantName:    "NotFound",
			wantMessage: "Not Found",
		},
		{
			name:        "malformed body",
			err:         echo.NewHTTPError(http.StatusBadRequest, "bad json"),
			wantStatus:  http.StatusBadRequest,
			wantName:    "ValidationError",
			wantMessage: "bad json",
		},
		{
			name:        "unknown error is hidden",
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantName:    "InternalError",
			wantMessage: internalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(newTestConfig("production"))
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			e.HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantName, body.Name)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Len(t, body.Errors, tt.wantFields)
			assert.Empty(t, body.Stack)
		})
	}
}

func TestErrorMiddleware_StackInDevelopment(t *testing.T) {
	e := newTestEcho(newTestConfig("development"))
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	e.HTTPErrorHandler(errors.Wrap(domainerrors.ErrInvalidToken, "refresh"), c)

	body := decodeError(t, rec)
	assert.NotEmpty(t, body.Stack)
	assert.LessOrEqual(t, len(body.Stack), 3)
}

type stubTokenIssuer struct {
	users map[string]*entity.User
	calls int
}

func (s *stubTokenIssuer) IssueTokenPair(context.Context, *entity.User) (*entity.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTokenIssuer) RedeemRefresh(context.Context, string, string) (*entity.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTokenIssuer) Revoke(context.Context, string) error { return nil }

func (s *stubTokenIssuer) RevokeAll(context.Context, uuid.UUID) error { return nil }

func (s *stubTokenIssuer) Authenticate(_ context.Context, accessToken string) (*entity.User, error) {
	s.calls++
	user, ok := s.users[accessToken]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrInvalidAuthorization)
	}

	return user, nil
}

func TestAuthMiddleware(t *testing.T) {
	member := &entity.User{ID: uuid.New(), Role: entity.RoleUser, Active: true}
	admin := &entity.User{ID: uuid.New(), Role: entity.RoleAdmin, Active: true}
	tokens := &stubTokenIssuer{users: map[string]*entity.User{"member": member, "admin": admin}}

	cfg := newTestConfig("production")
	auth := NewAuthMiddleware(tokens, cfg)

	e := newTestEcho(cfg)
	whoami := func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentUser(c).ID.String())
	}
	e.GET("/me", whoami, auth.IsLoggedIn)
	e.GET("/admin", whoami, auth.IsAdmin)

	tests := []struct {
		name        string
		path        string
		header      string
		wantStatus  int
		wantMessage string
		wantBody    string
	}{
		{name: "missing header", path: "/me", wantStatus: http.StatusForbidden, wantMessage: "Invalid authorization"},
		{name: "bearer scheme", path: "/me", header: "Bearer member", wantStatus: http.StatusForbidden, wantMessage: "Invalid authorization"},
		{name: "empty token", path: "/me", header: "JWT ", wantStatus: http.StatusForbidden, wantMessage: "Invalid authorization"},
		{name: "unknown token", path: "/me", header: "JWT nope", wantStatus: http.StatusForbidden, wantMessage: "Invalid authorization"},
		{name: "member", path: "/me", header: "JWT member", wantStatus: http.StatusOK, wantBody: member.ID.String()},
		{name: "lowercase scheme", path: "/me", header: "jwt member", wantStatus: http.StatusOK, wantBody: member.ID.String()},
		{name: "member on admin route", path: "/admin", header: "JWT member", wantStatus: http.StatusForbidden, wantMessage: "Invalid access!"},
		{name: "admin", path: "/admin", header: "JWT admin", wantStatus: http.StatusOK, wantBody: admin.ID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decodeError(t, rec).Message)
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_GroupAndRouteGuardsAuthenticateOnce(t *testing.T) {
	member := &entity.User{ID: uuid.New(), Role: entity.RoleUser, Active: true}
	admin := &entity.User{ID: uuid.New(), Role: entity.RoleAdmin, Active: true}
	tokens := &stubTokenIssuer{users: map[string]*entity.User{"member": member, "admin": admin}}

	cfg := newTestConfig("production")
	auth := NewAuthMiddleware(tokens, cfg)

	e := newTestEcho(cfg)
	group := e.Group("/activities", auth.IsLoggedIn)
	group.DELETE("/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, auth.IsAdmin)

	tests := []struct {
		header     string
		wantStatus int
	}{
		{header: "JWT admin", wantStatus: http.StatusNoContent},
		{header: "JWT member", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			tokens.calls = 0
			req := httptest.NewRequest(http.MethodDelete, "/activities/"+uuid.NewString(), nil)
			req.Header.Set(echo.HeaderAuthorization, tt.header)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, 1, tokens.calls)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rate, err := limiter.NewRateFromFormatted("2-M")
	require.NoError(t, err)
	l := limiter.New(memory.NewStore(), rate)

	e := newTestEcho(newTestConfig("production"))
	e.POST("/signin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, NewRateLimitMiddleware(l, newDiscardLogger()).Limit)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)
	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(HeaderRateLimitRemaining))

	rec = send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TooManyRequests", decodeError(t, rec).Name)

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2").Code)
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	called := 0
	next := func(echo.Context) error {
		called++

		return nil
	}

	handler := NewRateLimitMiddleware(nil, newDiscardLogger()).Limit(next)
	for range 5 {
		require.NoError(t, handler(nil))
	}
	assert.Equal(t, 5, called)
}
