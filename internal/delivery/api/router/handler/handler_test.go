package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restapi/config"
	"restapi/internal/delivery/api/middleware"
	"restapi/internal/delivery/api/validator"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/query"
	"restapi/internal/domain/service"
	"restapi/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *mockAuthUsecase) Signin(ctx context.Context, input *usecase.SigninInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) OAuthLogin(ctx context.Context, profile *service.OAuthProfile) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, profile)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) Activate(ctx context.Context, token string) (*entity.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *mockAuthUsecase) Reactivate(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) Forgot(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthUsecase) Reset(ctx context.Context, input *usecase.ResetInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockAuthUsecase) Logout(ctx context.Context, actor *entity.User, refreshToken string) error {
	return m.Called(ctx, actor, refreshToken).Error(0)
}

type mockUserUsecase struct {
	mock.Mock
}

func (m *mockUserUsecase) List(ctx context.Context, q *query.ListQuery) (*usecase.ListUsersOutput, error) {
	args := m.Called(ctx, q)
	out, _ := args.Get(0).(*usecase.ListUsersOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) Create(ctx context.Context, actor *entity.User, input *usecase.CreateUserInput) (*entity.User, error) {
	args := m.Called(ctx, actor, input)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *mockUserUsecase) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *mockUserUsecase) Update(ctx context.Context, actor *entity.User, id uuid.UUID, input *usecase.UpdateUserInput) (*entity.User, error) {
	args := m.Called(ctx, actor, id, input)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *mockUserUsecase) Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type mockOAuthUsecase struct {
	mock.Mock
}

func (m *mockOAuthUsecase) Providers() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockOAuthUsecase) Begin(ctx context.Context, provider string) (string, error) {
	args := m.Called(ctx, provider)

	return args.String(0), args.Error(1)
}

func (m *mockOAuthUsecase) Complete(ctx context.Context, provider, state, code string) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, provider, state, code)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockOAuthUsecase) SignInWithIDToken(ctx context.Context, idToken string) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, idToken)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func newTestEcho() *echo.Echo {
	cfg := &config.Config{}
	cfg.Error.StackLimit = 5

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg).HandleHTTPError

	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestAuthHandler_Signup(t *testing.T) {
	auth := new(mockAuthUsecase)
	h := NewAuthHandler(auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := newTestEcho()
	e.POST("/auth/signup", h.Signup)

	created := &entity.User{
		ID:           uuid.New(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "a@x.com",
		Phone:        "123",
		PasswordHash: "$2a$10$secret",
		Role:         entity.RoleUser,
		Activation:   &entity.TimedToken{Token: "654321"},
	}
	auth.On("Signup", mock.Anything, mock.MatchedBy(func(in *usecase.SignupInput) bool {
		return in.Email == "a@x.com" && in.Phone == "123" && in.Password == "Aa1!aaaa"
	})).Return(created, nil).Once()

	rec := serve(e, http.MethodPost, "/auth/signup",
		`{"firstName":"Ada","lastName":"Lovelace","email":"a@x.com","password":"Aa1!aaaa","phone":123}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "activate")
	assert.NotContains(t, rec.Body.String(), "654321")
	auth.AssertExpectations(t)
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	auth := new(mockAuthUsecase)
	h := NewAuthHandler(auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := newTestEcho()
	e.POST("/auth/signup", h.Signup)

	rec := serve(e, http.MethodPost, "/auth/signup",
		`{"firstName":"Ada","lastName":"Lovelace","email":"not-an-email","password":"weak","phone":"1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[domainerrors.ErrorResponse](t, rec)
	assert.Equal(t, "ValidationError", body.Name)

	fields := make([]string, 0, len(body.Errors))
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
		assert.Equal(t, domainerrors.LocationBody, fe.Location)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)
	auth.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestAuthHandler_SignupRejectsOverlongPassword(t *testing.T) {
	auth := new(mockAuthUsecase)
	h := NewAuthHandler(auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := newTestEcho()
	e.POST("/auth/signup", h.Signup)

	password := "Aa1!" + strings.Repeat("a", 80)
	rec := serve(e, http.MethodPost, "/auth/signup",
		`{"firstName":"Ada","lastName":"Lovelace","email":"a@x.com","password":"`+password+`"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[domainerrors.ErrorResponse](t, rec)
	assert.Equal(t, "ValidationError", body.Name)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "password", body.Errors[0].Field)
	assert.Contains(t, body.Errors[0].Messages[0], "at most 72 bytes")
	auth.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestAuthHandler_Signin(t *testing.T) {
	auth := new(mockAuthUsecase)
	h := NewAuthHandler(auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := newTestEcho()
	e.POST("/auth/signin", h.Signin)

	user := &entity.User{ID: uuid.New(), Email: "a@x.com", Active: true}
	auth.On("Signin", mock.Anything, &usecase.SigninInput{Email: "a@x.com", Password: "Aa1!aaaa"}).
		Return(&usecase.AuthOutput{
			Tokens: &entity.TokenPair{TokenType: "JWT", AccessToken: "access", RefreshToken: "refresh", ExpiresInMinutes: 60},
			User:   user,
		}, nil).Once()
	auth.On("Signin", mock.Anything, &usecase.SigninInput{Email: "b@x.com", Password: "Aa1!aaaa"}).
		Return(nil, domainerrors.ErrNotActive).Once()

	rec := serve(e, http.MethodPost, "/auth/signin", `{"email":"a@x.com","password":"Aa1!aaaa"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]map[string]any](t, rec)
	assert.Equal(t, "access", body["token"]["accessToken"])
	assert.Equal(t, "refresh", body["token"]["refreshToken"])
	assert.Equal(t, "a@x.com", body["user"]["email"])

	rec = serve(e, http.MethodPost, "/auth/signin", `{"email":"b@x.com","password":"Aa1!aaaa"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody[domainerrors.ErrorResponse](t, rec).Message, "User not active"))
}

func TestAuthHandler_ForgotIsUniform(t *testing.T) {
	auth := new(mockAuthUsecase)
	h := NewAuthHandler(auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := newTestEcho()
	e.POST("/auth/forgot", h.Forgot)

	auth.On("Forgot", mock.Anything, "known@x.com").Return(nil)
	auth.On("Forgot", mock.Anything, "unknown@x.com").Return(domainerrors.ErrEmailNotFound)
	auth.On("Forgot", mock.Anything, "inactive@x.com").Return(domainerrors.ErrNotActive)

	var bodies []string
	for _, email := range []string{"known@x.com", "unknown@x.com", "inactive@x.com"} {
		rec := serve(e, http.MethodPost, "/auth/forgot", `{"email":"`+email+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, email)
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])
	assert.Contains(t, bodies[0], forgotMessage)
}

func TestAuthHandler_ActivateAndRefresh(t *testing.T) {
	auth := new(mockAuthUsecase)
	h := NewAuthHandler(auth, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := newTestEcho()
	e.GET("/auth/activate/:token", h.Activate)
	e.POST("/auth/refresh", h.Refresh)

	auth.On("Activate", mock.Anything, "123456").Return(&entity.User{ID: uuid.New(), Active: true}, nil).Once()
	auth.On("Activate", mock.Anything, "000000").Return(nil, domainerrors.ErrInvalidOrExpiredToken).Once()
	auth.On("Refresh", mock.Anything, &usecase.RefreshInput{AccessToken: "a", RefreshToken: "r"}).
		Return(&usecase.AuthOutput{Tokens: &entity.TokenPair{TokenType: "JWT", AccessToken: "a2", RefreshToken: "r2", ExpiresInMinutes: 60}}, nil).Once()

	rec := serve(e, http.MethodGet, "/auth/activate/123456", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, rec)["activeFlag"])

	rec = serve(e, http.MethodGet, "/auth/activate/000000", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidOrExpiredToken", decodeBody[domainerrors.ErrorResponse](t, rec).Name)

	rec = serve(e, http.MethodPost, "/auth/refresh", `{"token":"a","refreshToken":"r"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "a2", tokens["accessToken"])
	assert.Equal(t, float64(60), tokens["expiresIn"])
}

func TestUserHandler_ListProjectsSelection(t *testing.T) {
	users := new(mockUserUsecase)
	h := NewUserHandler(users)
	e := newTestEcho()
	e.GET("/users", h.List)

	listed := []*entity.User{
		{ID: uuid.New(), FirstName: "Ada", Email: "ada@x.com", PasswordHash: "hash"},
		{ID: uuid.New(), FirstName: "Bob", Email: "bob@x.com", PasswordHash: "hash"},
	}
	users.On("List", mock.Anything, mock.MatchedBy(func(q *query.ListQuery) bool {
		return q.Offset == 0 && q.Limit == 10
	})).Return(&usecase.ListUsersOutput{Count: 2, Users: listed}, nil).Once()

	rec := serve(e, http.MethodGet, "/users?select=email,password", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Count int64            `json:"count"`
		Users []map[string]any `json:"users"`
	}](t, rec)
	assert.Equal(t, int64(2), body.Count)
	require.Len(t, body.Users, 2)
	for _, user := range body.Users {
		assert.Contains(t, user, "email")
		assert.Contains(t, user, "id")
		assert.NotContains(t, user, "firstName")
		assert.NotContains(t, user, "password")
	}
}

func TestUserHandler_GetRejectsMalformedID(t *testing.T) {
	users := new(mockUserUsecase)
	e := newTestEcho()
	e.GET("/users/:id", NewUserHandler(users).Get)

	rec := serve(e, http.MethodGet, "/users/not-a-uuid", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[domainerrors.ErrorResponse](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, domainerrors.LocationParams, body.Errors[0].Location)
	users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestOAuthHandler(t *testing.T) {
	oauth := new(mockOAuthUsecase)
	h := NewOAuthHandler(oauth)
	e := newTestEcho()
	e.GET("/auth/providers", h.Providers)
	e.GET("/auth/:provider", h.Begin)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/auth/:provider/callback", h.Callback)

	consent := "https://accounts.example.com/auth?state=abc"
	oauth.On("Providers").Return([]string{"google"})
	oauth.On("Begin", mock.Anything, "google").Return(consent, nil)
	oauth.On("Complete", mock.Anything, "google", "abc", "xyz").
		Return(&usecase.AuthOutput{Tokens: &entity.TokenPair{AccessToken: "a"}, User: &entity.User{ID: uuid.New()}}, nil).Once()

	rec := serve(e, http.MethodGet, "/auth/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"providers":["google"]}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/auth/google", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, consent, rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodGet, "/auth/google?redirect=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, consent, decodeBody[map[string]string](t, rec)["url"])

	rec = serve(e, http.MethodGet, "/auth/google/callback?state=abc&code=xyz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/auth/google/callback?error=access_denied", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "OAuthFailed", decodeBody[domainerrors.ErrorResponse](t, rec).Name)

	rec = serve(e, http.MethodPost, "/auth/facebook/callback", `{"idToken":"tok"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	oauth.AssertNotCalled(t, "SignInWithIDToken", mock.Anything, mock.Anything)
}
