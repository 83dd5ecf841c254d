package handler

import (
	"log/slog"
	"net/http"

	"restapi/internal/delivery/api/middleware"
	"restapi/internal/delivery/api/response"
	deliverycontext "restapi/internal/delivery/context"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const forgotMessage = "If the account exists, a password reset link has been sent to its email"

type signupRequest struct {
	FirstName string     `json:"firstName" validate:"required"`
	LastName  string     `json:"lastName" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,password"`
	Phone     flexString `json:"phone" validate:"required"`
	Gender    string     `json:"gender" validate:"omitempty,oneof=male female other na"`
	BirthDate *flexDate  `json:"dob"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type activateRequest struct {
	Token string `param:"token" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type refreshRequest struct {
	Token        string `json:"token" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type resetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthHandler serves the account lifecycle endpoints.
type AuthHandler struct {
	auth   usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Signup(c.Request().Context(), &usecase.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     string(req.Phone),
		Password:  req.Password,
		Gender:    req.Gender,
		BirthDate: req.BirthDate.ptr(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, entity.NewUserView(user))
}

// Signin handles POST /auth/signin.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.auth.Signin(c.Request().Context(), &usecase.SigninInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return errors.WithStack(err)
	}

	return authResponse(c, out)
}

// Activate handles GET /auth/activate/:token.
func (h *AuthHandler) Activate(c echo.Context) error {
	var req activateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Activate(c.Request().Context(), req.Token)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, entity.NewUserView(user))
}

// Reactivate handles POST /auth/reactivate.
func (h *AuthHandler) Reactivate(c echo.Context) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Reactivate(c.Request().Context(), req.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, entity.NewUserView(user))
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.auth.Refresh(c.Request().Context(), &usecase.RefreshInput{
		AccessToken:  req.Token,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, response.NewTokenResponse(out.Tokens))
}

// Forgot handles POST /auth/forgot. Unknown and inactive accounts get the
// same answer as a successful request.
func (h *AuthHandler) Forgot(c echo.Context) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := h.auth.Forgot(c.Request().Context(), req.Email)
	switch {
	case err == nil:
	case errors.Is(err, domainerrors.ErrEmailNotFound), errors.Is(err, domainerrors.ErrNotActive):
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Info("Forgot request ignored", slog.Any("reason", err))
	default:
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, forgotMessage)
}

// Reset handles POST /auth/reset.
func (h *AuthHandler) Reset(c echo.Context) error {
	var req resetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.Reset(c.Request().Context(), &usecase.ResetInput{Token: req.Token, Password: req.Password}); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Password reset successfully")
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.Logout(c.Request().Context(), middleware.CurrentUser(c), req.RefreshToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Successfully logged out")
}

func authResponse(c echo.Context, out *usecase.AuthOutput) error {
	return response.JSON(c, http.StatusOK, response.AuthResponse{
		Token: response.NewTokenResponse(out.Tokens),
		User:  entity.NewUserView(out.User),
	})
}
