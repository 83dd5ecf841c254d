package handler

import (
	"net/http"

	"restapi/internal/delivery/api/response"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type oauthCallbackRequest struct {
	Provider         string `param:"provider"`
	State            string `query:"state" form:"state" json:"state"`
	Code             string `query:"code" form:"code" json:"code"`
	Error            string `query:"error" form:"error" json:"error"`
	ErrorDescription string `query:"error_description" form:"error_description" json:"error_description"`
	IDToken          string `form:"idToken" json:"idToken"`
}

// OAuthHandler serves the social sign-in round trips.
type OAuthHandler struct {
	oauth usecase.OAuthUsecase
}

// NewOAuthHandler is the constructor for OAuthHandler, injected by Fx.
func NewOAuthHandler(oauth usecase.OAuthUsecase) *OAuthHandler {
	return &OAuthHandler{oauth: oauth}
}

// Begin handles GET|POST /auth/:provider. It redirects to the consent page,
// or returns the URL as JSON when called with redirect=false.
func (h *OAuthHandler) Begin(c echo.Context) error {
	consentURL, err := h.oauth.Begin(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return errors.WithStack(err)
	}

	if c.QueryParam("redirect") == "false" {
		return response.JSON(c, http.StatusOK, map[string]string{"url": consentURL})
	}

	return c.Redirect(http.StatusFound, consentURL)
}

// Callback handles GET|POST /auth/:provider/callback.
func (h *OAuthHandler) Callback(c echo.Context) error {
	var req oauthCallbackRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	// Query parameters are not bound for POST requests.
	if req.Code == "" {
		req.Code = c.QueryParam("code")
	}
	if req.State == "" {
		req.State = c.QueryParam("state")
	}

	ctx := c.Request().Context()

	if req.IDToken != "" {
		if req.Provider != entity.ProviderGoogle {
			return errors.Wrap(domainerrors.ErrOAuthProviderUnsupported, "id tokens are only accepted from google")
		}
		out, err := h.oauth.SignInWithIDToken(ctx, req.IDToken)
		if err != nil {
			return errors.WithStack(err)
		}

		return authResponse(c, out)
	}

	if req.Error != "" {
		return errors.Wrap(domainerrors.ErrOAuthFailed.WithDetails(req.Error+": "+req.ErrorDescription), "provider refused consent")
	}
	if req.Code == "" {
		return domainerrors.ErrValidation.WithFieldErrors(domainerrors.FieldError{
			Field:    "code",
			Location: domainerrors.LocationQuery,
			Messages: []string{`"code" is required`},
		})
	}

	out, err := h.oauth.Complete(ctx, req.Provider, req.State, req.Code)
	if err != nil {
		return errors.WithStack(err)
	}

	return authResponse(c, out)
}

// Providers handles GET /auth/providers.
func (h *OAuthHandler) Providers(c echo.Context) error {
	return response.JSON(c, http.StatusOK, map[string][]string{"providers": h.oauth.Providers()})
}
