package impl

import (
	"context"
	"log/slog"
	"time"

	"restapi/config"
	deliverycontext "restapi/internal/delivery/context"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/service"
	"restapi/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/oauth2"
)

const stateBytes = 16

// oauthService implements the OAuthUsecase interface.
type oauthService struct {
	providers service.OAuthProviders
	states    service.OAuthStateStore
	verifier  service.IDTokenVerifier
	secrets   service.SecretGenerator
	auth      usecase.AuthUsecase
	stateTTL  time.Duration
	logger    *slog.Logger
}

// OAuthServiceParams holds dependencies for OAuthService, injected by Fx.
type OAuthServiceParams struct {
	fx.In

	Providers service.OAuthProviders
	States    service.OAuthStateStore
	Verifier  service.IDTokenVerifier
	Secrets   service.SecretGenerator
	Auth      usecase.AuthUsecase
	Config    *config.Config
	Logger    *slog.Logger
}

func NewOAuthService(params OAuthServiceParams) usecase.OAuthUsecase {
	stateTTL := 10 * time.Minute
	if params.Config.OAuth != nil && params.Config.OAuth.StateTTL > 0 {
		stateTTL = params.Config.OAuth.StateTTL
	}

	return &oauthService{
		providers: params.Providers,
		states:    params.States,
		verifier:  params.Verifier,
		secrets:   params.Secrets,
		auth:      params.Auth,
		stateTTL:  stateTTL,
		logger:    params.Logger,
	}
}

func (srv *oauthService) Providers() []string {
	return srv.providers.Names()
}

// Begin stores a fresh state and returns the provider consent URL.
func (srv *oauthService) Begin(ctx context.Context, name string) (string, error) {
	provider, ok := srv.providers.Get(name)
	if !ok {
		return "", errors.Wrapf(domainerrors.ErrOAuthProviderUnsupported, "provider %q", name)
	}

	state, err := srv.secrets.HexToken(stateBytes)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate oauth state")
	}

	var verifier string
	if provider.UsesPKCE() {
		verifier = oauth2.GenerateVerifier()
	}

	if err := srv.states.Save(ctx, state, verifier, srv.stateTTL); err != nil {
		return "", errors.Wrap(err, "failed to store oauth state")
	}

	return provider.AuthCodeURL(state, verifier), nil
}

// Complete finishes the consent round trip started by Begin.
func (srv *oauthService) Complete(ctx context.Context, name, state, code string) (*usecase.AuthOutput, error) {
	provider, ok := srv.providers.Get(name)
	if !ok {
		return nil, errors.Wrapf(domainerrors.ErrOAuthProviderUnsupported, "provider %q", name)
	}

	verifier, ok, err := srv.states.Consume(ctx, state)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read oauth state")
	}
	if !ok || state == "" {
		return nil, errors.Wrap(domainerrors.ErrOAuthStateInvalid, "unknown or expired state")
	}

	profile, err := provider.Exchange(ctx, code, verifier)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Warn("OAuth exchange failed",
			slog.String("provider", name),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(domainerrors.ErrOAuthFailed.WithDetails(err.Error()), "exchange failed")
	}

	return srv.auth.OAuthLogin(ctx, profile)
}

// SignInWithIDToken signs in with a Google ID token obtained client side.
func (srv *oauthService) SignInWithIDToken(ctx context.Context, idToken string) (*usecase.AuthOutput, error) {
	profile, err := srv.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrOAuthFailed.WithDetails(err.Error()), "id token rejected")
	}

	return srv.auth.OAuthLogin(ctx, profile)
}
