package impl

import (
	"context"
	"net/url"
	"testing"

	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/service"
	"restapi/internal/infra/auth/oauth"
	"restapi/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name      string
	pkce      bool
	profile   *service.OAuthProfile
	exchanged []string
}

func (p *stubProvider) Name() string   { return p.name }
func (p *stubProvider) UsesPKCE() bool { return p.pkce }

func (p *stubProvider) AuthCodeURL(state, verifier string) string {
	v := url.Values{"state": {state}}
	if verifier != "" {
		v.Set("code_challenge", verifier)
	}

	return "https://provider.test/auth?" + v.Encode()
}

func (p *stubProvider) Exchange(_ context.Context, code, verifier string) (*service.OAuthProfile, error) {
	p.exchanged = append(p.exchanged, code+"|"+verifier)
	if code == "bad" {
		return nil, errors.New("invalid_grant")
	}

	return p.profile, nil
}

type stubVerifier struct{ profile *service.OAuthProfile }

func (v *stubVerifier) VerifyIDToken(_ context.Context, token string) (*service.OAuthProfile, error) {
	if token != "good" {
		return nil, errors.New("bad signature")
	}

	return v.profile, nil
}

func newOAuthFixture(t *testing.T, providers ...service.OAuthProvider) (*authFixtures, usecase.OAuthUsecase) {
	t.Helper()

	f := newAuthFixtures(t)
	registry := oauth.NewRegistry(f.cfg)
	for _, provider := range providers {
		registry.Register(provider)
	}

	srv := NewOAuthService(OAuthServiceParams{
		Providers: registry,
		States:    oauth.NewMemoryStateStore(),
		Verifier: &stubVerifier{profile: &service.OAuthProfile{
			Provider: entity.ProviderGoogle, ExternalID: "g-9", Email: "idt@example.com", EmailVerified: true,
		}},
		Secrets: f.secrets,
		Auth:    f.auth,
		Config:  f.cfg,
		Logger:  newDiscardLogger(),
	})

	return f, srv
}

func stateOf(t *testing.T, consentURL string) string {
	t.Helper()

	u, err := url.Parse(consentURL)
	require.NoError(t, err)

	return u.Query().Get("state")
}

func TestOAuthService_RoundTrip(t *testing.T) {
	provider := &stubProvider{
		name: entity.ProviderTwitter,
		pkce: true,
		profile: &service.OAuthProfile{
			Provider: entity.ProviderTwitter, ExternalID: "tw-1", Email: "ada@example.com",
		},
	}
	_, srv := newOAuthFixture(t, provider)
	ctx := context.Background()

	assert.Equal(t, []string{entity.ProviderTwitter}, srv.Providers())

	consentURL, err := srv.Begin(ctx, entity.ProviderTwitter)
	require.NoError(t, err)
	state := stateOf(t, consentURL)
	require.NotEmpty(t, state)

	out, err := srv.Complete(ctx, entity.ProviderTwitter, state, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", out.User.Email)
	require.Len(t, provider.exchanged, 1)
	assert.NotEqual(t, "code-1|", provider.exchanged[0], "pkce verifier must be forwarded")

	_, err = srv.Complete(ctx, entity.ProviderTwitter, state, "code-1")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthStateInvalid), "state is single use")
}

func TestOAuthService_Failures(t *testing.T) {
	provider := &stubProvider{name: entity.ProviderFacebook}
	_, srv := newOAuthFixture(t, provider)
	ctx := context.Background()

	_, err := srv.Begin(ctx, "myspace")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthProviderUnsupported))

	_, err = srv.Complete(ctx, entity.ProviderFacebook, "forged", "code")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthStateInvalid))

	consentURL, err := srv.Begin(ctx, entity.ProviderFacebook)
	require.NoError(t, err)
	_, err = srv.Complete(ctx, entity.ProviderFacebook, stateOf(t, consentURL), "bad")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthFailed))
}

func TestOAuthService_SignInWithIDToken(t *testing.T) {
	_, srv := newOAuthFixture(t)
	ctx := context.Background()

	out, err := srv.SignInWithIDToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "idt@example.com", out.User.Email)
	assert.True(t, out.User.Verified)

	_, err = srv.SignInWithIDToken(ctx, "forged")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthFailed))
}
