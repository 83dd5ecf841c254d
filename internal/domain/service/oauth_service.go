package service

import (
	"context"
	"time"
)

// OAuthProfile is the identity asserted by a social provider.
type OAuthProfile struct {
	Provider      string // e.g. "google"
	ExternalID    string // Provider-specific user ID
	Email         string // May be empty for providers that do not share it
	FirstName     string
	LastName      string
	AvatarURL     string
	EmailVerified bool
	AccessToken   string
	Raw           map[string]any // Raw provider payload
}

// OAuthProvider runs the authorization-code flow of one provider.
type OAuthProvider interface {
	// Name returns the provider identifier used in routes.
	Name() string

	// AuthCodeURL builds the consent URL. verifier is empty unless UsesPKCE.
	AuthCodeURL(state, verifier string) string

	// Exchange trades the authorization code for a token and fetches the profile.
	Exchange(ctx context.Context, code, verifier string) (*OAuthProfile, error)

	// UsesPKCE reports whether the provider requires a PKCE verifier.
	UsesPKCE() bool
}

// IDTokenVerifier verifies ID tokens minted for this service by a provider.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*OAuthProfile, error)
}

// OAuthStateStore keeps the CSRF state of pending consent round trips.
type OAuthStateStore interface {
	// Save remembers state (and its PKCE verifier) for ttl.
	Save(ctx context.Context, state, verifier string, ttl time.Duration) error

	// Consume returns and forgets the verifier stored for state.
	Consume(ctx context.Context, state string) (verifier string, ok bool, err error)
}

// OAuthProviders looks up the configured providers by route name.
type OAuthProviders interface {
	Get(name string) (OAuthProvider, bool)
	Names() []string
}
