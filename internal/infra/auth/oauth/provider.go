// Package oauth implements the social sign-in providers on top of
// golang.org/x/oauth2.
package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"restapi/config"
	"restapi/internal/domain/service"
	"restapi/internal/errors"
)

// maxProfileBytes caps the user-info payload read from a provider.
const maxProfileBytes = 1 << 20

type profileParser func(raw map[string]any) *service.OAuthProfile

// codeFlowProvider runs the authorization-code flow and fetches the profile
// from the provider's user-info endpoint.
type codeFlowProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
	pkce        bool
	parse       profileParser
}

func newCodeFlowProvider(
	name string,
	cfg *config.OAuthProviderConfig,
	endpoint oauth2.Endpoint,
	userInfoURL string,
	pkce bool,
	parse profileParser,
) *codeFlowProvider {
	return &codeFlowProvider{
		name: name,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
		},
		userInfoURL: userInfoURL,
		pkce:        pkce,
		parse:       parse,
	}
}

func (p *codeFlowProvider) Name() string {
	return p.name
}

func (p *codeFlowProvider) UsesPKCE() bool {
	return p.pkce
}

func (p *codeFlowProvider) AuthCodeURL(state, verifier string) string {
	if p.pkce && verifier != "" {
		return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	}

	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *codeFlowProvider) Exchange(ctx context.Context, code, verifier string) (*service.OAuthProfile, error) {
	var opts []oauth2.AuthCodeOption
	if p.pkce && verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	token, err := p.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s code exchange", p.name)
	}

	raw, err := p.fetchProfile(ctx, p.config.Client(ctx, token))
	if err != nil {
		return nil, err
	}

	profile := p.parse(raw)
	if profile.ExternalID == "" {
		return nil, errors.Errorf("%s profile has no user id", p.name)
	}
	profile.Provider = p.name
	profile.AccessToken = token.AccessToken
	profile.Raw = raw

	return profile, nil
}

func (p *codeFlowProvider) fetchProfile(ctx context.Context, client *http.Client) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user info request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user info")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read user info response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode user info response")
	}

	return raw, nil
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}

	return ""
}

func boolField(raw map[string]any, key string) bool {
	v, _ := raw[key].(bool)

	return v
}
