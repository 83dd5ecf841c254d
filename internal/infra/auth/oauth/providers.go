package oauth

import (
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/linkedin"

	"restapi/config"
	"restapi/internal/domain/entity"
	"restapi/internal/domain/service"
)

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,first_name,last_name,email,picture"
	twitterUserInfoURL  = "https://api.twitter.com/2/users/me?user.fields=profile_image_url"
	linkedInUserInfoURL = "https://api.linkedin.com/v2/userinfo"
)

var twitterEndpoint = oauth2.Endpoint{
	AuthURL:   "https://twitter.com/i/oauth2/authorize",
	TokenURL:  "https://api.twitter.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// NewGoogleProvider builds the Google code-flow provider.
func NewGoogleProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return newCodeFlowProvider(entity.ProviderGoogle, cfg, google.Endpoint, googleUserInfoURL, false, parseGoogleProfile)
}

// NewFacebookProvider builds the Facebook code-flow provider.
func NewFacebookProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return newCodeFlowProvider(entity.ProviderFacebook, cfg, facebook.Endpoint, facebookUserInfoURL, false, parseFacebookProfile)
}

// NewTwitterProvider builds the Twitter (X) provider, which requires PKCE.
func NewTwitterProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return newCodeFlowProvider(entity.ProviderTwitter, cfg, twitterEndpoint, twitterUserInfoURL, true, parseTwitterProfile)
}

// NewLinkedInProvider builds the LinkedIn OpenID Connect provider.
func NewLinkedInProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return newCodeFlowProvider(entity.ProviderLinkedIn, cfg, linkedin.Endpoint, linkedInUserInfoURL, false, parseLinkedInProfile)
}

func parseGoogleProfile(raw map[string]any) *service.OAuthProfile {
	return &service.OAuthProfile{
		ExternalID:    stringField(raw, "id"),
		Email:         stringField(raw, "email"),
		FirstName:     stringField(raw, "given_name"),
		LastName:      stringField(raw, "family_name"),
		AvatarURL:     stringField(raw, "picture"),
		EmailVerified: boolField(raw, "verified_email"),
	}
}

func parseFacebookProfile(raw map[string]any) *service.OAuthProfile {
	profile := &service.OAuthProfile{
		ExternalID: stringField(raw, "id"),
		Email:      stringField(raw, "email"),
		FirstName:  stringField(raw, "first_name"),
		LastName:   stringField(raw, "last_name"),
		// Facebook only returns confirmed addresses.
		EmailVerified: stringField(raw, "email") != "",
	}
	if picture, ok := raw["picture"].(map[string]any); ok {
		if data, ok := picture["data"].(map[string]any); ok {
			profile.AvatarURL = stringField(data, "url")
		}
	}

	return profile
}

func parseTwitterProfile(raw map[string]any) *service.OAuthProfile {
	data, _ := raw["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}

	first, last := splitName(stringField(data, "name"))

	return &service.OAuthProfile{
		ExternalID: stringField(data, "id"),
		FirstName:  first,
		LastName:   last,
		AvatarURL:  stringField(data, "profile_image_url"),
	}
}

func parseLinkedInProfile(raw map[string]any) *service.OAuthProfile {
	return &service.OAuthProfile{
		ExternalID:    stringField(raw, "sub"),
		Email:         stringField(raw, "email"),
		FirstName:     stringField(raw, "given_name"),
		LastName:      stringField(raw, "family_name"),
		AvatarURL:     stringField(raw, "picture"),
		EmailVerified: boolField(raw, "email_verified"),
	}
}

func splitName(name string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(name), " ")

	return first, strings.TrimSpace(last)
}
