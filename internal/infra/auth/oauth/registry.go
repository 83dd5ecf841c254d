package oauth

import (
	"sort"

	"restapi/config"
	"restapi/internal/domain/service"
)

// Registry holds the providers that have credentials configured.
type Registry struct {
	providers map[string]service.OAuthProvider
}

// NewRegistry registers every configured provider.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{providers: map[string]service.OAuthProvider{}}
	if cfg.OAuth == nil {
		return r
	}

	if cfg.OAuth.Google.Enabled() {
		r.Register(NewGoogleProvider(cfg.OAuth.Google))
	}
	if cfg.OAuth.Facebook.Enabled() {
		r.Register(NewFacebookProvider(cfg.OAuth.Facebook))
	}
	if cfg.OAuth.Twitter.Enabled() {
		r.Register(NewTwitterProvider(cfg.OAuth.Twitter))
	}
	if cfg.OAuth.LinkedIn.Enabled() {
		r.Register(NewLinkedInProvider(cfg.OAuth.LinkedIn))
	}

	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(provider service.OAuthProvider) {
	r.providers[provider.Name()] = provider
}

// Get returns the named provider.
func (r *Registry) Get(name string) (service.OAuthProvider, bool) {
	provider, ok := r.providers[name]

	return provider, ok
}

// Names lists the registered providers in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
