package saavn

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuthConfig enables client-credentials auth for catalog gateways that
// require a bearer token. The public API needs none.
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func (c OAuthConfig) Enabled() bool {
	return c.TokenURL != "" && c.ClientID != ""
}

// NewHTTPClient returns the HTTP client used for catalog calls, wrapped in a
// token source when oauth is enabled.
func NewHTTPClient(ctx context.Context, timeout time.Duration, oauth OAuthConfig) *http.Client {
	base := &http.Client{Timeout: timeout}
	if !oauth.Enabled() {
		return base
	}
	cc := clientcredentials.Config{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		TokenURL:     oauth.TokenURL,
		Scopes:       oauth.Scopes,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	hc := cc.Client(ctx)
	hc.Timeout = timeout
	return hc
}
