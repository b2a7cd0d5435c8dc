package connect

import (
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

// AuthURL builds the OAuth dialog URL for this application and returns it
// together with the final redirect URI that was baked into it. The caller
// must use exactly that redirect URI when exchanging the resulting code.
//
// An attempt=1 marker is appended to the redirect URI so that a user who
// denies the dialog does not bounce through it forever.
func (r *Resolver) AuthURL(redirectURI, state string) (authURL, finalRedirectURI string) {
	if !strings.Contains(redirectURI, "attempt=") {
		if strings.Contains(redirectURI, "?") {
			redirectURI += "&attempt=1"
		} else {
			redirectURI += "?attempt=1"
		}
	}

	conf := &oauth2.Config{
		ClientID:    r.cfg.AppID,
		RedirectURL: redirectURI,
		// Facebook expects a single comma-separated scope value.
		Scopes:   []string{strings.Join(r.cfg.Scopes, ",")},
		Endpoint: facebook.Endpoint,
	}
	return conf.AuthCodeURL(state), redirectURI
}
