package connect_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialconnect/pkg/connect"
	"github.com/dmitrymomot/socialconnect/pkg/graph"
	"github.com/dmitrymomot/socialconnect/pkg/signedrequest"
)

var testConfig = connect.Config{
	AppID:        "215464901804004",
	AppSecret:    "app-secret",
	Scopes:       []string{"email", "user_about_me", "user_birthday"},
	CookiePrefix: "fbsr",
}

// tokenEndpoint fakes the provider token endpoint. Codes present in the
// tokens map exchange successfully; everything else is rejected the way
// Facebook rejects a used code.
func tokenEndpoint(t *testing.T, tokens map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/access_token", r.URL.Path)
		code := r.URL.Query().Get("code")
		if token, ok := tokens[code]; ok {
			_, _ = w.Write([]byte("access_token=" + token + "&expires=5183999"))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"OAuthException","message":"This authorization code has been used."}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newResolver(t *testing.T, srv *httptest.Server, opts ...connect.ResolverOption) *connect.Resolver {
	t.Helper()
	opts = append(opts, connect.WithGraphOptions(graph.WithBaseURLs(srv.URL+"/", "")))
	return connect.NewResolver(testConfig, opts...)
}

func signedCookie(t *testing.T, data map[string]any) *http.Cookie {
	t.Helper()
	raw, err := signedrequest.Sign(data, []byte(testConfig.AppSecret))
	require.NoError(t, err)
	return &http.Cookie{Name: testConfig.CookieName(), Value: raw}
}

func TestResolveOAuthCode(t *testing.T) {
	t.Parallel()

	t.Run("exchanges a code from the query string", func(t *testing.T) {
		t.Parallel()

		srv := tokenEndpoint(t, map[string]string{"good-code": "CAAB123"})
		r := newResolver(t, srv)

		req := httptest.NewRequest(http.MethodGet, "/connect/?code=good-code", nil)
		cred, err := r.Resolve(context.Background(), req, "https://example.com/connect/?code=good-code")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "CAAB123", cred.Token)
		assert.Equal(t, connect.SourceOAuthCode, cred.Source)
		require.NotNil(t, cred.ExpiresAt)
	})

	t.Run("cleans the redirect uri before the exchange", func(t *testing.T) {
		t.Parallel()

		var gotRedirectURI string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRedirectURI = r.URL.Query().Get("redirect_uri")
			_, _ = w.Write([]byte("access_token=tok"))
		}))
		t.Cleanup(srv.Close)
		r := newResolver(t, srv)

		req := httptest.NewRequest(http.MethodGet, "/connect/?code=abc", nil)
		_, err := r.Resolve(context.Background(), req,
			"https://example.com/connect/?next=/home&code=abc&state=xyz&signed_request=sr")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/connect/?next=/home", gotRedirectURI)
	})

	t.Run("reads the code from POST data too", func(t *testing.T) {
		t.Parallel()

		srv := tokenEndpoint(t, map[string]string{"post-code": "CAAB456"})
		r := newResolver(t, srv)

		form := url.Values{"code": {"post-code"}}
		req := httptest.NewRequest(http.MethodPost, "/connect/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "CAAB456", cred.Token)
	})
}

func TestResolveSignedRequest(t *testing.T) {
	t.Parallel()

	t.Run("token from signed cookie", func(t *testing.T) {
		t.Parallel()

		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(signedCookie(t, map[string]any{"oauth_token": "COOKIE-TOKEN"}))

		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "COOKIE-TOKEN", cred.Token)
		assert.Equal(t, connect.SourceSignedRequest, cred.Source)
	})

	t.Run("signed request in GET data wins over the cookie", func(t *testing.T) {
		t.Parallel()

		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv)

		raw, err := signedrequest.Sign(map[string]any{"oauth_token": "FROM-QUERY"}, []byte(testConfig.AppSecret))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/?signed_request="+url.QueryEscape(raw), nil)
		req.AddCookie(signedCookie(t, map[string]any{"oauth_token": "FROM-COOKIE"}))

		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "FROM-QUERY", cred.Token)
	})

	t.Run("signed request carrying a code recurses into the exchange", func(t *testing.T) {
		t.Parallel()

		var gotRedirectURI string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRedirectURI = r.URL.Query().Get("redirect_uri")
			require.Equal(t, "js-code", r.URL.Query().Get("code"))
			_, _ = w.Write([]byte("access_token=JS-TOKEN"))
		}))
		t.Cleanup(srv.Close)
		r := newResolver(t, srv)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(signedCookie(t, map[string]any{"code": "js-code"}))

		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "JS-TOKEN", cred.Token)
		assert.Equal(t, connect.SourceSignedRequest, cred.Source)
		assert.Empty(t, gotRedirectURI, "JS SDK codes exchange against an empty redirect uri")
	})

	t.Run("tampered cookie falls through silently", func(t *testing.T) {
		t.Parallel()

		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv)

		cookie := signedCookie(t, map[string]any{"oauth_token": "TOK"})
		cookie.Value = "bogus." + strings.SplitN(cookie.Value, ".", 2)[1]

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)

		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		assert.Nil(t, cred)
	})
}

func TestResolutionOrder(t *testing.T) {
	t.Parallel()

	t.Run("code exchange wins over a signed cookie", func(t *testing.T) {
		t.Parallel()

		srv := tokenEndpoint(t, map[string]string{"good-code": "CODE-TOKEN"})
		r := newResolver(t, srv)

		req := httptest.NewRequest(http.MethodGet, "/?code=good-code", nil)
		req.AddCookie(signedCookie(t, map[string]any{"oauth_token": "COOKIE-TOKEN"}))

		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "CODE-TOKEN", cred.Token)
		assert.Equal(t, connect.SourceOAuthCode, cred.Source)
	})

	t.Run("a stale code falls through to the signed cookie", func(t *testing.T) {
		t.Parallel()

		// No codes registered: every exchange is rejected as already used.
		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv)

		req := httptest.NewRequest(http.MethodGet, "/?code=stale-code", nil)
		req.AddCookie(signedCookie(t, map[string]any{"oauth_token": "COOKIE-TOKEN"}))

		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "COOKIE-TOKEN", cred.Token)
		assert.Equal(t, connect.SourceSignedRequest, cred.Source)
	})

	t.Run("transport failures abort instead of falling through", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nil)
		srv.Close() // nothing listens: every exchange is a network failure
		r := newResolver(t, srv)

		req := httptest.NewRequest(http.MethodGet, "/?code=any", nil)
		req.AddCookie(signedCookie(t, map[string]any{"oauth_token": "COOKIE-TOKEN"}))

		_, err := r.Resolve(context.Background(), req, "")
		require.ErrorIs(t, err, graph.ErrNetworkFailure)
	})
}

func TestResolveStoredProfile(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	request := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(connect.WithUserID(req.Context(), userID))
	}

	t.Run("uses the stored token as last resort", func(t *testing.T) {
		t.Parallel()

		store := &MockTokenStore{}
		store.On("AccessToken", mock.Anything, userID).Return("STORED-TOKEN", nil, nil)

		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv, connect.WithTokenStore(store))

		cred, err := r.Resolve(context.Background(), request(), "")
		require.NoError(t, err)
		require.NotNil(t, cred)
		assert.Equal(t, "STORED-TOKEN", cred.Token)
		assert.Equal(t, connect.SourceStoredProfile, cred.Source)
		store.AssertExpectations(t)
	})

	t.Run("expired stored tokens are skipped", func(t *testing.T) {
		t.Parallel()

		expired := time.Now().Add(-time.Hour)
		store := &MockTokenStore{}
		store.On("AccessToken", mock.Anything, userID).Return("STORED-TOKEN", &expired, nil)

		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv, connect.WithTokenStore(store))

		cred, err := r.Resolve(context.Background(), request(), "")
		require.NoError(t, err)
		assert.Nil(t, cred)
	})

	t.Run("missing stored token resolves to nil", func(t *testing.T) {
		t.Parallel()

		store := &MockTokenStore{}
		store.On("AccessToken", mock.Anything, userID).Return("", nil, connect.ErrNoStoredToken)

		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv, connect.WithTokenStore(store))

		cred, err := r.Resolve(context.Background(), request(), "")
		require.NoError(t, err)
		assert.Nil(t, cred)
	})

	t.Run("anonymous requests skip the store", func(t *testing.T) {
		t.Parallel()

		store := &MockTokenStore{}
		srv := tokenEndpoint(t, nil)
		r := newResolver(t, srv, connect.WithTokenStore(store))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		cred, err := r.Resolve(context.Background(), req, "")
		require.NoError(t, err)
		assert.Nil(t, cred)
		store.AssertNotCalled(t, "AccessToken")
	})
}

func TestRequire(t *testing.T) {
	t.Parallel()

	srv := tokenEndpoint(t, nil)
	r := newResolver(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := r.Require(context.Background(), req, "")
	require.ErrorIs(t, err, connect.ErrNotAuthenticated)
}

func TestCredentialContextCache(t *testing.T) {
	t.Parallel()

	srv := tokenEndpoint(t, nil)
	r := newResolver(t, srv)

	cached := &connect.Credential{Token: "CACHED", Source: connect.SourceOAuthCode}
	req := httptest.NewRequest(http.MethodGet, "/?code=whatever", nil)
	req = req.WithContext(connect.WithCredential(req.Context(), cached))

	cred, err := r.Resolve(context.Background(), req, "")
	require.NoError(t, err)
	assert.Same(t, cached, cred, "cached credential short-circuits resolution")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	srv := tokenEndpoint(t, nil)
	r := newResolver(t, srv)

	var seen *connect.Credential
	handler := r.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen, _ = connect.CredentialFromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, map[string]any{"oauth_token": "MW-TOKEN"}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "MW-TOKEN", seen.Token)
}

func TestAuthURL(t *testing.T) {
	t.Parallel()

	r := connect.NewResolver(testConfig)

	authURL, finalRedirect := r.AuthURL("https://example.com/connect/", "state-token")
	assert.Equal(t, "https://example.com/connect/?attempt=1", finalRedirect)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "www.facebook.com", parsed.Host)
	q := parsed.Query()
	assert.Equal(t, testConfig.AppID, q.Get("client_id"))
	assert.Equal(t, finalRedirect, q.Get("redirect_uri"))
	assert.Equal(t, "email,user_about_me,user_birthday", q.Get("scope"))
	assert.Equal(t, "state-token", q.Get("state"))

	// An existing attempt marker is not duplicated.
	_, redirect := r.AuthURL("https://example.com/connect/?attempt=1", "s")
	assert.Equal(t, "https://example.com/connect/?attempt=1", redirect)
}
