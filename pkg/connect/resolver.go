package connect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialconnect/pkg/graph"
	"github.com/dmitrymomot/socialconnect/pkg/logger"
	"github.com/dmitrymomot/socialconnect/pkg/signedrequest"
)

// Source identifies which strategy produced a credential.
type Source string

const (
	SourceOAuthCode     Source = "oauth_code"
	SourceSignedRequest Source = "signed_request"
	SourceStoredProfile Source = "stored_profile"
)

// Credential is an access token resolved for one request. It is immutable
// and scoped to the request that resolved it; cross-request reuse goes
// through the TokenStore explicitly.
type Credential struct {
	Token     string
	ExpiresAt *time.Time
	Source    Source
}

// Client returns a graph client bound to this credential.
func (c *Credential) Client(opts ...graph.Option) *graph.Client {
	return graph.New(c.Token, opts...)
}

// TokenStore looks up the long-lived access token stored on a local user's
// profile, enabling offline access across sessions. Implementations return
// ErrNoStoredToken when the user has none.
type TokenStore interface {
	AccessToken(ctx context.Context, userID uuid.UUID) (token string, expiresAt *time.Time, err error)
}

// Resolver resolves access credentials from inbound requests.
type Resolver struct {
	cfg       Config
	app       *graph.App
	store     TokenStore
	graphOpts []graph.Option
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTokenStore enables the stored-profile fallback.
func WithTokenStore(store TokenStore) ResolverOption {
	return func(r *Resolver) { r.store = store }
}

// WithLogger configures the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithGraphOptions forwards options to the graph clients the resolver
// constructs, mainly for tests.
func WithGraphOptions(opts ...graph.Option) ResolverOption {
	return func(r *Resolver) { r.graphOpts = opts }
}

// NewResolver creates a Resolver for the given application config.
func NewResolver(cfg Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.app = graph.NewApp(cfg.AppID, cfg.AppSecret, r.graphOpts...)
	return r
}

// Resolve tries each credential source in priority order and returns the
// first credential found, or (nil, nil) when the request carries none.
// redirectURI is the URI the OAuth code was requested on; it is cleaned of
// flow parameters before the exchange.
//
// Expected absences - no code parameter, an invalid signature, a stale
// code - fall through to the next source. Transport failures and
// non-auth provider errors propagate.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request, redirectURI string) (*Credential, error) {
	if cred, ok := CredentialFromContext(req.Context()); ok {
		return cred, nil
	}

	// 1. OAuth code in the request parameters.
	if code := req.FormValue("code"); code != "" {
		cred, err := r.exchangeCode(ctx, code, CleanRedirectURI(redirectURI), SourceOAuthCode)
		if err != nil {
			return nil, err
		}
		if cred != nil {
			return cred, nil
		}
	}

	// 2. Signed request in POST, GET or the provider cookie.
	if raw := r.signedRequestData(req); raw != "" {
		cred, err := r.resolveSignedRequest(ctx, raw)
		if err != nil {
			return nil, err
		}
		if cred != nil {
			return cred, nil
		}
	}

	// 3. Token stored on the authenticated user's profile.
	return r.storedCredential(ctx, req)
}

// Require resolves a credential and fails with ErrNotAuthenticated when
// the request carries none.
func (r *Resolver) Require(ctx context.Context, req *http.Request, redirectURI string) (*Credential, error) {
	cred, err := r.Resolve(ctx, req, redirectURI)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNotAuthenticated
	}
	return cred, nil
}

// Middleware resolves a credential once per request and caches it on the
// request context. Resolution errors are logged and the request proceeds
// unauthenticated; handlers that need a credential call Require.
func (r *Resolver) Middleware(redirectURI func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			uri := ""
			if redirectURI != nil {
				uri = redirectURI(req)
			}
			cred, err := r.Resolve(req.Context(), req, uri)
			if err != nil {
				r.logger.Warn("facebook credential resolution failed",
					logger.Component("connect"),
					logger.Error(err),
				)
			}
			if cred != nil {
				req = req.WithContext(WithCredential(req.Context(), cred))
			}
			next.ServeHTTP(w, req)
		})
	}
}

// exchangeCode trades an authorization code for a credential. Auth errors
// are expected - the code may already be used or the user may have
// deauthorized the app - so they log and resolve to nil rather than
// aborting the whole resolution.
func (r *Resolver) exchangeCode(ctx context.Context, code, redirectURI string, source Source) (*Credential, error) {
	token, err := r.app.ConvertCode(ctx, code, redirectURI)
	if err != nil {
		if graph.IsKind(err, graph.KindOAuth) {
			r.logger.Warn("oauth code exchange rejected",
				logger.Component("connect"),
				logger.Error(err),
			)
			return nil, nil
		}
		return nil, err
	}
	return &Credential{
		Token:     token.AccessToken,
		ExpiresAt: token.ExpiresAt,
		Source:    source,
	}, nil
}

// signedRequestData finds the raw signed request, checking POST data, then
// GET data, then the provider cookie.
func (r *Resolver) signedRequestData(req *http.Request) string {
	if raw := req.PostFormValue("signed_request"); raw != "" {
		return raw
	}
	if raw := req.URL.Query().Get("signed_request"); raw != "" {
		return raw
	}
	if cookie, err := req.Cookie(r.cfg.CookieName()); err == nil {
		return cookie.Value
	}
	return ""
}

func (r *Resolver) resolveSignedRequest(ctx context.Context, raw string) (*Credential, error) {
	payload, err := signedrequest.Parse(raw, []byte(r.cfg.AppSecret))
	if err != nil {
		// A bad signature is a local failure: fall through to the next
		// source instead of failing the request.
		r.logger.Debug("signed request rejected",
			logger.Component("connect"),
			logger.Error(err),
		)
		return nil, nil
	}

	if token := payload.OAuthToken(); token != "" {
		return &Credential{
			Token:     token,
			ExpiresAt: payload.Expires(),
			Source:    SourceSignedRequest,
		}, nil
	}

	// No direct token; the JS SDK flow puts a code in the signed data
	// instead. Codes issued that way exchange against an empty redirect
	// URI.
	if code := payload.Code(); code != "" {
		return r.exchangeCode(ctx, code, "", SourceSignedRequest)
	}

	return nil, nil
}

func (r *Resolver) storedCredential(ctx context.Context, req *http.Request) (*Credential, error) {
	if r.store == nil {
		return nil, nil
	}
	userID, ok := UserIDFromContext(req.Context())
	if !ok {
		return nil, nil
	}

	token, expiresAt, err := r.store.AccessToken(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoStoredToken) {
			return nil, nil
		}
		return nil, err
	}
	// Stored tokens may have been sitting around past their lifetime;
	// validate expiry before reuse instead of burning a provider call.
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		r.logger.Debug("stored access token expired",
			logger.Component("connect"),
			logger.UserID(userID),
		)
		return nil, nil
	}

	return &Credential{
		Token:     token,
		ExpiresAt: expiresAt,
		Source:    SourceStoredProfile,
	}, nil
}
