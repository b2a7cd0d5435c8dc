package graph

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// App holds the application credentials and performs the flows that need
// them: code exchange, app access token and test user management.
type App struct {
	id     string
	secret string
	client *Client
}

// NewApp creates an App from the application id and secret. Options are
// forwarded to the underlying client.
func NewApp(id, secret string, opts ...Option) *App {
	return &App{
		id:     id,
		secret: secret,
		client: New("", opts...),
	}
}

// ID returns the application id.
func (a *App) ID() string { return a.id }

// Token is an access token obtained from the provider.
type Token struct {
	AccessToken string
	ExpiresAt   *time.Time // nil for tokens that never expire (offline access)
}

// ConvertCode exchanges an OAuth authorization code for an access token.
// redirectURI must match the URI used to obtain the code byte for byte;
// pass "" for codes issued by the JavaScript SDK. Auth failures surface as
// *APIError of KindOAuth - a code can only be exchanged once and users may
// have deauthorized the app in the meantime.
func (a *App) ConvertCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	params := url.Values{}
	params.Set("client_id", a.id)
	params.Set("client_secret", a.secret)
	params.Set("code", code)
	params.Set("redirect_uri", redirectURI)

	resp, err := a.client.Call(ctx, "oauth/access_token", nil, params)
	if err != nil {
		return nil, err
	}
	return tokenFromResponse(resp)
}

// AccessToken returns the application access token used for insights and
// test user management.
func (a *App) AccessToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "client_credentials")
	params.Set("client_id", a.id)
	params.Set("client_secret", a.secret)

	resp, err := a.client.Call(ctx, "oauth/access_token", nil, params)
	if err != nil {
		return "", err
	}
	token := resp.String("access_token")
	if token == "" {
		return "", fmt.Errorf("%w: no access_token in token response", ErrUnexpectedResponse)
	}
	return token, nil
}

// CreateTestUser creates a test account with the given permissions already
// granted. Defaults to read_stream, publish_stream, user_photos and
// offline_access when permissions is empty.
func (a *App) CreateTestUser(ctx context.Context, appAccessToken string, permissions []string) (Response, error) {
	if len(permissions) == 0 {
		permissions = []string{"read_stream", "publish_stream", "user_photos", "offline_access"}
	}
	params := url.Values{}
	params.Set("access_token", appAccessToken)
	params.Set("installed", "true")
	params.Set("name", "Hello World")
	params.Set("method", "post")
	params.Set("permissions", strings.Join(permissions, ","))

	return a.client.Call(ctx, a.id+"/accounts/test-users", nil, params)
}

// TestUsers lists the application's existing test accounts.
func (a *App) TestUsers(ctx context.Context, appAccessToken string) ([]Response, error) {
	params := url.Values{}
	params.Set("access_token", appAccessToken)

	resp, err := a.client.Call(ctx, a.id+"/accounts/test-users", nil, params)
	if err != nil {
		return nil, err
	}
	return resp.Data(), nil
}

func tokenFromResponse(resp Response) (*Token, error) {
	accessToken := resp.String("access_token")
	if accessToken == "" {
		return nil, fmt.Errorf("%w: no access_token in token response", ErrUnexpectedResponse)
	}

	token := &Token{AccessToken: accessToken}
	// The legacy endpoint answers form-encoded with "expires" in seconds;
	// the JSON variant uses "expires_in". Absence means offline access.
	seconds := resp.Int64("expires")
	if seconds == 0 {
		seconds = resp.Int64("expires_in")
	}
	if seconds > 0 {
		expiresAt := time.Now().Add(time.Duration(seconds) * time.Second)
		token.ExpiresAt = &expiresAt
	}
	return token, nil
}
