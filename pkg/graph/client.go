package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultAPIURL is the Graph API base.
	DefaultAPIURL = "https://graph.facebook.com/"
	// DefaultLegacyAPIURL is the old REST endpoint, still used for FQL.
	DefaultLegacyAPIURL = "https://api.facebook.com/method/"

	requestTimeout  = 8 * time.Second
	requestAttempts = 2

	userAgent = "socialconnect-go"
)

// Response is a parsed provider response. Facebook responses have no fixed
// schema; absent keys are normal and accessors return zero values.
type Response map[string]any

// String returns the value under key as a string, or "" when absent.
func (r Response) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Int64 returns the value under key as an int64. Handles JSON numbers and
// the numeric strings the form-encoded legacy endpoints answer with.
func (r Response) Int64(key string) int64 {
	switch v := r[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// Data returns the list under the conventional "data" key of paged Graph
// API responses.
func (r Response) Data() []Response {
	items, ok := r["data"].([]any)
	if !ok {
		return nil
	}
	out := make([]Response, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Response(m))
		}
	}
	return out
}

// Client performs calls against the Graph and legacy APIs on behalf of at
// most one access token. The token is bound to the instance; clients must
// not be shared across unrelated requests.
type Client struct {
	accessToken  string
	apiURL       string
	legacyAPIURL string
	httpClient   *http.Client
	logger       *slog.Logger

	mu sync.Mutex
	me Response // cached me() for the lifetime of this instance
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger configures the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBaseURLs overrides the Graph and legacy endpoints, mainly for tests.
func WithBaseURLs(apiURL, legacyAPIURL string) Option {
	return func(c *Client) {
		if apiURL != "" {
			c.apiURL = ensureTrailingSlash(apiURL)
		}
		if legacyAPIURL != "" {
			c.legacyAPIURL = ensureTrailingSlash(legacyAPIURL)
		}
	}
}

func ensureTrailingSlash(s string) string {
	if !strings.HasSuffix(s, "/") {
		return s + "/"
	}
	return s
}

// New creates a Client. An empty accessToken is valid for the calls that do
// not require one, such as the OAuth code exchange.
func New(accessToken string, opts ...Option) *Client {
	c := &Client{
		accessToken:  accessToken,
		apiURL:       DefaultAPIURL,
		legacyAPIURL: DefaultLegacyAPIURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken returns the token this client was constructed with.
func (c *Client) AccessToken() string { return c.accessToken }

// Get performs a GET request against the Graph API.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (Response, error) {
	return c.Call(ctx, path, nil, params)
}

// GetMany fetches several objects in one request via the ids parameter.
func (c *Client) GetMany(ctx context.Context, ids []string, params url.Values) (Response, error) {
	params = cloneValues(params)
	params.Set("ids", strings.Join(ids, ","))
	return c.Call(ctx, "", nil, params)
}

// Post performs a write against the Graph API. Mirroring the provider's own
// convention, the write is flagged with a method=post query parameter.
func (c *Client) Post(ctx context.Context, path string, data url.Values) (Response, error) {
	if c.accessToken == "" {
		return nil, ErrAccessTokenRequired
	}
	params := url.Values{}
	params.Set("method", "post")
	return c.Call(ctx, path, data, params)
}

// Delete removes an object via the method=delete convention.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) error {
	params = cloneValues(params)
	params.Set("method", "delete")
	_, err := c.Call(ctx, path, nil, params)
	return err
}

// FQL executes a legacy FQL query and returns the result rows.
func (c *Client) FQL(ctx context.Context, query string) ([]Response, error) {
	params := url.Values{}
	params.Set("format", "JSON")
	params.Set("query", query)
	parsed, err := c.call(ctx, "fql.query", nil, true, params)
	if err != nil {
		return nil, err
	}
	rows, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: fql result is not a list", ErrUnexpectedResponse)
	}
	out := make([]Response, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]any); ok {
			out = append(out, Response(m))
		}
	}
	return out, nil
}

// Call performs a request against the Graph API and returns the parsed
// object. post carries an optional form body; params become the query
// string, always including the client's access token when set.
func (c *Client) Call(ctx context.Context, path string, post url.Values, params url.Values) (Response, error) {
	parsed, err := c.call(ctx, path, post, false, params)
	if err != nil {
		return nil, err
	}
	m, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object", ErrUnexpectedResponse)
	}
	return Response(m), nil
}

// Me returns the profile of the token owner, cached per client instance.
func (c *Client) Me(ctx context.Context) (Response, error) {
	c.mu.Lock()
	cached := c.me
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	me, err := c.Get(ctx, "me", nil)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.me = me
	c.mu.Unlock()
	return me, nil
}

// IsAuthenticated reports whether the token grants access to the owner's
// profile.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	me, err := c.Me(ctx)
	return err == nil && len(me) > 0
}

// PictureURL returns the URL of the token owner's profile picture. size is
// one of the provider's picture types (e.g. "large"), or "" for the
// default.
func (c *Client) PictureURL(size string) string {
	query := url.Values{}
	if size != "" {
		query.Set("type", size)
	}
	if c.accessToken != "" {
		query.Set("access_token", c.accessToken)
	}
	return c.apiURL + "me/picture?" + query.Encode()
}

func (c *Client) call(ctx context.Context, path string, post url.Values, legacy bool, params url.Values) (any, error) {
	query := cloneValues(params)
	if c.accessToken != "" {
		query.Set("access_token", c.accessToken)
	}

	base := c.apiURL
	if legacy {
		base = c.legacyAPIURL
	}
	rawURL := base + path
	if encoded := query.Encode(); encoded != "" {
		rawURL += "?" + encoded
	}

	c.logger.Debug("calling facebook api",
		slog.String("path", path),
		slog.Bool("legacy", legacy),
		slog.Bool("post", post != nil),
	)

	body, err := c.do(ctx, rawURL, post)
	if err != nil {
		return nil, err
	}

	parsed := parseBody(body)
	if err := apiError(parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// do performs the HTTP round trip with the fixed attempt budget, retrying
// only on network-level failure or timeout. Status code errors are not
// retried; API-level errors ride in the body regardless of status.
func (c *Client) do(ctx context.Context, rawURL string, post url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= requestAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			break
		}

		body, err := c.attempt(ctx, rawURL, post)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.logger.Warn("facebook api request failed",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
	}
	return nil, errors.Join(ErrNetworkFailure, lastErr)
}

func (c *Client) attempt(ctx context.Context, rawURL string, post url.Values) ([]byte, error) {
	method := http.MethodGet
	var body io.Reader
	if post != nil {
		method = http.MethodPost
		body = strings.NewReader(post.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if post != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return io.ReadAll(resp.Body)
}

// parseBody parses a response body as JSON, falling back to form-encoded
// data for the legacy endpoints.
func parseBody(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return string(body)
	}
	m := make(map[string]any, len(values))
	for k := range values {
		m[k] = values.Get(k)
	}
	return m
}

// apiError inspects a parsed response for the two error shapes the
// provider uses and classifies any hit.
func apiError(parsed any) error {
	m, ok := parsed.(map[string]any)
	if !ok {
		return nil
	}
	if e, ok := m["error"].(map[string]any); ok {
		typeName, _ := e["type"].(string)
		message, _ := e["message"].(string)
		return ClassifyError(typeName, message)
	}
	if code, ok := m["error_code"]; ok {
		message, _ := m["error_msg"].(string)
		return ClassifyError(fmt.Sprint(code), message)
	}
	return nil
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
