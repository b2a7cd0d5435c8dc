package connect

import "errors"

var (
	// ErrNotAuthenticated is returned by Require when no credential could
	// be resolved from the request.
	ErrNotAuthenticated = errors.New("connect: not authenticated with facebook")

	// ErrNoStoredToken is returned by TokenStore implementations when the
	// user has no stored access token.
	ErrNoStoredToken = errors.New("connect: no stored access token")
)
