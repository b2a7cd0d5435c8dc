package graph

import "errors"

var (
	// ErrNetworkFailure is returned when the retry budget is exhausted
	// without receiving a response. The underlying transport error is
	// joined in.
	ErrNetworkFailure = errors.New("graph: request failed after retries")

	// ErrAccessTokenRequired is returned by write operations on a client
	// constructed without an access token.
	ErrAccessTokenRequired = errors.New("graph: write operations require an access token")

	// ErrUnexpectedResponse is returned when the provider answers with a
	// body that does not carry the expected fields.
	ErrUnexpectedResponse = errors.New("graph: unexpected response shape")
)
