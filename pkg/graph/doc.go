// Package graph is a thin client for the Facebook Graph API and the legacy
// REST/FQL endpoint.
//
// A Client carries at most one access token and is instantiated per request
// or per user - token state is never shared between client instances. Calls
// run with a bounded timeout and a single retry on network failure, and
// responses are parsed as JSON with a form-encoded fallback for the legacy
// endpoints.
//
// Facebook reports API-level errors in two shapes, independent of the HTTP
// status code, and mixes legacy numeric codes with newer named types. Both
// shapes are detected after parsing and mapped onto a stable error taxonomy
// via a static classification table, so callers can distinguish an expired
// token from a revoked permission with errors.As / errors.Is:
//
//	resp, err := client.Get(ctx, "me", nil)
//	var apiErr *graph.APIError
//	if errors.As(err, &apiErr) && apiErr.Kind == graph.KindOAuth {
//	    // re-prompt authentication
//	}
//
// The App type covers the application-level flows: exchanging an OAuth code
// for an access token, obtaining an app access token and managing test
// users.
package graph
