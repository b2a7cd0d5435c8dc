// Package connect resolves Facebook access credentials from inbound HTTP
// requests and builds the OAuth dialog URLs that start the flow.
//
// A credential can arrive in several disguises, tried in strict priority
// order by the Resolver:
//
//  1. an OAuth "code" parameter, exchanged at the token endpoint;
//  2. a signed request in POST data, GET data or the fbsr_ cookie,
//     carrying either a ready token or another code to exchange;
//  3. a long-lived token previously stored on the local user's profile
//     (offline access).
//
// Failures of a higher-priority source fall through to the next one: a
// stale code (already exchanged, or the user deauthorized the app) must not
// abort a request that also carries a perfectly valid signed cookie.
// Transport-level failures do abort - silence there would mask outages.
//
// Resolve returns nil without error when every source is exhausted; Require
// converts that into ErrNotAuthenticated for handlers that cannot proceed
// anonymously. A resolved credential is cached on the request context and
// never outlives the request.
package connect
