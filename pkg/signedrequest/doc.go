// Package signedrequest parses and verifies the signed_request payloads
// Facebook hands to applications via POST parameters or the fbsr_ cookie.
//
// A signed request is two dot-separated parts: an HMAC signature and a
// base64url-encoded JSON object. Facebook uses the PHP flavour of base64url
// (URL-safe alphabet, padding stripped), and the signature is computed over
// the still-encoded payload part, not the decoded bytes.
//
// Verification is pure: Parse either returns the decoded payload or a typed
// error, and never leaks payload data when the signature does not match.
// The payload names its own digest algorithm, so Parse only accepts a closed
// set of HMAC algorithms rather than resolving arbitrary names.
//
// Usage:
//
//	payload, err := signedrequest.Parse(raw, []byte(appSecret))
//	if err != nil {
//	    // signedrequest.ErrInvalidSignature, ErrMalformedPayload, ...
//	}
//	if tok := payload.OAuthToken(); tok != "" {
//	    // the request carries a ready-to-use access token
//	}
package signedrequest
