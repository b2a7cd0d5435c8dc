package signedrequest

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"strings"
	"time"
)

// DefaultAlgorithm is the algorithm Facebook signs requests with.
const DefaultAlgorithm = "HMAC-SHA256"

// digests is the closed set of accepted algorithms. The algorithm name is
// attacker-controlled (it lives inside the payload), so anything outside
// this table is rejected instead of being resolved dynamically.
var digests = map[string]func() hash.Hash{
	"HMAC-SHA256": sha256.New,
	"HMAC-SHA1":   sha1.New,
	"HMAC-SHA224": sha256.New224,
	"HMAC-SHA384": sha512.New384,
	"HMAC-SHA512": sha512.New,
	"HMAC-MD5":    md5.New,
}

// Payload is the decoded signed request body. Facebook does not guarantee
// any particular set of keys, so values are looked up dynamically and
// absent keys are normal.
type Payload map[string]any

// String returns the value under key as a string, or "" when absent or of
// another type.
func (p Payload) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Int64 returns the value under key as an int64. JSON numbers decode as
// float64; numeric strings are not converted here.
func (p Payload) Int64(key string) int64 {
	switch v := p[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// Has reports whether key is present in the payload.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// OAuthToken returns the ready-to-use access token carried by the payload,
// if any.
func (p Payload) OAuthToken() string { return p.String("oauth_token") }

// Code returns the authorization code carried by the payload, if any.
func (p Payload) Code() string { return p.String("code") }

// UserID returns the provider user id carried by the payload, if any.
func (p Payload) UserID() string { return p.String("user_id") }

// IssuedAt returns the issued_at timestamp, or the zero time when absent.
func (p Payload) IssuedAt() time.Time {
	if ts := p.Int64("issued_at"); ts > 0 {
		return time.Unix(ts, 0)
	}
	return time.Time{}
}

// Expires returns the token expiry carried by the payload, or nil when
// absent or when the token does not expire (expires=0 means offline access).
func (p Payload) Expires() *time.Time {
	if ts := p.Int64("expires"); ts > 0 {
		t := time.Unix(ts, 0)
		return &t
	}
	return nil
}

// DecodeBase64URL decodes the PHP flavour of base64url: URL-safe alphabet
// with the trailing padding stripped. Facebook emits this variant, which
// the stdlib URLEncoding rejects on padding, so padding is restored and the
// alphabet mapped back before decoding.
func DecodeBase64URL(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.StdEncoding.DecodeString(s)
}

// Parse splits, decodes and verifies a signed request using secret as the
// HMAC key. On any verification failure no payload data is returned.
func Parse(raw string, secret []byte) (Payload, error) {
	sigPart, payloadPart, found := strings.Cut(raw, ".")
	if !found {
		return nil, fmt.Errorf("%w: missing signature separator", ErrMalformedPayload)
	}

	signature, err := DecodeBase64URL(sigPart)
	if err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	body, err := DecodeBase64URL(payloadPart)
	if err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	algorithm := strings.ToUpper(strings.TrimSpace(payload.String("algorithm")))
	if algorithm == "" {
		return nil, ErrMissingAlgorithm
	}
	newHash, ok := digests[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	// The HMAC covers the encoded payload part exactly as transmitted.
	mac := hmac.New(newHash, secret)
	mac.Write([]byte(payloadPart))
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return nil, ErrInvalidSignature
	}

	return payload, nil
}

// Sign encodes data as a signed request. The digest defaults to HMAC-SHA256
// unless data already declares a supported algorithm. Useful for tests and
// for tooling that mimics the provider.
func Sign(data map[string]any, secret []byte) (string, error) {
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	algorithm := DefaultAlgorithm
	if a, ok := payload["algorithm"].(string); ok && a != "" {
		algorithm = strings.ToUpper(a)
	}
	payload["algorithm"] = algorithm

	newHash, ok := digests[algorithm]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(body)

	mac := hmac.New(newHash, secret)
	mac.Write([]byte(encoded))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return signature + "." + encoded, nil
}
