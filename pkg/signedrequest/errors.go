package signedrequest

import "errors"

var (
	// ErrMalformedPayload is returned when the raw value is not two
	// dot-separated base64url parts carrying a JSON object.
	ErrMalformedPayload = errors.New("signedrequest: malformed payload")

	// ErrMissingAlgorithm is returned when the payload does not declare
	// which digest algorithm signed it.
	ErrMissingAlgorithm = errors.New("signedrequest: payload declares no algorithm")

	// ErrUnsupportedAlgorithm is returned when the declared algorithm is
	// not in the supported set.
	ErrUnsupportedAlgorithm = errors.New("signedrequest: unsupported algorithm")

	// ErrInvalidSignature is returned when the recomputed HMAC does not
	// match the transmitted signature.
	ErrInvalidSignature = errors.New("signedrequest: invalid signature")
)
