package signedrequest_test

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialconnect/pkg/signedrequest"
)

var secret = []byte("app-secret")

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("round trips a signed payload", func(t *testing.T) {
		t.Parallel()

		raw, err := signedrequest.Sign(map[string]any{
			"oauth_token": "CAAB123",
			"user_id":     "100002619711402",
			"expires":     float64(1311465600),
		}, secret)
		require.NoError(t, err)

		payload, err := signedrequest.Parse(raw, secret)
		require.NoError(t, err)
		assert.Equal(t, "CAAB123", payload.OAuthToken())
		assert.Equal(t, "100002619711402", payload.UserID())
		require.NotNil(t, payload.Expires())
		assert.Equal(t, int64(1311465600), payload.Expires().Unix())
	})

	t.Run("supports every allowed algorithm", func(t *testing.T) {
		t.Parallel()

		for _, algorithm := range []string{
			"HMAC-SHA256", "HMAC-SHA1", "HMAC-SHA224",
			"HMAC-SHA384", "HMAC-SHA512", "HMAC-MD5",
		} {
			raw, err := signedrequest.Sign(map[string]any{
				"algorithm": algorithm,
				"code":      "abc",
			}, secret)
			require.NoError(t, err, algorithm)

			payload, err := signedrequest.Parse(raw, secret)
			require.NoError(t, err, algorithm)
			assert.Equal(t, "abc", payload.Code(), algorithm)
		}
	})

	t.Run("algorithm name is case-insensitive", func(t *testing.T) {
		t.Parallel()

		raw, err := signedrequest.Sign(map[string]any{
			"algorithm": "hmac-sha256",
			"code":      "abc",
		}, secret)
		require.NoError(t, err)

		_, err = signedrequest.Parse(raw, secret)
		require.NoError(t, err)
	})

	t.Run("rejects a flipped signature bit", func(t *testing.T) {
		t.Parallel()

		raw, err := signedrequest.Sign(map[string]any{"code": "abc"}, secret)
		require.NoError(t, err)

		sigPart, payloadPart, _ := strings.Cut(raw, ".")
		sig, err := signedrequest.DecodeBase64URL(sigPart)
		require.NoError(t, err)
		sig[0] ^= 0x01
		tampered := base64.RawURLEncoding.EncodeToString(sig) + "." + payloadPart

		payload, err := signedrequest.Parse(tampered, secret)
		require.ErrorIs(t, err, signedrequest.ErrInvalidSignature)
		assert.Nil(t, payload)
	})

	t.Run("rejects wrong secret without leaking data", func(t *testing.T) {
		t.Parallel()

		raw, err := signedrequest.Sign(map[string]any{"oauth_token": "tok"}, secret)
		require.NoError(t, err)

		payload, err := signedrequest.Parse(raw, []byte("other-secret"))
		require.ErrorIs(t, err, signedrequest.ErrInvalidSignature)
		assert.Nil(t, payload)
	})

	t.Run("rejects payload without separator", func(t *testing.T) {
		t.Parallel()

		_, err := signedrequest.Parse("not-a-signed-request", secret)
		require.ErrorIs(t, err, signedrequest.ErrMalformedPayload)
	})

	t.Run("rejects non-JSON payload", func(t *testing.T) {
		t.Parallel()

		payloadPart := base64.RawURLEncoding.EncodeToString([]byte("not json"))
		_, err := signedrequest.Parse("c2ln."+payloadPart, secret)
		require.ErrorIs(t, err, signedrequest.ErrMalformedPayload)
	})

	t.Run("rejects payload without algorithm", func(t *testing.T) {
		t.Parallel()

		payloadPart := base64.RawURLEncoding.EncodeToString([]byte(`{"code":"abc"}`))
		_, err := signedrequest.Parse("c2ln."+payloadPart, secret)
		require.ErrorIs(t, err, signedrequest.ErrMissingAlgorithm)
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		t.Parallel()

		payloadPart := base64.RawURLEncoding.EncodeToString([]byte(`{"algorithm":"HMAC-SHA3"}`))
		_, err := signedrequest.Parse("c2ln."+payloadPart, secret)
		require.ErrorIs(t, err, signedrequest.ErrUnsupportedAlgorithm)
	})
}

func TestDecodeBase64URL(t *testing.T) {
	t.Parallel()

	t.Run("round trips PHP-style encoding", func(t *testing.T) {
		t.Parallel()

		for _, size := range []int{1, 2, 3, 16, 31, 32, 33} {
			original := make([]byte, size)
			_, err := rand.Read(original)
			require.NoError(t, err)

			// PHP flavour: standard base64, +/ swapped for -_, padding stripped.
			encoded := base64.StdEncoding.EncodeToString(original)
			encoded = strings.ReplaceAll(encoded, "+", "-")
			encoded = strings.ReplaceAll(encoded, "/", "_")
			encoded = strings.TrimRight(encoded, "=")

			decoded, err := signedrequest.DecodeBase64URL(encoded)
			require.NoError(t, err)
			assert.Equal(t, original, decoded, "size %d", size)
		}
	})

	t.Run("accepts padded input too", func(t *testing.T) {
		t.Parallel()

		decoded, err := signedrequest.DecodeBase64URL("aGVsbG8=")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), decoded)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		_, err := signedrequest.DecodeBase64URL("!!!!")
		require.Error(t, err)
	})
}
