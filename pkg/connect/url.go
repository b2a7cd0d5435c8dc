package connect

import (
	"strings"
)

// droppedQueryParams are the OAuth flow parameters that must not appear in
// the redirect URI sent to the token endpoint: Facebook validates that URI
// byte for byte against the one used to obtain the code.
var droppedQueryParams = []string{"code", "signed_request", "state"}

// CleanRedirectURI strips the OAuth flow parameters from a redirect URI
// while preserving the base path and the order and encoding of the
// remaining query parameters.
func CleanRedirectURI(uri string) string {
	base, query, found := strings.Cut(uri, "?")
	if !found {
		return uri
	}

	kept := make([]string, 0, 4)
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		if isDroppedParam(key) {
			continue
		}
		kept = append(kept, part)
	}

	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}

func isDroppedParam(key string) bool {
	key = strings.ToLower(key)
	for _, dropped := range droppedQueryParams {
		if key == dropped {
			return true
		}
	}
	return false
}

// ParseScope normalizes a comma-separated scope string into a clean list.
func ParseScope(scope string) []string {
	parts := strings.Split(scope, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
