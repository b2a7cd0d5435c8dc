package profile

import "strconv"

// Raw holds a profile as returned by the provider. Fields come and go
// between API versions, so the data stays an open map with typed
// accessors.
type Raw map[string]any

// String returns the value under key as a string, or "" when absent or
// not a string.
func (r Raw) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int64 returns the value under key as an int64. The provider encodes ids
// both as JSON numbers and as numeric strings.
func (r Raw) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Has reports whether key is present.
func (r Raw) Has(key string) bool {
	_, ok := r[key]
	return ok
}
