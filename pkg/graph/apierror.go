package graph

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies a class of Facebook API error. Facebook's taxonomy is
// inconsistent between legacy numeric codes and newer named types; Kind is
// the stable label callers branch on.
type Kind string

const (
	// KindGeneric covers API errors that match no other kind.
	KindGeneric Kind = "api"
	// KindOAuth covers expired, invalid or revoked tokens and failed code
	// exchanges.
	KindOAuth Kind = "oauth"
	// KindPermission covers missing or revoked user permissions.
	KindPermission Kind = "permission"
	// KindRateLimit covers call and feed action limits.
	KindRateLimit Kind = "rate_limit"
	// KindDuplicate covers duplicate post/status rejections.
	KindDuplicate Kind = "duplicate"
	// KindAlias covers invalid alias/username errors.
	KindAlias Kind = "alias"
	// KindMissingParameter covers calls rejected for a missing parameter.
	KindMissingParameter Kind = "missing_parameter"
)

// APIError is an API-level error reported by Facebook, carried on any HTTP
// status including 200.
type APIError struct {
	Kind    Kind
	Type    string // provider error type name or legacy numeric code, verbatim
	Code    int    // numeric code extracted from the message, 0 when absent
	Message string
}

func (e *APIError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("facebook %s error (#%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("facebook %s error: %s", e.Kind, e.Message)
}

// Is matches against another *APIError by kind, enabling
// errors.Is(err, &APIError{Kind: KindOAuth}).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

type codeRange struct{ start, stop int }

// errorSpec declares how to recognize one kind of provider error: a
// canonical type name, literal message substrings, inclusive numeric code
// ranges and exact codes. The registry is static; error kinds are never
// discovered dynamically.
type errorSpec struct {
	kind       Kind
	typeName   string
	substrings []string
	ranges     []codeRange
	codes      []int
}

// rangeStart is the smallest numeric code the entry claims. Entries are
// scanned in ascending rangeStart order so narrow legacy codes win over
// broad named buckets.
func (s errorSpec) rangeStart() int {
	start := math.MaxInt
	for _, c := range s.codes {
		start = min(start, c)
	}
	for _, r := range s.ranges {
		start = min(start, r.start)
	}
	return start
}

func (s errorSpec) matches(message string, code int) bool {
	for _, sub := range s.substrings {
		if strings.Contains(message, sub) {
			return true
		}
	}
	if code > 0 {
		for _, r := range s.ranges {
			if code >= r.start && code <= r.stop {
				return true
			}
		}
		for _, c := range s.codes {
			if code == c {
				return true
			}
		}
	}
	return false
}

// Error code references: legacy codes per the old REST API error table,
// (#1xx) parameter and (#2xx) permission groups per the Graph API.
var errorSpecs = []errorSpec{
	{
		kind:       KindRateLimit,
		typeName:   "FeedActionLimit",
		substrings: []string{"request limit reached", "Feed action request limit reached"},
		codes:      []int{4, 17, 341, 613},
	},
	{
		kind:     KindMissingParameter,
		typeName: "MissingParameter",
		codes:    []int{100},
	},
	{
		kind:     KindOAuth,
		typeName: "OAuthException",
		substrings: []string{
			"Invalid OAuth",
			"Error validating access token",
			"Error validating verification code",
			"Session has expired",
			"The session is invalid",
		},
		ranges: []codeRange{{190, 199}},
		codes:  []int{102},
	},
	{
		kind:       KindPermission,
		typeName:   "PermissionException",
		substrings: []string{"Requires extended permission"},
		ranges:     []codeRange{{200, 299}},
	},
	{
		kind:       KindDuplicate,
		typeName:   "DuplicateStatusMessage",
		substrings: []string{"duplicate status message"},
		codes:      []int{506},
	},
	{
		kind:       KindAlias,
		typeName:   "AliasException",
		substrings: []string{"is not a valid alias"},
		codes:      []int{803},
	},
}

func init() {
	sort.SliceStable(errorSpecs, func(i, j int) bool {
		return errorSpecs[i].rangeStart() < errorSpecs[j].rangeStart()
	})
}

var errorCodeRe = regexp.MustCompile(`\(#(\d+)\)`)

func extractErrorCode(message string) int {
	m := errorCodeRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

// ClassifyError maps a provider error type name (or legacy numeric code)
// and message onto an APIError. The type name wins when it matches a known
// spec directly; otherwise specs are scanned in ascending code order and
// the first substring, range or exact code match wins. A message naming a
// missing parameter always classifies as KindMissingParameter.
func ClassifyError(errType, message string) *APIError {
	code := extractErrorCode(message)
	apiErr := &APIError{Kind: KindGeneric, Type: errType, Code: code, Message: message}

	matched := false
	for _, spec := range errorSpecs {
		if spec.typeName == errType {
			apiErr.Kind = spec.kind
			matched = true
			break
		}
	}
	if !matched {
		for _, spec := range errorSpecs {
			if spec.matches(message, code) {
				apiErr.Kind = spec.kind
				break
			}
		}
	}

	if strings.Contains(message, "Missing") && strings.Contains(message, "parameter") {
		apiErr.Kind = KindMissingParameter
	}

	return apiErr
}
