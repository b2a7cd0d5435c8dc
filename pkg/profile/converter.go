package profile

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/dmitrymomot/socialconnect/pkg/graph"
	"github.com/dmitrymomot/socialconnect/pkg/logger"
)

// maxEmailLength matches the 75-character column common to legacy user
// tables. Longer addresses are dropped rather than truncated.
const maxEmailLength = 75

// birthDateLayout is the provider's birthday format (MM/DD/YYYY).
const birthDateLayout = "01/02/2006"

// minUsernameLength is the shortest candidate worth keeping. Shorter ones
// fall through to the next source in the chain.
const minUsernameLength = 4

const passwordLength = 9

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// usernameDenylist rejects slugs derived from placeholder profile links
// such as https://www.facebook.com/profile.php?id=123.
var usernameDenylist = []string{"profilephp"}

// UserRecord is a local user derived from a raw provider profile.
type UserRecord struct {
	FacebookID  int64
	Name        string
	FirstName   string
	LastName    string
	Email       string
	Username    string
	Password    string
	About       string
	Gender      string
	DateOfBirth *time.Time
	ProfileURL  string
	WebsiteURL  string
	Image       string
	ImageThumb  string
}

// UsernameRegistry answers whether a username is already in use.
// Implementations must match case-insensitively.
type UsernameRegistry interface {
	Taken(ctx context.Context, username string) (bool, error)
}

// Reporter receives profiles that failed conversion, for later
// inspection. Reporting is best effort; the conversion error is returned
// regardless.
type Reporter interface {
	ReportBrokenProfile(ctx context.Context, raw []byte, convErr error)
}

// Converter turns raw provider profiles into UserRecords.
type Converter struct {
	registry UsernameRegistry
	reporter Reporter
	logger   *slog.Logger
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithUsernameRegistry enables username uniqueness checks against the
// local user table.
func WithUsernameRegistry(reg UsernameRegistry) ConverterOption {
	return func(c *Converter) { c.registry = reg }
}

// WithReporter registers a destination for broken profiles.
func WithReporter(rep Reporter) ConverterOption {
	return func(c *Converter) { c.reporter = rep }
}

// WithLogger configures the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) ConverterOption {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConverter creates a Converter.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProfile loads the authenticated user's profile through the given
// graph client and attaches picture URLs under "image" and "image_thumb".
func FetchProfile(ctx context.Context, client *graph.Client) (Raw, error) {
	me, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: fetch me: %w", err)
	}

	raw := make(Raw, len(me)+2)
	for k, v := range me {
		raw[k] = v
	}
	raw["image"] = client.PictureURL("large")
	raw["image_thumb"] = client.PictureURL("square")
	return raw, nil
}

// Convert derives a UserRecord from a raw profile. assignUsername controls
// whether a username is resolved; registration flows want one, connect
// flows for existing accounts do not.
//
// Failed conversions are reported through the Reporter before the error is
// returned.
func (c *Converter) Convert(ctx context.Context, raw Raw, assignUsername bool) (*UserRecord, error) {
	record, err := c.convert(ctx, raw, assignUsername)
	if err != nil {
		c.report(ctx, raw, err)
		return nil, err
	}
	return record, nil
}

func (c *Converter) convert(ctx context.Context, raw Raw, assignUsername bool) (*UserRecord, error) {
	facebookID, ok := raw.Int64("id")
	if !ok {
		return nil, ErrMissingExternalID
	}

	record := &UserRecord{
		FacebookID: facebookID,
		Name:       raw.String("name"),
		FirstName:  raw.String("first_name"),
		LastName:   raw.String("last_name"),
		ProfileURL: raw.String("link"),
		WebsiteURL: ExtractURL(raw.String("website")),
		Image:      raw.String("image"),
		ImageThumb: raw.String("image_thumb"),
		Password:   randomPassword(),
	}

	if email := raw.String("email"); len(email) <= maxEmailLength {
		record.Email = email
	}

	switch raw.String("gender") {
	case "male":
		record.Gender = "m"
	case "female":
		record.Gender = "f"
	}

	if about := raw.String("about"); about != "" {
		record.About = about
	} else {
		record.About = raw.String("quotes")
	}

	dob, err := parseBirthDate(raw.String("birthday"))
	if err != nil {
		return nil, err
	}
	record.DateOfBirth = dob

	if assignUsername {
		username, err := c.resolveUsername(ctx, raw)
		if err != nil {
			return nil, err
		}
		record.Username = username
	}

	return record, nil
}

// resolveUsername picks a username from the profile link, the email local
// part, or the display name, in that order, then disambiguates against the
// registry by appending an integer suffix.
func (c *Converter) resolveUsername(ctx context.Context, raw Raw) (string, error) {
	base := usernameFromLink(raw.String("link"))
	if len(base) < minUsernameLength {
		base = ""
		if email := raw.String("email"); email != "" {
			local, _, _ := strings.Cut(email, "@")
			if candidate := slugifyUsername(local); len(candidate) >= minUsernameLength {
				base = candidate
			}
		}
	}
	if base == "" {
		base = slugifyUsername(raw.String("name"))
	}

	if c.registry == nil {
		return base, nil
	}

	username := base
	for suffix := 1; ; suffix++ {
		taken, err := c.registry.Taken(ctx, username)
		if err != nil {
			return "", fmt.Errorf("profile: username lookup: %w", err)
		}
		if !taken {
			return username, nil
		}
		username = base + strconv.Itoa(suffix)
	}
}

// usernameFromLink derives a username from a vanity profile URL. Links
// without a vanity segment (profile.php placeholders) yield "".
func usernameFromLink(link string) string {
	link = strings.TrimRight(link, "/")
	if link == "" {
		return ""
	}
	segment := link[strings.LastIndex(link, "/")+1:]
	if q := strings.IndexByte(segment, '?'); q >= 0 {
		segment = segment[:q]
	}

	candidate := slugifyUsername(segment)
	stripped := strings.ReplaceAll(candidate, "_", "")
	for _, denied := range usernameDenylist {
		if strings.Contains(stripped, denied) {
			return ""
		}
	}
	return candidate
}

// slugifyUsername slugifies with underscores instead of hyphens, matching
// the username style of the rest of the platform.
func slugifyUsername(s string) string {
	return strings.ReplaceAll(slug.Make(s), "-", "_")
}

// parseBirthDate parses the provider's MM/DD/YYYY birthday. Partial dates
// like "03/24" (year hidden by privacy settings) are tolerated as no date.
func parseBirthDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if strings.Count(s, "/") == 1 {
		return nil, nil
	}
	t, err := time.Parse(birthDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBirthDate, s)
	}
	return &t, nil
}

var urlRe = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// ExtractURL pulls the first URL out of free-form text, such as the
// provider's website field, which users fill with anything from a bare
// domain to a sentence. Returns "" when no URL is found.
func ExtractURL(text string) string {
	match := urlRe.FindString(text)
	if match == "" {
		return ""
	}
	match = strings.TrimRight(match, ".,;)")
	if !strings.Contains(match, "://") {
		match = "http://" + match
	}
	return match
}

func (c *Converter) report(ctx context.Context, raw Raw, convErr error) {
	if c.reporter == nil {
		return
	}
	dump, err := json.Marshal(raw)
	if err != nil {
		c.logger.Warn("broken profile dump failed",
			logger.Component("profile"),
			logger.Error(err),
		)
		return
	}
	c.reporter.ReportBrokenProfile(ctx, dump, convErr)
}

func randomPassword() string {
	buf := make([]byte, passwordLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("profile: read random: %v", err))
	}
	for i, b := range buf {
		buf[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(buf)
}
