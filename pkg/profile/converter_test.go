package profile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialconnect/pkg/graph"
	"github.com/dmitrymomot/socialconnect/pkg/profile"
)

func fullProfile() profile.Raw {
	return profile.Raw{
		"id":         "759263820",
		"name":       "Thierry Schellenbach",
		"first_name": "Thierry",
		"last_name":  "Schellenbach",
		"email":      "thierry@example.com",
		"gender":     "male",
		"birthday":   "03/24/1984",
		"about":      "Likes boats",
		"link":       "https://www.facebook.com/thierry.schellenbach",
		"website":    "check out http://www.example.org and more",
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	t.Run("full profile", func(t *testing.T) {
		t.Parallel()

		c := profile.NewConverter()
		record, err := c.Convert(context.Background(), fullProfile(), true)
		require.NoError(t, err)

		assert.Equal(t, int64(759263820), record.FacebookID)
		assert.Equal(t, "Thierry Schellenbach", record.Name)
		assert.Equal(t, "Thierry", record.FirstName)
		assert.Equal(t, "Schellenbach", record.LastName)
		assert.Equal(t, "thierry@example.com", record.Email)
		assert.Equal(t, "m", record.Gender)
		assert.Equal(t, "Likes boats", record.About)
		assert.Equal(t, "https://www.facebook.com/thierry.schellenbach", record.ProfileURL)
		assert.Equal(t, "http://www.example.org", record.WebsiteURL)
		assert.Equal(t, "thierry_schellenbach", record.Username)

		require.NotNil(t, record.DateOfBirth)
		assert.Equal(t, time.Date(1984, time.March, 24, 0, 0, 0, 0, time.UTC), *record.DateOfBirth)

		assert.Len(t, record.Password, 9)
		for _, r := range record.Password {
			assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "password char %q", r)
		}
	})

	t.Run("numeric id", func(t *testing.T) {
		t.Parallel()

		raw := profile.Raw{"id": float64(123456789), "name": "N"}
		record, err := profile.NewConverter().Convert(context.Background(), raw, false)
		require.NoError(t, err)
		assert.Equal(t, int64(123456789), record.FacebookID)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		_, err := profile.NewConverter().Convert(context.Background(), profile.Raw{"name": "N"}, false)
		require.ErrorIs(t, err, profile.ErrMissingExternalID)
	})

	t.Run("quotes fill in for a missing about", func(t *testing.T) {
		t.Parallel()

		raw := fullProfile()
		delete(raw, "about")
		raw["quotes"] = "Ship it"

		record, err := profile.NewConverter().Convert(context.Background(), raw, false)
		require.NoError(t, err)
		assert.Equal(t, "Ship it", record.About)
	})

	t.Run("female gender", func(t *testing.T) {
		t.Parallel()

		raw := fullProfile()
		raw["gender"] = "female"
		record, err := profile.NewConverter().Convert(context.Background(), raw, false)
		require.NoError(t, err)
		assert.Equal(t, "f", record.Gender)
	})

	t.Run("unknown gender stays unset", func(t *testing.T) {
		t.Parallel()

		raw := fullProfile()
		raw["gender"] = "other"
		record, err := profile.NewConverter().Convert(context.Background(), raw, false)
		require.NoError(t, err)
		assert.Empty(t, record.Gender)
	})
}

func TestConvertEmail(t *testing.T) {
	t.Parallel()

	t.Run("overlong email is dropped", func(t *testing.T) {
		t.Parallel()

		raw := fullProfile()
		raw["email"] = strings.Repeat("a", 70) + "@ex.com" // 77 chars
		record, err := profile.NewConverter().Convert(context.Background(), raw, false)
		require.NoError(t, err)
		assert.Empty(t, record.Email)
	})

	t.Run("boundary length email is kept", func(t *testing.T) {
		t.Parallel()

		email := strings.Repeat("a", 68) + "@ex.com" // exactly 75
		require.Len(t, email, 75)

		raw := fullProfile()
		raw["email"] = email
		record, err := profile.NewConverter().Convert(context.Background(), raw, false)
		require.NoError(t, err)
		assert.Equal(t, email, record.Email)
	})
}

func TestConvertBirthDate(t *testing.T) {
	t.Parallel()

	convert := func(t *testing.T, birthday string) (*profile.UserRecord, error) {
		t.Helper()
		raw := fullProfile()
		if birthday == "" {
			delete(raw, "birthday")
		} else {
			raw["birthday"] = birthday
		}
		return profile.NewConverter().Convert(context.Background(), raw, false)
	}

	t.Run("absent birthday", func(t *testing.T) {
		t.Parallel()
		record, err := convert(t, "")
		require.NoError(t, err)
		assert.Nil(t, record.DateOfBirth)
	})

	t.Run("partial birthday hidden by privacy settings", func(t *testing.T) {
		t.Parallel()
		record, err := convert(t, "03/24")
		require.NoError(t, err)
		assert.Nil(t, record.DateOfBirth)
	})

	t.Run("malformed birthday", func(t *testing.T) {
		t.Parallel()
		_, err := convert(t, "1984-03-24")
		require.ErrorIs(t, err, profile.ErrInvalidBirthDate)
	})

	t.Run("extra date segments", func(t *testing.T) {
		t.Parallel()
		_, err := convert(t, "04/07/90/00")
		require.ErrorIs(t, err, profile.ErrInvalidBirthDate)
	})
}

func TestResolveUsername(t *testing.T) {
	t.Parallel()

	convert := func(t *testing.T, raw profile.Raw, opts ...profile.ConverterOption) *profile.UserRecord {
		t.Helper()
		record, err := profile.NewConverter(opts...).Convert(context.Background(), raw, true)
		require.NoError(t, err)
		return record
	}

	t.Run("from the vanity link", func(t *testing.T) {
		t.Parallel()
		record := convert(t, fullProfile())
		assert.Equal(t, "thierry_schellenbach", record.Username)
	})

	t.Run("placeholder link falls back to the email local part", func(t *testing.T) {
		t.Parallel()

		raw := fullProfile()
		raw["link"] = "https://www.facebook.com/profile.php?id=759263820"
		record := convert(t, raw)
		assert.Equal(t, "thierry", record.Username)
	})

	t.Run("short vanity link falls back to the email local part", func(t *testing.T) {
		t.Parallel()

		raw := fullProfile()
		raw["link"] = "https://www.facebook.com/ab"
		record := convert(t, raw)
		assert.Equal(t, "thierry", record.Username)
	})

	t.Run("short email local part falls back to the name", func(t *testing.T) {
		t.Parallel()

		raw := fullProfile()
		delete(raw, "link")
		raw["email"] = "bo@example.com"
		record := convert(t, raw)
		assert.Equal(t, "thierry_schellenbach", record.Username)
	})

	t.Run("taken usernames get an integer suffix", func(t *testing.T) {
		t.Parallel()

		reg := &MockUsernameRegistry{}
		reg.On("Taken", mock.Anything, "thierry_schellenbach").Return(true, nil).Once()
		reg.On("Taken", mock.Anything, "thierry_schellenbach1").Return(true, nil).Once()
		reg.On("Taken", mock.Anything, "thierry_schellenbach2").Return(false, nil).Once()

		record := convert(t, fullProfile(), profile.WithUsernameRegistry(reg))
		assert.Equal(t, "thierry_schellenbach2", record.Username)
		reg.AssertExpectations(t)
	})

	t.Run("registry errors propagate", func(t *testing.T) {
		t.Parallel()

		reg := &MockUsernameRegistry{}
		reg.On("Taken", mock.Anything, mock.Anything).Return(false, assert.AnError)

		_, err := profile.NewConverter(profile.WithUsernameRegistry(reg)).
			Convert(context.Background(), fullProfile(), true)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("no username without assignment", func(t *testing.T) {
		t.Parallel()
		record, err := profile.NewConverter().Convert(context.Background(), fullProfile(), false)
		require.NoError(t, err)
		assert.Empty(t, record.Username)
	})
}

func TestReporter(t *testing.T) {
	t.Parallel()

	raw := fullProfile()
	raw["birthday"] = "not a date"

	rep := &MockReporter{}
	rep.On("ReportBrokenProfile", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		var dumped map[string]any
		require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &dumped))
		assert.Equal(t, "not a date", dumped["birthday"])
		assert.ErrorIs(t, args.Error(2), profile.ErrInvalidBirthDate)
	}).Once()

	_, err := profile.NewConverter(profile.WithReporter(rep)).Convert(context.Background(), raw, false)
	require.ErrorIs(t, err, profile.ErrInvalidBirthDate)
	rep.AssertExpectations(t)
}

func TestExtractURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{"http://www.example.org", "http://www.example.org"},
		{"https://example.org/page", "https://example.org/page"},
		{"www.example.org", "http://www.example.org"},
		{"my site is www.example.org, come visit", "http://www.example.org"},
		{"trailing http://example.org.", "http://example.org"},
		{"no url here", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, profile.ExtractURL(tt.text))
		})
	}
}

func TestFetchProfile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		require.Equal(t, "token", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"id":"759263820","name":"Thierry Schellenbach"}`))
	}))
	t.Cleanup(srv.Close)

	client := graph.New("token", graph.WithBaseURLs(srv.URL+"/", ""))
	raw, err := profile.FetchProfile(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, "759263820", raw.String("id"))
	assert.Contains(t, raw.String("image"), "type=large")
	assert.Contains(t, raw.String("image_thumb"), "type=square")
	assert.Contains(t, raw.String("image"), "access_token=token")
}
