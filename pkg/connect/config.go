package connect

// Config is the application-level configuration surface of the connector.
// It is constructed once at startup (typically via pkg/config) and passed
// explicitly into the components that need it - never read from ambient
// global state.
type Config struct {
	AppID     string   `env:"FACEBOOK_APP_ID,required"`
	AppSecret string   `env:"FACEBOOK_APP_SECRET,required"`
	Scopes    []string `env:"FACEBOOK_DEFAULT_SCOPE" envSeparator:"," envDefault:"email,user_about_me,user_birthday"`

	// CookiePrefix names the signed-request cookie together with the app
	// id: {prefix}_{app_id}.
	CookiePrefix string `env:"FACEBOOK_COOKIE_PREFIX" envDefault:"fbsr"`

	// StoreFriends and StoreLikes control whether the social graph is
	// persisted after registration/connect.
	StoreFriends bool `env:"FACEBOOK_STORE_FRIENDS" envDefault:"false"`
	StoreLikes   bool `env:"FACEBOOK_STORE_LIKES" envDefault:"false"`

	// AsyncStore defers social graph persistence to the task queue.
	// Recommended whenever StoreFriends or StoreLikes is on.
	AsyncStore bool `env:"FACEBOOK_ASYNC_STORE" envDefault:"false"`
}

// CookieName returns the name of the provider's signed-request cookie for
// this application.
func (c Config) CookieName() string {
	return c.CookiePrefix + "_" + c.AppID
}
