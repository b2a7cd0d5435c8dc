// Package config provides a type-safe, generic way to load application
// configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a convenient API that:
//
//   - Loads values from the default `.env` file in the current working
//     directory, or from explicitly named files via LoadEnv.
//   - Parses the environment into any Go struct using field tags.
//   - Exposes a helper that panics on failure (MustLoad) for configuration
//     the application cannot start without.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields
// with `env` tags:
//
//	type Config struct {
//	    AppID     string   `env:"FACEBOOK_APP_ID,required"`
//	    AppSecret string   `env:"FACEBOOK_APP_SECRET,required"`
//	    Scopes    []string `env:"FACEBOOK_DEFAULT_SCOPE" envSeparator:","`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - ErrParsingConfig  – failed to parse env vars into struct.
//   - ErrLoadingEnvFile – an explicitly named .env file could not be read.
//   - ErrNilPointer     – nil pointer passed to Load/MustLoad.
package config
