package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load populates the provided configuration struct from environment
// variables based on `env` field tags.
//
// The default .env file is loaded into the process environment once per
// process, before the first parse; a missing file is not an error.
//
// Example:
//
//	type Config struct {
//		AppID     string `env:"FACEBOOK_APP_ID,required"`
//		AppSecret string `env:"FACEBOOK_APP_SECRET,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// The .env file might not exist and that's ok.
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadEnv loads the given .env files into the process environment before
// any configuration is parsed. Unlike the implicit default load, missing
// files are errors here: a caller naming a file expects it to exist.
func LoadEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// This is useful for configurations that are required for the application to start.
//
// Example:
//
//	var cfg connect.Config
//	config.MustLoad(&cfg)
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}
