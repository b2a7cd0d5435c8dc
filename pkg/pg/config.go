package pg

import "time"

// Config tunes the pgx pool behind the social graph store. Everything is
// env-driven so deployments size the pool without a rebuild.
type Config struct {
	// ConnectionString is the postgres:// URL of the database holding the
	// facebook_friends and facebook_likes tables.
	ConnectionString string `env:"PG_CONN_URL,required"`

	// Pool sizing. Graph imports arrive in short bursts from queue
	// workers, so the defaults stay modest.
	MaxOpenConns int32 `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int32 `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`

	// Connection lifecycle.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Startup retry, so workers brought up alongside the database wait it
	// out instead of crash-looping.
	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
}
