// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver. It offers a thin abstraction around connection pooling,
// health checks, and common error helpers so that applications can
// bootstrap a resilient database layer with only a few lines of code.
//
// # Usage
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	ctx := context.Background()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	// expose health endpoint
//	health := pg.Healthcheck(pool)
//	if err := health(ctx); err != nil {
//	    panic(err)
//	}
//
// # Configuration
//
// All configuration values are provided through environment variables so
// that they can be tuned per-environment without code changes. Refer to
// the field tags in Config for exact variable names and defaults.
//
// # Error Handling
//
// Convenience helpers such as [pg.IsDuplicateKeyError] or
// [pg.IsNotFoundError] unwrap errors returned by pgx/`*pgconn.PgError`
// and make error classification trivial inside business logic.
package pg
