package pg

import (
	"context"
	"errors"
)

// pinger is the part of pgxpool.Pool the healthcheck uses.
type pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck adapts a pool to the func(context.Context) error shape health
// endpoints expect. Failures wrap ErrHealthcheckFailed so callers can tell
// a dead database apart from other degraded dependencies.
func Healthcheck(conn pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := conn.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
