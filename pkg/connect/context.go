package connect

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	credentialKey contextKey = iota
	userIDKey
)

// WithCredential returns a context carrying a resolved credential. Used by
// Middleware so that one resolution serves the whole request.
func WithCredential(ctx context.Context, cred *Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

// CredentialFromContext returns the credential cached on the context, if
// any.
func CredentialFromContext(ctx context.Context) (*Credential, bool) {
	cred, ok := ctx.Value(credentialKey).(*Credential)
	return cred, ok && cred != nil
}

// WithUserID returns a context carrying the authenticated local user id.
// The host application's session middleware is expected to set this; the
// resolver uses it for the stored-token fallback.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the authenticated local user id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
