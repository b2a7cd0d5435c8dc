package socialgraph

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Friend is one edge of a user's friend list.
type Friend struct {
	FacebookID string
	Name       string
}

// Like is a page the user likes.
type Like struct {
	FacebookID  string
	Name        string
	Category    string
	CreatedTime *time.Time
}

// Store persists friends and likes keyed by (local user id, external id).
// Inserts must tolerate rows that already exist: concurrent imports for
// the same user may race, and the loser's duplicates are ignored, not
// errors.
type Store interface {
	// FriendIDs returns the external ids of the user's stored friends.
	FriendIDs(ctx context.Context, userID uuid.UUID) ([]string, error)

	// InsertFriends stores the given friends for the user.
	InsertFriends(ctx context.Context, userID uuid.UUID, friends []Friend) error

	// LikeIDs returns the external ids of the user's stored likes.
	LikeIDs(ctx context.Context, userID uuid.UUID) ([]string, error)

	// InsertLikes stores the given likes for the user.
	InsertLikes(ctx context.Context, userID uuid.UUID, likes []Like) error
}
