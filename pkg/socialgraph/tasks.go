package socialgraph

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialconnect/pkg/graph"
	"github.com/dmitrymomot/socialconnect/pkg/queue"
)

// StoreFriendsTask is the payload for a deferred friends import. The
// access token is captured at enqueue time; by the time the worker runs,
// the originating request is long gone.
type StoreFriendsTask struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"access_token"`
}

// StoreLikesTask is the payload for a deferred likes import.
type StoreLikesTask struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"access_token"`
}

// EnqueueImportFriends schedules a background friends import.
func EnqueueImportFriends(ctx context.Context, enq *queue.Enqueuer, userID uuid.UUID, accessToken string) error {
	return enq.Enqueue(ctx, StoreFriendsTask{UserID: userID, AccessToken: accessToken})
}

// EnqueueImportLikes schedules a background likes import.
func EnqueueImportLikes(ctx context.Context, enq *queue.Enqueuer, userID uuid.UUID, accessToken string) error {
	return enq.Enqueue(ctx, StoreLikesTask{UserID: userID, AccessToken: accessToken})
}

// NewFriendsTaskHandler returns the queue handler that processes
// StoreFriendsTask payloads. graphOpts are forwarded to the graph client
// built around the task's token.
func NewFriendsTaskHandler(imp *Importer, graphOpts ...graph.Option) queue.Handler {
	return queue.NewTaskHandler(func(ctx context.Context, task StoreFriendsTask) error {
		client := graph.New(task.AccessToken, graphOpts...)
		_, err := imp.ImportFriends(ctx, client, task.UserID)
		return err
	})
}

// NewLikesTaskHandler returns the queue handler that processes
// StoreLikesTask payloads.
func NewLikesTaskHandler(imp *Importer, graphOpts ...graph.Option) queue.Handler {
	return queue.NewTaskHandler(func(ctx context.Context, task StoreLikesTask) error {
		client := graph.New(task.AccessToken, graphOpts...)
		_, err := imp.ImportLikes(ctx, client, task.UserID)
		return err
	})
}
