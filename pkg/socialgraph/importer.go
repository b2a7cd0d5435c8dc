package socialgraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/socialconnect/pkg/async"
	"github.com/dmitrymomot/socialconnect/pkg/graph"
	"github.com/dmitrymomot/socialconnect/pkg/logger"
)

// DefaultFetchLimit caps how many friends or likes one import pulls.
const DefaultFetchLimit = 5000

// friendsQuery resolves friend names in one round trip instead of a call
// per friend.
const friendsQuery = `SELECT uid, name FROM user WHERE uid IN (SELECT uid2 FROM friend WHERE uid1 = me()) LIMIT %d`

// likeCreatedTimeLayout is the provider's timestamp format.
const likeCreatedTimeLayout = "2006-01-02T15:04:05-0700"

// FriendsEvent describes one friends merge.
type FriendsEvent struct {
	UserID      uuid.UUID
	Incoming    []Friend
	ExistingIDs []string
	Inserted    []Friend
}

// LikesEvent describes one likes merge.
type LikesEvent struct {
	UserID      uuid.UUID
	Incoming    []Like
	ExistingIDs []string
	Inserted    []Like
}

// FriendsHook observes friends merges. Hooks run synchronously after the
// insert; a slow hook slows the import.
type FriendsHook func(ctx context.Context, event FriendsEvent)

// LikesHook observes likes merges.
type LikesHook func(ctx context.Context, event LikesEvent)

// Importer fetches a user's social graph from the provider and merges it
// into a Store.
type Importer struct {
	store        Store
	fetchLimit   int
	friendsHooks []FriendsHook
	likesHooks   []LikesHook
	logger       *slog.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithFetchLimit overrides DefaultFetchLimit.
func WithFetchLimit(limit int) ImporterOption {
	return func(i *Importer) {
		if limit > 0 {
			i.fetchLimit = limit
		}
	}
}

// WithFriendsHook registers a hook invoked after every friends merge.
func WithFriendsHook(hook FriendsHook) ImporterOption {
	return func(i *Importer) { i.friendsHooks = append(i.friendsHooks, hook) }
}

// WithLikesHook registers a hook invoked after every likes merge.
func WithLikesHook(hook LikesHook) ImporterOption {
	return func(i *Importer) { i.likesHooks = append(i.likesHooks, hook) }
}

// WithImporterLogger configures the logger. Defaults to a discard logger.
func WithImporterLogger(l *slog.Logger) ImporterOption {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewImporter creates an Importer on the given store.
func NewImporter(store Store, opts ...ImporterOption) *Importer {
	i := &Importer{
		store:      store,
		fetchLimit: DefaultFetchLimit,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// FetchFriends loads the token owner's friends through the graph client.
func (i *Importer) FetchFriends(ctx context.Context, client *graph.Client) ([]Friend, error) {
	rows, err := client.FQL(ctx, fmt.Sprintf(friendsQuery, i.fetchLimit))
	if err != nil {
		return nil, fmt.Errorf("socialgraph: fetch friends: %w", err)
	}

	friends := make([]Friend, 0, len(rows))
	for _, row := range rows {
		id := row.String("uid")
		if id == "" {
			// FQL returns uids as numbers.
			if uid := row.Int64("uid"); uid != 0 {
				id = strconv.FormatInt(uid, 10)
			}
		}
		if id == "" {
			continue
		}
		friends = append(friends, Friend{
			FacebookID: id,
			Name:       row.String("name"),
		})
	}
	return friends, nil
}

// FetchLikes loads the token owner's likes through the graph client.
func (i *Importer) FetchLikes(ctx context.Context, client *graph.Client) ([]Like, error) {
	resp, err := client.Get(ctx, "me/likes", url.Values{"limit": {strconv.Itoa(i.fetchLimit)}})
	if err != nil {
		return nil, fmt.Errorf("socialgraph: fetch likes: %w", err)
	}

	data := resp.Data()
	likes := make([]Like, 0, len(data))
	for _, entry := range data {
		id := entry.String("id")
		if id == "" {
			continue
		}
		like := Like{
			FacebookID: id,
			Name:       entry.String("name"),
			Category:   entry.String("category"),
		}
		if raw := entry.String("created_time"); raw != "" {
			if t, err := time.Parse(likeCreatedTimeLayout, raw); err == nil {
				like.CreatedTime = &t
			} else {
				i.logger.Debug("unparseable like created_time",
					logger.Component("socialgraph"),
					slog.String("created_time", raw),
				)
			}
		}
		likes = append(likes, like)
	}
	return likes, nil
}

// StoreFriends merges friends into the store: only records whose external
// id is not yet stored are inserted, existing rows stay untouched.
func (i *Importer) StoreFriends(ctx context.Context, userID uuid.UUID, friends []Friend) ([]Friend, error) {
	existing, err := i.store.FriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("socialgraph: load stored friend ids: %w", err)
	}

	missing := missingFriends(friends, existing)
	if err := i.store.InsertFriends(ctx, userID, missing); err != nil {
		return nil, err
	}

	i.logger.Info("friends stored",
		logger.Component("socialgraph"),
		logger.UserID(userID),
		slog.Int("incoming", len(friends)),
		slog.Int("inserted", len(missing)),
	)

	event := FriendsEvent{UserID: userID, Incoming: friends, ExistingIDs: existing, Inserted: missing}
	for _, hook := range i.friendsHooks {
		hook(ctx, event)
	}
	return missing, nil
}

// StoreLikes merges likes into the store with the same append-only
// semantics as StoreFriends.
func (i *Importer) StoreLikes(ctx context.Context, userID uuid.UUID, likes []Like) ([]Like, error) {
	existing, err := i.store.LikeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("socialgraph: load stored like ids: %w", err)
	}

	missing := missingLikes(likes, existing)
	if err := i.store.InsertLikes(ctx, userID, missing); err != nil {
		return nil, err
	}

	i.logger.Info("likes stored",
		logger.Component("socialgraph"),
		logger.UserID(userID),
		slog.Int("incoming", len(likes)),
		slog.Int("inserted", len(missing)),
	)

	event := LikesEvent{UserID: userID, Incoming: likes, ExistingIDs: existing, Inserted: missing}
	for _, hook := range i.likesHooks {
		hook(ctx, event)
	}
	return missing, nil
}

// ImportFriends fetches and merges in one step.
func (i *Importer) ImportFriends(ctx context.Context, client *graph.Client, userID uuid.UUID) ([]Friend, error) {
	friends, err := i.FetchFriends(ctx, client)
	if err != nil {
		return nil, err
	}
	return i.StoreFriends(ctx, userID, friends)
}

// ImportLikes fetches and merges in one step.
func (i *Importer) ImportLikes(ctx context.Context, client *graph.Client, userID uuid.UUID) ([]Like, error) {
	likes, err := i.FetchLikes(ctx, client)
	if err != nil {
		return nil, err
	}
	return i.StoreLikes(ctx, userID, likes)
}

// ImportAll runs the friends and likes imports concurrently and waits for
// both. Used by inline (non-queued) connect flows where the two fetches
// would otherwise double the request latency.
func (i *Importer) ImportAll(ctx context.Context, client *graph.Client, userID uuid.UUID) error {
	friendsFuture := async.Async(ctx, client, func(ctx context.Context, c *graph.Client) (int, error) {
		inserted, err := i.ImportFriends(ctx, c, userID)
		return len(inserted), err
	})
	likesFuture := async.Async(ctx, client, func(ctx context.Context, c *graph.Client) (int, error) {
		inserted, err := i.ImportLikes(ctx, c, userID)
		return len(inserted), err
	})

	_, err := async.WaitAll(friendsFuture, likesFuture)
	return err
}

func missingFriends(incoming []Friend, existingIDs []string) []Friend {
	existing := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	missing := make([]Friend, 0, len(incoming))
	for _, f := range incoming {
		if _, ok := existing[f.FacebookID]; ok {
			continue
		}
		// Incoming duplicates collapse to one insert.
		existing[f.FacebookID] = struct{}{}
		missing = append(missing, f)
	}
	return missing
}

func missingLikes(incoming []Like, existingIDs []string) []Like {
	existing := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	missing := make([]Like, 0, len(incoming))
	for _, l := range incoming {
		if _, ok := existing[l.FacebookID]; ok {
			continue
		}
		existing[l.FacebookID] = struct{}{}
		missing = append(missing, l)
	}
	return missing
}
