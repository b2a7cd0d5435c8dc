package socialgraph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/socialconnect/pkg/pg"
)

// PGStore implements Store on PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE facebook_friends (
//	    user_id     UUID        NOT NULL,
//	    facebook_id TEXT        NOT NULL,
//	    name        TEXT        NOT NULL DEFAULT '',
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (user_id, facebook_id)
//	);
//
//	CREATE TABLE facebook_likes (
//	    user_id      UUID        NOT NULL,
//	    facebook_id  TEXT        NOT NULL,
//	    name         TEXT        NOT NULL DEFAULT '',
//	    category     TEXT        NOT NULL DEFAULT '',
//	    created_time TIMESTAMPTZ,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (user_id, facebook_id)
//	);
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

// NewPGStore creates a PGStore on an existing connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ConnectPGStore opens a connection pool from the given config and wraps
// it in a PGStore. The caller owns the returned pool and closes it on
// shutdown.
func ConnectPGStore(ctx context.Context, cfg pg.Config) (*PGStore, *pgxpool.Pool, error) {
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewPGStore(pool), pool, nil
}

func (s *PGStore) FriendIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT facebook_id FROM facebook_friends WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("socialgraph: query friend ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("socialgraph: collect friend ids: %w", err)
	}
	return ids, nil
}

// InsertFriends batches the inserts; ON CONFLICT DO NOTHING keeps rows
// inserted by a concurrent import intact.
func (s *PGStore) InsertFriends(ctx context.Context, userID uuid.UUID, friends []Friend) error {
	if len(friends) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, f := range friends {
		batch.Queue(
			`INSERT INTO facebook_friends (user_id, facebook_id, name)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, facebook_id) DO NOTHING`,
			userID, f.FacebookID, f.Name)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("socialgraph: insert friends: %w", err)
	}
	return nil
}

func (s *PGStore) LikeIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT facebook_id FROM facebook_likes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("socialgraph: query like ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("socialgraph: collect like ids: %w", err)
	}
	return ids, nil
}

func (s *PGStore) InsertLikes(ctx context.Context, userID uuid.UUID, likes []Like) error {
	if len(likes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, l := range likes {
		batch.Queue(
			`INSERT INTO facebook_likes (user_id, facebook_id, name, category, created_time)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_id, facebook_id) DO NOTHING`,
			userID, l.FacebookID, l.Name, l.Category, l.CreatedTime)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("socialgraph: insert likes: %w", err)
	}
	return nil
}
