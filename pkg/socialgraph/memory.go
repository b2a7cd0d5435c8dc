package socialgraph

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory, for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	friends map[uuid.UUID]map[string]Friend
	likes   map[uuid.UUID]map[string]Like
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		friends: make(map[uuid.UUID]map[string]Friend),
		likes:   make(map[uuid.UUID]map[string]Like),
	}
}

func (s *MemoryStore) FriendIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.friends[userID]))
	for id := range s.friends[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) InsertFriends(ctx context.Context, userID uuid.UUID, friends []Friend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.friends[userID] == nil {
		s.friends[userID] = make(map[string]Friend)
	}
	for _, f := range friends {
		if _, exists := s.friends[userID][f.FacebookID]; exists {
			continue
		}
		s.friends[userID][f.FacebookID] = f
	}
	return nil
}

func (s *MemoryStore) LikeIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.likes[userID]))
	for id := range s.likes[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) InsertLikes(ctx context.Context, userID uuid.UUID, likes []Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.likes[userID] == nil {
		s.likes[userID] = make(map[string]Like)
	}
	for _, l := range likes {
		if _, exists := s.likes[userID][l.FacebookID]; exists {
			continue
		}
		s.likes[userID][l.FacebookID] = l
	}
	return nil
}

// Friends returns the stored friends of a user, for tests.
func (s *MemoryStore) Friends(userID uuid.UUID) []Friend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Friend, 0, len(s.friends[userID]))
	for _, f := range s.friends[userID] {
		out = append(out, f)
	}
	return out
}

// Likes returns the stored likes of a user, for tests.
func (s *MemoryStore) Likes(userID uuid.UUID) []Like {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Like, 0, len(s.likes[userID]))
	for _, l := range s.likes[userID] {
		out = append(out, l)
	}
	return out
}
