package connect_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTokenStore is a mock implementation of connect.TokenStore.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) AccessToken(ctx context.Context, userID uuid.UUID) (string, *time.Time, error) {
	args := m.Called(ctx, userID)
	var expiresAt *time.Time
	if v := args.Get(1); v != nil {
		expiresAt = v.(*time.Time)
	}
	return args.String(0), expiresAt, args.Error(2)
}
