package profile_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockUsernameRegistry is a mock implementation of profile.UsernameRegistry.
type MockUsernameRegistry struct {
	mock.Mock
}

func (m *MockUsernameRegistry) Taken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// MockReporter is a mock implementation of profile.Reporter.
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) ReportBrokenProfile(ctx context.Context, raw []byte, convErr error) {
	m.Called(ctx, raw, convErr)
}
