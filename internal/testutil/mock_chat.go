//go:build !production

package testutil

import "github.com/stretchr/testify/mock"

// MockChatLimiter 实现 types.ChatLimiter 的 mock
type MockChatLimiter struct {
	mock.Mock
}

func (m *MockChatLimiter) AllowChat(clientID string) (allowed bool, reason string) {
	args := m.Called(clientID)
	return args.Bool(0), args.String(1)
}
