package provider

import (
	"context"
	"sync"
)

// MockIdentityChecker is a mock implementation of IdentityChecker for testing
type MockIdentityChecker struct {
	DetectIdentityFunc func(ctx context.Context, keys AccessKeys) (*Identity, error)

	mu    sync.Mutex
	calls []AccessKeys
}

// DetectIdentity implements IdentityChecker
func (m *MockIdentityChecker) DetectIdentity(ctx context.Context, keys AccessKeys) (*Identity, error) {
	m.mu.Lock()
	m.calls = append(m.calls, keys)
	m.mu.Unlock()

	if m.DetectIdentityFunc != nil {
		return m.DetectIdentityFunc(ctx, keys)
	}

	return &Identity{
		Account: "123456789012",
		ARN:     "arn:aws:iam::123456789012:user/mock",
		UserID:  "AIDAMOCK",
	}, nil
}

// Name implements IdentityChecker
func (m *MockIdentityChecker) Name() ProviderName {
	return ProviderAWS
}

// Calls returns the keys passed to every DetectIdentity call
func (m *MockIdentityChecker) Calls() []AccessKeys {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AccessKeys(nil), m.calls...)
}

// MockCurrentUserChecker is a mock implementation of CurrentUserChecker for testing
type MockCurrentUserChecker struct {
	CheckCurrentUserFunc func(ctx context.Context, token string) (*CurrentUser, error)

	mu    sync.Mutex
	calls []string
}

// CheckCurrentUser implements CurrentUserChecker
func (m *MockCurrentUserChecker) CheckCurrentUser(ctx context.Context, token string) (*CurrentUser, error) {
	m.mu.Lock()
	m.calls = append(m.calls, token)
	m.mu.Unlock()

	if m.CheckCurrentUserFunc != nil {
		return m.CheckCurrentUserFunc(ctx, token)
	}

	return &CurrentUser{ID: "mock-user", Login: "mock@example.com"}, nil
}

// Name implements CurrentUserChecker
func (m *MockCurrentUserChecker) Name() ProviderName {
	return ProviderFastly
}

// Calls returns the tokens passed to every CheckCurrentUser call
func (m *MockCurrentUserChecker) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
