// Package testutil provides testing utilities for the orion CLI
package testutil

import (
	"context"
	"sync"

	"github.com/orion-edge/orion-cli/internal/provider"
)

// MockCheckers is a configurable pair of provider checkers for testing.
// Each call pops the next scripted error for its provider; once the script is
// exhausted the last configured error (or success) repeats.
type MockCheckers struct {
	mu        sync.Mutex
	awsErrs   []error
	fastlyErr []error
	awsIdx    int
	fastlyIdx int

	Identity    *provider.MockIdentityChecker
	CurrentUser *provider.MockCurrentUserChecker
}

// NewMockCheckers creates checkers that accept every credential
func NewMockCheckers() *MockCheckers {
	m := &MockCheckers{}
	m.Identity = &provider.MockIdentityChecker{
		DetectIdentityFunc: func(ctx context.Context, keys provider.AccessKeys) (*provider.Identity, error) {
			if err := m.next(&m.awsErrs, &m.awsIdx); err != nil {
				return nil, err
			}
			return &provider.Identity{
				Account: "123456789012",
				ARN:     "arn:aws:iam::123456789012:user/test",
				UserID:  "AIDATEST",
			}, nil
		},
	}
	m.CurrentUser = &provider.MockCurrentUserChecker{
		CheckCurrentUserFunc: func(ctx context.Context, token string) (*provider.CurrentUser, error) {
			if err := m.next(&m.fastlyErr, &m.fastlyIdx); err != nil {
				return nil, err
			}
			return &provider.CurrentUser{ID: "user-1", Login: "test@example.com"}, nil
		},
	}
	return m
}

// WithAWSErrors scripts the results of successive identity checks (nil = valid)
func (m *MockCheckers) WithAWSErrors(errs ...error) *MockCheckers {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awsErrs = append(m.awsErrs, errs...)
	return m
}

// WithFastlyErrors scripts the results of successive current-user checks (nil = valid)
func (m *MockCheckers) WithFastlyErrors(errs ...error) *MockCheckers {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fastlyErr = append(m.fastlyErr, errs...)
	return m
}

// Validations returns how many identity checks ran
func (m *MockCheckers) Validations() int {
	return len(m.Identity.Calls())
}

func (m *MockCheckers) next(errs *[]error, idx *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(*errs) == 0 {
		return nil
	}
	i := *idx
	if i >= len(*errs) {
		i = len(*errs) - 1
	} else {
		*idx++
	}
	return (*errs)[i]
}
