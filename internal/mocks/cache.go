package mocks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache é um mock para a interface cache.Cache. Para simular um acerto,
// preencha dest com Run antes do Return.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) DeletePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *MockCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// InvalidatorSpy conta as invalidações recebidas
type InvalidatorSpy struct {
	calls int64
}

func (s *InvalidatorSpy) Invalidate(ctx context.Context) {
	atomic.AddInt64(&s.calls, 1)
}

func (s *InvalidatorSpy) Calls() int {
	return int(atomic.LoadInt64(&s.calls))
}
