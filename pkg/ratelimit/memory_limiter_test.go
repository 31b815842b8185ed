package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMemoryLimiterWindow(t *testing.T) {
	l := NewMemoryLimiter(zaptest.NewLogger(t))
	current := time.Date(2024, 5, 10, 12, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return current }

	cfg := LimitConfig{Key: "login:10.0.0.1", Limit: 3, Period: time.Minute}

	for i := 0; i < 3; i++ {
		allowed, limit, remaining, _, err := l.Allow(context.Background(), cfg)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3, limit)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, _, _, resetAfter, err := l.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 55*time.Second, resetAfter)

	// Outra chave não é afetada
	allowed, _, _, _, err = l.Allow(context.Background(), LimitConfig{Key: "login:10.0.0.2", Limit: 3, Period: time.Minute})
	require.NoError(t, err)
	assert.True(t, allowed)

	// Nova janela zera o contador
	current = current.Add(time.Minute)
	allowed, _, _, _, err = l.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiterInvalidConfig(t *testing.T) {
	l := NewMemoryLimiter(zaptest.NewLogger(t))

	allowed, _, _, _, err := l.Allow(context.Background(), LimitConfig{Key: "x", Limit: 0, Period: time.Minute})
	assert.Error(t, err)
	assert.True(t, allowed)

	_, _, _, _, err = l.Allow(context.Background(), LimitConfig{Key: "x", Limit: 1, Period: time.Millisecond})
	assert.Error(t, err)
}
