package cache

import (
	"context"
	"testing"
	"time"

	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type resumo struct {
	Total   int      `json:"total"`
	Tipos   []string `json:"tipos"`
	Receita string   `json:"receita"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute, metrics.NewAPIMetrics(prometheus.NewRegistry()), zaptest.NewLogger(t))

	var got resumo
	found, err := c.Get(ctx, "dashboard:admin", &got)
	require.NoError(t, err)
	assert.False(t, found)

	in := resumo{Total: 3, Tipos: []string{"lavagem", "polimento"}, Receita: "150.00"}
	require.NoError(t, c.Set(ctx, "dashboard:admin", in, time.Minute))

	// Alterar o valor original não afeta o que está em cache
	in.Tipos[0] = "alterado"

	found, err = c.Get(ctx, "dashboard:admin", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, []string{"lavagem", "polimento"}, got.Tipos)

	require.NoError(t, c.Delete(ctx, "dashboard:admin"))
	found, _ = c.Get(ctx, "dashboard:admin", &got)
	assert.False(t, found)
}

func TestMemoryCacheClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute, nil, zaptest.NewLogger(t))

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, c.Clear(ctx))

	var v int
	found, _ := c.Get(ctx, "a", &v)
	assert.False(t, found)
	assert.NoError(t, c.Ping(ctx))
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute, nil, zaptest.NewLogger(t))

	require.NoError(t, c.Set(ctx, "dashboard:stats:all:day", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "dashboard:status:func-1:today", 2, time.Minute))
	require.NoError(t, c.Set(ctx, "sessao:func-1", 3, time.Minute))

	require.NoError(t, c.DeletePrefix(ctx, "dashboard:"))

	var v int
	found, _ := c.Get(ctx, "dashboard:stats:all:day", &v)
	assert.False(t, found)
	found, _ = c.Get(ctx, "dashboard:status:func-1:today", &v)
	assert.False(t, found)
	found, _ = c.Get(ctx, "sessao:func-1", &v)
	assert.True(t, found)
	assert.Equal(t, 3, v)
}

func TestNewSelectsImplementation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assert.IsType(t, &NoOpCache{}, New(config.CacheConfig{Enabled: false}, nil, logger))
	assert.IsType(t, &MemoryCache{}, New(config.CacheConfig{Enabled: true, Type: "memory", TTL: time.Second}, nil, logger))
}

func TestNoOpCacheAlwaysMisses(t *testing.T) {
	c := &NoOpCache{}
	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))

	var v string
	found, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}
