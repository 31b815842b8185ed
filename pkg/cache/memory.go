package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MemoryCache implementa a interface Cache usando go-cache
type MemoryCache struct {
	cache   *cache.Cache
	logger  *zap.Logger
	hits    int64
	misses  int64
	metrics *metrics.APIMetrics
}

// NewMemoryCache cria uma nova instância de MemoryCache
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration, metrics *metrics.APIMetrics, logger *zap.Logger) *MemoryCache {
	return &MemoryCache{
		cache:   cache.New(defaultExpiration, cleanupInterval),
		logger:  logger,
		metrics: metrics,
	}
}

// Set armazena uma cópia serializada do valor, para que o chamador
// não altere o conteúdo em cache depois
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("falha ao serializar para cache", zap.String("key", key), zap.Error(err))
		return err
	}
	c.cache.Set(KeyPrefix+key, data, expiration)
	return nil
}

// Get recupera um valor do cache
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	value, found := c.cache.Get(KeyPrefix + key)
	if !found {
		c.record(false)
		return false, nil
	}
	c.record(true)

	data, ok := value.([]byte)
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Error("falha ao deserializar do cache", zap.String("key", key), zap.Error(err))
		return false, err
	}

	return true, nil
}

// Delete remove um valor do cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Delete(KeyPrefix + key)
	return nil
}

// DeletePrefix remove as chaves que começam com prefix
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, KeyPrefix+prefix) {
			c.cache.Delete(key)
		}
	}
	return nil
}

// Clear remove todos os valores do cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.cache.Flush()
	return nil
}

// Ping verifica se o cache está funcionando
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil // O cache em memória está sempre disponível
}

func (c *MemoryCache) record(hit bool) {
	var hits, misses int64
	if hit {
		hits = atomic.AddInt64(&c.hits, 1)
		misses = atomic.LoadInt64(&c.misses)
	} else {
		misses = atomic.AddInt64(&c.misses, 1)
		hits = atomic.LoadInt64(&c.hits)
	}
	updateCacheMetrics(hits, misses, "memory", c.metrics)
}

// Função auxiliar para atualizar métricas de cache
func updateCacheMetrics(hits, misses int64, cacheType string, metrics *metrics.APIMetrics) {
	if metrics == nil {
		return
	}

	total := hits + misses
	if total > 0 {
		metrics.UpdateCacheHitRatio(cacheType, float64(hits)/float64(total))
	}
}
