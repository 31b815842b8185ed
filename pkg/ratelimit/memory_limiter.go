package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MemoryLimiter é a alternativa local ao RedisLimiter, com janela fixa
// por processo
type MemoryLimiter struct {
	mu     sync.Mutex
	store  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewMemoryLimiter cria um limitador em memória
func NewMemoryLimiter(logger *zap.Logger) *MemoryLimiter {
	return &MemoryLimiter{
		store:  cache.New(time.Minute, 5*time.Minute),
		logger: logger,
		now:    time.Now,
	}
}

// Allow verifica se a requisição é permitida dentro do limite de taxa
func (l *MemoryLimiter) Allow(ctx context.Context, config LimitConfig) (bool, int, int, time.Duration, error) {
	if err := validate(&config); err != nil {
		return true, 0, 0, 0, err
	}

	now := l.now()
	windowStart := now.Truncate(config.Period)
	resetAfter := windowStart.Add(config.Period).Sub(now)
	key := fmt.Sprintf("%s:%d", config.Key, windowStart.Unix())

	l.mu.Lock()
	count, err := l.store.IncrementInt(key, 1)
	if err != nil {
		// primeira requisição da janela
		l.store.Set(key, 1, config.Period)
		count = 1
	}
	l.mu.Unlock()

	remaining := config.Limit - count
	allowed := count <= burstLimit(config)
	if !allowed {
		l.logger.Debug("limite excedido",
			zap.String("key", config.Key),
			zap.Int("count", count))
	}

	return allowed, config.Limit, remaining, resetAfter, nil
}
