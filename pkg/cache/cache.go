package cache

import (
	"context"
	"time"

	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KeyPrefix é aplicado a todas as chaves gravadas pela aplicação
const KeyPrefix = "lavajato:"

// Cache define a interface para operações de cache
type Cache interface {
	// Set armazena um valor no cache com tempo de expiração
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get recupera um valor do cache
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Delete remove um valor do cache
	Delete(ctx context.Context, key string) error

	// DeletePrefix remove as chaves que começam com prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear remove todos os valores do cache
	Clear(ctx context.Context) error

	// Ping verifica se o cache está acessível
	Ping(ctx context.Context) error
}

// Invalidator descarta resultados derivados depois de uma escrita
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// New escolhe a implementação conforme a configuração. Quando o Redis não
// responde, cai para o cache em memória.
func New(cfg config.CacheConfig, apiMetrics *metrics.APIMetrics, logger *zap.Logger) Cache {
	if !cfg.Enabled {
		logger.Info("cache desabilitado")
		return &NoOpCache{}
	}

	if cfg.Type == "redis" {
		client, err := NewRedisClient(cfg.Redis, logger)
		if err == nil {
			return NewRedisCache(client, logger)
		}
		logger.Warn("redis indisponível, usando cache em memória", zap.Error(err))
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return NewMemoryCache(ttl, 2*ttl, apiMetrics, logger)
}

// NewRedisClient abre e verifica uma conexão Redis a partir da configuração
func NewRedisClient(opts config.RedisOptions, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		MaxRetries:   opts.MaxRetries,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Falha ao conectar ao Redis",
			zap.String("addr", opts.Address),
			zap.Error(err))
		_ = client.Close()
		return nil, err
	}

	logger.Info("Conexão com Redis estabelecida com sucesso",
		zap.String("addr", opts.Address),
		zap.Int("db", opts.DB))

	return client, nil
}
