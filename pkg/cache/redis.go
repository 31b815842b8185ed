package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RedisCache implementa a interface Cache usando Redis
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	tracer trace.Tracer
}

// NewRedisCache cria uma nova instância de RedisCache sobre um cliente já conectado
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("lavajato.cache.redis"),
	}
}

// Client expõe o cliente para componentes que compartilham a conexão
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Set armazena um valor no cache
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	ctx, span := c.tracer.Start(
		ctx,
		"RedisCache.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.String("cache.operation", "set"),
			attribute.Int64("cache.expiration_ms", expiration.Milliseconds()),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("falha ao serializar para cache", zap.Error(err))
		failSpan(span, "serialization failure", err)
		return err
	}

	span.SetAttributes(attribute.Int("cache.data_size_bytes", len(data)))

	if err := c.client.Set(ctx, KeyPrefix+key, data, expiration).Err(); err != nil {
		c.logger.Error("falha ao armazenar no Redis",
			zap.String("key", key),
			zap.Error(err))
		failSpan(span, "redis error", err)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Get recupera um valor do cache
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	ctx, span := c.tracer.Start(
		ctx,
		"RedisCache.Get",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.String("cache.operation", "get"),
		),
	)
	defer span.End()

	data, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetStatus(codes.Ok, "cache miss")
			span.SetAttributes(attribute.Bool("cache.hit", false))
			return false, nil
		}
		c.logger.Error("falha ao recuperar do cache",
			zap.String("key", key),
			zap.Error(err))
		failSpan(span, "redis error", err)
		return false, err
	}

	span.SetAttributes(
		attribute.Bool("cache.hit", true),
		attribute.Int("cache.data_size_bytes", len(data)),
	)

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Error("falha ao deserializar do cache",
			zap.String("key", key),
			zap.Error(err))
		failSpan(span, "deserialization failure", err)
		return false, err
	}

	span.SetStatus(codes.Ok, "cache hit")
	return true, nil
}

// Delete remove um valor do cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, span := c.tracer.Start(
		ctx,
		"RedisCache.Delete",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.String("cache.operation", "delete"),
		),
	)
	defer span.End()

	result, err := c.client.Del(ctx, KeyPrefix+key).Result()
	if err != nil {
		c.logger.Error("falha ao remover do cache",
			zap.String("key", key),
			zap.Error(err))
		failSpan(span, "redis error", err)
		return err
	}

	span.SetAttributes(attribute.Int64("cache.keys_removed", result))
	span.SetStatus(codes.Ok, "")
	return nil
}

// DeletePrefix remove as chaves da aplicação que começam com prefix
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	ctx, span := c.tracer.Start(
		ctx,
		"RedisCache.DeletePrefix",
		trace.WithAttributes(
			attribute.String("cache.prefix", prefix),
			attribute.String("cache.operation", "delete_prefix"),
		),
	)
	defer span.End()

	var removed int64
	iter := c.client.Scan(ctx, 0, KeyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			failSpan(span, "redis delete error", err)
			return err
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("falha ao listar chaves do cache", zap.String("prefix", prefix), zap.Error(err))
		failSpan(span, "redis scan error", err)
		return err
	}

	span.SetAttributes(attribute.Int64("cache.keys_removed", removed))
	span.SetStatus(codes.Ok, "")
	return nil
}

// Clear remove todas as chaves da aplicação
func (c *RedisCache) Clear(ctx context.Context) error {
	return c.DeletePrefix(ctx, "")
}

// Ping verifica se o Redis está acessível
func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "RedisCache.Ping")
	defer span.End()

	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Error("falha ao fazer ping no Redis", zap.Error(err))
		failSpan(span, "redis ping failure", err)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func failSpan(span trace.Span, status string, err error) {
	span.SetStatus(codes.Error, status)
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.message", err.Error()),
	)
}
