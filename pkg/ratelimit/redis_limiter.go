package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Incrementa o contador da janela e define a expiração na primeira chamada
var windowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local expireAt = tonumber(ARGV[2])
	local ttl = expireAt - tonumber(ARGV[3])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('EXPIREAT', key, expireAt)
	end

	return {count, limit - count, ttl}
`)

// RedisLimiter implementa rate limiting compartilhado entre instâncias
type RedisLimiter struct {
	client *redis.Client
	logger *zap.Logger
	tracer trace.Tracer
}

// NewRedisLimiter cria um novo limitador baseado em Redis
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("lavajato.ratelimit"),
	}
}

// Allow verifica se a requisição é permitida dentro do limite de taxa
func (r *RedisLimiter) Allow(ctx context.Context, config LimitConfig) (bool, int, int, time.Duration, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"RedisLimiter.Allow",
		trace.WithAttributes(
			attribute.String("ratelimit.key", config.Key),
			attribute.Int("ratelimit.limit", config.Limit),
			attribute.Int64("ratelimit.period_ms", config.Period.Milliseconds()),
		),
	)
	defer span.End()

	if err := validate(&config); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return true, 0, 0, 0, err
	}

	key := fmt.Sprintf("lavajato:ratelimit:%s", config.Key)
	now := time.Now().Unix()
	periodSeconds := int64(config.Period.Seconds())
	expireAt := now - (now % periodSeconds) + periodSeconds
	resetAfter := time.Duration(expireAt-now) * time.Second

	result, err := windowScript.Run(ctx, r.client, []string{key}, config.Limit, expireAt, now).Result()
	if err != nil {
		r.logger.Error("erro ao executar script de rate limit", zap.Error(err))
		span.SetStatus(codes.Error, "redis script error")
		return true, config.Limit, config.Limit, resetAfter, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		r.logger.Error("resultado inesperado do script de rate limit", zap.Any("result", result))
		span.SetStatus(codes.Error, "unexpected result")
		return true, config.Limit, config.Limit, resetAfter, errors.New("resultado inválido do Redis")
	}

	count, _ := strconv.Atoi(fmt.Sprintf("%v", values[0]))
	remaining, _ := strconv.Atoi(fmt.Sprintf("%v", values[1]))
	ttl, _ := strconv.ParseInt(fmt.Sprintf("%v", values[2]), 10, 64)

	allowed := count <= burstLimit(config)

	span.SetAttributes(
		attribute.Int("ratelimit.count", count),
		attribute.Int("ratelimit.remaining", remaining),
		attribute.Bool("ratelimit.allowed", allowed),
	)
	if !allowed {
		span.SetStatus(codes.Error, "rate limit exceeded")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return allowed, config.Limit, remaining, time.Duration(ttl) * time.Second, nil
}
