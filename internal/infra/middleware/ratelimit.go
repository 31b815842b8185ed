package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/diillson/lavajato-api/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware limita tentativas de login por IP
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	cfg     config.RateLimitConfig
	metrics *metrics.APIMetrics
	logger  *zap.Logger
}

// NewRateLimitMiddleware cria um novo middleware de rate limiting
func NewRateLimitMiddleware(limiter ratelimit.Limiter, cfg config.RateLimitConfig, metrics *metrics.APIMetrics, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// LoginRateLimit responde 429 com Retry-After quando o IP esgota as
// tentativas do período. Falhas do limitador deixam a requisição passar.
func (m *RateLimitMiddleware) LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.cfg.Enabled || m.limiter == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		allowed, limit, remaining, resetAfter, err := m.limiter.Allow(c.Request.Context(), ratelimit.LimitConfig{
			Key:         "login:" + clientIP,
			Limit:       m.cfg.LoginAttempts,
			Period:      m.cfg.Period,
			BurstFactor: 1.0,
		})
		if err != nil {
			m.logger.Error("erro ao verificar rate limit", zap.Error(err))
			c.Next()
			return
		}

		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetAfter).Unix(), 10))

		if !allowed {
			retryAfter := int(resetAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			if m.metrics != nil {
				m.metrics.RateLimitExceeded(c.FullPath(), c.Request.Method, "login")
			}
			m.logger.Warn("tentativas de login excedidas", zap.String("ip", clientIP))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Muitas tentativas de login. Tente novamente mais tarde.",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
