package middleware

import (
	"net/http"
	"time"

	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/diillson/lavajato-api/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey guarda o id da requisição no contexto do gin
const RequestIDKey = "request_id"

const requestIDHeader = "X-Request-ID"

// Middleware contém todos os middlewares da aplicação
type Middleware struct {
	logger              *zap.Logger
	authMiddleware      *AuthMiddleware
	recoveryMiddleware  *RecoveryMiddleware
	securityMiddleware  *SecurityMiddleware
	tracingMiddleware   *TracingMiddleware
	metricsMiddleware   *MetricsMiddleware
	rateLimitMiddleware *RateLimitMiddleware
}

// NewMiddleware monta o conjunto de middlewares a partir das dependências já
// construídas. apiMetrics nil desliga a coleta por requisição.
func NewMiddleware(cfg *config.Config, logger *zap.Logger, validator TokenValidator, limiter ratelimit.Limiter, apiMetrics *metrics.APIMetrics) *Middleware {
	m := &Middleware{
		logger:              logger,
		authMiddleware:      NewAuthMiddleware(validator, logger),
		recoveryMiddleware:  NewRecoveryMiddleware(logger),
		securityMiddleware:  NewSecurityMiddleware(cfg.Server.AllowedOrigins, logger),
		tracingMiddleware:   NewTracingMiddleware(logger, cfg.Tracing.ServiceName),
		rateLimitMiddleware: NewRateLimitMiddleware(limiter, cfg.RateLimit, apiMetrics, logger),
	}
	if apiMetrics != nil {
		m.metricsMiddleware = NewMetricsMiddleware(apiMetrics, logger)
	}
	return m
}

// Metrics retorna o middleware de métricas
func (m *Middleware) Metrics() gin.HandlerFunc {
	if m.metricsMiddleware != nil {
		return m.metricsMiddleware.Middleware()
	}
	return func(c *gin.Context) {
		c.Next()
	}
}

// Authenticate middleware para autenticação de usuários
func (m *Middleware) Authenticate(c *gin.Context) {
	m.authMiddleware.Authenticate(c)
}

// RequireRole restringe a rota aos papéis informados
func (m *Middleware) RequireRole(roles ...string) gin.HandlerFunc {
	return RequireRole(roles...)
}

// LoginRateLimit limita as tentativas de login por IP
func (m *Middleware) LoginRateLimit() gin.HandlerFunc {
	return m.rateLimitMiddleware.LoginRateLimit()
}

// Recovery middleware para recuperação de pânicos
func (m *Middleware) Recovery() gin.HandlerFunc {
	return m.recoveryMiddleware.Recovery()
}

// IgnoreFavicon responde 204 para /favicon.ico
func (m *Middleware) IgnoreFavicon() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/favicon.ico" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestID reaproveita o X-Request-ID recebido ou gera um novo
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Logger middleware para logging de requisições
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("path", path),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if user, ok := CurrentUser(c); ok {
			fields = append(fields, zap.String("user_id", user.ID))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			m.logger.Error("request completed", fields...)
		case status >= 400:
			m.logger.Warn("request completed", fields...)
		default:
			m.logger.Info("request completed", fields...)
		}
	}
}

// SecurityHeaders middleware para adicionar cabeçalhos de segurança
func (m *Middleware) SecurityHeaders() gin.HandlerFunc {
	return m.securityMiddleware.Headers()
}

// CORS middleware para configurar CORS
func (m *Middleware) CORS() gin.HandlerFunc {
	return m.securityMiddleware.CORS()
}

// Tracing retorna o middleware de tracing
func (m *Middleware) Tracing() gin.HandlerFunc {
	return m.tracingMiddleware.Middleware()
}
