package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diillson/lavajato-api/internal/domain/model"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserKey é a chave do usuário autenticado no contexto do gin
const UserKey = "user"

var errMissingBearer = errors.New("cabeçalho Authorization ausente ou sem Bearer")

// TokenValidator resolve um token de acesso para o usuário atual
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware gerencia middlewares de autenticação
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware cria uma nova instância do middleware de autenticação
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// Authenticate exige um token Bearer válido cujo usuário ainda exista
func (m *AuthMiddleware) Authenticate(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
		abortWithError(c, apperrors.Unauthorized("Token de acesso não fornecido", errMissingBearer))
		return
	}

	user, err := m.validator.ValidateToken(c.Request.Context(), strings.TrimSpace(tokenString))
	if err != nil {
		m.logger.Debug("token rejeitado", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.Set(UserKey, user)
	c.Next()
}

// RequireRole deixa passar somente os papéis informados. Deve vir depois
// de Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWithError(c, apperrors.Unauthorized("", nil))
			return
		}
		if !allowed[user.Role] {
			abortWithError(c, apperrors.Forbidden("Acesso negado: permissão insuficiente", nil))
			return
		}
		c.Next()
	}
}

// CurrentUser devolve o usuário colocado no contexto por Authenticate
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok && user != nil
}

func abortWithError(c *gin.Context, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Code, apiErr)
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
}
