package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/pkg/config"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/diillson/lavajato-api/pkg/security"
	"go.uber.org/zap"
)

const defaultTokenTTL = 24 * time.Hour

var (
	// ErrMissingToken indica requisição sem cabeçalho Bearer
	ErrMissingToken = errors.New("token de acesso ausente")

	// ErrUnknownPrincipal indica token válido cujo usuário não existe mais
	ErrUnknownPrincipal = errors.New("usuário do token não existe")

	errInvalidCredentials = errors.New("credenciais inválidas")
)

// LoginResult é a resposta de POST /auth/login
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Service gerencia operações de autenticação
type Service struct {
	keyManager *security.KeyManager
	users      repository.UserRepository
	cfg        config.AuthConfig
	logger     *zap.Logger
}

// NewService cria um novo serviço de autenticação
func NewService(keyManager *security.KeyManager, users repository.UserRepository, cfg config.AuthConfig, logger *zap.Logger) *Service {
	return &Service{
		keyManager: keyManager,
		users:      users,
		cfg:        cfg,
		logger:     logger,
	}
}

// Login autentica um usuário e gera um token JWT
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.BadRequest("Email e senha são obrigatórios", nil)
	}

	entity, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("login com email desconhecido", zap.String("email", email))
			return nil, apperrors.Unauthorized("Credenciais inválidas", errInvalidCredentials)
		}
		s.logger.Error("falha ao buscar usuário no login", zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	if !security.CheckPassword(entity.PasswordHash, password) {
		s.logger.Warn("falha na autenticação", zap.String("user_id", entity.ID))
		return nil, apperrors.Unauthorized("Credenciais inválidas", errInvalidCredentials)
	}

	token, err := s.IssueToken(entity.ToModel())
	if err != nil {
		return nil, err
	}

	s.logger.Info("login bem-sucedido", zap.String("user_id", entity.ID))
	return &LoginResult{Token: token, User: entity.ToModel()}, nil
}

// IssueToken gera o token de acesso com a validade configurada
func (s *Service) IssueToken(user *model.User) (string, error) {
	ttl := s.cfg.TokenExpiration
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	token, err := s.keyManager.GenerateToken(user.ID, user.Email, user.Role, ttl)
	if err != nil {
		s.logger.Error("falha ao gerar token", zap.String("user_id", user.ID), zap.Error(err))
		return "", apperrors.InternalServer("Erro ao gerar token", err)
	}
	return token, nil
}

// ValidateToken valida um token JWT e recarrega o usuário correspondente.
// Toda falha de autenticação sai como 401.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	if tokenString == "" {
		return nil, apperrors.Unauthorized("Token de acesso não fornecido", ErrMissingToken)
	}

	claims, err := s.keyManager.VerifyToken(tokenString)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("Token expirado", err)
		}
		return nil, apperrors.Unauthorized("Token inválido", err)
	}

	entity, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("usuário do token não encontrado", zap.String("user_id", claims.UserID))
			return nil, apperrors.Unauthorized("Usuário não encontrado", ErrUnknownPrincipal)
		}
		s.logger.Error("falha ao carregar usuário do token", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	return entity.ToModel(), nil
}

// ChangePassword troca a senha do próprio usuário
func (s *Service) ChangePassword(ctx context.Context, user *model.User, current, next string) error {
	if current == "" || next == "" {
		return apperrors.BadRequest("Senha atual e nova senha são obrigatórias", nil)
	}
	if len(next) < s.cfg.PasswordMinLen {
		return apperrors.BadRequest("Nova senha muito curta", nil).
			WithDetails(map[string]int{"minimo": s.cfg.PasswordMinLen})
	}

	entity, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Usuário não encontrado", err)
		}
		return apperrors.InternalServer("", err)
	}

	if !security.CheckPassword(entity.PasswordHash, current) {
		return apperrors.Unauthorized("Senha atual incorreta", errInvalidCredentials)
	}

	hash, err := security.HashPassword(next, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.InternalServer("Erro ao processar senha", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Error("falha ao atualizar senha", zap.String("user_id", user.ID), zap.Error(err))
		return apperrors.InternalServer("", err)
	}

	s.logger.Info("senha alterada", zap.String("user_id", user.ID))
	return nil
}
