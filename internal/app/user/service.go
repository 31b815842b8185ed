package user

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

// Service administra as contas de usuário. Todas as operações pressupõem
// um chamador administrador, garantido pelas rotas.
type Service struct {
	users     repository.UserRepository
	services  repository.ServiceRepository
	dashboard repository.DashboardRepository
	cfg       config.AuthConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(users repository.UserRepository, services repository.ServiceRepository, dashboard repository.DashboardRepository, cfg config.AuthConfig, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		services:  services,
		dashboard: dashboard,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateInput é o corpo de POST /users e /auth/register
type CreateInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nome     string `json:"nome"`
	Role     string `json:"role"`
}

// UpdateInput é o corpo de PUT /users/:id
type UpdateInput struct {
	Email    *string `json:"email"`
	Nome     *string `json:"nome"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// UserStats é a produção de um funcionário no período
type UserStats struct {
	User   *model.User         `json:"user"`
	Period string              `json:"period"`
	Stats  model.ServiceTotals `json:"stats"`
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	entities, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("falha ao listar usuários", zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	users := make([]*model.User, 0, len(entities))
	for _, e := range entities {
		users = append(users, e.ToModel())
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	entity, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return entity.ToModel(), nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Nome = strings.TrimSpace(in.Nome)
	if in.Role == "" {
		in.Role = model.RoleEmployee
	}

	problems := map[string]string{}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		problems["email"] = "email inválido"
	}
	if in.Nome == "" {
		problems["nome"] = "obrigatório"
	}
	if len(in.Password) < s.cfg.PasswordMinLen {
		problems["password"] = "senha muito curta"
	}
	if !model.ValidRole(in.Role) {
		problems["role"] = "deve ser admin ou funcionario"
	}
	if len(problems) > 0 {
		return nil, apperrors.BadRequest("Dados do usuário inválidos", nil).WithDetails(problems)
	}

	hash, err := security.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.InternalServer("Erro ao processar senha", err)
	}

	entity := &model.UserEntity{
		Email:        in.Email,
		Nome:         in.Nome,
		Role:         in.Role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, entity); err != nil {
		if errors.Is(err, repository.ErrEmailInUse) {
			return nil, apperrors.Conflict("Email já cadastrado", err)
		}
		return nil, apperrors.InternalServer("", err)
	}

	s.logger.Info("usuário criado", zap.String("user_id", entity.ID), zap.String("role", entity.Role))
	return entity.ToModel(), nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.User, error) {
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}

	fields := map[string]interface{}{}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, apperrors.BadRequest("Email inválido", nil)
		}
		fields["email"] = email
	}
	if in.Nome != nil {
		nome := strings.TrimSpace(*in.Nome)
		if nome == "" {
			return nil, apperrors.BadRequest("Nome não pode ser vazio", nil)
		}
		fields["nome"] = nome
	}
	if in.Role != nil {
		if !model.ValidRole(*in.Role) {
			return nil, apperrors.BadRequest("Role deve ser admin ou funcionario", nil)
		}
		if current.Role == model.RoleAdmin && *in.Role != model.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx); err != nil {
				return nil, err
			}
		}
		fields["role"] = *in.Role
	}
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		if len(*in.Password) < s.cfg.PasswordMinLen {
			return nil, apperrors.BadRequest("Senha muito curta", nil)
		}
		hash, err := security.HashPassword(*in.Password, s.cfg.BcryptCost)
		if err != nil {
			return nil, apperrors.InternalServer("Erro ao processar senha", err)
		}
		fields["password_hash"] = hash
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("Nenhum campo para atualizar", nil)
	}

	updated, err := s.users.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrEmailInUse) {
			return nil, apperrors.Conflict("Email já está em uso por outro usuário", err)
		}
		return nil, s.lookupError(id, err)
	}

	s.logger.Info("usuário atualizado", zap.String("user_id", id))
	return updated.ToModel(), nil
}

// Delete remove a conta. Não permite excluir a própria conta, o último
// administrador nem funcionários com serviços registrados.
func (s *Service) Delete(ctx context.Context, caller *model.User, id string) (*model.User, error) {
	if caller == nil {
		return nil, apperrors.Forbidden("", nil)
	}
	if caller.ID == id {
		return nil, apperrors.BadRequest("Não é possível excluir a própria conta", nil)
	}

	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}

	if target.Role == model.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	_, owned, err := s.services.List(ctx, model.ServiceFilter{FuncionarioID: id}, model.NewPage(1, 1))
	if err != nil {
		return nil, apperrors.InternalServer("", err)
	}
	if owned > 0 {
		return nil, apperrors.BadRequest("Usuário possui serviços registrados e não pode ser excluído", nil).
			WithDetails(map[string]int64{"servicos": owned})
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return nil, s.lookupError(id, err)
	}

	s.logger.Info("usuário excluído", zap.String("user_id", id), zap.String("por", caller.ID))
	return target.ToModel(), nil
}

// Stats resume a produção do funcionário no período (month por padrão)
func (s *Service) Stats(ctx context.Context, id, period string) (*UserStats, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	period = model.ParsePeriod(period, model.PeriodMonth)
	since := model.PeriodStart(period, s.now().UTC())

	totals, err := s.dashboard.Totals(ctx, repository.DashboardScope{FuncionarioID: id}, since)
	if err != nil {
		s.logger.Error("falha ao calcular estatísticas do usuário", zap.String("user_id", id), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	return &UserStats{User: user, Period: period, Stats: totals}, nil
}

func (s *Service) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return apperrors.InternalServer("", err)
	}
	if admins <= 1 {
		return apperrors.BadRequest("Não é possível remover o último administrador", nil)
	}
	return nil
}

func (s *Service) lookupError(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Usuário não encontrado", err)
	}
	s.logger.Error("falha ao acessar usuário", zap.String("user_id", id), zap.Error(err))
	return apperrors.InternalServer("", err)
}
