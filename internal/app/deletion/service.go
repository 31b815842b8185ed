package deletion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/pkg/cache"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/diillson/lavajato-api/pkg/logging"
	"go.uber.org/zap"
)

const msgAlreadyResolved = "Solicitação não encontrada ou já processada"

// Service conduz o ciclo pedido, decisão e efeito das solicitações de
// exclusão de serviços
type Service struct {
	requests repository.DeletionRepository
	services repository.ServiceRepository
	derived  cache.Invalidator
	metrics  *metrics.APIMetrics
	logger   *logging.ContextLogger
	now      func() time.Time
}

// NewService cria o serviço de exclusão. derived e apiMetrics podem ser nil.
func NewService(requests repository.DeletionRepository, services repository.ServiceRepository, derived cache.Invalidator, apiMetrics *metrics.APIMetrics, logger *zap.Logger) *Service {
	return &Service{
		requests: requests,
		services: services,
		derived:  derived,
		metrics:  apiMetrics,
		logger:   logging.NewContextLogger(logger).With(zap.String("component", "deletion")),
		now:      time.Now,
	}
}

// ListResult é uma página de solicitações
type ListResult struct {
	Requests   []*model.DeletionRequest `json:"requests"`
	Pagination model.Pagination         `json:"pagination"`
}

// DecisionResult traz a solicitação resolvida e, na aprovação, o serviço excluído
type DecisionResult struct {
	Message        string                 `json:"message"`
	Request        *model.DeletionRequest `json:"request"`
	DeletedService *model.ServiceRecord   `json:"deletedService,omitempty"`
}

// RequestDeletion abre uma solicitação pendente para o serviço
func (s *Service) RequestDeletion(ctx context.Context, user *model.User, serviceID, reason string) (*model.DeletionRequest, error) {
	if user == nil {
		return nil, apperrors.Unauthorized("", nil)
	}
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, apperrors.BadRequest("serviceId é obrigatório", nil)
	}

	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Serviço não encontrado", err)
		}
		s.logger.ErrorCtx(ctx, "falha ao buscar serviço", zap.String("servico_id", serviceID), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	if !CanRequest(user, service) {
		return nil, apperrors.Forbidden("Você só pode solicitar a exclusão dos seus próprios serviços", nil)
	}

	if _, err := s.requests.FindPending(ctx, serviceID); err == nil {
		s.metrics.DeletionEvent(metrics.DeletionConflict)
		return nil, apperrors.Conflict("Já existe uma solicitação pendente para este serviço", repository.ErrDuplicatePending)
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.ErrorCtx(ctx, "falha ao verificar pendências", zap.String("servico_id", serviceID), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = model.DefaultDeletionReason
	}

	entity := &model.DeletionRequestEntity{
		ServicoID:     serviceID,
		FuncionarioID: user.ID,
		Motivo:        reason,
	}
	if err := s.requests.Create(ctx, entity); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			s.metrics.DeletionEvent(metrics.DeletionConflict)
			return nil, apperrors.Conflict("Já existe uma solicitação pendente para este serviço", err)
		}
		s.logger.ErrorCtx(ctx, "falha ao criar solicitação", zap.String("servico_id", serviceID), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	s.metrics.DeletionEvent(metrics.DeletionRequested)
	s.logger.InfoCtx(ctx, "solicitação de exclusão criada",
		zap.String("solicitacao_id", entity.ID),
		zap.String("servico_id", serviceID),
		zap.String("solicitante_id", user.ID))

	req := entity.ToModel()
	req.RequesterName = user.Nome
	req.Service = service
	return req, nil
}

// List devolve as solicitações de todos os funcionários. Sem status, lista
// as pendentes.
func (s *Service) List(ctx context.Context, user *model.User, status string, page model.Page) (*ListResult, error) {
	if !CanDecide(user) {
		return nil, apperrors.Forbidden("Acesso restrito a administradores", nil)
	}
	if status == "" {
		status = model.RequestPending
	}
	return s.list(ctx, model.DeletionFilter{Status: status}, page)
}

// ListMine devolve as solicitações feitas pelo próprio usuário
func (s *Service) ListMine(ctx context.Context, user *model.User, status string, page model.Page) (*ListResult, error) {
	if user == nil {
		return nil, apperrors.Unauthorized("", nil)
	}
	return s.list(ctx, model.DeletionFilter{Status: status, RequesterID: user.ID}, page)
}

func (s *Service) list(ctx context.Context, filter model.DeletionFilter, page model.Page) (*ListResult, error) {
	if filter.Status != "" && !model.ValidRequestStatus(filter.Status) {
		return nil, apperrors.BadRequest("Status inválido", nil).
			WithDetails(map[string]interface{}{"permitidos": []string{model.RequestPending, model.RequestApproved, model.RequestRejected}})
	}

	requests, total, err := s.requests.List(ctx, filter, page)
	if err != nil {
		s.logger.ErrorCtx(ctx, "falha ao listar solicitações", zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	return &ListResult{
		Requests:   requests,
		Pagination: model.NewPagination(page, total),
	}, nil
}

// Get devolve uma solicitação ao administrador ou ao solicitante
func (s *Service) Get(ctx context.Context, user *model.User, id string) (*model.DeletionRequest, error) {
	req, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(user, req) {
		return nil, apperrors.Forbidden("", nil)
	}
	return req, nil
}

// Decide aprova ou rejeita uma solicitação pendente. A aprovação exclui o
// serviço na mesma transação que resolve a solicitação.
func (s *Service) Decide(ctx context.Context, user *model.User, id, decision string) (*DecisionResult, error) {
	if !CanDecide(user) {
		return nil, apperrors.Forbidden("Apenas administradores podem decidir solicitações", nil)
	}

	at := s.now().UTC()
	result := &DecisionResult{}

	switch decision {
	case model.DecisionApprove:
		deleted, err := s.requests.Approve(ctx, id, user.ID, at)
		if err != nil {
			return nil, s.decisionError(ctx, id, err)
		}
		result.Message = "Solicitação aprovada e serviço excluído"
		result.DeletedService = deleted
		s.invalidate(ctx)
		s.metrics.DeletionEvent(metrics.DeletionApproved)

	case model.DecisionReject:
		if err := s.requests.Reject(ctx, id, user.ID, at); err != nil {
			return nil, s.decisionError(ctx, id, err)
		}
		result.Message = "Solicitação rejeitada"
		s.metrics.DeletionEvent(metrics.DeletionRejected)

	default:
		return nil, apperrors.BadRequest("decision deve ser approve ou reject", nil)
	}

	s.logger.InfoCtx(ctx, "solicitação de exclusão resolvida",
		zap.String("solicitacao_id", id),
		zap.String("decisao", decision),
		zap.String("admin_id", user.ID))

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		// a transição já foi gravada
		s.logger.WarnCtx(ctx, "falha ao recarregar solicitação", zap.String("solicitacao_id", id), zap.Error(err))
		req = resolvedStub(id, decision, user.ID, at)
	}
	result.Request = req
	return result, nil
}

func (s *Service) decisionError(ctx context.Context, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return alreadyResolved(err)
	}
	s.logger.ErrorCtx(ctx, "falha ao processar solicitação", zap.String("solicitacao_id", id), zap.Error(err))
	return apperrors.InternalServer("Erro ao processar solicitação de exclusão", err)
}

func alreadyResolved(err error) *apperrors.APIError {
	return apperrors.NotFound(msgAlreadyResolved, err)
}

func resolvedStub(id, decision, adminID string, at time.Time) *model.DeletionRequest {
	status := model.RequestRejected
	if decision == model.DecisionApprove {
		status = model.RequestApproved
	}
	return &model.DeletionRequest{ID: id, Status: status, ResolvedBy: &adminID, ResolvedAt: &at}
}

// Cancel remove uma solicitação ainda pendente
func (s *Service) Cancel(ctx context.Context, user *model.User, id string) error {
	req, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !req.IsPending() {
		return alreadyResolved(repository.ErrNotFound)
	}
	if !CanCancel(user, req) {
		return apperrors.Forbidden("Você só pode cancelar as suas próprias solicitações", nil)
	}

	if err := s.requests.DeletePending(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return alreadyResolved(err)
		}
		s.logger.ErrorCtx(ctx, "falha ao cancelar solicitação", zap.String("solicitacao_id", id), zap.Error(err))
		return apperrors.InternalServer("", err)
	}

	s.metrics.DeletionEvent(metrics.DeletionCancelled)
	s.logger.InfoCtx(ctx, "solicitação de exclusão cancelada",
		zap.String("solicitacao_id", id),
		zap.String("usuario_id", user.ID))
	return nil
}

// Stats agrega as solicitações do período (day, week, month ou total;
// desconhecido vale month)
func (s *Service) Stats(ctx context.Context, user *model.User, period string) (*model.DeletionStats, error) {
	if !CanViewStats(user) {
		return nil, apperrors.Forbidden("Acesso restrito a administradores", nil)
	}

	period = model.ParsePeriod(period, model.PeriodMonth)
	since := model.PeriodStart(period, s.now().UTC())

	totals, byEmployee, err := s.requests.Stats(ctx, since)
	if err != nil {
		s.logger.ErrorCtx(ctx, "falha ao calcular estatísticas", zap.String("periodo", period), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}
	if byEmployee == nil {
		byEmployee = []model.EmployeeDeletionStats{}
	}

	return &model.DeletionStats{
		Period:     period,
		Since:      since,
		Totals:     totals,
		ByEmployee: byEmployee,
	}, nil
}

// DirectDelete exclui o serviço sem passar pelo fluxo de aprovação.
// Pendências do serviço são removidas junto.
func (s *Service) DirectDelete(ctx context.Context, user *model.User, serviceID string) error {
	if !CanDecide(user) {
		return apperrors.Forbidden("Apenas administradores podem excluir serviços diretamente", nil)
	}

	if err := s.requests.DeleteService(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Serviço não encontrado", err)
		}
		s.logger.ErrorCtx(ctx, "falha ao excluir serviço", zap.String("servico_id", serviceID), zap.Error(err))
		return apperrors.InternalServer("", err)
	}

	s.invalidate(ctx)
	s.metrics.DeletionEvent(metrics.DirectDeletion)
	s.logger.InfoCtx(ctx, "serviço excluído diretamente",
		zap.String("servico_id", serviceID),
		zap.String("admin_id", user.ID))
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.derived != nil {
		s.derived.Invalidate(ctx)
	}
}

func (s *Service) find(ctx context.Context, id string) (*model.DeletionRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Solicitação não encontrada", err)
		}
		s.logger.ErrorCtx(ctx, "falha ao buscar solicitação", zap.String("solicitacao_id", id), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}
	return req, nil
}
