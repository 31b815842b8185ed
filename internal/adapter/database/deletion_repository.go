package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeletionRepository implementa repository.DeletionRepository
type DeletionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDeletionRepository cria um novo repositório de solicitações de exclusão
func NewDeletionRepository(db *gorm.DB, logger *zap.Logger) *DeletionRepository {
	return &DeletionRepository{db: db, logger: logger}
}

var _ repository.DeletionRepository = (*DeletionRepository)(nil)

// Create insere uma solicitação pendente. O índice único sobre
// pendente_servico_id rejeita uma segunda pendência para o mesmo serviço.
func (r *DeletionRepository) Create(ctx context.Context, req *model.DeletionRequestEntity) error {
	ctx, span := startSpan(ctx, "DeletionRepository.Create", "insert", "solicitacoes_exclusao")
	defer span.End()
	span.SetAttributes(attribute.String("servico.id", req.ServicoID))

	pending := req.ServicoID
	req.Status = model.RequestPending
	req.PendenteServicoID = &pending
	req.AprovadoPor = nil
	req.DataAprovacao = nil

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if isDuplicateKey(err) {
			span.AddEvent("duplicate pending request")
			return repository.ErrDuplicatePending
		}
		recordError(span, err)
		return fmt.Errorf("falha ao criar solicitação: %w", err)
	}
	return nil
}

// GetByID busca uma solicitação com nomes e o serviço alvo
func (r *DeletionRepository) GetByID(ctx context.Context, id string) (*model.DeletionRequest, error) {
	ctx, span := startSpan(ctx, "DeletionRepository.GetByID", "select", "solicitacoes_exclusao")
	defer span.End()

	var entity model.DeletionRequestEntity
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		recordError(span, err)
		return nil, fmt.Errorf("falha ao buscar solicitação: %w", err)
	}

	requests, err := r.enrich(ctx, []*model.DeletionRequestEntity{&entity})
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return requests[0], nil
}

// FindPending retorna a pendência do serviço, se houver
func (r *DeletionRepository) FindPending(ctx context.Context, serviceID string) (*model.DeletionRequest, error) {
	var entity model.DeletionRequestEntity
	err := r.db.WithContext(ctx).
		Where("servico_id = ? AND status = ?", serviceID, model.RequestPending).
		Take(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("falha ao buscar solicitação pendente: %w", err)
	}
	return entity.ToModel(), nil
}

// List retorna uma página de solicitações, mais recentes primeiro
func (r *DeletionRepository) List(ctx context.Context, filter model.DeletionFilter, page model.Page) ([]*model.DeletionRequest, int64, error) {
	ctx, span := startSpan(ctx, "DeletionRepository.List", "select", "solicitacoes_exclusao")
	defer span.End()

	query := r.db.WithContext(ctx).Model(&model.DeletionRequestEntity{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != "" {
		query = query.Where("funcionario_id = ?", filter.RequesterID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		recordError(span, err)
		return nil, 0, fmt.Errorf("falha ao contar solicitações: %w", err)
	}

	var entities []*model.DeletionRequestEntity
	if err := query.Order("data DESC").Limit(page.Limit).Offset(page.Offset()).Find(&entities).Error; err != nil {
		recordError(span, err)
		return nil, 0, fmt.Errorf("falha ao listar solicitações: %w", err)
	}

	requests, err := r.enrich(ctx, entities)
	if err != nil {
		recordError(span, err)
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int64("solicitacoes.total", total))
	return requests, total, nil
}

// Approve resolve a solicitação e exclui o serviço na mesma transação
func (r *DeletionRepository) Approve(ctx context.Context, id, adminID string, at time.Time) (*model.ServiceRecord, error) {
	ctx, span := startSpan(ctx, "DeletionRepository.Approve", "transaction", "solicitacoes_exclusao")
	defer span.End()

	var deleted *model.ServiceRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := claim(tx, id, model.RequestApproved, adminID, at)
		if err != nil {
			return err
		}

		var record model.ServiceRecord
		if err := withEmployeeName(tx).Where("servicos.id = ?", entity.ServicoID).Take(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("falha ao buscar serviço: %w", err)
		}

		if err := tx.Where("id = ?", record.ID).Delete(&model.ServiceRecord{}).Error; err != nil {
			return fmt.Errorf("falha ao excluir serviço: %w", err)
		}

		deleted = &record
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			recordError(span, err)
			r.logger.Error("aprovação revertida", zap.String("solicitacao_id", id), zap.Error(err))
		}
		return nil, err
	}

	approved := model.ApprovalApproved
	deleted.AprovacaoExclusao = &approved
	return deleted, nil
}

// Reject resolve a solicitação sem tocar no serviço
func (r *DeletionRepository) Reject(ctx context.Context, id, adminID string, at time.Time) error {
	ctx, span := startSpan(ctx, "DeletionRepository.Reject", "update", "solicitacoes_exclusao")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := claim(tx, id, model.RequestRejected, adminID, at)
		return err
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		recordError(span, err)
	}
	return err
}

// claim move a solicitação de pendente para o status final. A condição
// sobre status faz com que apenas uma decisão concorrente vença.
func claim(tx *gorm.DB, id, status, adminID string, at time.Time) (*model.DeletionRequestEntity, error) {
	var entity model.DeletionRequestEntity
	if err := tx.Where("id = ?", id).Take(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("falha ao buscar solicitação: %w", err)
	}
	if entity.Status != model.RequestPending {
		return nil, repository.ErrNotFound
	}

	res := tx.Model(&model.DeletionRequestEntity{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]interface{}{
			"status":              status,
			"aprovado_por":        adminID,
			"data_aprovacao":      at.UTC(),
			"pendente_servico_id": nil,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("falha ao atualizar solicitação: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}

	return &entity, nil
}

// DeletePending remove a solicitação apenas enquanto pendente
func (r *DeletionRepository) DeletePending(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "DeletionRepository.DeletePending", "delete", "solicitacoes_exclusao")
	defer span.End()

	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Delete(&model.DeletionRequestEntity{})
	if res.Error != nil {
		recordError(span, res.Error)
		return fmt.Errorf("falha ao cancelar solicitação: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteService exclui o serviço e as pendências dele
func (r *DeletionRepository) DeleteService(ctx context.Context, serviceID string) error {
	ctx, span := startSpan(ctx, "DeletionRepository.DeleteService", "transaction", "servicos")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("servico_id = ? AND status = ?", serviceID, model.RequestPending).
			Delete(&model.DeletionRequestEntity{}).Error; err != nil {
			return fmt.Errorf("falha ao remover pendências: %w", err)
		}

		res := tx.Where("id = ?", serviceID).Delete(&model.ServiceRecord{})
		if res.Error != nil {
			return fmt.Errorf("falha ao excluir serviço: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		recordError(span, err)
	}
	return err
}

type statusCount struct {
	FuncionarioID string
	Status        string
	Total         int64
}

// Stats conta solicitações por status e por solicitante desde since
// (nil para todo o histórico). Todo funcionário aparece, mesmo sem pedidos.
func (r *DeletionRepository) Stats(ctx context.Context, since *time.Time) (model.DeletionCounts, []model.EmployeeDeletionStats, error) {
	ctx, span := startSpan(ctx, "DeletionRepository.Stats", "select", "solicitacoes_exclusao")
	defer span.End()

	var totals model.DeletionCounts

	query := r.db.WithContext(ctx).
		Model(&model.DeletionRequestEntity{}).
		Select("funcionario_id, status, COUNT(*) AS total").
		Group("funcionario_id, status")
	if since != nil {
		query = query.Where("data >= ?", since.UTC())
	}

	var rows []statusCount
	if err := query.Scan(&rows).Error; err != nil {
		recordError(span, err)
		return totals, nil, fmt.Errorf("falha ao agregar solicitações: %w", err)
	}

	byEmployee := make(map[string]*model.EmployeeDeletionStats)
	for _, row := range rows {
		totals.Add(row.Status, row.Total)
		stats, ok := byEmployee[row.FuncionarioID]
		if !ok {
			stats = &model.EmployeeDeletionStats{EmployeeID: row.FuncionarioID}
			byEmployee[row.FuncionarioID] = stats
		}
		stats.Add(row.Status, row.Total)
	}

	requesterIDs := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		requesterIDs = append(requesterIDs, id)
	}

	users := r.db.WithContext(ctx).Select("id, nome, email").Where("role = ?", model.RoleEmployee)
	if len(requesterIDs) > 0 {
		users = users.Or("id IN ?", requesterIDs)
	}
	var people []model.UserEntity
	if err := users.Find(&people).Error; err != nil {
		recordError(span, err)
		return totals, nil, fmt.Errorf("falha ao buscar funcionários: %w", err)
	}

	result := make([]model.EmployeeDeletionStats, 0, len(people))
	for _, person := range people {
		stats := model.EmployeeDeletionStats{EmployeeID: person.ID}
		if found, ok := byEmployee[person.ID]; ok {
			stats = *found
		}
		stats.Nome = person.Nome
		stats.Email = person.Email
		result = append(result, stats)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Nome < result[j].Nome
	})

	return totals, result, nil
}

// enrich completa as solicitações com nomes e o serviço ainda existente
func (r *DeletionRepository) enrich(ctx context.Context, entities []*model.DeletionRequestEntity) ([]*model.DeletionRequest, error) {
	requests := make([]*model.DeletionRequest, 0, len(entities))
	if len(entities) == 0 {
		return requests, nil
	}

	userSet := make(map[string]struct{})
	serviceSet := make(map[string]struct{})
	for _, e := range entities {
		userSet[e.FuncionarioID] = struct{}{}
		if e.AprovadoPor != nil {
			userSet[*e.AprovadoPor] = struct{}{}
		}
		serviceSet[e.ServicoID] = struct{}{}
	}

	var users []model.UserEntity
	if err := r.db.WithContext(ctx).Select("id, nome").Where("id IN ?", keys(userSet)).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar usuários: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Nome
	}

	var services []*model.ServiceRecord
	if err := withEmployeeName(r.db.WithContext(ctx)).Where("servicos.id IN ?", keys(serviceSet)).Find(&services).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar serviços: %w", err)
	}
	byID := make(map[string]*model.ServiceRecord, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	for _, e := range entities {
		req := e.ToModel()
		req.RequesterName = names[e.FuncionarioID]
		if e.AprovadoPor != nil {
			req.ResolverName = names[*e.AprovadoPor]
		}
		req.Service = byID[e.ServicoID]
		requests = append(requests, req)
	}
	return requests, nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
