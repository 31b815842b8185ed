package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// colunas de servicos com o nome do funcionário responsável
const serviceColumns = "servicos.*, users.nome AS funcionario_nome"

// ServiceRepository implementa repository.ServiceRepository
type ServiceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewServiceRepository cria um novo repositório de serviços
func NewServiceRepository(db *gorm.DB, logger *zap.Logger) *ServiceRepository {
	return &ServiceRepository{db: db, logger: logger}
}

var _ repository.ServiceRepository = (*ServiceRepository)(nil)

func withEmployeeName(db *gorm.DB) *gorm.DB {
	return db.Model(&model.ServiceRecord{}).
		Select(serviceColumns).
		Joins("LEFT JOIN users ON users.id = servicos.funcionario_id")
}

// Create insere um novo serviço
func (r *ServiceRepository) Create(ctx context.Context, record *model.ServiceRecord) error {
	ctx, span := startSpan(ctx, "ServiceRepository.Create", "insert", "servicos")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		recordError(span, err)
		r.logger.Error("falha ao criar serviço", zap.Error(err))
		return fmt.Errorf("falha ao criar serviço: %w", err)
	}
	span.SetAttributes(attribute.String("servico.id", record.ID))
	return nil
}

// GetByID busca um serviço pelo id
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*model.ServiceRecord, error) {
	ctx, span := startSpan(ctx, "ServiceRepository.GetByID", "select", "servicos")
	defer span.End()

	var record model.ServiceRecord
	err := withEmployeeName(r.db.WithContext(ctx)).Where("servicos.id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		recordError(span, err)
		return nil, fmt.Errorf("falha ao buscar serviço: %w", err)
	}
	return &record, nil
}

// List retorna uma página de serviços, mais recentes primeiro
func (r *ServiceRepository) List(ctx context.Context, filter model.ServiceFilter, page model.Page) ([]*model.ServiceRecord, int64, error) {
	ctx, span := startSpan(ctx, "ServiceRepository.List", "select", "servicos")
	defer span.End()

	query := r.db.WithContext(ctx).Model(&model.ServiceRecord{})
	if filter.FuncionarioID != "" {
		query = query.Where("servicos.funcionario_id = ?", filter.FuncionarioID)
	}
	if filter.From != nil {
		query = query.Where("servicos.data >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("servicos.data < ?", filter.To.UTC())
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		recordError(span, err)
		return nil, 0, fmt.Errorf("falha ao contar serviços: %w", err)
	}

	var records []*model.ServiceRecord
	err := query.
		Select(serviceColumns).
		Joins("LEFT JOIN users ON users.id = servicos.funcionario_id").
		Order("servicos.data DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&records).Error
	if err != nil {
		recordError(span, err)
		return nil, 0, fmt.Errorf("falha ao listar serviços: %w", err)
	}

	span.SetAttributes(attribute.Int64("servicos.total", total))
	return records, total, nil
}

// Update aplica somente as colunas informadas
func (r *ServiceRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*model.ServiceRecord, error) {
	ctx, span := startSpan(ctx, "ServiceRepository.Update", "update", "servicos")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&model.ServiceRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		recordError(span, res.Error)
		return nil, fmt.Errorf("falha ao atualizar serviço: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
