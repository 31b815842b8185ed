package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// serviços finalizados somados por cliente
const clientSummaryColumns = "clientes.id, clientes.nome, clientes.telefone, clientes.created_at, clientes.updated_at, " +
	"COUNT(servicos.id) AS total_servicos, COALESCE(SUM(servicos.valor), 0) AS valor_total_gasto"

const clientGroupBy = "clientes.id, clientes.nome, clientes.telefone, clientes.created_at, clientes.updated_at"

// nome propagado apenas para serviços recentes
const clientNameWindowDays = 30

// ClientRepository implementa repository.ClientRepository
type ClientRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewClientRepository(db *gorm.DB, logger *zap.Logger) *ClientRepository {
	return &ClientRepository{db: db, logger: logger}
}

var _ repository.ClientRepository = (*ClientRepository)(nil)

func (r *ClientRepository) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("clientes").
		Select(clientSummaryColumns).
		Joins("LEFT JOIN servicos ON servicos.telefone = clientes.telefone AND servicos.status = ?", model.StatusFinished).
		Group(clientGroupBy)
}

// Upsert cria o cliente ou atualiza o nome quando o telefone já existe
func (r *ClientRepository) Upsert(ctx context.Context, nome, telefone string) error {
	client := &model.Client{Nome: nome, Telefone: telefone}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telefone"}},
			DoUpdates: clause.AssignmentColumns([]string{"nome", "updated_at"}),
		}).
		Create(client).Error
	if err != nil {
		r.logger.Error("falha ao registrar cliente", zap.String("telefone", telefone), zap.Error(err))
		return fmt.Errorf("falha ao registrar cliente: %w", err)
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context, search string, page model.Page) ([]*model.ClientSummary, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if search = strings.TrimSpace(search); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			return db.Where("LOWER(clientes.nome) LIKE ? OR clientes.telefone LIKE ?", pattern, pattern)
		}
		return db
	}

	var total int64
	if err := filter(r.db.WithContext(ctx).Model(&model.Client{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("falha ao contar clientes: %w", err)
	}

	var clients []*model.ClientSummary
	err := filter(r.summaries(ctx)).
		Order("clientes.nome").
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&clients).Error
	if err != nil {
		return nil, 0, fmt.Errorf("falha ao listar clientes: %w", err)
	}
	return clients, total, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*model.ClientSummary, error) {
	var clients []*model.ClientSummary
	if err := r.summaries(ctx).Where("clientes.id = ?", id).Scan(&clients).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar cliente: %w", err)
	}
	if len(clients) == 0 {
		return nil, repository.ErrNotFound
	}
	return clients[0], nil
}

func (r *ClientRepository) Services(ctx context.Context, telefone string) ([]*model.ServiceRecord, error) {
	var records []*model.ServiceRecord
	err := withEmployeeName(r.db.WithContext(ctx)).
		Where("servicos.telefone = ?", telefone).
		Order("servicos.data DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar serviços do cliente: %w", err)
	}
	return records, nil
}

// Update altera o cliente e propaga o telefone para todos os serviços e o
// nome para os serviços dos últimos 30 dias
func (r *ClientRepository) Update(ctx context.Context, id string, nome, telefone *string) (*model.Client, error) {
	var updated model.Client

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Client
		if err := tx.Where("id = ?", id).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrNotFound
			}
			return err
		}

		fields := map[string]interface{}{}
		if nome != nil {
			fields["nome"] = *nome
		}
		if telefone != nil && *telefone != current.Telefone {
			var others int64
			if err := tx.Model(&model.Client{}).Where("telefone = ? AND id <> ?", *telefone, id).Count(&others).Error; err != nil {
				return err
			}
			if others > 0 {
				return repository.ErrPhoneInUse
			}
			fields["telefone"] = *telefone
		}

		if len(fields) > 0 {
			if err := tx.Model(&model.Client{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				if isDuplicateKey(err) {
					return repository.ErrPhoneInUse
				}
				return err
			}
		}

		phone := current.Telefone
		if tel, ok := fields["telefone"].(string); ok {
			if err := tx.Model(&model.ServiceRecord{}).
				Where("telefone = ?", current.Telefone).
				Update("telefone", tel).Error; err != nil {
				return err
			}
			phone = tel
		}

		if nome != nil && *nome != current.Nome {
			since := model.StartOfDay(time.Now()).AddDate(0, 0, -clientNameWindowDays).UTC()
			if err := tx.Model(&model.ServiceRecord{}).
				Where("telefone = ? AND data >= ?", phone, since).
				Update("nome_cliente", *nome).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).Take(&updated).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrPhoneInUse) {
			return nil, err
		}
		return nil, fmt.Errorf("falha ao atualizar cliente: %w", err)
	}
	return &updated, nil
}
