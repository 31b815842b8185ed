package database

import (
	"context"
	"fmt"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	finishedRevenue = fmt.Sprintf("COALESCE(SUM(CASE WHEN servicos.status = '%s' THEN servicos.valor ELSE 0 END), 0)", model.StatusFinished)

	totalsColumns = fmt.Sprintf(
		"COUNT(*) AS total_servicos, "+
			"COUNT(CASE WHEN servicos.status = '%s' THEN 1 END) AS servicos_finalizados, "+
			"COUNT(CASE WHEN servicos.status = '%s' THEN 1 END) AS servicos_andamento, "+
			"%s AS receita_total",
		model.StatusFinished, model.StatusInProgress, finishedRevenue)
)

// DashboardRepository implementa repository.DashboardRepository
type DashboardRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDashboardRepository(db *gorm.DB, logger *zap.Logger) *DashboardRepository {
	return &DashboardRepository{db: db, logger: logger}
}

var _ repository.DashboardRepository = (*DashboardRepository)(nil)

func (r *DashboardRepository) scoped(ctx context.Context, scope repository.DashboardScope, since *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.ServiceRecord{})
	if scope.FuncionarioID != "" {
		query = query.Where("servicos.funcionario_id = ?", scope.FuncionarioID)
	}
	if since != nil {
		query = query.Where("servicos.data >= ?", since.UTC())
	}
	return query
}

func (r *DashboardRepository) Totals(ctx context.Context, scope repository.DashboardScope, since *time.Time) (model.ServiceTotals, error) {
	ctx, span := startSpan(ctx, "DashboardRepository.Totals", "select", "servicos")
	defer span.End()

	var totals model.ServiceTotals
	if err := r.scoped(ctx, scope, since).Select(totalsColumns).Scan(&totals).Error; err != nil {
		recordError(span, err)
		return totals, fmt.Errorf("falha ao calcular totais: %w", err)
	}
	return totals, nil
}

func (r *DashboardRepository) ByType(ctx context.Context, scope repository.DashboardScope, since *time.Time) ([]model.ServiceCount, error) {
	var rows []model.ServiceCount
	err := r.scoped(ctx, scope, since).
		Select("servicos.servico AS servico, COUNT(*) AS total, " + finishedRevenue + " AS valor").
		Group("servicos.servico").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("falha ao agrupar por tipo: %w", err)
	}
	return rows, nil
}

// TopEmployees lista todos os funcionários, inclusive os sem serviços no período
func (r *DashboardRepository) TopEmployees(ctx context.Context, since *time.Time) ([]model.EmployeePerformance, error) {
	join := "LEFT JOIN servicos ON servicos.funcionario_id = users.id"
	var args []interface{}
	if since != nil {
		join += " AND servicos.data >= ?"
		args = append(args, since.UTC())
	}

	var rows []model.EmployeePerformance
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS funcionario_id, users.nome AS nome, COUNT(servicos.id) AS total_servicos, "+finishedRevenue+" AS receita_gerada").
		Joins(join, args...).
		Where("users.role = ?", model.RoleEmployee).
		Group("users.id, users.nome").
		Order("receita_gerada DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("falha ao calcular desempenho: %w", err)
	}
	return rows, nil
}

func (r *DashboardRepository) Recent(ctx context.Context, scope repository.DashboardScope, since *time.Time, limit int) ([]*model.ServiceRecord, error) {
	var records []*model.ServiceRecord
	err := r.scoped(ctx, scope, since).
		Select(serviceColumns).
		Joins("LEFT JOIN users ON users.id = servicos.funcionario_id").
		Order("servicos.data DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar serviços recentes: %w", err)
	}
	return records, nil
}

func (r *DashboardRepository) ServicesSince(ctx context.Context, scope repository.DashboardScope, since time.Time) ([]*model.ServiceRecord, error) {
	var records []*model.ServiceRecord
	if err := r.scoped(ctx, scope, &since).Order("servicos.data").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar serviços: %w", err)
	}
	return records, nil
}

type statusRow struct {
	Status string
	Total  int64
}

func (r *DashboardRepository) StatusCount(ctx context.Context, scope repository.DashboardScope, since time.Time) (map[string]int64, error) {
	var rows []statusRow
	err := r.scoped(ctx, scope, &since).
		Select("servicos.status AS status, COUNT(*) AS total").
		Group("servicos.status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("falha ao contar status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
