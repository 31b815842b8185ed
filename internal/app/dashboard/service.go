package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/pkg/cache"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	cachePrefix    = "dashboard:"
	recentLimit    = 10
	chartDays      = 7
	defaultMonths  = 6
	maxChartMonths = 24
)

// Service calcula os números do painel, com cache por escopo e parâmetros
type Service struct {
	repo   repository.DashboardRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo repository.DashboardRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl, logger: logger, now: time.Now}
}

// scope restringe funcionários aos próprios serviços
func scope(user *model.User) repository.DashboardScope {
	if user.IsAdmin() {
		return repository.DashboardScope{}
	}
	return repository.DashboardScope{FuncionarioID: user.ID}
}

func cacheKey(kind string, sc repository.DashboardScope, param string) string {
	owner := sc.FuncionarioID
	if owner == "" {
		owner = "all"
	}
	return fmt.Sprintf("%s%s:%s:%s", cachePrefix, kind, owner, param)
}

// Invalidate descarta todos os painéis em cache. Chamado depois de qualquer
// escrita em serviços.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		s.logger.Warn("falha ao invalidar cache do painel", zap.Error(err))
	}
}

// cached devolve o valor do cache ou calcula e grava. Falhas de cache só
// geram log.
func (s *Service) cached(ctx context.Context, key string, dest interface{}, compute func() error) error {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("falha ao ler cache do painel", zap.String("key", key), zap.Error(err))
	} else if found {
		return nil
	}

	if err := compute(); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, key, dest, s.ttl); err != nil {
		s.logger.Warn("falha ao gravar cache do painel", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Stats monta o painel do período (day por padrão)
func (s *Service) Stats(ctx context.Context, user *model.User, period string) (*model.DashboardStats, error) {
	period = model.ParsePeriod(period, model.PeriodDay)
	sc := scope(user)

	var stats model.DashboardStats
	err := s.cached(ctx, cacheKey("stats", sc, period), &stats, func() error {
		now := s.now().UTC()
		since := model.PeriodStart(period, now)

		totals, err := s.repo.Totals(ctx, sc, since)
		if err != nil {
			return err
		}
		byType, err := s.repo.ByType(ctx, sc, since)
		if err != nil {
			return err
		}
		chartStart := model.StartOfDay(now).AddDate(0, 0, -chartDays)
		recentDays, err := s.repo.ServicesSince(ctx, sc, chartStart)
		if err != nil {
			return err
		}
		recent, err := s.repo.Recent(ctx, sc, since, recentLimit)
		if err != nil {
			return err
		}

		top := []model.EmployeePerformance{}
		if user.IsAdmin() {
			if top, err = s.repo.TopEmployees(ctx, since); err != nil {
				return err
			}
		}

		if byType == nil {
			byType = []model.ServiceCount{}
		}
		if recent == nil {
			recent = []*model.ServiceRecord{}
		}

		stats = model.DashboardStats{
			Period: period,
			Stats:  totals,
			Charts: model.DashboardCharts{
				ServicesChart: dailySeries(recentDays, chartStart, model.StartOfDay(now)),
				ServiceTypes:  byType,
			},
			TopEmployees:   top,
			RecentServices: recent,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("falha ao montar painel", zap.String("periodo", period), zap.Error(err))
		return nil, apperrors.InternalServer("Erro ao buscar estatísticas do painel", err)
	}
	return &stats, nil
}

// RevenueChart soma serviços e receita por mês nos últimos months meses
func (s *Service) RevenueChart(ctx context.Context, user *model.User, months int) ([]model.MonthlyValue, error) {
	if months <= 0 {
		months = defaultMonths
	}
	if months > maxChartMonths {
		months = maxChartMonths
	}
	sc := scope(user)

	var series []model.MonthlyValue
	err := s.cached(ctx, cacheKey("revenue", sc, fmt.Sprint(months)), &series, func() error {
		now := s.now().UTC()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

		records, err := s.repo.ServicesSince(ctx, sc, first)
		if err != nil {
			return err
		}
		series = monthlySeries(records, first, months)
		return nil
	})
	if err != nil {
		s.logger.Error("falha ao montar gráfico de receita", zap.Error(err))
		return nil, apperrors.InternalServer("Erro ao buscar gráfico de receita", err)
	}
	return series, nil
}

// StatusDistribution reparte os serviços de hoje por status
func (s *Service) StatusDistribution(ctx context.Context, user *model.User) ([]model.StatusShare, error) {
	sc := scope(user)

	var shares []model.StatusShare
	err := s.cached(ctx, cacheKey("status", sc, "today"), &shares, func() error {
		counts, err := s.repo.StatusCount(ctx, sc, model.StartOfDay(s.now().UTC()))
		if err != nil {
			return err
		}
		shares = statusShares(counts)
		return nil
	})
	if err != nil {
		s.logger.Error("falha ao calcular distribuição de status", zap.Error(err))
		return nil, apperrors.InternalServer("Erro ao buscar distribuição de status", err)
	}
	return shares, nil
}

func dailySeries(records []*model.ServiceRecord, from, to time.Time) []model.DailyValue {
	index := map[string]int{}
	series := []model.DailyValue{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		index[key] = len(series)
		series = append(series, model.DailyValue{Dia: key, Receita: decimal.Zero})
	}

	for _, r := range records {
		i, ok := index[r.Data.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		series[i].Total++
		if r.Status == model.StatusFinished {
			series[i].Receita = series[i].Receita.Add(r.Valor)
		}
	}
	return series
}

func monthlySeries(records []*model.ServiceRecord, first time.Time, months int) []model.MonthlyValue {
	index := map[string]int{}
	series := make([]model.MonthlyValue, 0, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		index[key] = i
		series = append(series, model.MonthlyValue{Mes: key, Receita: decimal.Zero})
	}

	for _, r := range records {
		i, ok := index[r.Data.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		series[i].Total++
		if r.Status == model.StatusFinished {
			series[i].Receita = series[i].Receita.Add(r.Valor)
		}
	}
	return series
}

func statusShares(counts map[string]int64) []model.StatusShare {
	var total int64
	for _, n := range counts {
		total += n
	}

	shares := make([]model.StatusShare, 0, len(counts))
	for status, n := range counts {
		share := model.StatusShare{Status: status, Quantidade: n}
		if total > 0 {
			share.Percentual = math.Round(float64(n)*10000/float64(total)) / 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Status < shares[j].Status })
	return shares
}
