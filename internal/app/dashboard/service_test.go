package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/internal/mocks"
	"github.com/diillson/lavajato-api/internal/testutils"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin    = &model.User{ID: "admin-1", Role: model.RoleAdmin}
	employee = &model.User{ID: "func-1", Role: model.RoleEmployee}
	fixedNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (*Service, *mocks.MockDashboardRepository, *mocks.MockCache) {
	repo := new(mocks.MockDashboardRepository)
	c := new(mocks.MockCache)
	svc := NewService(repo, c, time.Minute, testutils.TestLogger(t))
	svc.now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		repo.AssertExpectations(t)
		c.AssertExpectations(t)
	})
	return svc, repo, c
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	chartStart := today.AddDate(0, 0, -chartDays)

	t.Run("employee scope skips top employees", func(t *testing.T) {
		svc, repo, c := newService(t)
		sc := repository.DashboardScope{FuncionarioID: employee.ID}
		isToday := mock.MatchedBy(func(since *time.Time) bool { return since != nil && since.Equal(today) })

		c.On("Get", ctx, "dashboard:stats:func-1:day", mock.Anything).Return(false, nil).Once()
		repo.On("Totals", ctx, sc, isToday).Return(model.ServiceTotals{TotalServicos: 2, ReceitaTotal: decimal.NewFromInt(40)}, nil).Once()
		repo.On("ByType", ctx, sc, isToday).Return(nil, nil).Once()
		repo.On("ServicesSince", ctx, sc, chartStart).Return([]*model.ServiceRecord{
			{Data: fixedNow, Status: model.StatusFinished, Valor: decimal.NewFromInt(40)},
			{Data: fixedNow.AddDate(0, 0, -2), Status: model.StatusInProgress, Valor: decimal.NewFromInt(25)},
		}, nil).Once()
		repo.On("Recent", ctx, sc, isToday, recentLimit).Return([]*model.ServiceRecord{}, nil).Once()
		c.On("Set", ctx, "dashboard:stats:func-1:day", mock.Anything, time.Minute).Return(nil).Once()

		stats, err := svc.Stats(ctx, employee, "")
		require.NoError(t, err)
		assert.Equal(t, model.PeriodDay, stats.Period)
		assert.EqualValues(t, 2, stats.Stats.TotalServicos)
		assert.Empty(t, stats.TopEmployees)
		assert.NotNil(t, stats.Charts.ServiceTypes)

		chart := stats.Charts.ServicesChart
		require.Len(t, chart, chartDays+1)
		assert.Equal(t, "2024-03-08", chart[0].Dia)
		last := chart[len(chart)-1]
		assert.Equal(t, "2024-03-15", last.Dia)
		assert.EqualValues(t, 1, last.Total)
		assert.True(t, decimal.NewFromInt(40).Equal(last.Receita))
		assert.EqualValues(t, 1, chart[5].Total)
		assert.True(t, chart[5].Receita.IsZero())
		repo.AssertNotCalled(t, "TopEmployees", mock.Anything, mock.Anything)
	})

	t.Run("admin sees everyone", func(t *testing.T) {
		svc, repo, c := newService(t)
		sc := repository.DashboardScope{}
		isTotal := mock.MatchedBy(func(since *time.Time) bool { return since == nil })

		c.On("Get", ctx, "dashboard:stats:all:total", mock.Anything).Return(false, nil).Once()
		repo.On("Totals", ctx, sc, isTotal).Return(model.ServiceTotals{}, nil).Once()
		repo.On("ByType", ctx, sc, isTotal).Return([]model.ServiceCount{}, nil).Once()
		repo.On("ServicesSince", ctx, sc, chartStart).Return([]*model.ServiceRecord{}, nil).Once()
		repo.On("Recent", ctx, sc, isTotal, recentLimit).Return([]*model.ServiceRecord{}, nil).Once()
		repo.On("TopEmployees", ctx, isTotal).Return([]model.EmployeePerformance{{Nome: "Bia"}}, nil).Once()
		c.On("Set", ctx, "dashboard:stats:all:total", mock.Anything, time.Minute).Return(nil).Once()

		stats, err := svc.Stats(ctx, admin, model.PeriodTotal)
		require.NoError(t, err)
		assert.Len(t, stats.TopEmployees, 1)
	})

	t.Run("served from cache", func(t *testing.T) {
		svc, _, c := newService(t)
		c.On("Get", ctx, "dashboard:stats:all:week", mock.AnythingOfType("*model.DashboardStats")).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*model.DashboardStats)
				dest.Period = model.PeriodWeek
				dest.Stats.TotalServicos = 9
			}).
			Return(true, nil).Once()

		stats, err := svc.Stats(ctx, admin, model.PeriodWeek)
		require.NoError(t, err)
		assert.EqualValues(t, 9, stats.Stats.TotalServicos)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, repo, c := newService(t)
		c.On("Get", ctx, "dashboard:stats:all:month", mock.Anything).Return(false, errors.New("redis fora")).Once()
		repo.On("Totals", ctx, repository.DashboardScope{}, mock.Anything).Return(model.ServiceTotals{}, errors.New("db fora")).Once()

		_, err := svc.Stats(ctx, admin, model.PeriodMonth)
		assert.ErrorIs(t, err, apperrors.ErrInternalServer)
	})
}

func TestService_RevenueChart(t *testing.T) {
	ctx := context.Background()
	svc, repo, c := newService(t)
	first := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)

	c.On("Get", ctx, "dashboard:revenue:all:6", mock.Anything).Return(false, nil).Once()
	repo.On("ServicesSince", ctx, repository.DashboardScope{}, first).Return([]*model.ServiceRecord{
		{Data: time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC), Status: model.StatusFinished, Valor: decimal.NewFromInt(30)},
		{Data: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Status: model.StatusInProgress, Valor: decimal.NewFromInt(10)},
	}, nil).Once()
	c.On("Set", ctx, "dashboard:revenue:all:6", mock.Anything, time.Minute).Return(nil).Once()

	series, err := svc.RevenueChart(ctx, admin, 0)
	require.NoError(t, err)
	require.Len(t, series, 6)
	assert.Equal(t, "2023-10", series[0].Mes)
	assert.True(t, decimal.NewFromInt(30).Equal(series[0].Receita))
	assert.Equal(t, "2024-03", series[5].Mes)
	assert.EqualValues(t, 1, series[5].Total)
	assert.True(t, series[5].Receita.IsZero())
}

func TestStatusShares(t *testing.T) {
	shares := statusShares(map[string]int64{model.StatusFinished: 2, model.StatusInProgress: 1})
	require.Len(t, shares, 2)
	assert.Equal(t, model.StatusInProgress, shares[0].Status)
	assert.Equal(t, 33.33, shares[0].Percentual)
	assert.Equal(t, 66.67, shares[1].Percentual)

	assert.Empty(t, statusShares(map[string]int64{}))
}

func TestService_Invalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("drops every dashboard key", func(t *testing.T) {
		svc, _, c := newService(t)
		c.On("DeletePrefix", ctx, "dashboard:").Return(nil).Once()
		svc.Invalidate(ctx)
	})

	t.Run("cache failure is only logged", func(t *testing.T) {
		svc, _, c := newService(t)
		c.On("DeletePrefix", ctx, "dashboard:").Return(errors.New("redis fora")).Once()
		assert.NotPanics(t, func() { svc.Invalidate(ctx) })
	})
}
