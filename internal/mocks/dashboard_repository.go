package mocks

import (
	"context"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/stretchr/testify/mock"
)

// MockDashboardRepository é um mock para o repository.DashboardRepository
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Totals(ctx context.Context, scope repository.DashboardScope, since *time.Time) (model.ServiceTotals, error) {
	args := m.Called(ctx, scope, since)
	return args.Get(0).(model.ServiceTotals), args.Error(1)
}

func (m *MockDashboardRepository) ByType(ctx context.Context, scope repository.DashboardScope, since *time.Time) ([]model.ServiceCount, error) {
	args := m.Called(ctx, scope, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ServiceCount), args.Error(1)
}

func (m *MockDashboardRepository) TopEmployees(ctx context.Context, since *time.Time) ([]model.EmployeePerformance, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EmployeePerformance), args.Error(1)
}

func (m *MockDashboardRepository) Recent(ctx context.Context, scope repository.DashboardScope, since *time.Time, limit int) ([]*model.ServiceRecord, error) {
	args := m.Called(ctx, scope, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ServiceRecord), args.Error(1)
}

func (m *MockDashboardRepository) ServicesSince(ctx context.Context, scope repository.DashboardScope, since time.Time) ([]*model.ServiceRecord, error) {
	args := m.Called(ctx, scope, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ServiceRecord), args.Error(1)
}

func (m *MockDashboardRepository) StatusCount(ctx context.Context, scope repository.DashboardScope, since time.Time) (map[string]int64, error) {
	args := m.Called(ctx, scope, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}
