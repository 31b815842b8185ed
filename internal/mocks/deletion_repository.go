package mocks

import (
	"context"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockDeletionRepository é um mock para o repository.DeletionRepository
type MockDeletionRepository struct {
	mock.Mock
}

func (m *MockDeletionRepository) Create(ctx context.Context, req *model.DeletionRequestEntity) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDeletionRepository) GetByID(ctx context.Context, id string) (*model.DeletionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeletionRequest), args.Error(1)
}

func (m *MockDeletionRepository) FindPending(ctx context.Context, serviceID string) (*model.DeletionRequest, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeletionRequest), args.Error(1)
}

func (m *MockDeletionRepository) List(ctx context.Context, filter model.DeletionFilter, page model.Page) ([]*model.DeletionRequest, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.DeletionRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockDeletionRepository) Approve(ctx context.Context, id, adminID string, at time.Time) (*model.ServiceRecord, error) {
	args := m.Called(ctx, id, adminID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ServiceRecord), args.Error(1)
}

func (m *MockDeletionRepository) Reject(ctx context.Context, id, adminID string, at time.Time) error {
	args := m.Called(ctx, id, adminID, at)
	return args.Error(0)
}

func (m *MockDeletionRepository) DeletePending(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeletionRepository) DeleteService(ctx context.Context, serviceID string) error {
	args := m.Called(ctx, serviceID)
	return args.Error(0)
}

func (m *MockDeletionRepository) Stats(ctx context.Context, since *time.Time) (model.DeletionCounts, []model.EmployeeDeletionStats, error) {
	args := m.Called(ctx, since)
	var byEmployee []model.EmployeeDeletionStats
	if v := args.Get(1); v != nil {
		byEmployee = v.([]model.EmployeeDeletionStats)
	}
	return args.Get(0).(model.DeletionCounts), byEmployee, args.Error(2)
}
