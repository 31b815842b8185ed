package mocks

import (
	"context"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockServiceRepository é um mock para o repository.ServiceRepository
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, record *model.ServiceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*model.ServiceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ServiceRecord), args.Error(1)
}

func (m *MockServiceRepository) List(ctx context.Context, filter model.ServiceFilter, page model.Page) ([]*model.ServiceRecord, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.ServiceRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockServiceRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*model.ServiceRecord, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ServiceRecord), args.Error(1)
}
