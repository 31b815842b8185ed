package mocks

import (
	"context"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockClientRepository é um mock para o repository.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Upsert(ctx context.Context, nome, telefone string) error {
	args := m.Called(ctx, nome, telefone)
	return args.Error(0)
}

func (m *MockClientRepository) List(ctx context.Context, search string, page model.Page) ([]*model.ClientSummary, int64, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.ClientSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*model.ClientSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClientSummary), args.Error(1)
}

func (m *MockClientRepository) Services(ctx context.Context, telefone string) ([]*model.ServiceRecord, error) {
	args := m.Called(ctx, telefone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ServiceRecord), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, id string, nome, telefone *string) (*model.Client, error) {
	args := m.Called(ctx, id, nome, telefone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}
