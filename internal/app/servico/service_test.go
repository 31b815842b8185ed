package servico_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diillson/lavajato-api/internal/app/deletion"
	"github.com/diillson/lavajato-api/internal/app/servico"
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
	admin    = &model.User{ID: "admin-1", Nome: "Alice", Role: model.RoleAdmin}
	employee = &model.User{ID: "func-1", Nome: "Eduardo", Role: model.RoleEmployee}
)

type fixture struct {
	service  *servico.Service
	records  *mocks.MockServiceRepository
	clients  *mocks.MockClientRepository
	requests *mocks.MockDeletionRepository
	derived  *mocks.InvalidatorSpy
}

func newFixture(t *testing.T) *fixture {
	logger := testutils.TestLogger(t)
	records := new(mocks.MockServiceRepository)
	clients := new(mocks.MockClientRepository)
	requests := new(mocks.MockDeletionRepository)
	derived := new(mocks.InvalidatorSpy)

	deletionService := deletion.NewService(requests, records, derived, nil, logger)
	t.Cleanup(func() {
		records.AssertExpectations(t)
		clients.AssertExpectations(t)
		requests.AssertExpectations(t)
	})

	return &fixture{
		service:  servico.NewService(records, clients, deletionService, derived, logger),
		records:  records,
		clients:  clients,
		requests: requests,
		derived:  derived,
	}
}

func valor(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("owner is caller and client is upserted", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("Create", ctx, mock.MatchedBy(func(r *model.ServiceRecord) bool {
			return r.FuncionarioID == employee.ID && r.Status == model.StatusFinished && r.Placa == "ABC1D23"
		})).Return(nil).Once()
		f.clients.On("Upsert", ctx, "Maria", "11999990000").Return(nil).Once()

		record, err := f.service.Create(ctx, employee, servico.CreateInput{
			Carro:       "Gol",
			Placa:       "abc1d23",
			NomeCliente: "Maria",
			Telefone:    "11999990000",
			Servico:     "Lavagem",
			Valor:       valor("35.00"),
			Status:      "concluido",
		})
		require.NoError(t, err)
		assert.Equal(t, "Eduardo", record.FuncionarioNome)
		assert.Equal(t, 1, f.derived.Calls())
	})

	t.Run("no phone, no client", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("Create", ctx, mock.MatchedBy(func(r *model.ServiceRecord) bool {
			return r.Status == model.StatusInProgress
		})).Return(nil).Once()

		_, err := f.service.Create(ctx, employee, servico.CreateInput{
			Carro: "Uno", Placa: "XYZ9A87", NomeCliente: "João", Servico: "Ducha", Valor: valor("0"),
		})
		require.NoError(t, err)
		f.clients.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("client failure does not fail the service", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.clients.On("Upsert", ctx, "Maria", "1199").Return(errors.New("falha")).Once()

		_, err := f.service.Create(ctx, employee, servico.CreateInput{
			Carro: "Gol", Placa: "A", NomeCliente: "Maria", Telefone: "1199", Servico: "Lavagem", Valor: valor("10"),
		})
		require.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, employee, servico.CreateInput{Carro: "Gol", Valor: valor("-1"), Status: "cancelado"})
		require.ErrorIs(t, err, apperrors.ErrBadRequest)

		var apiErr *apperrors.APIError
		require.ErrorAs(t, err, &apiErr)
		details := apiErr.Details.(map[string]string)
		assert.Contains(t, details, "placa")
		assert.Contains(t, details, "valor")
		assert.Contains(t, details, "status")
		assert.NotContains(t, details, "carro")
	})
}

func TestService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	page := model.NewPage(1, 10)

	t.Run("employee sees only own services", func(t *testing.T) {
		f := newFixture(t)
		day := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
		from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

		f.records.On("List", ctx, model.ServiceFilter{FuncionarioID: employee.ID, From: &from, To: &to}, page).
			Return([]*model.ServiceRecord{{ID: "s1"}}, int64(1), nil).Once()

		result, err := f.service.List(ctx, employee, servico.ListQuery{FuncionarioID: "outro", DataInicio: &day, DataFim: &day, Page: page})
		require.NoError(t, err)
		assert.Len(t, result.Servicos, 1)
		assert.EqualValues(t, 1, result.Pagination.Total)
	})

	t.Run("admin filters by employee", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("List", ctx, model.ServiceFilter{FuncionarioID: "func-9"}, page).
			Return([]*model.ServiceRecord{}, int64(0), nil).Once()

		_, err := f.service.List(ctx, admin, servico.ListQuery{FuncionarioID: "func-9", Page: page})
		require.NoError(t, err)
	})

	t.Run("other employee's service is not found", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("GetByID", ctx, "s1").Return(&model.ServiceRecord{ID: "s1", FuncionarioID: "func-2"}, nil).Once()

		_, err := f.service.Get(ctx, employee, "s1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	own := &model.ServiceRecord{ID: "s1", FuncionarioID: employee.ID}

	t.Run("partial update by owner", func(t *testing.T) {
		f := newFixture(t)
		status := "finalizado"
		f.records.On("GetByID", ctx, "s1").Return(own, nil).Once()
		f.records.On("Update", ctx, "s1", map[string]interface{}{"status": model.StatusFinished}).
			Return(&model.ServiceRecord{ID: "s1", Status: model.StatusFinished}, nil).Once()

		updated, err := f.service.Update(ctx, employee, "s1", servico.UpdateInput{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, model.StatusFinished, updated.Status)
		assert.Equal(t, 1, f.derived.Calls())
	})

	t.Run("nothing to update", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Update(ctx, employee, "s1", servico.UpdateInput{})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t)
		carro := "Fusca"
		f.records.On("GetByID", ctx, "s1").Return(&model.ServiceRecord{ID: "s1", FuncionarioID: "func-2"}, nil).Once()

		_, err := f.service.Update(ctx, employee, "s1", servico.UpdateInput{Carro: &carro})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Zero(t, f.derived.Calls())
	})

	t.Run("missing service", func(t *testing.T) {
		f := newFixture(t)
		carro := "Fusca"
		f.records.On("GetByID", ctx, "s9").Return(nil, repository.ErrNotFound).Once()

		_, err := f.service.Update(ctx, admin, "s9", servico.UpdateInput{Carro: &carro})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes directly", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("DeleteService", ctx, "s1").Return(nil).Once()

		result, err := f.service.Delete(ctx, admin, "s1", "")
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assert.Nil(t, result.Request)
		assert.Equal(t, 1, f.derived.Calls())
	})

	t.Run("employee opens a request", func(t *testing.T) {
		f := newFixture(t)
		f.records.On("GetByID", ctx, "s1").Return(&model.ServiceRecord{ID: "s1", FuncionarioID: employee.ID}, nil).Once()
		f.requests.On("FindPending", ctx, "s1").Return(nil, repository.ErrNotFound).Once()
		f.requests.On("Create", ctx, mock.Anything).Return(nil).Once()

		result, err := f.service.Delete(ctx, employee, "s1", "lançado duas vezes")
		require.NoError(t, err)
		assert.False(t, result.Deleted)
		require.NotNil(t, result.Request)
		assert.Equal(t, "lançado duas vezes", result.Request.Reason)
	})
}
