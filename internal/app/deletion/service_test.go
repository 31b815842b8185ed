package deletion

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/internal/mocks"
	"github.com/diillson/lavajato-api/internal/testutils"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin    = &model.User{ID: "admin-1", Nome: "Alice", Role: model.RoleAdmin}
	employee = &model.User{ID: "func-1", Nome: "Eduardo", Role: model.RoleEmployee}
	intruder = &model.User{ID: "func-2", Nome: "Ivo", Role: model.RoleEmployee}

	fixedNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
)

type fixture struct {
	service  *Service
	requests *mocks.MockDeletionRepository
	services *mocks.MockServiceRepository
	derived  *mocks.InvalidatorSpy
	registry *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	registry := prometheus.NewRegistry()
	requests := new(mocks.MockDeletionRepository)
	services := new(mocks.MockServiceRepository)
	derived := new(mocks.InvalidatorSpy)

	svc := NewService(requests, services, derived, metrics.NewAPIMetrics(registry), testutils.TestLogger(t))
	svc.now = func() time.Time { return fixedNow }

	t.Cleanup(func() {
		requests.AssertExpectations(t)
		services.AssertExpectations(t)
	})
	return &fixture{service: svc, requests: requests, services: services, derived: derived, registry: registry}
}

func (f *fixture) events(t *testing.T, event string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "lavajato_deletion_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "event" && label.GetValue() == event {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func ownedService() *model.ServiceRecord {
	return &model.ServiceRecord{ID: "serv-1", FuncionarioID: employee.ID, Carro: "Gol"}
}

func pendingRequest() *model.DeletionRequest {
	return &model.DeletionRequest{ID: "req-1", ServiceID: "serv-1", RequesterID: employee.ID, Status: model.RequestPending}
}

func TestService_RequestDeletion(t *testing.T) {
	ctx := context.Background()

	t.Run("owner opens pending request with default reason", func(t *testing.T) {
		f := newFixture(t)
		f.services.On("GetByID", ctx, "serv-1").Return(ownedService(), nil).Once()
		f.requests.On("FindPending", ctx, "serv-1").Return(nil, repository.ErrNotFound).Once()
		f.requests.On("Create", ctx, mock.MatchedBy(func(e *model.DeletionRequestEntity) bool {
			return e.ServicoID == "serv-1" && e.FuncionarioID == employee.ID && e.Motivo == model.DefaultDeletionReason
		})).Run(func(args mock.Arguments) {
			e := args.Get(1).(*model.DeletionRequestEntity)
			e.ID = "req-1"
			e.Status = model.RequestPending
		}).Return(nil).Once()

		req, err := f.service.RequestDeletion(ctx, employee, "serv-1", "  ")
		require.NoError(t, err)
		assert.Equal(t, "req-1", req.ID)
		assert.Equal(t, model.RequestPending, req.Status)
		assert.Equal(t, "Eduardo", req.RequesterName)
		assert.Equal(t, "serv-1", req.Service.ID)
		assert.Equal(t, 1.0, f.events(t, metrics.DeletionRequested))
	})

	t.Run("admin may request any service", func(t *testing.T) {
		f := newFixture(t)
		f.services.On("GetByID", ctx, "serv-1").Return(ownedService(), nil).Once()
		f.requests.On("FindPending", ctx, "serv-1").Return(nil, repository.ErrNotFound).Once()
		f.requests.On("Create", ctx, mock.AnythingOfType("*model.DeletionRequestEntity")).Return(nil).Once()

		req, err := f.service.RequestDeletion(ctx, admin, "serv-1", "duplicado")
		require.NoError(t, err)
		assert.Equal(t, "duplicado", req.Reason)
		assert.Equal(t, admin.ID, req.RequesterID)
	})

	t.Run("missing service", func(t *testing.T) {
		f := newFixture(t)
		f.services.On("GetByID", ctx, "nope").Return(nil, repository.ErrNotFound).Once()

		_, err := f.service.RequestDeletion(ctx, employee, "nope", "")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
	})

	t.Run("employee cannot request for another employee's service", func(t *testing.T) {
		f := newFixture(t)
		f.services.On("GetByID", ctx, "serv-1").Return(ownedService(), nil).Once()

		_, err := f.service.RequestDeletion(ctx, intruder, "serv-1", "")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("existing pending request", func(t *testing.T) {
		f := newFixture(t)
		f.services.On("GetByID", ctx, "serv-1").Return(ownedService(), nil).Once()
		f.requests.On("FindPending", ctx, "serv-1").Return(pendingRequest(), nil).Once()

		_, err := f.service.RequestDeletion(ctx, employee, "serv-1", "")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, http.StatusConflict, apperrors.StatusCode(err))
		assert.Equal(t, 1.0, f.events(t, metrics.DeletionConflict))
	})

	t.Run("lost race surfaces as conflict", func(t *testing.T) {
		f := newFixture(t)
		f.services.On("GetByID", ctx, "serv-1").Return(ownedService(), nil).Once()
		f.requests.On("FindPending", ctx, "serv-1").Return(nil, repository.ErrNotFound).Once()
		f.requests.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicatePending).Once()

		_, err := f.service.RequestDeletion(ctx, employee, "serv-1", "")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.ErrorIs(t, err, repository.ErrDuplicatePending)
	})

	t.Run("missing service id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RequestDeletion(ctx, employee, "", "")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestService_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("employee is always forbidden", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Decide(ctx, employee, "req-1", model.DecisionApprove)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("unknown decision", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Decide(ctx, admin, "req-1", "aprovar")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("approve returns deleted service", func(t *testing.T) {
		f := newFixture(t)
		approved := model.ApprovalApproved
		deleted := ownedService()
		deleted.AprovacaoExclusao = &approved

		resolved := pendingRequest()
		resolved.Status = model.RequestApproved
		resolved.ResolvedBy = &admin.ID

		f.requests.On("Approve", ctx, "req-1", admin.ID, fixedNow).Return(deleted, nil).Once()
		f.requests.On("GetByID", ctx, "req-1").Return(resolved, nil).Once()

		result, err := f.service.Decide(ctx, admin, "req-1", model.DecisionApprove)
		require.NoError(t, err)
		assert.Equal(t, deleted, result.DeletedService)
		assert.Equal(t, model.RequestApproved, result.Request.Status)
		assert.Equal(t, 1.0, f.events(t, metrics.DeletionApproved))
		assert.Equal(t, 1, f.derived.Calls())
	})

	t.Run("reject leaves service alone", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("Reject", ctx, "req-1", admin.ID, fixedNow).Return(nil).Once()
		f.requests.On("GetByID", ctx, "req-1").Return(nil, errors.New("conexão perdida")).Once()

		result, err := f.service.Decide(ctx, admin, "req-1", model.DecisionReject)
		require.NoError(t, err)
		assert.Nil(t, result.DeletedService)
		assert.Equal(t, model.RequestRejected, result.Request.Status)
		assert.Equal(t, admin.ID, *result.Request.ResolvedBy)
		f.services.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		assert.Zero(t, f.derived.Calls())
	})

	t.Run("already resolved is not found", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("Approve", ctx, "req-1", admin.ID, fixedNow).Return(nil, repository.ErrNotFound).Once()

		_, err := f.service.Decide(ctx, admin, "req-1", model.DecisionApprove)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
	})

	t.Run("store failure is internal", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("Approve", ctx, "req-1", admin.ID, fixedNow).Return(nil, errors.New("rollback")).Once()

		_, err := f.service.Decide(ctx, admin, "req-1", model.DecisionApprove)
		assert.ErrorIs(t, err, apperrors.ErrInternalServer)
		assert.Zero(t, f.events(t, metrics.DeletionApproved))
		assert.Zero(t, f.derived.Calls())
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("requester cancels pending", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("GetByID", ctx, "req-1").Return(pendingRequest(), nil).Once()
		f.requests.On("DeletePending", ctx, "req-1").Return(nil).Once()

		require.NoError(t, f.service.Cancel(ctx, employee, "req-1"))
		assert.Equal(t, 1.0, f.events(t, metrics.DeletionCancelled))
	})

	t.Run("admin cancels any pending", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("GetByID", ctx, "req-1").Return(pendingRequest(), nil).Once()
		f.requests.On("DeletePending", ctx, "req-1").Return(nil).Once()

		require.NoError(t, f.service.Cancel(ctx, admin, "req-1"))
	})

	t.Run("other employee is forbidden", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("GetByID", ctx, "req-1").Return(pendingRequest(), nil).Once()

		err := f.service.Cancel(ctx, intruder, "req-1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("resolved request is not found", func(t *testing.T) {
		for _, status := range []string{model.RequestApproved, model.RequestRejected} {
			f := newFixture(t)
			req := pendingRequest()
			req.Status = status
			f.requests.On("GetByID", ctx, "req-1").Return(req, nil).Once()

			err := f.service.Cancel(ctx, employee, "req-1")
			assert.ErrorIs(t, err, apperrors.ErrNotFound, status)
		}
	})

	t.Run("resolved between read and delete", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("GetByID", ctx, "req-1").Return(pendingRequest(), nil).Once()
		f.requests.On("DeletePending", ctx, "req-1").Return(repository.ErrNotFound).Once()

		err := f.service.Cancel(ctx, employee, "req-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	page := model.NewPage(2, 5)

	t.Run("admin list defaults to pending", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("List", ctx, model.DeletionFilter{Status: model.RequestPending}, page).
			Return([]*model.DeletionRequest{pendingRequest()}, int64(11), nil).Once()

		result, err := f.service.List(ctx, admin, "", page)
		require.NoError(t, err)
		assert.Len(t, result.Requests, 1)
		assert.Equal(t, model.Pagination{Total: 11, Page: 2, Limit: 5, Pages: 3}, result.Pagination)
	})

	t.Run("employee cannot list everything", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.List(ctx, employee, "", page)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("mine is scoped to requester", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("List", ctx, model.DeletionFilter{Status: model.RequestRejected, RequesterID: employee.ID}, page).
			Return([]*model.DeletionRequest{}, int64(0), nil).Once()

		result, err := f.service.ListMine(ctx, employee, model.RequestRejected, page)
		require.NoError(t, err)
		assert.Empty(t, result.Requests)
		assert.Zero(t, result.Pagination.Pages)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ListMine(ctx, employee, "cancelada", page)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("get hides other employees requests", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("GetByID", ctx, "req-1").Return(pendingRequest(), nil).Twice()

		_, err := f.service.Get(ctx, intruder, "req-1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		req, err := f.service.Get(ctx, employee, "req-1")
		require.NoError(t, err)
		assert.Equal(t, "req-1", req.ID)
	})

	t.Run("missing request", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("GetByID", ctx, "req-9").Return(nil, repository.ErrNotFound).Once()

		_, err := f.service.Get(ctx, admin, "req-9")
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		var apiErr *apperrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Solicitação não encontrada", apiErr.Message)
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("employee is forbidden", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Stats(ctx, employee, model.PeriodDay)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("unknown period falls back to month", func(t *testing.T) {
		f := newFixture(t)
		want := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
		totals := model.DeletionCounts{Total: 3, Pending: 1, Approved: 2}
		f.requests.On("Stats", ctx, mock.MatchedBy(func(since *time.Time) bool {
			return since != nil && since.Equal(want)
		})).Return(totals, nil, nil).Once()

		stats, err := f.service.Stats(ctx, admin, "ano")
		require.NoError(t, err)
		assert.Equal(t, model.PeriodMonth, stats.Period)
		assert.Equal(t, totals, stats.Totals)
		assert.NotNil(t, stats.ByEmployee)
	})

	t.Run("total has no window", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("Stats", ctx, mock.MatchedBy(func(since *time.Time) bool { return since == nil })).
			Return(model.DeletionCounts{}, []model.EmployeeDeletionStats{{EmployeeID: employee.ID}}, nil).Once()

		stats, err := f.service.Stats(ctx, admin, model.PeriodTotal)
		require.NoError(t, err)
		assert.Nil(t, stats.Since)
		assert.Len(t, stats.ByEmployee, 1)
	})
}

func TestService_DirectDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("employee is forbidden", func(t *testing.T) {
		f := newFixture(t)
		err := f.service.DirectDelete(ctx, employee, "serv-1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("admin deletes", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("DeleteService", ctx, "serv-1").Return(nil).Once()

		require.NoError(t, f.service.DirectDelete(ctx, admin, "serv-1"))
		assert.Equal(t, 1.0, f.events(t, metrics.DirectDeletion))
		assert.Equal(t, 1, f.derived.Calls())
	})

	t.Run("missing service", func(t *testing.T) {
		f := newFixture(t)
		f.requests.On("DeleteService", ctx, "serv-1").Return(repository.ErrNotFound).Once()

		err := f.service.DirectDelete(ctx, admin, "serv-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Zero(t, f.derived.Calls())
	})
}

func TestPolicy(t *testing.T) {
	service := ownedService()
	req := pendingRequest()

	assert.True(t, CanRequest(employee, service))
	assert.True(t, CanRequest(admin, service))
	assert.False(t, CanRequest(intruder, service))
	assert.False(t, CanRequest(nil, service))

	assert.True(t, CanDecide(admin))
	assert.False(t, CanDecide(employee))

	assert.True(t, CanCancel(employee, req))
	assert.True(t, CanCancel(admin, req))
	assert.False(t, CanCancel(intruder, req))
	assert.True(t, CanView(admin, req))

	assert.True(t, CanViewStats(admin))
	assert.False(t, CanViewStats(employee))
}
