package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type deletionFixture struct {
	db       *gorm.DB
	repo     *DeletionRepository
	admin    *model.UserEntity
	employee *model.UserEntity
	service  *model.ServiceRecord
}

func newDeletionFixture(t *testing.T) *deletionFixture {
	db := newTestDB(t)
	employee := seedUser(t, db, "eduardo", model.RoleEmployee)
	return &deletionFixture{
		db:       db,
		repo:     NewDeletionRepository(db, zaptest.NewLogger(t)),
		admin:    seedUser(t, db, "alice", model.RoleAdmin),
		employee: employee,
		service:  seedService(t, db, employee.ID, "50.00", model.StatusFinished, time.Now().UTC()),
	}
}

func (f *deletionFixture) request(t *testing.T) *model.DeletionRequestEntity {
	t.Helper()
	req := &model.DeletionRequestEntity{
		ServicoID:     f.service.ID,
		FuncionarioID: f.employee.ID,
		Motivo:        "lançamento errado",
	}
	require.NoError(t, f.repo.Create(context.Background(), req))
	return req
}

func (f *deletionFixture) serviceExists(t *testing.T) bool {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&model.ServiceRecord{}).Where("id = ?", f.service.ID).Count(&count).Error)
	return count == 1
}

func TestDeletionRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("second pending request is rejected", func(t *testing.T) {
		f := newDeletionFixture(t)
		first := f.request(t)
		assert.Equal(t, model.RequestPending, first.Status)

		err := f.repo.Create(ctx, &model.DeletionRequestEntity{ServicoID: f.service.ID, FuncionarioID: f.employee.ID})
		assert.ErrorIs(t, err, repository.ErrDuplicatePending)
	})

	t.Run("resolved request frees the service", func(t *testing.T) {
		f := newDeletionFixture(t)
		first := f.request(t)
		require.NoError(t, f.repo.Reject(ctx, first.ID, f.admin.ID, time.Now()))

		second := f.request(t)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("concurrent requests, exactly one wins", func(t *testing.T) {
		f := newDeletionFixture(t)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = f.repo.Create(ctx, &model.DeletionRequestEntity{ServicoID: f.service.ID, FuncionarioID: f.employee.ID})
			}(i)
		}
		wg.Wait()

		var ok, conflict int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, repository.ErrDuplicatePending):
				conflict++
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, conflict)
	})
}

func TestDeletionRepository_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes service and resolves request", func(t *testing.T) {
		f := newDeletionFixture(t)
		req := f.request(t)

		deleted, err := f.repo.Approve(ctx, req.ID, f.admin.ID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, f.service.ID, deleted.ID)
		assert.Equal(t, "eduardo", deleted.FuncionarioNome)
		require.NotNil(t, deleted.AprovacaoExclusao)
		assert.Equal(t, model.ApprovalApproved, *deleted.AprovacaoExclusao)
		assert.False(t, f.serviceExists(t))

		got, err := f.repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestApproved, got.Status)
		require.NotNil(t, got.ResolvedBy)
		assert.Equal(t, f.admin.ID, *got.ResolvedBy)
		assert.NotNil(t, got.ResolvedAt)
		assert.Equal(t, "alice", got.ResolverName)
		assert.Nil(t, got.Service)
	})

	t.Run("already resolved is not found", func(t *testing.T) {
		f := newDeletionFixture(t)
		req := f.request(t)
		require.NoError(t, f.repo.Reject(ctx, req.ID, f.admin.ID, time.Now()))

		_, err := f.repo.Approve(ctx, req.ID, f.admin.ID, time.Now())
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.True(t, f.serviceExists(t))

		_, err = f.repo.Approve(ctx, "inexistente", f.admin.ID, time.Now())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("failed delete rolls back the request", func(t *testing.T) {
		f := newDeletionFixture(t)
		req := f.request(t)

		require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:falha_servicos", func(tx *gorm.DB) {
			if tx.Statement.Table == "servicos" {
				_ = tx.AddError(errors.New("falha simulada"))
			}
		}))

		_, err := f.repo.Approve(ctx, req.ID, f.admin.ID, time.Now())
		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrNotFound)

		got, err := f.repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestPending, got.Status)
		assert.Nil(t, got.ResolvedBy)
		assert.Nil(t, got.ResolvedAt)
		assert.True(t, f.serviceExists(t))
	})
}

func TestDeletionRepository_Reject(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	req := f.request(t)

	require.NoError(t, f.repo.Reject(ctx, req.ID, f.admin.ID, time.Now()))

	got, err := f.repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, got.Status)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, f.admin.ID, *got.ResolvedBy)
	require.NotNil(t, got.Service)
	assert.Nil(t, got.Service.AprovacaoExclusao)
	assert.True(t, f.serviceExists(t))

	assert.ErrorIs(t, f.repo.Reject(ctx, req.ID, f.admin.ID, time.Now()), repository.ErrNotFound)
}

func TestDeletionRepository_DeletePending(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()

	pending := f.request(t)
	require.NoError(t, f.repo.DeletePending(ctx, pending.ID))
	_, err := f.repo.GetByID(ctx, pending.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.True(t, f.serviceExists(t))

	resolved := f.request(t)
	require.NoError(t, f.repo.Reject(ctx, resolved.ID, f.admin.ID, time.Now()))
	assert.ErrorIs(t, f.repo.DeletePending(ctx, resolved.ID), repository.ErrNotFound)
}

func TestDeletionRepository_DeleteService(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	req := f.request(t)

	require.NoError(t, f.repo.DeleteService(ctx, f.service.ID))
	assert.False(t, f.serviceExists(t))

	_, err := f.repo.FindPending(ctx, f.service.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.repo.GetByID(ctx, req.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, f.repo.DeleteService(ctx, f.service.ID), repository.ErrNotFound)
}

func TestDeletionRepository_ListAndStats(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()

	idle := seedUser(t, f.db, "ivo", model.RoleEmployee)
	other := seedService(t, f.db, f.employee.ID, "20.00", model.StatusInProgress, time.Now().UTC())

	rejected := f.request(t)
	require.NoError(t, f.repo.Reject(ctx, rejected.ID, f.admin.ID, time.Now()))
	pending := f.request(t)
	require.NoError(t, f.repo.Create(ctx, &model.DeletionRequestEntity{
		ServicoID:     other.ID,
		FuncionarioID: f.employee.ID,
		Data:          time.Now().UTC().AddDate(0, 0, -60),
	}))

	t.Run("filters by status", func(t *testing.T) {
		requests, total, err := f.repo.List(ctx, model.DeletionFilter{Status: model.RequestPending}, model.NewPage(1, 10))
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, requests, 2)
		assert.Equal(t, pending.ID, requests[0].ID)
		assert.Equal(t, "eduardo", requests[0].RequesterName)
		require.NotNil(t, requests[0].Service)
		assert.Equal(t, f.service.ID, requests[0].Service.ID)
	})

	t.Run("filters by requester", func(t *testing.T) {
		_, total, err := f.repo.List(ctx, model.DeletionFilter{RequesterID: idle.ID}, model.NewPage(1, 10))
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("stats over window", func(t *testing.T) {
		since := model.PeriodStart(model.PeriodMonth, time.Now().UTC())
		totals, byEmployee, err := f.repo.Stats(ctx, since)
		require.NoError(t, err)
		assert.Equal(t, model.DeletionCounts{Total: 2, Pending: 1, Rejected: 1}, totals)

		require.Len(t, byEmployee, 2)
		assert.Equal(t, f.employee.ID, byEmployee[0].EmployeeID)
		assert.EqualValues(t, 2, byEmployee[0].Total)
		assert.Equal(t, idle.ID, byEmployee[1].EmployeeID)
		assert.Zero(t, byEmployee[1].Total)
	})

	t.Run("stats over all history", func(t *testing.T) {
		totals, _, err := f.repo.Stats(ctx, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, totals.Total)
		assert.EqualValues(t, 2, totals.Pending)
	})
}
