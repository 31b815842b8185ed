package user

import (
	"context"
	"testing"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/internal/mocks"
	"github.com/diillson/lavajato-api/internal/testutils"
	"github.com/diillson/lavajato-api/pkg/config"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/diillson/lavajato-api/pkg/security"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var caller = &model.User{ID: "admin-1", Role: model.RoleAdmin}

type fixture struct {
	service   *Service
	users     *mocks.MockUserRepository
	services  *mocks.MockServiceRepository
	dashboard *mocks.MockDashboardRepository
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		users:     new(mocks.MockUserRepository),
		services:  new(mocks.MockServiceRepository),
		dashboard: new(mocks.MockDashboardRepository),
	}
	cfg := config.AuthConfig{BcryptCost: bcrypt.MinCost, PasswordMinLen: 6}
	f.service = NewService(f.users, f.services, f.dashboard, cfg, testutils.TestLogger(t))
	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.services.AssertExpectations(t)
		f.dashboard.AssertExpectations(t)
	})
	return f
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to employee and hashes password", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Create", ctx, mock.MatchedBy(func(e *model.UserEntity) bool {
			return e.Role == model.RoleEmployee && e.Email == "bia@lavajato.com" &&
				security.CheckPassword(e.PasswordHash, "senha123")
		})).Return(nil).Once()

		user, err := f.service.Create(ctx, CreateInput{Email: " bia@lavajato.com ", Password: "senha123", Nome: "Bia"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleEmployee, user.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Create", ctx, mock.Anything).Return(repository.ErrEmailInUse).Once()

		_, err := f.service.Create(ctx, CreateInput{Email: "bia@lavajato.com", Password: "senha123", Nome: "Bia"})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, CreateInput{Email: "sem-arroba", Password: "1", Role: "gerente"})
		require.ErrorIs(t, err, apperrors.ErrBadRequest)

		var apiErr *apperrors.APIError
		require.ErrorAs(t, err, &apiErr)
		details := apiErr.Details.(map[string]string)
		assert.Contains(t, details, "email")
		assert.Contains(t, details, "nome")
		assert.Contains(t, details, "password")
		assert.Contains(t, details, "role")
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	admin := &model.UserEntity{ID: "admin-2", Role: model.RoleAdmin}

	t.Run("nothing to update", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, "admin-2").Return(admin, nil).Once()

		_, err := f.service.Update(ctx, "admin-2", UpdateInput{})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("cannot demote last admin", func(t *testing.T) {
		f := newFixture(t)
		role := model.RoleEmployee
		f.users.On("GetByID", ctx, "admin-2").Return(admin, nil).Once()
		f.users.On("CountByRole", ctx, model.RoleAdmin).Return(int64(1), nil).Once()

		_, err := f.service.Update(ctx, "admin-2", UpdateInput{Role: &role})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("email in use", func(t *testing.T) {
		f := newFixture(t)
		email := "outro@lavajato.com"
		f.users.On("GetByID", ctx, "admin-2").Return(admin, nil).Once()
		f.users.On("Update", ctx, "admin-2", map[string]interface{}{"email": email}).Return(nil, repository.ErrEmailInUse).Once()

		_, err := f.service.Update(ctx, "admin-2", UpdateInput{Email: &email})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, "x").Return(nil, repository.ErrNotFound).Once()

		_, err := f.service.Update(ctx, "x", UpdateInput{})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("own account", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Delete(ctx, caller, caller.ID)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("last admin", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, "admin-2").Return(&model.UserEntity{ID: "admin-2", Role: model.RoleAdmin}, nil).Once()
		f.users.On("CountByRole", ctx, model.RoleAdmin).Return(int64(1), nil).Once()

		_, err := f.service.Delete(ctx, caller, "admin-2")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		f.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("employee with services", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, "func-1").Return(&model.UserEntity{ID: "func-1", Role: model.RoleEmployee}, nil).Once()
		f.services.On("List", ctx, model.ServiceFilter{FuncionarioID: "func-1"}, model.NewPage(1, 1)).
			Return([]*model.ServiceRecord{{ID: "s1"}}, int64(3), nil).Once()

		_, err := f.service.Delete(ctx, caller, "func-1")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByID", ctx, "func-1").Return(&model.UserEntity{ID: "func-1", Nome: "Bia", Role: model.RoleEmployee}, nil).Once()
		f.services.On("List", ctx, model.ServiceFilter{FuncionarioID: "func-1"}, model.NewPage(1, 1)).
			Return([]*model.ServiceRecord{}, int64(0), nil).Once()
		f.users.On("Delete", ctx, "func-1").Return(nil).Once()

		deleted, err := f.service.Delete(ctx, caller, "func-1")
		require.NoError(t, err)
		assert.Equal(t, "Bia", deleted.Nome)
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.service.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	weekAgo := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	f.users.On("GetByID", ctx, "func-1").Return(&model.UserEntity{ID: "func-1", Role: model.RoleEmployee}, nil).Once()
	f.dashboard.On("Totals", ctx, repository.DashboardScope{FuncionarioID: "func-1"},
		mock.MatchedBy(func(since *time.Time) bool { return since != nil && since.Equal(weekAgo) })).
		Return(model.ServiceTotals{TotalServicos: 4, ReceitaTotal: decimal.NewFromInt(120)}, nil).Once()

	stats, err := f.service.Stats(ctx, "func-1", model.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, model.PeriodWeek, stats.Period)
	assert.EqualValues(t, 4, stats.Stats.TotalServicos)
}
