package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
)

var (
	ErrNotFound         = errors.New("registro não encontrado")
	ErrDuplicatePending = errors.New("já existe uma solicitação pendente para este serviço")
	ErrEmailInUse       = errors.New("email já cadastrado")
	ErrPhoneInUse       = errors.New("telefone já cadastrado para outro cliente")
)

// UserRepository define o armazenamento de usuários
type UserRepository interface {
	Create(ctx context.Context, user *model.UserEntity) error
	GetByID(ctx context.Context, id string) (*model.UserEntity, error)
	GetByEmail(ctx context.Context, email string) (*model.UserEntity, error)
	List(ctx context.Context) ([]*model.UserEntity, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.UserEntity, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role string) (int64, error)
}

// ServiceRepository define o armazenamento de serviços (tabela servicos)
type ServiceRepository interface {
	Create(ctx context.Context, record *model.ServiceRecord) error
	GetByID(ctx context.Context, id string) (*model.ServiceRecord, error)
	List(ctx context.Context, filter model.ServiceFilter, page model.Page) ([]*model.ServiceRecord, int64, error)

	// Update aplica somente as colunas informadas
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.ServiceRecord, error)
}

// DeletionRepository define o armazenamento das solicitações de exclusão.
// As operações que alteram as duas tabelas rodam em uma única transação.
type DeletionRepository interface {
	// Create falha com ErrDuplicatePending se já houver pendência para o serviço
	Create(ctx context.Context, req *model.DeletionRequestEntity) error
	GetByID(ctx context.Context, id string) (*model.DeletionRequest, error)
	FindPending(ctx context.Context, serviceID string) (*model.DeletionRequest, error)
	List(ctx context.Context, filter model.DeletionFilter, page model.Page) ([]*model.DeletionRequest, int64, error)

	// Approve marca a solicitação pendente como aprovada e exclui o serviço.
	// Retorna o serviço excluído. ErrNotFound se não houver pendência com o id.
	Approve(ctx context.Context, id, adminID string, at time.Time) (*model.ServiceRecord, error)

	// Reject marca a solicitação pendente como rejeitada
	Reject(ctx context.Context, id, adminID string, at time.Time) error

	// DeletePending remove a solicitação somente se ainda estiver pendente
	DeletePending(ctx context.Context, id string) error

	// DeleteService exclui o serviço e as pendências que apontam para ele
	DeleteService(ctx context.Context, serviceID string) error

	Stats(ctx context.Context, since *time.Time) (model.DeletionCounts, []model.EmployeeDeletionStats, error)
}

// ClientRepository define o armazenamento de clientes
type ClientRepository interface {
	// Upsert cria o cliente pelo telefone ou atualiza o nome
	Upsert(ctx context.Context, nome, telefone string) error
	List(ctx context.Context, search string, page model.Page) ([]*model.ClientSummary, int64, error)
	GetByID(ctx context.Context, id string) (*model.ClientSummary, error)
	Services(ctx context.Context, telefone string) ([]*model.ServiceRecord, error)

	// Update propaga telefone e nome para os serviços do cliente
	Update(ctx context.Context, id string, nome, telefone *string) (*model.Client, error)
}

// DashboardScope limita as consultas do painel a um funcionário
type DashboardScope struct {
	FuncionarioID string
}

// DashboardRepository agrega dados da tabela servicos
type DashboardRepository interface {
	Totals(ctx context.Context, scope DashboardScope, since *time.Time) (model.ServiceTotals, error)
	ByType(ctx context.Context, scope DashboardScope, since *time.Time) ([]model.ServiceCount, error)
	TopEmployees(ctx context.Context, since *time.Time) ([]model.EmployeePerformance, error)
	Recent(ctx context.Context, scope DashboardScope, since *time.Time, limit int) ([]*model.ServiceRecord, error)

	// ServicesSince devolve os serviços a partir de since, para séries temporais
	ServicesSince(ctx context.Context, scope DashboardScope, since time.Time) ([]*model.ServiceRecord, error)

	StatusCount(ctx context.Context, scope DashboardScope, since time.Time) (map[string]int64, error)
}
