package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Estados de uma solicitação de exclusão. Só pendente aceita transições.
const (
	RequestPending  = "pendente"
	RequestApproved = "aprovada"
	RequestRejected = "rejeitada"
)

// Decisões do administrador
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// DefaultDeletionReason é usado quando o pedido chega sem motivo
const DefaultDeletionReason = "Solicitação de exclusão"

// ValidRequestStatus indica se o status é conhecido
func ValidRequestStatus(status string) bool {
	switch status {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// DeletionRequest é a visão de domínio de uma solicitação de exclusão
type DeletionRequest struct {
	ID            string     `json:"id"`
	ServiceID     string     `json:"serviceId"`
	RequesterID   string     `json:"requesterId"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	ResolvedBy    *string    `json:"resolvedBy"`
	ResolvedAt    *time.Time `json:"resolvedAt"`
	RequesterName string     `json:"requesterName,omitempty"`
	ResolverName  string     `json:"resolverName,omitempty"`

	// nil quando o serviço já foi excluído
	Service *ServiceRecord `json:"service,omitempty"`
}

// IsPending verifica se a solicitação ainda aguarda decisão
func (r *DeletionRequest) IsPending() bool {
	return r.Status == RequestPending
}

// DeletionRequestEntity é a representação de banco de dados
type DeletionRequestEntity struct {
	ID            string     `gorm:"primaryKey;size:36"`
	ServicoID     string     `gorm:"column:servico_id;not null;size:36;index"`
	FuncionarioID string     `gorm:"column:funcionario_id;not null;size:36;index"`
	Motivo        string     `gorm:"type:text"`
	Status        string     `gorm:"not null;default:pendente;size:20;index"`
	Data          time.Time  `gorm:"column:data;autoCreateTime;index"`
	AprovadoPor   *string    `gorm:"column:aprovado_por;size:36"`
	DataAprovacao *time.Time `gorm:"column:data_aprovacao"`

	// Igual a ServicoID enquanto pendente, NULL depois. O índice único
	// garante no máximo uma pendência por serviço.
	PendenteServicoID *string `gorm:"column:pendente_servico_id;size:36;uniqueIndex:ux_solicitacoes_pendente"`
}

// TableName define o nome da tabela
func (DeletionRequestEntity) TableName() string {
	return "solicitacoes_exclusao"
}

// BeforeCreate gera o id quando ausente
func (e *DeletionRequestEntity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ToModel converte a entidade para a visão de domínio
func (e *DeletionRequestEntity) ToModel() *DeletionRequest {
	return &DeletionRequest{
		ID:          e.ID,
		ServiceID:   e.ServicoID,
		RequesterID: e.FuncionarioID,
		Reason:      e.Motivo,
		Status:      e.Status,
		CreatedAt:   e.Data,
		ResolvedBy:  e.AprovadoPor,
		ResolvedAt:  e.DataAprovacao,
	}
}

// DeletionFilter restringe a listagem de solicitações
type DeletionFilter struct {
	Status      string
	RequesterID string
}

// DeletionCounts agrega solicitações por status
type DeletionCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Add soma n solicitações no status informado
func (c *DeletionCounts) Add(status string, n int64) {
	c.Total += n
	switch status {
	case RequestPending:
		c.Pending += n
	case RequestApproved:
		c.Approved += n
	case RequestRejected:
		c.Rejected += n
	}
}

// EmployeeDeletionStats são as contagens de um solicitante
type EmployeeDeletionStats struct {
	EmployeeID string `json:"employeeId"`
	Nome       string `json:"nome"`
	Email      string `json:"email"`
	DeletionCounts
}

// DeletionStats é o resultado das estatísticas de exclusão
type DeletionStats struct {
	Period     string                  `json:"period"`
	Since      *time.Time              `json:"since,omitempty"`
	Totals     DeletionCounts          `json:"totals"`
	ByEmployee []EmployeeDeletionStats `json:"byEmployee"`
}
