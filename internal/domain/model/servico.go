package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status de um serviço
const (
	StatusInProgress = "em_andamento"
	StatusFinished   = "finalizado"
)

// Marcador de exclusão no serviço
const (
	ApprovalApproved = "aprovada"
	ApprovalRejected = "rejeitada"
)

// NormalizeStatus aceita os nomes antigos (concluido, pendente) e devolve
// o status canônico
func NormalizeStatus(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusInProgress, "pendente":
		return StatusInProgress, true
	case StatusFinished, "concluido":
		return StatusFinished, true
	}
	return "", false
}

// ServiceRecord é uma lavagem registrada
type ServiceRecord struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	Carro             string          `gorm:"not null;size:120" json:"carro"`
	Placa             string          `gorm:"not null;size:20" json:"placa"`
	NomeCliente       string          `gorm:"column:nome_cliente;not null;size:120" json:"nomeCliente"`
	Telefone          string          `gorm:"size:30;index" json:"telefone"`
	Servico           string          `gorm:"not null;size:120" json:"servico"`
	Valor             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"valor"`
	Status            string          `gorm:"not null;default:em_andamento;size:20;index" json:"status"`
	FuncionarioID     string          `gorm:"column:funcionario_id;size:36;index" json:"funcionarioId"`
	AprovacaoExclusao *string         `gorm:"column:aprovacao_exclusao;size:20" json:"aprovacaoExclusao"`
	Data              time.Time       `gorm:"column:data;index" json:"data"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`

	// preenchido por junção com users
	FuncionarioNome string `gorm:"column:funcionario_nome;->;-:migration" json:"funcionarioNome,omitempty"`
}

// TableName define o nome da tabela
func (ServiceRecord) TableName() string {
	return "servicos"
}

// BeforeCreate gera id e data quando ausentes
func (s *ServiceRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Data.IsZero() {
		s.Data = time.Now()
	}
	if s.Status == "" {
		s.Status = StatusInProgress
	}
	return nil
}

// OwnedBy verifica se o serviço pertence ao usuário
func (s *ServiceRecord) OwnedBy(userID string) bool {
	return s != nil && s.FuncionarioID != "" && s.FuncionarioID == userID
}

// ServiceFilter restringe a listagem de serviços
type ServiceFilter struct {
	FuncionarioID string
	From          *time.Time
	To            *time.Time // exclusivo
}
