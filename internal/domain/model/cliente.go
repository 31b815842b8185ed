package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client é um cliente identificado pelo telefone
type Client struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Nome      string    `gorm:"not null;size:120" json:"nome"`
	Telefone  string    `gorm:"not null;size:30;uniqueIndex" json:"telefone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName define o nome da tabela
func (Client) TableName() string {
	return "clientes"
}

// BeforeCreate gera o id quando ausente
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ClientSummary acrescenta totais de serviços finalizados
type ClientSummary struct {
	Client
	TotalServicos   int64           `json:"totalServicos"`
	ValorTotalGasto decimal.Decimal `json:"valorTotalGasto"`
}

// ServiceCount é a contagem por tipo de serviço
type ServiceCount struct {
	Servico string          `json:"servico"`
	Total   int64           `json:"total"`
	Valor   decimal.Decimal `json:"valor"`
}

// MonthlyValue é um ponto de série mensal (YYYY-MM)
type MonthlyValue struct {
	Mes     string          `json:"mes"`
	Total   int64           `json:"total"`
	Receita decimal.Decimal `json:"receita"`
}

// ClientStats reúne o histórico de um cliente
type ClientStats struct {
	Cliente           Client          `json:"cliente"`
	TotalServicos     int64           `json:"totalServicos"`
	ValorTotalGasto   decimal.Decimal `json:"valorTotalGasto"`
	TicketMedio       decimal.Decimal `json:"ticketMedio"`
	PrimeiraVisita    *time.Time      `json:"primeiraVisita"`
	UltimaVisita      *time.Time      `json:"ultimaVisita"`
	ServicosFavoritos []ServiceCount  `json:"servicosFavoritos"`
	GastoMensal       []MonthlyValue  `json:"gastoMensal"`
}
