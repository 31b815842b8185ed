package model

import "github.com/shopspring/decimal"

// ServiceTotals são as contagens gerais do período
type ServiceTotals struct {
	TotalServicos       int64           `json:"totalServicos"`
	ServicosFinalizados int64           `json:"servicosFinalizados"`
	ServicosAndamento   int64           `json:"servicosAndamento"`
	ReceitaTotal        decimal.Decimal `json:"receitaTotal"`
}

// DailyValue é um ponto do gráfico diário (YYYY-MM-DD)
type DailyValue struct {
	Dia     string          `json:"dia"`
	Total   int64           `json:"total"`
	Receita decimal.Decimal `json:"receita"`
}

// EmployeePerformance resume a produção de um funcionário
type EmployeePerformance struct {
	FuncionarioID string          `json:"funcionarioId"`
	Nome          string          `json:"nome"`
	TotalServicos int64           `json:"totalServicos"`
	ReceitaGerada decimal.Decimal `json:"receitaGerada"`
}

// StatusShare é a fatia de um status no total do dia
type StatusShare struct {
	Status     string  `json:"status"`
	Quantidade int64   `json:"quantidade"`
	Percentual float64 `json:"percentual"`
}

// DashboardCharts agrupa as séries do painel
type DashboardCharts struct {
	ServicesChart []DailyValue   `json:"servicesChart"`
	ServiceTypes  []ServiceCount `json:"serviceTypes"`
}

// DashboardStats é a resposta de /dashboard/stats
type DashboardStats struct {
	Period         string                `json:"period"`
	Stats          ServiceTotals         `json:"stats"`
	Charts         DashboardCharts       `json:"charts"`
	TopEmployees   []EmployeePerformance `json:"topEmployees"`
	RecentServices []*ServiceRecord      `json:"recentServices"`
}
