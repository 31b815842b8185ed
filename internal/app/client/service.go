package client

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	favoriteServices = 5
	spendingMonths   = 12
)

// Service expõe o cadastro de clientes, mantido a partir dos serviços
type Service struct {
	repo   repository.ClientRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo repository.ClientRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

type ListResult struct {
	Clientes   []*model.ClientSummary `json:"clientes"`
	Pagination model.Pagination       `json:"pagination"`
}

// UpdateInput é o corpo de PUT /clientes/:id
type UpdateInput struct {
	Nome     *string `json:"nome"`
	Telefone *string `json:"telefone"`
}

func (s *Service) List(ctx context.Context, search string, page model.Page) (*ListResult, error) {
	clients, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		s.logger.Error("falha ao listar clientes", zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}
	if clients == nil {
		clients = []*model.ClientSummary{}
	}
	return &ListResult{Clientes: clients, Pagination: model.NewPagination(page, total)}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.ClientSummary, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return client, nil
}

// Services lista o histórico do cliente, mais recente primeiro
func (s *Service) Services(ctx context.Context, id string) ([]*model.ServiceRecord, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Services(ctx, client.Telefone)
	if err != nil {
		s.logger.Error("falha ao buscar serviços do cliente", zap.String("cliente_id", id), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}
	return records, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Client, error) {
	problems := map[string]string{}
	var nome, telefone *string
	if in.Nome != nil {
		v := strings.TrimSpace(*in.Nome)
		if v == "" {
			problems["nome"] = "não pode ser vazio"
		}
		nome = &v
	}
	if in.Telefone != nil {
		v := strings.TrimSpace(*in.Telefone)
		if v == "" {
			problems["telefone"] = "não pode ser vazio"
		}
		telefone = &v
	}
	if len(problems) > 0 {
		return nil, apperrors.BadRequest("Dados do cliente inválidos", nil).WithDetails(problems)
	}
	if nome == nil && telefone == nil {
		return nil, apperrors.BadRequest("Nenhum campo para atualizar", nil)
	}

	client, err := s.repo.Update(ctx, id, nome, telefone)
	if err != nil {
		if errors.Is(err, repository.ErrPhoneInUse) {
			return nil, apperrors.Conflict("Telefone já cadastrado para outro cliente", err)
		}
		return nil, s.lookupError(id, err)
	}

	s.logger.Info("cliente atualizado", zap.String("cliente_id", id))
	return client, nil
}

// Stats resume o histórico de serviços finalizados do cliente
func (s *Service) Stats(ctx context.Context, id string) (*model.ClientStats, error) {
	summary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Services(ctx, summary.Telefone)
	if err != nil {
		s.logger.Error("falha ao buscar serviços do cliente", zap.String("cliente_id", id), zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}

	return buildStats(summary.Client, records, s.now().UTC()), nil
}

func buildStats(client model.Client, records []*model.ServiceRecord, now time.Time) *model.ClientStats {
	stats := &model.ClientStats{
		Cliente:           client,
		ValorTotalGasto:   decimal.Zero,
		TicketMedio:       decimal.Zero,
		ServicosFavoritos: []model.ServiceCount{},
		GastoMensal:       []model.MonthlyValue{},
	}

	byType := map[string]*model.ServiceCount{}
	byMonth := map[string]*model.MonthlyValue{}
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(spendingMonths - 1), 0)

	for _, r := range records {
		data := r.Data.UTC()
		if stats.PrimeiraVisita == nil || data.Before(*stats.PrimeiraVisita) {
			first := data
			stats.PrimeiraVisita = &first
		}
		if stats.UltimaVisita == nil || data.After(*stats.UltimaVisita) {
			last := data
			stats.UltimaVisita = &last
		}

		if r.Status != model.StatusFinished {
			continue
		}
		stats.TotalServicos++
		stats.ValorTotalGasto = stats.ValorTotalGasto.Add(r.Valor)

		count, ok := byType[r.Servico]
		if !ok {
			count = &model.ServiceCount{Servico: r.Servico, Valor: decimal.Zero}
			byType[r.Servico] = count
		}
		count.Total++
		count.Valor = count.Valor.Add(r.Valor)

		if data.Before(windowStart) {
			continue
		}
		key := data.Format("2006-01")
		month, ok := byMonth[key]
		if !ok {
			month = &model.MonthlyValue{Mes: key, Receita: decimal.Zero}
			byMonth[key] = month
		}
		month.Total++
		month.Receita = month.Receita.Add(r.Valor)
	}

	if stats.TotalServicos > 0 {
		stats.TicketMedio = stats.ValorTotalGasto.Div(decimal.NewFromInt(stats.TotalServicos)).Round(2)
	}

	for _, c := range byType {
		stats.ServicosFavoritos = append(stats.ServicosFavoritos, *c)
	}
	sort.Slice(stats.ServicosFavoritos, func(i, j int) bool {
		a, b := stats.ServicosFavoritos[i], stats.ServicosFavoritos[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if !a.Valor.Equal(b.Valor) {
			return a.Valor.GreaterThan(b.Valor)
		}
		return a.Servico < b.Servico
	})
	if len(stats.ServicosFavoritos) > favoriteServices {
		stats.ServicosFavoritos = stats.ServicosFavoritos[:favoriteServices]
	}

	for _, m := range byMonth {
		stats.GastoMensal = append(stats.GastoMensal, *m)
	}
	sort.Slice(stats.GastoMensal, func(i, j int) bool {
		return stats.GastoMensal[i].Mes > stats.GastoMensal[j].Mes
	})

	return stats
}

func (s *Service) lookupError(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Cliente não encontrado", err)
	}
	s.logger.Error("falha ao acessar cliente", zap.String("cliente_id", id), zap.Error(err))
	return apperrors.InternalServer("", err)
}
