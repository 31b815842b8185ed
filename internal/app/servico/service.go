package servico

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diillson/lavajato-api/internal/app/deletion"
	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/pkg/cache"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service gerencia os serviços de lavagem registrados
type Service struct {
	records  repository.ServiceRepository
	clients  repository.ClientRepository
	deletion *deletion.Service
	derived  cache.Invalidator
	logger   *zap.Logger
}

// NewService cria o serviço; derived pode ser nil
func NewService(records repository.ServiceRepository, clients repository.ClientRepository, deletionService *deletion.Service, derived cache.Invalidator, logger *zap.Logger) *Service {
	return &Service{
		records:  records,
		clients:  clients,
		deletion: deletionService,
		derived:  derived,
		logger:   logger,
	}
}

// CreateInput é o corpo de POST /servicos
type CreateInput struct {
	Carro       string           `json:"carro"`
	Placa       string           `json:"placa"`
	NomeCliente string           `json:"nomeCliente"`
	Telefone    string           `json:"telefone"`
	Servico     string           `json:"servico"`
	Valor       *decimal.Decimal `json:"valor"`
	Status      string           `json:"status"`
	Data        *time.Time       `json:"data"`
}

// Validate devolve os campos inválidos, vazio quando tudo está certo
func (in *CreateInput) Validate() map[string]string {
	problems := map[string]string{}
	required := map[string]string{
		"carro":       in.Carro,
		"placa":       in.Placa,
		"nomeCliente": in.NomeCliente,
		"servico":     in.Servico,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			problems[field] = "obrigatório"
		}
	}
	if in.Valor == nil {
		problems["valor"] = "obrigatório"
	} else if in.Valor.IsNegative() {
		problems["valor"] = "deve ser maior ou igual a zero"
	}
	if in.Status != "" {
		if _, ok := model.NormalizeStatus(in.Status); !ok {
			problems["status"] = "use em_andamento ou finalizado"
		}
	}
	return problems
}

// UpdateInput é o corpo de PUT /servicos/:id; campos ausentes ficam como estão
type UpdateInput struct {
	Carro       *string          `json:"carro"`
	Placa       *string          `json:"placa"`
	NomeCliente *string          `json:"nomeCliente"`
	Telefone    *string          `json:"telefone"`
	Servico     *string          `json:"servico"`
	Valor       *decimal.Decimal `json:"valor"`
	Status      *string          `json:"status"`
	Data        *time.Time       `json:"data"`
}

// fields converte a entrada nas colunas a atualizar
func (in *UpdateInput) fields() (map[string]interface{}, map[string]string) {
	fields := map[string]interface{}{}
	problems := map[string]string{}

	text := []struct {
		column string
		field  string
		value  *string
	}{
		{"carro", "carro", in.Carro},
		{"placa", "placa", in.Placa},
		{"nome_cliente", "nomeCliente", in.NomeCliente},
		{"servico", "servico", in.Servico},
	}
	for _, t := range text {
		if t.value == nil {
			continue
		}
		if v := strings.TrimSpace(*t.value); v != "" {
			fields[t.column] = v
		} else {
			problems[t.field] = "não pode ser vazio"
		}
	}

	if in.Telefone != nil {
		fields["telefone"] = strings.TrimSpace(*in.Telefone)
	}
	if in.Valor != nil {
		if in.Valor.IsNegative() {
			problems["valor"] = "deve ser maior ou igual a zero"
		} else {
			fields["valor"] = *in.Valor
		}
	}
	if in.Status != nil {
		if status, ok := model.NormalizeStatus(*in.Status); ok {
			fields["status"] = status
		} else {
			problems["status"] = "use em_andamento ou finalizado"
		}
	}
	if in.Data != nil {
		fields["data"] = in.Data.UTC()
	}
	return fields, problems
}

// ListQuery filtra a listagem. DataFim é inclusiva.
type ListQuery struct {
	FuncionarioID string
	DataInicio    *time.Time
	DataFim       *time.Time
	Page          model.Page
}

type ListResult struct {
	Servicos   []*model.ServiceRecord `json:"servicos"`
	Pagination model.Pagination       `json:"pagination"`
}

// DeleteResult descreve o efeito de DELETE /servicos/:id
type DeleteResult struct {
	Message string                 `json:"message"`
	Deleted bool                   `json:"deleted"`
	Request *model.DeletionRequest `json:"request,omitempty"`
}

// List devolve os serviços visíveis ao usuário; funcionários veem só os seus
func (s *Service) List(ctx context.Context, user *model.User, q ListQuery) (*ListResult, error) {
	filter := model.ServiceFilter{FuncionarioID: q.FuncionarioID}
	if !user.IsAdmin() {
		filter.FuncionarioID = user.ID
	}
	if q.DataInicio != nil {
		from := model.StartOfDay(*q.DataInicio)
		filter.From = &from
	}
	if q.DataFim != nil {
		to := model.StartOfDay(*q.DataFim).AddDate(0, 0, 1)
		filter.To = &to
	}

	records, total, err := s.records.List(ctx, filter, q.Page)
	if err != nil {
		s.logger.Error("falha ao listar serviços", zap.Error(err))
		return nil, apperrors.InternalServer("", err)
	}
	return &ListResult{Servicos: records, Pagination: model.NewPagination(q.Page, total)}, nil
}

// Get devolve o serviço; para funcionários, serviços alheios não existem
func (s *Service) Get(ctx context.Context, user *model.User, id string) (*model.ServiceRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	if !user.IsAdmin() && !record.OwnedBy(user.ID) {
		return nil, apperrors.NotFound("Serviço não encontrado", repository.ErrNotFound)
	}
	return record, nil
}

// Create registra o serviço em nome do usuário e atualiza o cadastro do cliente
func (s *Service) Create(ctx context.Context, user *model.User, in CreateInput) (*model.ServiceRecord, error) {
	if problems := in.Validate(); len(problems) > 0 {
		return nil, apperrors.BadRequest("Dados do serviço inválidos", nil).WithDetails(problems)
	}

	status := model.StatusInProgress
	if in.Status != "" {
		status, _ = model.NormalizeStatus(in.Status)
	}

	record := &model.ServiceRecord{
		Carro:         strings.TrimSpace(in.Carro),
		Placa:         strings.ToUpper(strings.TrimSpace(in.Placa)),
		NomeCliente:   strings.TrimSpace(in.NomeCliente),
		Telefone:      strings.TrimSpace(in.Telefone),
		Servico:       strings.TrimSpace(in.Servico),
		Valor:         *in.Valor,
		Status:        status,
		FuncionarioID: user.ID,
	}
	if in.Data != nil {
		record.Data = in.Data.UTC()
	}

	if err := s.records.Create(ctx, record); err != nil {
		return nil, apperrors.InternalServer("Erro ao registrar serviço", err)
	}
	s.invalidate(ctx)

	if record.Telefone != "" {
		if err := s.clients.Upsert(ctx, record.NomeCliente, record.Telefone); err != nil {
			s.logger.Warn("serviço registrado sem atualizar cliente",
				zap.String("servico_id", record.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("serviço registrado",
		zap.String("servico_id", record.ID),
		zap.String("funcionario_id", user.ID))

	record.FuncionarioNome = user.Nome
	return record, nil
}

// Update altera os campos informados; apenas o dono ou um administrador
func (s *Service) Update(ctx context.Context, user *model.User, id string, in UpdateInput) (*model.ServiceRecord, error) {
	fields, problems := in.fields()
	if len(problems) > 0 {
		return nil, apperrors.BadRequest("Dados do serviço inválidos", nil).WithDetails(problems)
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("Nenhum campo para atualizar", nil)
	}

	current, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	if !user.IsAdmin() && !current.OwnedBy(user.ID) {
		return nil, apperrors.Forbidden("Você só pode alterar os seus próprios serviços", nil)
	}

	updated, err := s.records.Update(ctx, id, fields)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete exclui direto quando o usuário é administrador; para funcionários
// abre uma solicitação de exclusão
func (s *Service) Delete(ctx context.Context, user *model.User, id, reason string) (*DeleteResult, error) {
	if deletion.CanDecide(user) {
		if err := s.deletion.DirectDelete(ctx, user, id); err != nil {
			return nil, err
		}
		return &DeleteResult{Message: "Serviço excluído com sucesso", Deleted: true}, nil
	}

	req, err := s.deletion.RequestDeletion(ctx, user, id, reason)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{
		Message: "Solicitação de exclusão enviada para aprovação",
		Request: req,
	}, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.derived != nil {
		s.derived.Invalidate(ctx)
	}
}

func (s *Service) lookupError(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Serviço não encontrado", err)
	}
	s.logger.Error("falha ao acessar serviço", zap.String("servico_id", id), zap.Error(err))
	return apperrors.InternalServer("", err)
}
