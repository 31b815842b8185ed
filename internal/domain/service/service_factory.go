package service

import (
	"fmt"

	"github.com/diillson/lavajato-api/internal/app/auth"
	"github.com/diillson/lavajato-api/internal/app/client"
	"github.com/diillson/lavajato-api/internal/app/dashboard"
	"github.com/diillson/lavajato-api/internal/app/deletion"
	"github.com/diillson/lavajato-api/internal/app/servico"
	"github.com/diillson/lavajato-api/internal/app/user"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/pkg/cache"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/diillson/lavajato-api/pkg/security"
	"go.uber.org/zap"
)

// Repositories agrupa os repositórios usados pelos serviços
type Repositories struct {
	Users     repository.UserRepository
	Services  repository.ServiceRepository
	Deletions repository.DeletionRepository
	Clients   repository.ClientRepository
	Dashboard repository.DashboardRepository
}

// Services contém todos os serviços da aplicação
type Services struct {
	KeyManager *security.KeyManager
	Auth       *auth.Service
	Users      *user.Service
	Deletion   *deletion.Service
	Servicos   *servico.Service
	Clients    *client.Service
	Dashboard  *dashboard.Service
}

// NewServices cria todos os serviços necessários
func NewServices(cfg *config.Config, repos Repositories, c cache.Cache, apiMetrics *metrics.APIMetrics, logger *zap.Logger) (*Services, error) {
	keyManager, err := security.NewKeyManager(cfg.Auth.JWTSecret, logger)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar gerenciador de chaves: %w", err)
	}

	dashboardService := dashboard.NewService(repos.Dashboard, c, cfg.Cache.TTL, logger)
	deletionService := deletion.NewService(repos.Deletions, repos.Services, dashboardService, apiMetrics, logger)

	return &Services{
		KeyManager: keyManager,
		Auth:       auth.NewService(keyManager, repos.Users, cfg.Auth, logger),
		Users:      user.NewService(repos.Users, repos.Services, repos.Dashboard, cfg.Auth, logger),
		Deletion:   deletionService,
		Servicos:   servico.NewService(repos.Services, repos.Clients, deletionService, dashboardService, logger),
		Clients:    client.NewService(repos.Clients, logger),
		Dashboard:  dashboardService,
	}, nil
}
