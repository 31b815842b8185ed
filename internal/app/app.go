package app

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/diillson/lavajato-api/internal/adapter/database"
	"github.com/diillson/lavajato-api/internal/adapter/http"
	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/service"
	"github.com/diillson/lavajato-api/internal/infra/metrics"
	"github.com/diillson/lavajato-api/internal/infra/middleware"
	"github.com/diillson/lavajato-api/pkg/cache"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/diillson/lavajato-api/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *database.Database
	Services   *service.Services
	Middleware *middleware.Middleware
	Cache      cache.Cache
	APIMetrics *metrics.APIMetrics
	Registry   *prometheus.Registry

	redisClient *redis.Client
	health      *http.HealthChecker
	auth        *http.AuthHandler
	users       *http.UserHandler
	deletions   *http.DeletionHandler
	servicos    *http.ServicoHandler
	clients     *http.ClientHandler
	dashboard   *http.DashboardHandler
}

// NewApp cria uma nova instância da aplicação com todas as dependências injetadas
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	// Registro próprio para que instâncias em testes não colidam
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	apiMetrics := metrics.NewAPIMetrics(registry)

	appCache := cache.New(cfg.Cache, apiMetrics, logger)

	repos := service.Repositories{
		Users:     database.NewUserRepository(db.DB(), logger),
		Services:  database.NewServiceRepository(db.DB(), logger),
		Deletions: database.NewDeletionRepository(db.DB(), logger),
		Clients:   database.NewClientRepository(db.DB(), logger),
		Dashboard: database.NewDashboardRepository(db.DB(), logger),
	}

	services, err := service.NewServices(cfg, repos, appCache, apiMetrics, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	limiter, redisClient := newLimiter(cfg, logger)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Services:    services,
		Middleware:  middleware.NewMiddleware(cfg, logger, services.Auth, limiter, apiMetrics),
		Cache:       appCache,
		APIMetrics:  apiMetrics,
		Registry:    registry,
		redisClient: redisClient,
		health:      http.NewHealthChecker(db, appCache, logger),
		auth:        http.NewAuthHandler(services.Auth, services.Users, logger),
		users:       http.NewUserHandler(services.Users, logger),
		deletions:   http.NewDeletionHandler(services.Deletion, logger),
		servicos:    http.NewServicoHandler(services.Servicos, logger),
		clients:     http.NewClientHandler(services.Clients, logger),
		dashboard:   http.NewDashboardHandler(services.Dashboard, logger),
	}
	return a, nil
}

// newLimiter usa o Redis quando ele é o cache configurado, para que o
// limite de login valha entre réplicas
func newLimiter(cfg *config.Config, logger *zap.Logger) (ratelimit.Limiter, *redis.Client) {
	if cfg.RateLimit.Enabled && cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		client, err := cache.NewRedisClient(cfg.Cache.Redis, logger)
		if err == nil {
			return ratelimit.NewRedisLimiter(client, logger), client
		}
		logger.Warn("rate limit de login usando memória local", zap.Error(err))
	}
	return ratelimit.NewMemoryLimiter(logger), nil
}

// RegisterRoutes registra todas as rotas no router
func (a *App) RegisterRoutes(router *gin.Engine) {
	m := a.Middleware

	router.Use(m.Recovery())
	router.Use(m.RequestID())
	router.Use(m.Logger())
	router.Use(m.CORS())
	router.Use(m.SecurityHeaders())
	router.Use(m.Metrics())
	router.Use(m.Tracing())
	router.Use(m.IgnoreFavicon())

	router.GET("/", http.Index)
	if a.Config.Metrics.Enabled {
		middleware.RegisterMetricsEndpoint(router, a.Config.Metrics.PrometheusPath, a.Registry, a.Logger)
	}

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", m.LoginRateLimit(), a.auth.Login)
		authGroup.GET("/verify", m.Authenticate, a.auth.Verify)
		authGroup.POST("/change-password", m.Authenticate, a.auth.ChangePassword)
		authGroup.POST("/register", m.Authenticate, m.RequireRole(model.RoleAdmin), a.auth.Register)
	}

	admin := m.RequireRole(model.RoleAdmin)

	deletions := api.Group("/deletion-requests", m.Authenticate)
	{
		deletions.POST("", a.deletions.Create)
		deletions.GET("", admin, a.deletions.List)
		deletions.GET("/mine", a.deletions.ListMine)
		deletions.GET("/stats", admin, a.deletions.Stats)
		deletions.GET("/:id", a.deletions.Get)
		deletions.PUT("/:id/decision", admin, a.deletions.Decide)
		deletions.DELETE("/:id", a.deletions.Cancel)
	}

	servicos := api.Group("/servicos", m.Authenticate)
	{
		servicos.GET("", a.servicos.List)
		servicos.POST("", a.servicos.Create)
		servicos.GET("/:id", a.servicos.Get)
		servicos.PUT("/:id", a.servicos.Update)
		servicos.DELETE("/:id", a.servicos.Delete)
	}

	clientes := api.Group("/clientes", m.Authenticate)
	{
		clientes.GET("", a.clients.List)
		clientes.GET("/:id", a.clients.Get)
		clientes.GET("/:id/servicos", a.clients.Services)
		clientes.GET("/:id/stats", a.clients.Stats)
		clientes.PUT("/:id", a.clients.Update)
	}

	dashboard := api.Group("/dashboard", m.Authenticate)
	{
		dashboard.GET("/stats", a.dashboard.Stats)
		dashboard.GET("/revenue-chart", a.dashboard.RevenueChart)
		dashboard.GET("/status-distribution", a.dashboard.StatusDistribution)
	}

	users := api.Group("/users", m.Authenticate, admin)
	{
		users.GET("", a.users.List)
		users.POST("", a.users.Create)
		users.GET("/:id", a.users.Get)
		users.PUT("/:id", a.users.Update)
		users.DELETE("/:id", a.users.Delete)
		users.GET("/:id/stats", a.users.Stats)
	}

	health := api.Group("/health")
	{
		health.GET("", a.health.LivenessCheck)
		health.GET("/readiness", a.health.ReadinessCheck)
		health.GET("/details", m.Authenticate, admin, a.health.DetailedHealth)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(nethttp.StatusNotFound, gin.H{
			"error": "Rota não encontrada",
			"path":  c.Request.URL.Path,
		})
	})
}

// Close libera conexões abertas pela aplicação
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warn("falha ao fechar cliente redis do rate limit", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("falha ao fechar banco de dados: %w", err)
	}
	return nil
}
