package http

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker implementa endpoints de health check
type HealthChecker struct {
	logger       *zap.Logger
	dependencies []Dependency
	started      time.Time
}

// Pinger é qualquer componente que responde a um ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency representa um componente do qual o sistema depende
type Dependency struct {
	Name     string
	Check    func(context.Context) error
	Critical bool // falha de um componente crítico derruba a prontidão
}

// NewHealthChecker cria um health checker com o banco como dependência
// crítica e o cache como não crítica
func NewHealthChecker(db Pinger, cache Pinger, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		logger:  logger,
		started: time.Now(),
		dependencies: []Dependency{
			{Name: "database", Check: db.Ping, Critical: true},
			{Name: "cache", Check: cache.Ping, Critical: false},
		},
	}
}

// LivenessCheck verifica se o aplicativo está vivo
func (h *HealthChecker) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Lava-Jato API está funcionando",
		"time":    time.Now().UTC(),
	})
}

// ReadinessCheck verifica as dependências em paralelo
func (h *HealthChecker) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, checks := h.runChecks(ctx, false)
	c.JSON(status, gin.H{
		"status": statusLabel(status),
		"time":   time.Now().UTC(),
		"checks": checks,
	})
}

// DetailedHealth acrescenta versão, ambiente e dados de runtime
func (h *HealthChecker) DetailedHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	status, checks := h.runChecks(ctx, true)
	c.JSON(status, gin.H{
		"status":      statusLabel(status),
		"time":        time.Now().UTC(),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"version":     os.Getenv("APP_VERSION"),
		"environment": environment(),
		"checks":      checks,
		"system":      systemInfo(),
	})
}

func (h *HealthChecker) runChecks(ctx context.Context, withErrors bool) (int, map[string]gin.H) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		status = http.StatusOK
		checks = make(map[string]gin.H, len(h.dependencies))
	)

	for _, dep := range h.dependencies {
		wg.Add(1)
		go func(d Dependency) {
			defer wg.Done()

			start := time.Now()
			err := d.Check(ctx)
			result := gin.H{
				"status":   "UP",
				"time":     time.Since(start).String(),
				"critical": d.Critical,
			}
			if err != nil {
				result["status"] = "DOWN"
				if withErrors {
					result["error"] = err.Error()
				}
				h.logger.Error("health check falhou", zap.String("dependency", d.Name), zap.Error(err))
			}

			mu.Lock()
			defer mu.Unlock()
			checks[d.Name] = result
			if err != nil && d.Critical {
				status = http.StatusServiceUnavailable
			}
		}(dep)
	}

	wg.Wait()
	return status, checks
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "UP"
	}
	return "DOWN"
}

func environment() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "development"
	}
	return env
}

func systemInfo() gin.H {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return gin.H{
		"go_version":    runtime.Version(),
		"num_cpu":       runtime.NumCPU(),
		"num_goroutine": runtime.NumGoroutine(),
		"alloc_mb":      float64(m.Alloc) / 1024 / 1024,
		"sys_mb":        float64(m.Sys) / 1024 / 1024,
		"num_gc":        m.NumGC,
	}
}
