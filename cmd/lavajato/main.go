package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/diillson/lavajato-api/internal/app"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/diillson/lavajato-api/pkg/logging"
	"github.com/diillson/lavajato-api/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

var tlsConfig = &tls.Config{
	MinVersion: tls.VersionTLS13,
	CipherSuites: []uint16{
		tls.TLS_AES_128_GCM_SHA256,
		tls.TLS_AES_256_GCM_SHA384,
		tls.TLS_CHACHA20_POLY1305_SHA256,
	},
}

// setupServer monta o servidor HTTP ou HTTPS conforme a configuração
func setupServer(router *gin.Engine, cfg *config.Config, logger *zap.Logger) *http.Server {
	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	env := os.Getenv("ENV")
	if env == "development" || !cfg.Server.TLS {
		logger.Info("Iniciando em modo HTTP",
			zap.Bool("tls_disabled", !cfg.Server.TLS),
			zap.String("env", env),
			zap.Int("port", cfg.Server.Port))
		return server
	}

	server.Addr = ":443"

	if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
		if _, err := os.Stat(cfg.Server.CertFile); err != nil {
			logger.Fatal("Arquivo de certificado não encontrado", zap.String("certFile", cfg.Server.CertFile))
		}
		if _, err := os.Stat(cfg.Server.KeyFile); err != nil {
			logger.Fatal("Arquivo de chave privada não encontrado", zap.String("keyFile", cfg.Server.KeyFile))
		}

		logger.Info("Usando certificados TLS fornecidos",
			zap.String("certFile", cfg.Server.CertFile),
			zap.String("keyFile", cfg.Server.KeyFile))

		server.TLSConfig = tlsConfig.Clone()
		go serveHTTP(&http.Server{Addr: ":80", Handler: http.HandlerFunc(redirectHTTPS)}, logger)
		return server
	}

	domains := cfg.Server.Domains
	if fromEnv := os.Getenv("SERVER_DOMAINS"); fromEnv != "" {
		domains = strings.Split(fromEnv, ",")
	}

	valid := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d != "" && d != "localhost" && d != "127.0.0.1" {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		logger.Warn("Nenhum domínio válido para Let's Encrypt, usando HTTP", zap.Strings("domains", domains))
		server.Addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		return server
	}

	certManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(valid...),
		Cache:      autocert.DirCache("./certs"),
		Email:      os.Getenv("LETSENCRYPT_EMAIL"),
	}

	server.TLSConfig = tlsConfig.Clone()
	server.TLSConfig.GetCertificate = certManager.GetCertificate

	// desafios ACME e redirecionamento para HTTPS
	go serveHTTP(&http.Server{
		Addr:    ":80",
		Handler: certManager.HTTPHandler(http.HandlerFunc(redirectHTTPS)),
	}, logger)

	logger.Info("Let's Encrypt configurado", zap.Strings("domains", valid))
	return server
}

func serveHTTP(server *http.Server, logger *zap.Logger) {
	logger.Info("Iniciando servidor HTTP auxiliar", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Erro no servidor HTTP auxiliar", zap.Error(err))
	}
}

func redirectHTTPS(w http.ResponseWriter, r *http.Request) {
	target := "https://" + r.Host + r.URL.Path
	if len(r.URL.RawQuery) > 0 {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func main() {
	configDir := flag.String("config", "./config", "Diretório do config.yaml")
	flag.Parse()

	// .env é opcional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro ao carregar configuração: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.NewTracerProvider(context.Background(), cfg.Tracing, logger)
		if err != nil {
			logger.Error("Falha ao inicializar tracer", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	ctx, span := otel.Tracer("lavajato.main").Start(context.Background(), "Server Initialization")

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		logger.Fatal("Falha ao inicializar aplicação", zap.Error(err))
	}
	span.End()

	if os.Getenv("ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	application.RegisterRoutes(router)

	server := setupServer(router, cfg, logger)

	go func() {
		var err error
		switch {
		case server.TLSConfig != nil && cfg.Server.CertFile != "":
			logger.Info("Iniciando servidor HTTPS", zap.String("addr", server.Addr))
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		case server.TLSConfig != nil:
			logger.Info("Iniciando servidor HTTPS com Let's Encrypt", zap.String("addr", server.Addr))
			err = server.ListenAndServeTLS("", "")
		default:
			logger.Info("Iniciando servidor HTTP", zap.String("addr", server.Addr))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Erro ao iniciar servidor", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Erro ao encerrar servidor", zap.Error(err))
	}
	if err := application.Close(); err != nil {
		logger.Error("Erro ao liberar recursos", zap.Error(err))
	}

	logger.Info("Servidor encerrado com sucesso")
}
