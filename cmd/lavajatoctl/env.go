package main

import (
	"context"
	"fmt"

	"github.com/diillson/lavajato-api/internal/adapter/database"
	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/diillson/lavajato-api/pkg/logging"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	configDir string
	verbose   bool
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

// env é o que os comandos precisam do ambiente da API
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnv() (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	logCfg.Format = "console"
	if !verbose {
		logCfg.Level = "error"
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

// openDatabase conecta sem aplicar migrações quando skip é verdadeiro
func (e *env) openDatabase(ctx context.Context, skipMigrations bool) (*database.Database, error) {
	dbCfg := e.cfg.Database
	dbCfg.SkipMigrations = skipMigrations
	db, err := database.NewDatabase(ctx, dbCfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}
	return db, nil
}
