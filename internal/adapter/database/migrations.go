package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migration representa uma migração de banco de dados
type Migration struct {
	ID        uint  `gorm:"primaryKey"`
	Version   int64 `gorm:"uniqueIndex"`
	Name      string
	AppliedAt time.Time
}

// TableName define o nome da tabela de controle
func (Migration) TableName() string {
	return "schema_migrations"
}

// MigrationManager gerencia migrações de banco de dados
type MigrationManager struct {
	db        *gorm.DB
	logger    *zap.Logger
	directory string
}

// NewMigrationManager cria um novo gerenciador de migrações
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, directory string) *MigrationManager {
	return &MigrationManager{
		db:        db,
		logger:    logger,
		directory: directory,
	}
}

// Initialize inicializa a tabela de migrações
func (m *MigrationManager) Initialize(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("falha ao criar tabela de migrações: %w", err)
	}
	return nil
}

// MigrationStatus descreve um arquivo de migração e se já foi aplicado
type MigrationStatus struct {
	Version   int64
	Name      string
	AppliedAt *time.Time
}

// Status lista os arquivos de migração na ordem de versão
func (m *MigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	files, err := m.findMigrationFiles()
	if err != nil {
		return nil, fmt.Errorf("falha ao listar arquivos de migração: %w", err)
	}

	status := make([]MigrationStatus, 0, len(files))
	for _, file := range files {
		st := MigrationStatus{Version: file.Version, Name: file.Name}
		if mig, ok := applied[file.Version]; ok {
			at := mig.AppliedAt
			st.AppliedAt = &at
		}
		status = append(status, st)
	}
	return status, nil
}

// ApplyMigrations aplica todas as migrações pendentes, cada uma em sua transação
func (m *MigrationManager) ApplyMigrations(ctx context.Context) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	files, err := m.findMigrationFiles()
	if err != nil {
		return fmt.Errorf("falha ao listar arquivos de migração: %w", err)
	}
	if len(files) == 0 {
		m.logger.Info("Nenhuma migração SQL encontrada", zap.String("dir", m.directory))
		return nil
	}

	for _, file := range files {
		if _, ok := applied[file.Version]; ok {
			m.logger.Debug("Migração já aplicada", zap.Int64("version", file.Version), zap.String("name", file.Name))
			continue
		}

		m.logger.Info("Aplicando migração", zap.Int64("version", file.Version), zap.String("name", file.Name))

		content, err := os.ReadFile(file.Path)
		if err != nil {
			return fmt.Errorf("falha ao ler arquivo de migração: %w", err)
		}

		err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, sqlCmd := range splitSQLCommands(string(content)) {
				if isCommentOnly(sqlCmd) {
					continue
				}
				if err := tx.Exec(sqlCmd).Error; err != nil {
					return fmt.Errorf("falha ao executar migração %d: %w", file.Version, err)
				}
			}

			return tx.Create(&Migration{
				Version:   file.Version,
				Name:      file.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return err
		}

		m.logger.Info("Migração aplicada com sucesso", zap.Int64("version", file.Version), zap.String("name", file.Name))
	}

	return nil
}

func (m *MigrationManager) applied(ctx context.Context) (map[int64]Migration, error) {
	if err := m.Initialize(ctx); err != nil {
		return nil, err
	}

	var rows []Migration
	if err := m.db.WithContext(ctx).Order("version").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar migrações aplicadas: %w", err)
	}

	applied := make(map[int64]Migration, len(rows))
	for _, row := range rows {
		applied[row.Version] = row
	}
	return applied, nil
}

// isCommentOnly indica se o comando só contém comentários de linha ou espaços
func isCommentOnly(cmd string) bool {
	for _, line := range strings.Split(cmd, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == ";" || strings.HasPrefix(line, "--") {
			continue
		}
		return false
	}
	return true
}

// Função auxiliar para dividir o SQL em comandos individuais
func splitSQLCommands(sql string) []string {
	// Dividir por ponto e vírgula, mas ignorar ponto e vírgula dentro de strings ou comentários
	var commands []string
	var currentCommand strings.Builder
	inString := false
	inLineComment := false
	inBlockComment := false

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		// Tratamento de comentários de linha
		if !inString && !inBlockComment && i < len(sql)-1 && ch == '-' && sql[i+1] == '-' {
			inLineComment = true
			currentCommand.WriteByte(ch)
			continue
		}

		// Fim de comentário de linha
		if inLineComment && ch == '\n' {
			inLineComment = false
			currentCommand.WriteByte(ch)
			continue
		}

		// Tratamento de comentários de bloco
		if !inString && !inLineComment && i < len(sql)-1 && ch == '/' && sql[i+1] == '*' {
			inBlockComment = true
			currentCommand.WriteByte(ch)
			continue
		}

		// Fim de comentário de bloco
		if inBlockComment && i < len(sql)-1 && ch == '*' && sql[i+1] == '/' {
			inBlockComment = false
			currentCommand.WriteString("*/")
			i++ // Pular o próximo caractere
			continue
		}

		// Tratamento de strings
		if !inLineComment && !inBlockComment && ch == '\'' {
			inString = !inString
		}

		// Identificar comandos separados por ponto e vírgula
		if !inString && !inLineComment && !inBlockComment && ch == ';' {
			currentCommand.WriteByte(ch)
			commands = append(commands, currentCommand.String())
			currentCommand.Reset()
			continue
		}

		// Adicionar caractere ao comando atual
		currentCommand.WriteByte(ch)
	}

	// Adicionar o último comando se não estiver vazio
	lastCommand := strings.TrimSpace(currentCommand.String())
	if lastCommand != "" {
		commands = append(commands, lastCommand)
	}

	return commands
}

// MigrationFile representa um arquivo de migração
type MigrationFile struct {
	Version int64
	Name    string
	Path    string
}

// findMigrationFiles encontra todos os arquivos de migração .sql
func (m *MigrationManager) findMigrationFiles() ([]MigrationFile, error) {
	var files []MigrationFile

	if m.directory == "" {
		return nil, nil
	}
	if _, err := os.Stat(m.directory); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	err := filepath.Walk(m.directory, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(info.Name(), ".sql") {
			return nil
		}

		// Extrair versão e nome do arquivo (formato: YYYYMMDDHHMMSS_name.sql)
		parts := strings.SplitN(info.Name(), "_", 2)
		if len(parts) != 2 {
			m.logger.Warn("Formato de arquivo de migração inválido", zap.String("file", info.Name()))
			return nil
		}

		version, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			m.logger.Warn("Versão de migração inválida", zap.String("file", info.Name()))
			return nil
		}

		name := strings.TrimSuffix(parts[1], ".sql")

		files = append(files, MigrationFile{
			Version: version,
			Name:    name,
			Path:    path,
		})

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Version < files[j].Version
	})

	return files, nil
}

// CreateMigration cria um novo arquivo de migração
func (m *MigrationManager) CreateMigration(name string) (string, error) {
	// Sanitizar o nome
	name = strings.ReplaceAll(strings.ToLower(name), " ", "_")

	// Gerar timestamp para versão
	timestamp := time.Now().Format("20060102150405")

	// Criar o diretório se não existir
	if err := os.MkdirAll(m.directory, 0755); err != nil {
		return "", fmt.Errorf("falha ao criar diretório: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.sql", timestamp, name)
	path := filepath.Join(m.directory, filename)

	header := fmt.Sprintf("-- %s\n-- Comandos separados por ponto e vírgula, executados em uma transação.\n", name)
	if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
		return "", fmt.Errorf("falha ao criar arquivo: %w", err)
	}

	return path, nil
}
