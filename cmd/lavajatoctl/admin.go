package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diillson/lavajato-api/internal/adapter/database"
	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/domain/repository"
	"github.com/diillson/lavajato-api/pkg/security"
	"github.com/spf13/cobra"
)

func createAdminCmd() *cobra.Command {
	var email, nome, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Cria um administrador ou promove e redefine a senha de um existente",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return errors.New("--email e --password são obrigatórios")
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			if len(password) < e.cfg.Auth.PasswordMinLen {
				return fmt.Errorf("a senha precisa de pelo menos %d caracteres", e.cfg.Auth.PasswordMinLen)
			}

			ctx := context.Background()
			db, err := e.openDatabase(ctx, false)
			if err != nil {
				return err
			}
			defer db.Close()

			hash, err := security.HashPassword(password, e.cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}

			users := database.NewUserRepository(db.DB(), e.logger)

			existing, err := users.GetByEmail(ctx, email)
			switch {
			case err == nil:
				if err := users.UpdatePassword(ctx, existing.ID, hash); err != nil {
					return err
				}
				if existing.Role != model.RoleAdmin {
					if _, err := users.Update(ctx, existing.ID, map[string]interface{}{"role": model.RoleAdmin}); err != nil {
						return err
					}
				}
				fmt.Printf("%s Usuário %s atualizado como administrador (id %s)\n", warnMark, email, existing.ID)
				return nil
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}

			if nome == "" {
				nome = strings.SplitN(email, "@", 2)[0]
			}
			admin := &model.UserEntity{
				Email:        email,
				Nome:         nome,
				Role:         model.RoleAdmin,
				PasswordHash: hash,
			}
			if err := users.Create(ctx, admin); err != nil {
				return err
			}

			fmt.Printf("%s Administrador %s criado (id %s)\n", okMark, email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email do administrador")
	cmd.Flags().StringVar(&nome, "nome", "", "Nome exibido")
	cmd.Flags().StringVar(&password, "password", "", "Senha")
	return cmd
}
