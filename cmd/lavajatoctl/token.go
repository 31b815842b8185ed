package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/diillson/lavajato-api/internal/adapter/database"
	"github.com/diillson/lavajato-api/pkg/security"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite um token de acesso para um usuário existente",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email é obrigatório")
			}

			if os.Getenv("JWT_SECRET") == "" && os.Getenv("LJ_AUTH_JWTSECRET") == "" {
				fmt.Fprintf(os.Stderr, "%s Segredo JWT vindo do config.yaml ou temporário; o token pode não valer no servidor\n", warnMark)
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			ctx := context.Background()
			db, err := e.openDatabase(ctx, true)
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := database.NewUserRepository(db.DB(), e.logger).GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("usuário %s: %w", email, err)
			}

			km, err := security.NewKeyManager(e.cfg.Auth.JWTSecret, e.logger)
			if err != nil {
				return err
			}

			if ttl <= 0 {
				ttl = e.cfg.Auth.TokenExpiration
			}
			token, err := km.GenerateToken(user.ID, user.Email, user.Role, ttl)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email do usuário")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Validade do token (padrão: auth.tokenExpiration)")
	return cmd
}
