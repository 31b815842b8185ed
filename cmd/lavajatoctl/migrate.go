package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Gerencia as migrações do banco de dados",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Cria as tabelas e aplica as migrações pendentes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			db, err := e.openDatabase(context.Background(), false)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Printf("%s Migrações aplicadas\n", okMark)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Lista as migrações e quando foram aplicadas",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			migrations, err := db.Migrations(ctx)
			if err != nil {
				return err
			}
			if len(migrations) == 0 {
				fmt.Println("Nenhuma migração encontrada em", e.cfg.Database.MigrationDir)
				return nil
			}

			for _, m := range migrations {
				state := color.New(color.FgYellow).Sprint("PENDENTE ")
				applied := ""
				if m.AppliedAt != nil {
					state = color.New(color.FgGreen).Sprint("APLICADA ")
					applied = m.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Printf("%s %d  %-40s %s\n", state, m.Version, m.Name, applied)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create NOME",
		Short: "Cria um arquivo de migração vazio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("nome da migração é obrigatório")
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			db, err := e.openDatabase(context.Background(), true)
			if err != nil {
				return err
			}
			defer db.Close()

			path, err := db.CreateMigration(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s Migração criada: %s\n", okMark, path)
			return nil
		},
	})

	return cmd
}
