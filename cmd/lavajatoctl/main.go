package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lavajatoctl",
		Short: "Ferramentas de operação da API do Lava-Jato",
		Long: `lavajatoctl reúne as tarefas administrativas da API:
criação do primeiro administrador, emissão de tokens, migrações e
geração do arquivo de configuração.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "Diretório do config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mostrar logs detalhados")

	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(genconfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
