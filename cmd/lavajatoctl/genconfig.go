package main

import (
	"fmt"
	"os"

	"github.com/diillson/lavajato-api/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# Configuração da API do Lava-Jato
# Qualquer chave pode ser sobrescrita por variável LJ_<SEÇÃO>_<CHAVE>,
# por exemplo LJ_DATABASE_DSN. JWT_SECRET e PORT também são aceitas.
`

func genconfigCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Gera um config.yaml com os valores padrão",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("arquivo %s já existe, use --force para sobrescrever", output)
			}

			cfg := config.Default()
			// o segredo nunca vai para o arquivo
			cfg.Auth.JWTSecret = ""

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("erro ao serializar configuração: %w", err)
			}

			if err := os.WriteFile(output, append([]byte(configHeader), data...), 0o644); err != nil {
				return fmt.Errorf("erro ao escrever arquivo: %w", err)
			}

			fmt.Printf("%s Configuração gerada em %s\n", okMark, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "Arquivo de saída")
	cmd.Flags().BoolVar(&force, "force", false, "Sobrescrever arquivo existente")
	return cmd
}
