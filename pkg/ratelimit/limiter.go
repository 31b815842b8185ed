package ratelimit

import (
	"context"
	"errors"
	"time"
)

// LimitConfig configura o comportamento do limitador
type LimitConfig struct {
	Key         string        // Chave única para identificar o limite
	Limit       int           // Número máximo de requisições
	Period      time.Duration // Período de tempo para o limite
	BurstFactor float64       // Fator para permitir rajadas (1.0 = sem rajada)
}

// Limiter decide se mais uma tentativa cabe na janela atual.
// Retorna: permitido, limite, restante, tempo até o reset, erro
type Limiter interface {
	Allow(ctx context.Context, config LimitConfig) (bool, int, int, time.Duration, error)
}

func validate(config *LimitConfig) error {
	if config.Limit <= 0 {
		return errors.New("limite deve ser maior que zero")
	}
	if config.Period < time.Second {
		return errors.New("período deve ser de pelo menos um segundo")
	}
	if config.BurstFactor <= 0 {
		config.BurstFactor = 1.0
	}
	return nil
}

func burstLimit(config LimitConfig) int {
	return int(float64(config.Limit) * config.BurstFactor)
}
