package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/edabot/pkg/log"
)

type GeminiConfig struct {
	APIKey         string  `env:"GEMINI_API_KEY,required,notEmpty"`
	Model          string  `env:"GEMINI_MODEL,notEmpty" envDefault:"gemini-1.5-flash"`
	EmbeddingModel string  `env:"GEMINI_EMBEDDING_MODEL,notEmpty" envDefault:"text-embedding-004"`
	BaseURL        string  `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	Temperature    float64 `env:"GEMINI_TEMPERATURE" envDefault:"0.1"`
}

func NewGeminiConfig(ctx context.Context) *GeminiConfig {
	c := &GeminiConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gemini config")
	}
	return c
}
