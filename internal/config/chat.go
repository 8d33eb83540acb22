package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/edabot/pkg/log"
)

type ChatConfig struct {
	// Sessions idle longer than this are discarded entirely.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	// How often the background janitor sweeps idle sessions.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// ResponseCache capacity in entries.
	CacheSize int `env:"RESPONSE_CACHE_SIZE" envDefault:"512"`

	// Passages fetched per query.
	RetrievalTopK int `env:"RETRIEVAL_TOP_K" envDefault:"50"`

	// Assembled prompts above this budget get their oldest history
	// trimmed first, then trailing passages.
	MaxPromptTokens int `env:"MAX_PROMPT_TOKENS" envDefault:"6000"`
}

func NewChatConfig(ctx context.Context) *ChatConfig {
	c := &ChatConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Chat config")
	}
	return c
}
