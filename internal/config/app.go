package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/edabot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"EDA_RUNTIME_PATH" envDefault:".edabot"`

	// Transport Flags
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Number of prior turns carried into the prompt
	ContextWindowSize int `env:"CONTEXT_WINDOW_SIZE" envDefault:"30"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetIndexPath() string {
	return filepath.Join(c.RuntimePath, "index.db")
}

func (c AppConfig) GetPolicyPath() string {
	return filepath.Join(c.RuntimePath, "POLICY.md")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}

func (c AppConfig) IsHTTPSelected() bool {
	return c.EnableHTTP
}
