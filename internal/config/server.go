package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/edabot/pkg/log"
)

type ServerConfig struct {
	ListenAddr string `env:"HTTP_LISTEN_ADDR" envDefault:":5002"`
}

func NewServerConfig(ctx context.Context) *ServerConfig {
	c := &ServerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Server config")
	}
	return c
}
