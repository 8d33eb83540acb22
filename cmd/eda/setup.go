package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/edabot/internal/config"
	"github.com/sandevgo/edabot/internal/providers/llm"
	"github.com/sandevgo/edabot/internal/providers/rag"
	"github.com/sandevgo/edabot/internal/service/chat"
	"github.com/sandevgo/edabot/internal/service/prompt"
	"github.com/sandevgo/edabot/internal/service/retrieval"
	"github.com/sandevgo/edabot/internal/service/session"
	"github.com/sandevgo/edabot/internal/storage/sqlite"
	"github.com/sandevgo/edabot/internal/transport/api"
	"github.com/sandevgo/edabot/internal/transport/telegram"
	"github.com/sandevgo/edabot/pkg/log"
	"github.com/sandevgo/edabot/pkg/retry"
	"github.com/sandevgo/edabot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	chatCfg := config.NewChatConfig(ctx)
	geminiCfg := config.NewGeminiConfig(ctx)

	// 2. Storage
	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	passages := sqlite.NewPassagesRepo(db)

	// 3. Providers
	generator := llm.NewGemini(geminiCfg)
	embedder := rag.NewEmbedder(geminiCfg)

	// 4. Retrieval
	retriever := retrieval.NewRetriever(embedder, passages, chatCfg.RetrievalTopK)

	// 5. Sessions
	// Idle conversations are discarded after the TTL; the janitor sweeps
	// the ones nobody touches again.
	sessions := session.NewStore(chatCfg.SessionTTL)
	services = append(services, session.NewJanitor(sessions, chatCfg.SweepInterval))

	// 6. Conversation engine
	orchestrator := chat.NewOrchestrator(
		sessions,
		retriever,
		prompt.NewPolicy(appCfg),
		prompt.NewAssembler(chatCfg.MaxPromptTokens, appCfg.ContextWindowSize),
		generator,
		chat.NewResponseCache(chatCfg.CacheSize),
		retry.NewDefaultRetrier(),
	)

	// 7. Transports
	transports, err := initTransports(ctx, appCfg, orchestrator)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	return sqlite.NewDB(ctx, cfg.GetIndexPath())
}

func initTransports(ctx context.Context, cfg *config.AppConfig, orchestrator *chat.Orchestrator) ([]srv.Service, error) {
	var services []srv.Service

	// HTTP API for the messaging gateway
	if cfg.IsHTTPSelected() {
		srvCfg := config.NewServerConfig(ctx)
		services = append(services, api.NewServer(srvCfg, orchestrator))
	}

	// Telegram Bot
	if cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, orchestrator)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
