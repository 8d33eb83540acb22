// Package telegram is an alternative front door for operators who test
// the assistant without the messaging gateway. Each chat maps to its
// own session.
package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/edabot/internal/config"
	"github.com/sandevgo/edabot/internal/service/chat"
	"github.com/sandevgo/edabot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot           *tele.Bot
	sender        *sender
	conversations *chat.Orchestrator
}

func NewBot(ctx context.Context, cfg *config.TelegramConfig, conversations *chat.Orchestrator) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:           b,
		sender:        newSender(b),
		conversations: conversations,
	}

	// Carry the signal context with its logger into handlers.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	_ = c.Notify(tele.Typing)

	reply, err := b.conversations.Handle(ctx, sessionID, c.Text())
	if err != nil {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("conversation failed")
		// Same fail-soft contract as the HTTP surface.
		return c.Send(fmt.Sprintf("Error: %v", err))
	}

	return b.sender.sendMarkdown(ctx, c.Recipient(), reply.Answer, false)
}
