// Package chat coordinates one conversation exchange: session
// resolution, retrieval, prompt assembly, generation and history
// bookkeeping.
package chat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sandevgo/edabot/internal/core"
	"github.com/sandevgo/edabot/internal/service/prompt"
	"github.com/sandevgo/edabot/internal/service/session"
	"github.com/sandevgo/edabot/pkg/log"
	"github.com/sandevgo/edabot/pkg/retry"
	"github.com/sandevgo/edabot/pkg/sanitize"
)

const (
	// Fixed texts for load signals from the generation collaborator.
	// They replace whatever answer text arrived and are recorded as the
	// assistant's turn.
	BusyMessage        = "Sorry, the service is busy right now. Please try again later."
	UnavailableMessage = "The service is currently unavailable. Please try again later."
)

// Reply is the orchestrator's answer for one exchange. SessionID echoes
// the resolved id so first-time callers learn theirs.
type Reply struct {
	SessionID string
	Answer    string
}

type Orchestrator struct {
	sessions  *session.Store
	retriever core.Retriever
	policy    *prompt.Policy
	assembler *prompt.Assembler
	generator core.Generator
	cache     *ResponseCache
	retrier   *retry.Retrier
}

func NewOrchestrator(
	sessions *session.Store,
	retriever core.Retriever,
	policy *prompt.Policy,
	assembler *prompt.Assembler,
	generator core.Generator,
	cache *ResponseCache,
	retrier *retry.Retrier,
) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		retriever: retriever,
		policy:    policy,
		assembler: assembler,
		generator: generator,
		cache:     cache,
		retrier:   retrier,
	}
}

// Handle runs one exchange. An empty sessionID gets a fresh identifier,
// returned in the Reply for the caller to reuse. Pipeline failures come
// back as errors without touching the session history; the transport
// decides how to wrap them (the HTTP layer keeps the legacy behavior of
// answering "Error: <detail>" inside a success envelope).
func (o *Orchestrator) Handle(ctx context.Context, sessionID, userText string) (Reply, error) {
	logger := log.FromCtx(ctx)

	if sessionID == "" {
		sessionID = uuid.NewString()
		logger.Debug().Str("session_id", sessionID).Msg("assigned fresh session id")
	}

	history := o.sessions.GetOrCreate(sessionID)

	passages, err := o.retriever.Search(ctx, userText)
	if err != nil {
		return Reply{SessionID: sessionID}, fmt.Errorf("retrieval failed: %w", err)
	}

	p := o.assembler.Build(o.policy.Text(), history, passages, userText)

	gen, err := o.cache.GetOrCompute(p.Key, func() (core.Generation, error) {
		return o.generate(ctx, p.Messages)
	})
	if err != nil {
		return Reply{SessionID: sessionID}, fmt.Errorf("generation failed: %w", err)
	}

	answer := answerFor(gen)

	o.sessions.Append(sessionID,
		core.Turn{Role: core.RoleUser, Content: userText},
		core.Turn{Role: core.RoleAssistant, Content: answer},
	)

	logger.Info().Str("session_id", sessionID).Int("status", gen.StatusCode).Int("passages", len(passages)).Msg("exchange complete")

	return Reply{SessionID: sessionID, Answer: sanitize.Clean(answer)}, nil
}

// generate calls the collaborator, retrying transport failures only.
// 429/503 arrive as successful Generations and pass straight through.
func (o *Orchestrator) generate(ctx context.Context, messages []core.Turn) (core.Generation, error) {
	if o.retrier == nil {
		return o.generator.Generate(ctx, messages)
	}

	var gen core.Generation
	err := o.retrier.Do(ctx, func() error {
		var genErr error
		gen, genErr = o.generator.Generate(ctx, messages)
		return genErr
	})
	return gen, err
}

func answerFor(gen core.Generation) string {
	switch gen.StatusCode {
	case http.StatusTooManyRequests:
		return BusyMessage
	case http.StatusServiceUnavailable:
		return UnavailableMessage
	default:
		return gen.Answer
	}
}
