// Package orchestrator drives one chat turn end to end: precondition
// validation, system-prompt construction, tool registration, and the
// streamed completion with inline tool dispatch.
package orchestrator

import (
	"context"

	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/internal/prompt"
	"github.com/finpal/finpal-go/internal/service/ai"
	"github.com/finpal/finpal-go/internal/tool"
	"github.com/finpal/finpal-go/internal/util"
	"github.com/finpal/finpal-go/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TurnStreamer is the slice of the model manager a turn needs.
type TurnStreamer interface {
	StreamTurn(ctx context.Context, req ai.StreamRequest, emit ai.EmitFunc) (*ai.GenerateMetadata, error)
}

type Orchestrator struct {
	prompts  *prompt.PromptBuilder
	models   TurnStreamer
	toolDeps tool.Deps
	logger   *zap.Logger
}

func New(prompts *prompt.PromptBuilder, models TurnStreamer, toolDeps tool.Deps, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		prompts:  prompts,
		models:   models,
		toolDeps: toolDeps,
		logger:   logger,
	}
}

// Run executes one chat turn. A missing profile fails fast with a validation
// error before the completion service is ever contacted. Otherwise the
// returned channel carries the turn's events in order and is closed after
// exactly one terminal event (finish or error); consumer cancellation is the
// context.
func (o *Orchestrator) Run(ctx context.Context, req domain.TurnRequest) (<-chan domain.StreamEvent, error) {
	if req.Profile == nil {
		return nil, errors.NewValidationError(
			"User profile is required. Please complete onboarding first.",
			"userProfile", nil,
		)
	}

	events := make(chan domain.StreamEvent, 16)
	go o.run(ctx, req, events)
	return events, nil
}

func (o *Orchestrator) run(ctx context.Context, req domain.TurnRequest, events chan<- domain.StreamEvent) {
	defer close(events)

	emit := func(event domain.StreamEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}

	system, err := o.prompts.BuildSystemPrompt(req.Profile)
	if err != nil {
		o.logger.Error("Failed to build system prompt", zap.Error(err))
		emit(domain.ErrorEvent(errorKind(err), err.Error()))
		return
	}

	registry, err := tool.NewTurnRegistry(req.Profile, o.toolDeps)
	if err != nil {
		o.logger.Error("Failed to build tool registry", zap.Error(err))
		emit(domain.ErrorEvent(errorKind(err), err.Error()))
		return
	}

	meta, err := o.models.StreamTurn(ctx, ai.StreamRequest{
		System:   system,
		Messages: clampMessages(req.Messages),
		Tools:    registry,
		MaxSteps: constants.ChatConfig.MaxSteps,
	}, ai.EmitFunc(emit))
	if err != nil {
		o.logger.Error("Chat turn failed", zap.Error(err))
		emit(domain.ErrorEvent(errorKind(err), err.Error()))
		return
	}

	messageID := uuid.NewString()
	o.logger.Info("Chat turn completed",
		zap.String("message_id", messageID),
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
		zap.Bool("used_fallback", meta.UsedFallback),
	)
	emit(domain.FinishEvent(messageID))
}

func errorKind(err error) string {
	return errors.CodeOf(err)
}

// clampMessages caps each message at the provider input limit so one oversized
// paste cannot blow the context window.
func clampMessages(messages []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(messages))
	copy(out, messages)
	for i := range out {
		out[i].Content = util.TruncateRunes(out[i].Content, constants.InputLimits.MaxMessageLength)
	}
	return out
}
