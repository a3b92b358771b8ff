package ai

import (
	"context"

	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/internal/tool"
)

// StreamRequest is one fully-assembled chat turn: system instruction, the
// conversation in send order, the turn's tool registry, and the step bound.
type StreamRequest struct {
	System   string
	Messages []domain.ChatMessage
	Tools    *tool.Registry
	MaxSteps int
}

// EmitFunc receives stream events as the provider produces them. Providers
// emit text-delta, tool-call and tool-result events; terminal events are the
// caller's responsibility.
type EmitFunc func(domain.StreamEvent)

// ChatProvider runs one streamed completion turn, dispatching tool calls
// sequentially through the registry and feeding results back to the model
// until it answers in text or the step bound forces a final response.
type ChatProvider interface {
	Name() string
	Model() string
	StreamTurn(ctx context.Context, req StreamRequest, emit EmitFunc) error
	Ping(ctx context.Context) bool
}

// GenerateMetadata records which provider/model served a turn.
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}
