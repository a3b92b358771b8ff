// Package tool declares the capabilities the completion service may invoke
// mid-turn. Dispatch is keyed on the closed domain.ToolName enum; tools are
// constructed per turn because their descriptions and fallbacks are
// personalized with the user's country.
package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/finpal/finpal-go/internal/domain"
)

// ErrUnknownTool is returned when dispatch is attempted for an unregistered
// tool name.
var ErrUnknownTool = errors.New("unknown tool")

type Tool interface {
	Spec() domain.ToolSpec
	// Execute runs the tool with the model-supplied arguments and returns a
	// JSON-shaped result that is fed back into the model's context.
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry stores tool handlers keyed by their declared names.
type Registry struct {
	mu    sync.RWMutex
	tools map[domain.ToolName]Tool
	order []domain.ToolName
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[domain.ToolName]Tool),
	}
}

// Register adds a tool. Names outside the closed enum are rejected so a typo
// in a declaration cannot silently create an undispatchable capability.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool must not be nil")
	}
	name := t.Spec().Name
	if !name.Known() {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
	return nil
}

// Specs returns the declarations in registration order.
func (r *Registry) Specs() []domain.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]domain.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Execute dispatches to the tool registered under name.
func (r *Registry) Execute(ctx context.Context, name domain.ToolName, args map[string]any) (map[string]any, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Execute(ctx, args)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
