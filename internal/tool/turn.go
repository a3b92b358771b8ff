package tool

import (
	"github.com/finpal/finpal-go/internal/domain"
	"go.uber.org/zap"
)

// Deps carries the long-lived services the per-turn tools are built from.
type Deps struct {
	Searcher Searcher
	Cache    ResultCache
	Logger   *zap.Logger
}

// NewTurnRegistry builds the registry for one chat turn. Tools are
// per-turn because the search tool's description and fallback text carry the
// user's country.
func NewTurnRegistry(profile *domain.UserProfile, deps Deps) (*Registry, error) {
	registry := NewRegistry()

	if err := registry.Register(NewSearchWebTool(deps.Searcher, deps.Cache, profile.Country, deps.Logger)); err != nil {
		return nil, err
	}
	if err := registry.Register(NewGenerateLessonTool()); err != nil {
		return nil, err
	}

	return registry, nil
}
