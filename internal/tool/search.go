package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/internal/service/search"
	"github.com/finpal/finpal-go/internal/util"
	"go.uber.org/zap"
)

// Searcher is the slice of the search client the tool needs.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, query string) (*search.Result, error)
}

// ResultCache is an optional transient cache for successful search results.
// A nil cache disables caching entirely.
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// SearchWebTool answers the model's web-search invocations. Its contract
// never raises past the tool boundary: a missing credential or a failed
// upstream call produces a degraded-but-usable answer, surfaced to the model
// as data.
type SearchWebTool struct {
	searcher Searcher
	cache    ResultCache
	country  domain.Country
	logger   *zap.Logger
}

func NewSearchWebTool(searcher Searcher, cache ResultCache, country domain.Country, logger *zap.Logger) *SearchWebTool {
	return &SearchWebTool{
		searcher: searcher,
		cache:    cache,
		country:  country,
		logger:   logger,
	}
}

func (t *SearchWebTool) Spec() domain.ToolSpec {
	return domain.ToolSpec{
		Name: domain.ToolSearchWeb,
		Description: fmt.Sprintf(`Search the web for current financial information, regulations, and resources specific to %s. Use this to find:
- Government financial literacy resources
- Banking regulations and consumer protection laws
- Common scams targeting elderly people
- Retirement and pension information
- Healthcare and insurance options
- Current interest rates and financial products`, t.country),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to find financial information",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *SearchWebTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	query = util.TruncateRunes(query, constants.InputLimits.MaxQueryLength)

	if t.searcher == nil || !t.searcher.Configured() {
		t.logger.Info("No search credential configured, serving placeholder answer",
			zap.String("query", query),
		)
		return map[string]any{
			"answer": fmt.Sprintf("I searched for %q but web search is not fully configured yet. Here's what I can tell you based on my knowledge: This information is specific to %s. For the most accurate and up-to-date information, please consult official government financial websites.", query, t.country),
			"sources": []map[string]any{},
		}, nil
	}

	cacheKey := fmt.Sprintf("search:%s:%s", t.country, query)
	if t.cache != nil {
		var cached search.Result
		if err := t.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Answer != "" {
			t.logger.Debug("Search cache hit", zap.String("query", query))
			return t.successResult(query, &cached), nil
		}
	}

	qualified := fmt.Sprintf("Find current, accurate information about: %s. Focus on information specific to %s and relevant for elderly users.", query, t.country)

	result, err := t.searcher.Search(ctx, qualified)
	if err != nil {
		t.logger.Error("Search failed, serving degraded answer",
			zap.String("query", query),
			zap.Error(err),
		)
		return map[string]any{
			"answer":  fmt.Sprintf("I attempted to search for %q but encountered an issue. Based on my knowledge about %s, I can still provide general guidance. For the most current information, please consult official sources.", query, t.country),
			"sources": []map[string]any{},
			"error":   err.Error(),
		}, nil
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, cacheKey, result, constants.CacheTTL.SearchResult); err != nil {
			t.logger.Warn("Failed to cache search result", zap.Error(err))
		}
	}

	t.logger.Info("Search succeeded",
		zap.String("query", query),
		zap.Int("citations", len(result.Citations)),
	)

	return t.successResult(query, result), nil
}

func (t *SearchWebTool) successResult(query string, result *search.Result) map[string]any {
	citations := result.Citations
	if len(citations) > constants.SearchConfig.MaxSources {
		citations = citations[:constants.SearchConfig.MaxSources]
	}

	sources := make([]map[string]any, 0, len(citations))
	for _, url := range citations {
		sources = append(sources, map[string]any{"url": url})
	}

	return map[string]any{
		"answer":  result.Answer,
		"sources": sources,
		"query":   query,
	}
}
