package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/pkg/errors"
	"go.uber.org/zap"
)

// Result is what the search completion service returns: a synthesized answer
// plus citation URLs in the order the service supplied them.
type Result struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
}

// Client calls the Perplexity chat-completions API. It retries transport and
// server errors with exponential backoff; client errors surface immediately.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = constants.SearchConfig.BaseURL
	}
	if model == "" {
		model = constants.SearchConfig.Model
	}
	return &Client{
		httpClient: &http.Client{Timeout: constants.SearchConfig.Timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

// Configured reports whether a search credential is present. Callers use this
// to decide between a live search and the designed degraded fallback.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type completionRequest struct {
	Model           string              `json:"model"`
	Messages        []completionMessage `json:"messages"`
	Temperature     float64             `json:"temperature"`
	MaxTokens       int                 `json:"max_tokens"`
	ReturnCitations bool                `json:"return_citations"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	if !c.Configured() {
		return nil, errors.NewServiceError("search credential not configured", "perplexity", "search", nil)
	}

	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []completionMessage{
			{Role: "user", Content: query},
		},
		Temperature:     constants.SearchConfig.Temperature,
		MaxTokens:       constants.SearchConfig.MaxTokens,
		ReturnCitations: true,
	})
	if err != nil {
		return nil, errors.NewServiceError("failed to encode search request", "perplexity", "search", err)
	}

	var lastErr error
	for attempt := 0; attempt < constants.RetryConfig.MaxAttempts; attempt++ {
		result, retryable, err := c.doRequest(ctx, payload)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !retryable || attempt == constants.RetryConfig.MaxAttempts-1 {
			break
		}

		delay := c.computeDelay(attempt)
		c.logger.Warn("Search request failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, payload []byte) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode >= 500 {
		return nil, true, errors.NewAPIError(fmt.Sprintf("search server error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"body": string(body),
		})
	}
	if resp.StatusCode >= 400 {
		return nil, false, errors.NewAPIError(fmt.Sprintf("search client error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"body": string(body),
		})
	}

	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, false, errors.NewServiceError("failed to decode search response", "perplexity", "search", err)
	}

	answer := "No results found"
	if len(decoded.Choices) > 0 && decoded.Choices[0].Message.Content != "" {
		answer = decoded.Choices[0].Message.Content
	}

	return &Result{
		Answer:    answer,
		Citations: decoded.Citations,
	}, false, nil
}

func (c *Client) computeDelay(attempt int) time.Duration {
	base := constants.RetryConfig.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(constants.RetryConfig.Jitter))
	return base + jitter
}
