package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/internal/util"
	"github.com/finpal/finpal-go/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ModelManager fronts the completion providers: Gemini primary, optional
// OpenAI fallback, with a shared circuit breaker. The fallback only engages
// when the primary fails before emitting anything; a stream that dies midway
// is surfaced as an error rather than restarted on another provider.
type ModelManager struct {
	gemini         *GeminiProvider
	openai         *OpenAIProvider
	primary        ChatProvider
	fallback       ChatProvider
	logger         *zap.Logger
	enableFallback bool
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	EnableFallback bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	geminiModel := cfg.GeminiModel
	if geminiModel == "" {
		geminiModel = "gemini-2.5-flash"
	}
	openaiModel := cfg.OpenAIModel
	if openaiModel == "" {
		openaiModel = "gpt-4o-mini"
	}

	geminiProvider := NewGeminiProvider(geminiClient, geminiModel, logger)
	openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, openaiModel, logger)
	if openaiProvider != nil {
		logger.Info("OpenAI fallback enabled", zap.String("model", openaiModel))
	} else {
		logger.Info("OpenAI fallback disabled (no API key)")
	}

	mm := &ModelManager{
		gemini:  geminiProvider,
		openai:  openaiProvider,
		primary: geminiProvider,
		logger:  logger,
	}
	mm.enableFallback = cfg.EnableFallback && openaiProvider != nil
	if mm.enableFallback {
		mm.fallback = openaiProvider
	}

	mm.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)

	return mm, nil
}

// StreamTurn runs one chat turn against the primary provider, falling back
// when nothing has been emitted yet.
func (mm *ModelManager) StreamTurn(ctx context.Context, req StreamRequest, emit EmitFunc) (*GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.GetStatus()
		mm.logger.Error("AI service unavailable (Circuit OPEN)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		)
		return nil, errors.NewProviderError("AI service temporarily unavailable, please try again shortly", mm.primary.Name(), nil)
	}

	emitted := 0
	countingEmit := func(event domain.StreamEvent) {
		emitted++
		emit(event)
	}

	primaryErr := mm.primary.StreamTurn(ctx, req, countingEmit)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return &GenerateMetadata{Provider: mm.primary.Name(), Model: mm.primary.Model()}, nil
	}

	if emitted == 0 && mm.enableFallback && mm.fallback != nil {
		mm.logger.Warn("Primary provider failed before emitting, trying fallback",
			zap.String("primary", mm.primary.Name()),
			zap.Error(primaryErr),
		)

		fallbackErr := mm.fallback.StreamTurn(ctx, req, countingEmit)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			return &GenerateMetadata{Provider: mm.fallback.Name(), Model: mm.fallback.Model(), UsedFallback: true}, nil
		}

		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)

		if mm.isServiceFailure(primaryErr) || mm.isServiceFailure(fallbackErr) {
			return nil, errors.NewProviderError("AI service temporarily unavailable, please try again shortly", mm.fallback.Name(), fallbackErr)
		}
		return nil, fallbackErr
	}

	mm.recordFailure(primaryErr)

	if mm.isServiceFailure(primaryErr) {
		return nil, errors.NewProviderError("AI service temporarily unavailable, please try again shortly", mm.primary.Name(), primaryErr)
	}
	return nil, primaryErr
}

func (mm *ModelManager) recordFailure(err error) {
	if err == nil || !mm.isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if mm.isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	mm.logger.Info("Health Check: Testing AI services...")

	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	geminiOK := false
	if mm.gemini != nil {
		geminiOK = mm.gemini.Ping(ctx)
	}

	openaiOK := false
	if mm.enableFallback && mm.openai != nil {
		openaiOK = mm.openai.Ping(ctx)
	}

	isHealthy := geminiOK || openaiOK

	mm.logger.Info("Health Check: Result",
		zap.Bool("gemini", geminiOK),
		zap.Bool("openai", openaiOK),
		zap.Bool("healthy", isHealthy),
	)

	return isHealthy
}

func (mm *ModelManager) isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}
	if mm.isRateLimitError(err) {
		return true
	}

	statusRegex := regexp.MustCompile(`\b(5\d{2})\b`)
	if statusRegex.MatchString(msg) {
		return true
	}

	codeRegex := regexp.MustCompile(`"code":(\d{3})`)
	if matches := codeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code >= 500 && code < 600
		}
	}

	return false
}

func (mm *ModelManager) isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota")
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.GetStatus()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}
