// Package voice mints short-lived OpenAI Realtime credentials for the
// browser's voice chat. The server-side API key never reaches the client;
// only the ephemeral secret does.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/pkg/errors"
	"go.uber.org/zap"
)

type Service struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewService(apiKey, model string, logger *zap.Logger) *Service {
	if model == "" {
		model = constants.VoiceConfig.DefaultModel
	}
	return &Service{
		httpClient: &http.Client{Timeout: constants.VoiceConfig.Timeout},
		baseURL:    constants.VoiceConfig.ClientSecretsURL,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

func (s *Service) Configured() bool {
	return s.apiKey != ""
}

type secretRequest struct {
	Session sessionSpec `json:"session"`
}

type sessionSpec struct {
	Type  string `json:"type"`
	Model string `json:"model"`
}

type secretResponse struct {
	Value string `json:"value"`
}

// MintClientSecret requests a fresh ephemeral credential. Each call mints a
// new secret; nothing is cached because the upstream expires them quickly.
func (s *Service) MintClientSecret(ctx context.Context) (string, error) {
	if !s.Configured() {
		return "", errors.NewServiceError("OpenAI API key is not configured", "voice", "mint", nil)
	}

	body, err := json.Marshal(secretRequest{
		Session: sessionSpec{Type: "realtime", Model: s.model},
	})
	if err != nil {
		return "", errors.NewServiceError("Failed to encode session request", "voice", "mint", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewServiceError("Failed to build session request", "voice", "mint", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.NewProviderError("Failed to reach OpenAI Realtime API", "openai-realtime", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		s.logger.Error("Realtime session request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(payload)),
		)
		return "", errors.NewProviderError(
			fmt.Sprintf("OpenAI Realtime API returned status %d", resp.StatusCode),
			"openai-realtime", nil,
		)
	}

	var decoded secretResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.NewProviderError("Failed to decode Realtime session response", "openai-realtime", err)
	}
	if decoded.Value == "" {
		return "", errors.NewProviderError("Realtime session response missing client secret", "openai-realtime", nil)
	}

	s.logger.Debug("Minted Realtime client secret", zap.String("model", s.model))
	return decoded.Value, nil
}

// WithBaseURL overrides the upstream endpoint. Used by tests.
func (s *Service) WithBaseURL(url string) *Service {
	s.baseURL = url
	return s
}
