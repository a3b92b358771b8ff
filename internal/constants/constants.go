package constants

import "time"

var ChatConfig = struct {
	// MaxSteps bounds tool-use rounds per turn. The final permitted step is
	// issued without tools so a turn always ends in a textual response.
	MaxSteps        int
	MaxOutputTokens int32
	Temperature     float32
}{
	MaxSteps:        5,
	MaxOutputTokens: 2048,
	Temperature:     0.7,
}

var SearchConfig = struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	MaxSources  int
}{
	BaseURL:     "https://api.perplexity.ai",
	Model:       "sonar",
	Timeout:     15 * time.Second,
	MaxTokens:   800,
	Temperature: 0.2,
	MaxSources:  5,
}

var VoiceConfig = struct {
	ClientSecretsURL string
	DefaultModel     string
	Timeout          time.Duration
}{
	ClientSecretsURL: "https://api.openai.com/v1/realtime/client_secrets",
	DefaultModel:     "gpt-realtime",
	Timeout:          10 * time.Second,
}

var CacheTTL = struct {
	SearchResult time.Duration
}{
	SearchResult: 30 * time.Minute,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var InputLimits = struct {
	MaxQueryLength   int
	MaxMessageLength int
}{
	MaxQueryLength:   500,
	MaxMessageLength: 4000,
}
