// Package ai provides the language model providers used for sentiment
// analysis and brief polishing.
//
// Every provider implements the same single-turn Chat interface. HTTP
// providers honor context cancellation through the request context and
// report failures as *errors.AIError carrying the HTTP status, so callers can
// tell authorization failures from transient ones.
package ai

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ask-andrew/360brief-sub007/pkg/config"
	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Message represents a conversation message.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Response from AI provider.
type Response struct {
	Content      string
	StopReason   string // "end_turn", "max_tokens", etc.
	InputTokens  int
	OutputTokens int
}

// Provider interface for AI operations.
type Provider interface {
	// IsAvailable checks if provider is available and configured.
	IsAvailable() bool

	// Chat performs a single-turn chat completion.
	Chat(ctx context.Context, messages []Message) (*Response, error)

	// Name returns the provider name.
	Name() string
}

// Provider name constants.
const (
	ProviderAnthropic = "anthropic"
	ProviderGroq      = "groq"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
)

// Ask sends a system prompt and a user prompt and returns the trimmed reply.
func Ask(ctx context.Context, p Provider, system, prompt string) (string, error) {
	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	resp, err := p.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// options holds settings shared by the HTTP providers.
type options struct {
	endpoint string
	logger   *slog.Logger
	client   *http.Client
}

// Option configures a provider.
type Option func(*options)

// WithEndpoint overrides the provider's API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		if endpoint != "" {
			o.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithLogger sets the debug logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.client = &http.Client{Timeout: d} }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

func buildOptions(defaultEndpoint string, opts []Option) options {
	o := options{endpoint: defaultEndpoint, client: &http.Client{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewProvider creates an AI provider based on config.
// Environment variables take precedence over config file values for API keys.
// When model is empty, provider-specific default models from config are used.
func NewProvider(cfg *config.AIConfig, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, brieferrors.NewConfigError("ai", "config is nil")
	}

	if !cfg.Enabled {
		return nil, brieferrors.NewConfigError("ai.enabled", "AI is disabled in configuration")
	}

	common := []Option{WithLogger(logger), WithTimeout(cfg.Timeout)}

	switch cfg.Provider {
	case ProviderAnthropic:
		apiKey := resolveAPIKey("ANTHROPIC_API_KEY", cfg.APIKey)
		if apiKey == "" {
			return nil, brieferrors.NewConfigError("ai.api_key",
				"Anthropic API key not set (set ANTHROPIC_API_KEY or ai.api_key in config)")
		}
		return NewAnthropicProvider(apiKey, firstNonEmpty(cfg.Model, cfg.AnthropicModel),
			append(common, WithEndpoint(cfg.Endpoint))...), nil

	case ProviderGroq:
		apiKey := resolveAPIKey("GROQ_API_KEY", cfg.APIKey)
		if apiKey == "" {
			return nil, brieferrors.NewConfigError("ai.api_key",
				"Groq API key not set (set GROQ_API_KEY or ai.api_key in config)")
		}
		return NewOpenAIProvider(ProviderGroq, apiKey, firstNonEmpty(cfg.Model, cfg.GroqModel),
			append(common, WithEndpoint(cfg.Endpoint))...), nil

	case ProviderOllama:
		endpoint := firstNonEmpty(cfg.Endpoint, cfg.OllamaEndpoint)
		return NewOllamaProvider(firstNonEmpty(cfg.Model, cfg.OllamaModel),
			append(common, WithEndpoint(endpoint))...), nil

	case ProviderGemini:
		apiKey := resolveAPIKey("GOOGLE_GENAI_API_KEY", cfg.GeminiAPIKey)
		if apiKey == "" {
			apiKey = cfg.APIKey
		}
		if apiKey == "" {
			return nil, brieferrors.NewConfigError("ai.gemini_api_key",
				"Gemini API key not set (set GOOGLE_GENAI_API_KEY or ai.gemini_api_key in config)")
		}
		return NewGeminiProvider(apiKey, firstNonEmpty(cfg.Model, cfg.GeminiModel), common...), nil

	default:
		return nil, brieferrors.NewConfigError("ai.provider",
			"unsupported AI provider: "+cfg.Provider+" (supported: anthropic, groq, ollama, gemini)")
	}
}

// resolveAPIKey returns the key from the named environment variable if set,
// otherwise the config value.
func resolveAPIKey(envVar, configKey string) string {
	if envKey := os.Getenv(envVar); envKey != "" {
		return envKey
	}
	return configKey
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
