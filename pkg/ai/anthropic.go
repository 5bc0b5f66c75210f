package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Anthropic API configuration.
const (
	anthropicDefaultEndpoint = "https://api.anthropic.com"
	anthropicMessagesPath    = "/v1/messages"
	anthropicAPIVersion      = "2023-06-01"
	anthropicDefaultModel    = "claude-sonnet-4-20250514"
	anthropicMaxTokens       = 1024
)

// AnthropicProvider implements Provider for the Claude messages API.
type AnthropicProvider struct {
	apiKey   string
	model    string
	endpoint string
	logger   *slog.Logger
	client   *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model string, opts ...Option) *AnthropicProvider {
	if model == "" {
		model = anthropicDefaultModel
	}
	o := buildOptions(anthropicDefaultEndpoint, opts)
	return &AnthropicProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: o.endpoint,
		logger:   o.logger,
		client:   o.client,
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// IsAvailable checks if the provider is configured and ready.
func (p *AnthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat performs a single-turn chat completion.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message) (*Response, error) {
	if !p.IsAvailable() {
		return nil, brieferrors.NewAIError(ProviderAnthropic, "Chat", "provider not configured")
	}

	system, apiMessages := splitSystem(messages)

	logDebug(p.logger, "sending chat request", "provider", ProviderAnthropic, "model", p.model, "message_count", len(apiMessages))

	var resp anthropicResponse
	err := postJSON(ctx, p.client, jsonCall{
		provider: ProviderAnthropic,
		url:      p.endpoint + anthropicMessagesPath,
		headers: map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": anthropicAPIVersion,
		},
		body: anthropicRequest{
			Model:     p.model,
			MaxTokens: anthropicMaxTokens,
			Messages:  apiMessages,
			System:    system,
		},
		errorMessage: func(body []byte) string {
			var apiErr anthropicError
			if json.Unmarshal(body, &apiErr) == nil {
				return apiErr.Error.Message
			}
			return ""
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			content.WriteString(c.Text)
		}
	}

	logDebug(p.logger, "received response",
		"provider", ProviderAnthropic,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)

	return &Response{
		Content:      content.String(),
		StopReason:   resp.StopReason,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

// splitSystem joins system messages into one prompt, since the messages API
// takes it as a separate field.
func splitSystem(messages []Message) (string, []anthropicMessage) {
	var system []string
	apiMessages := make([]anthropicMessage, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
			continue
		}
		apiMessages = append(apiMessages, anthropicMessage(msg))
	}

	return strings.Join(system, "\n\n"), apiMessages
}
