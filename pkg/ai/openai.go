package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Groq speaks the OpenAI chat completions protocol.
const (
	groqDefaultEndpoint = "https://api.groq.com/openai/v1"
	groqDefaultModel    = "llama-3.3-70b-versatile"
	openAIChatPath      = "/chat/completions"
	openAIMaxTokens     = 1024
)

// OpenAIProvider implements Provider for OpenAI-compatible chat completion
// APIs such as Groq.
type OpenAIProvider struct {
	name     string
	apiKey   string
	model    string
	endpoint string
	logger   *slog.Logger
	client   *http.Client
}

// NewOpenAIProvider creates a provider reporting itself as name. For Groq the
// default endpoint and model are used when not overridden.
func NewOpenAIProvider(name, apiKey, model string, opts ...Option) *OpenAIProvider {
	defaultEndpoint := ""
	if name == ProviderGroq {
		defaultEndpoint = groqDefaultEndpoint
		if model == "" {
			model = groqDefaultModel
		}
	}
	o := buildOptions(defaultEndpoint, opts)
	return &OpenAIProvider{
		name:     name,
		apiKey:   apiKey,
		model:    model,
		endpoint: o.endpoint,
		logger:   o.logger,
		client:   o.client,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is configured and ready.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != "" && p.endpoint != "" && p.model != ""
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat performs a single-turn chat completion.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (*Response, error) {
	if !p.IsAvailable() {
		return nil, brieferrors.NewAIError(p.name, "Chat", "provider not configured")
	}

	apiMessages := make([]openAIMessage, 0, len(messages))
	for _, msg := range messages {
		apiMessages = append(apiMessages, openAIMessage(msg))
	}

	logDebug(p.logger, "sending chat request", "provider", p.name, "model", p.model, "message_count", len(apiMessages))

	var resp openAIResponse
	err := postJSON(ctx, p.client, jsonCall{
		provider: p.name,
		url:      p.endpoint + openAIChatPath,
		headers:  map[string]string{"Authorization": "Bearer " + p.apiKey},
		body: openAIRequest{
			Model:     p.model,
			Messages:  apiMessages,
			MaxTokens: openAIMaxTokens,
		},
		errorMessage: func(body []byte) string {
			var apiErr openAIError
			if json.Unmarshal(body, &apiErr) == nil {
				return apiErr.Error.Message
			}
			return ""
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, brieferrors.NewAIError(p.name, "Chat", "no choices in response")
	}
	choice := resp.Choices[0]

	logDebug(p.logger, "received response",
		"provider", p.name,
		"finish_reason", choice.FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return &Response{
		Content:      choice.Message.Content,
		StopReason:   choice.FinishReason,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
