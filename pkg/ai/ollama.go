package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Ollama API configuration.
const (
	ollamaDefaultEndpoint = "http://localhost:11434"
	ollamaDefaultModel    = "llama3.2"
	ollamaChatPath        = "/api/chat"
)

// OllamaProvider implements Provider for a local Ollama server.
type OllamaProvider struct {
	endpoint string
	model    string
	logger   *slog.Logger
	client   *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(model string, opts ...Option) *OllamaProvider {
	if model == "" {
		model = ollamaDefaultModel
	}
	o := buildOptions(ollamaDefaultEndpoint, opts)
	return &OllamaProvider{
		endpoint: o.endpoint,
		model:    model,
		logger:   o.logger,
		client:   o.client,
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return ProviderOllama
}

// IsAvailable reports whether an endpoint is set; local instances need no key.
func (p *OllamaProvider) IsAvailable() bool {
	return p.endpoint != ""
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}

// Chat performs a single-turn chat completion.
func (p *OllamaProvider) Chat(ctx context.Context, messages []Message) (*Response, error) {
	if !p.IsAvailable() {
		return nil, brieferrors.NewAIError(ProviderOllama, "Chat", "provider not configured")
	}

	apiMessages := make([]ollamaMessage, 0, len(messages))
	for _, msg := range messages {
		apiMessages = append(apiMessages, ollamaMessage(msg))
	}

	logDebug(p.logger, "sending chat request", "provider", ProviderOllama, "model", p.model, "message_count", len(apiMessages))

	var resp ollamaResponse
	err := postJSON(ctx, p.client, jsonCall{
		provider: ProviderOllama,
		url:      p.endpoint + ollamaChatPath,
		body:     ollamaRequest{Model: p.model, Messages: apiMessages},
		errorMessage: func(body []byte) string {
			var apiErr struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(body, &apiErr) == nil {
				return apiErr.Error
			}
			return ""
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	stopReason := "stop"
	if !resp.Done {
		stopReason = "incomplete"
	}

	logDebug(p.logger, "received response",
		"provider", ProviderOllama,
		"prompt_tokens", resp.PromptEvalCount,
		"completion_tokens", resp.EvalCount)

	return &Response{
		Content:      resp.Message.Content,
		StopReason:   stopReason,
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
	}, nil
}
