package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	genkitai "github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

const (
	geminiDefaultModel = "gemini-1.5-flash"
	geminiModelPrefix  = "googleai/"
)

// GeminiProvider implements Provider on Google AI through Genkit. Unlike the
// HTTP providers it has no endpoint; the timeout bounds each Generate call.
type GeminiProvider struct {
	apiKey  string
	model   string
	timeout time.Duration
	opts    options

	once     sync.Once
	generate genkitai.Model
	initErr  error
}

// NewGeminiProvider creates a Gemini provider. Genkit is initialized on the
// first Chat so constructing a provider never touches the network.
func NewGeminiProvider(apiKey, model string, opts ...Option) *GeminiProvider {
	if model == "" {
		model = geminiDefaultModel
	}
	if !strings.Contains(model, "/") {
		model = geminiModelPrefix + model
	}

	p := &GeminiProvider{apiKey: apiKey, model: model}
	for _, opt := range opts {
		opt(&p.opts)
	}
	if p.opts.client != nil {
		p.timeout = p.opts.client.Timeout
	}
	return p
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return ProviderGemini }

// IsAvailable reports whether a key is set or a model was injected.
func (p *GeminiProvider) IsAvailable() bool {
	return p.apiKey != "" || p.generate != nil
}

func (p *GeminiProvider) modelFor(ctx context.Context) (genkitai.Model, error) {
	p.once.Do(func() {
		if p.generate != nil {
			return
		}
		if p.apiKey == "" {
			p.initErr = brieferrors.NewAIError(ProviderGemini, "init", "API key not set")
			return
		}

		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: p.apiKey}))
		p.generate = googlegenai.GoogleAIModel(g, p.model)
		if p.generate == nil {
			p.initErr = brieferrors.NewAIError(ProviderGemini, "init", "unknown model "+p.model)
			return
		}
		logDebug(p.opts.logger, "gemini model ready", "model", p.model)
	})
	return p.generate, p.initErr
}

// Chat sends messages as one Generate request and joins the text parts of
// the reply.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (*Response, error) {
	if len(messages) == 0 {
		return nil, brieferrors.NewAIError(ProviderGemini, "Chat", "no messages to send")
	}

	model, err := p.modelFor(ctx)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	logDebug(p.opts.logger, "sending chat request", "provider", ProviderGemini, "model", p.model, "message_count", len(messages))

	resp, err := model.Generate(ctx, &genkitai.ModelRequest{Messages: toGenkitMessages(messages)}, nil)
	if err != nil {
		return nil, brieferrors.NewAIErrorWithCause(ProviderGemini, "Chat", "generate failed", err)
	}
	if resp == nil || resp.Message == nil {
		return nil, brieferrors.NewAIError(ProviderGemini, "Chat", "empty response")
	}

	text := replyText(resp.Message)
	if strings.TrimSpace(text) == "" {
		return nil, brieferrors.NewAIError(ProviderGemini, "Chat", "response has no text")
	}

	out := &Response{Content: text, StopReason: "stop"}
	if u := resp.Usage; u != nil {
		out.InputTokens, out.OutputTokens = u.InputTokens, u.OutputTokens
	}

	logDebug(p.opts.logger, "received response",
		"provider", ProviderGemini,
		"prompt_tokens", out.InputTokens,
		"completion_tokens", out.OutputTokens)

	return out, nil
}

// replyText concatenates the text parts of msg, skipping media.
func replyText(msg *genkitai.Message) string {
	var b strings.Builder
	for _, part := range msg.Content {
		if part != nil && part.IsText() {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func toGenkitMessages(messages []Message) []*genkitai.Message {
	out := make([]*genkitai.Message, 0, len(messages))
	for _, m := range messages {
		role := genkitai.RoleUser
		switch m.Role {
		case "system":
			role = genkitai.RoleSystem
		case "assistant":
			role = genkitai.RoleModel
		}
		out = append(out, genkitai.NewMessage(role, nil, genkitai.NewTextPart(m.Content)))
	}
	return out
}
