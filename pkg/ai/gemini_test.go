package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	genkitai "github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// fakeModel stands in for a Genkit model.
type fakeModel struct {
	generate func(ctx context.Context, req *genkitai.ModelRequest) (*genkitai.ModelResponse, error)
	requests []*genkitai.ModelRequest
}

func (m *fakeModel) Name() string          { return "fake" }
func (m *fakeModel) Register(api.Registry) {}
func (m *fakeModel) Generate(ctx context.Context, req *genkitai.ModelRequest, cb genkitai.ModelStreamCallback) (*genkitai.ModelResponse, error) {
	if cb != nil {
		return nil, errors.New("streaming not expected")
	}
	m.requests = append(m.requests, req)
	return m.generate(ctx, req)
}

func textReply(parts ...*genkitai.Part) func(context.Context, *genkitai.ModelRequest) (*genkitai.ModelResponse, error) {
	return func(context.Context, *genkitai.ModelRequest) (*genkitai.ModelResponse, error) {
		return &genkitai.ModelResponse{
			Message: genkitai.NewMessage(genkitai.RoleModel, nil, parts...),
			Usage:   &genkitai.GenerationUsage{InputTokens: 12, OutputTokens: 7},
		}, nil
	}
}

func withFake(p *GeminiProvider, m *fakeModel) *GeminiProvider {
	p.generate = m
	return p
}

func TestNewGeminiProvider_ModelName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "googleai/" + geminiDefaultModel},
		{"gemini-2.0-flash", "googleai/gemini-2.0-flash"},
		{"vertexai/gemini-pro", "vertexai/gemini-pro"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := NewGeminiProvider("key", tt.in)
			if p.model != tt.want {
				t.Errorf("model = %q, want %q", p.model, tt.want)
			}
			if p.Name() != ProviderGemini {
				t.Errorf("Name() = %q, want %q", p.Name(), ProviderGemini)
			}
		})
	}
}

func TestNewGeminiProvider_Timeout(t *testing.T) {
	p := NewGeminiProvider("key", "", WithTimeout(3*time.Second))
	if p.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", p.timeout)
	}
}

func TestGeminiProvider_IsAvailable(t *testing.T) {
	if NewGeminiProvider("", "").IsAvailable() {
		t.Error("provider without key should be unavailable")
	}
	if !NewGeminiProvider("key", "").IsAvailable() {
		t.Error("provider with key should be available")
	}
	if !withFake(NewGeminiProvider("", ""), &fakeModel{}).IsAvailable() {
		t.Error("provider with injected model should be available")
	}
}

func TestGeminiProvider_Chat(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		generate func(context.Context, *genkitai.ModelRequest) (*genkitai.ModelResponse, error)
		want     string
		wantErr  bool
	}{
		{
			name:     "joins text parts",
			messages: []Message{{Role: "system", Content: "Classify"}, {Role: "user", Content: "Ship it"}},
			generate: textReply(genkitai.NewTextPart(`{"sentiment":`), genkitai.NewTextPart(`"positive","score":0.7}`)),
			want:     `{"sentiment":"positive","score":0.7}`,
		},
		{
			name:     "skips media parts",
			messages: []Message{{Role: "user", Content: "Hi"}},
			generate: textReply(genkitai.NewTextPart("neutral"), genkitai.NewMediaPart("image/png", "data:image/png;base64,AAAA")),
			want:     "neutral",
		},
		{
			name:     "generate error",
			messages: []Message{{Role: "user", Content: "Hi"}},
			generate: func(context.Context, *genkitai.ModelRequest) (*genkitai.ModelResponse, error) {
				return nil, errors.New("quota exceeded")
			},
			wantErr: true,
		},
		{
			name:     "nil message",
			messages: []Message{{Role: "user", Content: "Hi"}},
			generate: func(context.Context, *genkitai.ModelRequest) (*genkitai.ModelResponse, error) {
				return &genkitai.ModelResponse{}, nil
			},
			wantErr: true,
		},
		{
			name:     "no text",
			messages: []Message{{Role: "user", Content: "Hi"}},
			generate: textReply(genkitai.NewTextPart("   ")),
			wantErr:  true,
		},
		{
			name:    "no messages",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{generate: tt.generate}
			p := withFake(NewGeminiProvider("key", ""), model)

			resp, err := p.Chat(t.Context(), tt.messages)
			if tt.wantErr {
				if !brieferrors.IsAIError(err) {
					t.Fatalf("Chat() error = %v, want AIError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Chat() error = %v", err)
			}
			if resp.Content != tt.want {
				t.Errorf("Content = %q, want %q", resp.Content, tt.want)
			}
			if resp.InputTokens != 12 || resp.OutputTokens != 7 {
				t.Errorf("tokens = %d/%d, want 12/7", resp.InputTokens, resp.OutputTokens)
			}
			if len(model.requests) != 1 || len(model.requests[0].Messages) != len(tt.messages) {
				t.Errorf("expected one request carrying %d messages", len(tt.messages))
			}
		})
	}
}

func TestGeminiProvider_ChatAppliesTimeout(t *testing.T) {
	model := &fakeModel{generate: func(ctx context.Context, _ *genkitai.ModelRequest) (*genkitai.ModelResponse, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the generate context")
		}
		return textReply(genkitai.NewTextPart("ok"))(ctx, nil)
	}}
	p := withFake(NewGeminiProvider("key", "", WithTimeout(time.Minute)), model)

	if _, err := p.Chat(t.Context(), []Message{{Role: "user", Content: "Hi"}}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	_, err := NewGeminiProvider("", "").Chat(t.Context(), []Message{{Role: "user", Content: "Hi"}})
	if !brieferrors.IsAIError(err) {
		t.Fatalf("Chat() error = %v, want AIError", err)
	}
}

func TestToGenkitMessages(t *testing.T) {
	got := toGenkitMessages([]Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "usr"},
		{Role: "assistant", Content: "ast"},
		{Role: "tool", Content: "other"},
	})

	want := []genkitai.Role{genkitai.RoleSystem, genkitai.RoleUser, genkitai.RoleModel, genkitai.RoleUser}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.Role != want[i] {
			t.Errorf("message %d role = %v, want %v", i, m.Role, want[i])
		}
		if m.Content[0].Text == "" {
			t.Errorf("message %d lost its text", i)
		}
	}
}
