package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ask-andrew/360brief-sub007/pkg/brief"
	"github.com/ask-andrew/360brief-sub007/pkg/config"
	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
	"github.com/ask-andrew/360brief-sub007/pkg/sentiment"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

func TestPreParseGlobalFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantConfig  string
		wantVerbose bool
	}{
		{"none", []string{"brief"}, "", false},
		{"long config", []string{"brief", "--config", "/tmp/a.toml"}, "/tmp/a.toml", false},
		{"long config equals", []string{"brief", "--config=/tmp/b.toml"}, "/tmp/b.toml", false},
		{"short config", []string{"brief", "-C", "/tmp/c.toml", "-v"}, "/tmp/c.toml", true},
		{"short config joined", []string{"brief", "-C/tmp/d.toml"}, "/tmp/d.toml", false},
		{"short config equals", []string{"brief", "-C=/tmp/e.toml"}, "/tmp/e.toml", false},
		{"verbose", []string{"brief", "--verbose"}, "", true},
		{"stops at subcommand", []string{"brief", "generate", "-v"}, "", false},
		{"stops at marker", []string{"brief", "--", "-v"}, "", false},
		{"dangling config", []string{"brief", "--config"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, verbose := PreParseGlobalFlags(tt.args)
			assert.Equal(t, tt.wantConfig, cfg)
			assert.Equal(t, tt.wantVerbose, verbose)
		})
	}
}

func setupHome(t *testing.T) string {
	t.Helper()
	t.Setenv("GO_TEST", "true")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	Reset()
	viper.Reset()
	t.Cleanup(func() {
		Reset()
		viper.Reset()
	})
	return home
}

func TestInitConfig_Defaults(t *testing.T) {
	setupHome(t)

	cfg, verbose, err := InitConfig("", false)
	require.NoError(t, err)
	assert.False(t, verbose)
	assert.Equal(t, "mission_brief", cfg.Brief.DefaultStyle)
	assert.False(t, cfg.AI.Enabled)
}

func TestInitConfig_UserFile(t *testing.T) {
	home := setupHome(t)

	dir := filepath.Join(home, ".config", "360brief")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[insights]
top_n = 7

[brief]
default_style = "startup_velocity"
`), 0o600))

	cfg, _, err := InitConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Insights.TopN)
	assert.Equal(t, "startup_velocity", cfg.Brief.DefaultStyle)
}

func TestInitConfig_CustomFile(t *testing.T) {
	home := setupHome(t)

	path := filepath.Join(home, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[retry]\nretries = 1\n"), 0o600))

	cfg, _, err := InitConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Retry.Retries)
}

func TestInitConfig_MissingCustomFile(t *testing.T) {
	home := setupHome(t)

	_, _, err := InitConfig(filepath.Join(home, "nope.toml"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestInitConfig_InvalidFails(t *testing.T) {
	home := setupHome(t)

	path := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[brief]\ntone = \"sarcastic\"\n"), 0o600))

	_, _, err := InitConfig(path, false)
	require.Error(t, err)
	assert.True(t, brieferrors.IsConfigError(err))
}

func TestInitConfig_EnvOverride(t *testing.T) {
	setupHome(t)
	t.Setenv("BRIEF_INSIGHTS_CONCURRENCY", "9")

	cfg, _, err := InitConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Insights.Concurrency)
}

func TestInitConfig_LocalConfigWins(t *testing.T) {
	home := setupHome(t)

	dir := filepath.Join(home, ".config", "360brief")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[insights]\ntop_n = 7\nconcurrency = 2\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(home, LocalConfigName),
		[]byte("[insights]\ntop_n = 3\n"), 0o600))

	cfg, _, err := InitConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Insights.TopN)
	assert.Equal(t, 2, cfg.Insights.Concurrency)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	NewLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, true).Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=v")
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func sampleData() *unified.UnifiedData {
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return &unified.UnifiedData{
		Emails: []unified.EmailItem{
			{ID: "e1", Subject: "Roadmap review", Body: "Great progress on the roadmap, thanks team", Date: at},
			{ID: "e2", Subject: "Outage", Body: "The outage is a critical failure, urgent fix needed", Date: at.Add(time.Hour)},
		},
	}
}

func TestBuildPipeline_FallbackWhenDisabled(t *testing.T) {
	cfg := defaultConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := BuildPipeline(ctx, cfg, nil, PipelineOptions{})
	require.NoError(t, err)
	assert.Nil(t, p.Provider)
	assert.Equal(t, brief.AllStyles, p.Synthesizer.Styles())

	res, err := p.Analyzer.Analyze(ctx, "thanks, great work")
	require.NoError(t, err)
	assert.Equal(t, sentiment.MethodFallback, res.Method)

	b, err := p.Synthesizer.GenerateStyledBrief(ctx, sampleData(), brief.StyleMissionBrief)
	require.NoError(t, err)
	assert.Equal(t, brief.StyleMissionBrief, b.Style)
	assert.True(t, b.Degraded)
	assert.Nil(t, b.Polish)
}

func TestBuildPipeline_OllamaProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": `{"sentiment":"positive","score":0.8}`},
			"done":    true,
		})
	}))
	defer server.Close()

	cfg := defaultConfig(t)
	cfg.AI.Enabled = true
	cfg.AI.Provider = "ollama"
	cfg.AI.Endpoint = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := BuildPipeline(ctx, cfg, nil, PipelineOptions{})
	require.NoError(t, err)
	require.NotNil(t, p.Provider)

	res, err := p.Analyzer.Analyze(ctx, "ship it")
	require.NoError(t, err)
	assert.Equal(t, sentiment.MethodAI, res.Method)
	assert.Equal(t, sentiment.Positive, res.Sentiment)

	fallback, err := BuildPipeline(ctx, cfg, nil, PipelineOptions{FallbackOnly: true})
	require.NoError(t, err)
	assert.Nil(t, fallback.Provider)
}

func TestBuildPipeline_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("ai tone without provider", func(t *testing.T) {
		cfg := defaultConfig(t)
		_, err := BuildPipeline(ctx, cfg, nil, PipelineOptions{Tone: "ai"})
		require.Error(t, err)
		assert.True(t, brieferrors.IsConfigError(err))
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		cfg := defaultConfig(t)
		cfg.AI.Enabled = true
		_, err := BuildPipeline(ctx, cfg, nil, PipelineOptions{})
		require.Error(t, err)
		assert.True(t, brieferrors.IsConfigError(err))
	})

	t.Run("unknown style", func(t *testing.T) {
		cfg := defaultConfig(t)
		cfg.Brief.Styles = []string{"haiku"}
		_, err := BuildPipeline(ctx, cfg, nil, PipelineOptions{})
		require.Error(t, err)
		assert.True(t, brieferrors.IsUnsupportedStyle(err))
	})

	t.Run("plain tone override", func(t *testing.T) {
		cfg := defaultConfig(t)
		p, err := BuildPipeline(ctx, cfg, nil, PipelineOptions{Tone: "plain"})
		require.NoError(t, err)

		b, err := p.Synthesizer.GenerateStyledBrief(ctx, sampleData(), brief.StyleNewsletter)
		require.NoError(t, err)
		require.NotNil(t, b.Polish)
		assert.True(t, b.Polish.Applied)
		assert.Equal(t, brief.TonePlain, b.Polish.Tone)
	})
}
