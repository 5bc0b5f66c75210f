package config

import (
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	AI       AIConfig       `mapstructure:"ai"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Insights InsightsConfig `mapstructure:"insights"`
	Brief    BriefConfig    `mapstructure:"brief"`
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"` // "anthropic", "groq", "ollama", "gemini"
	Model    string        `mapstructure:"model"`    // Overrides the per-provider model when set
	APIKey   string        `mapstructure:"api_key"`  // Provider API key (env var takes precedence)
	Endpoint string        `mapstructure:"endpoint"` // Custom endpoint URL; empty means provider default
	Timeout  time.Duration `mapstructure:"timeout"`  // Per-request HTTP timeout

	// Per-provider default models (used when Model is empty)
	AnthropicModel string `mapstructure:"anthropic_model"`
	GroqModel      string `mapstructure:"groq_model"`
	OllamaModel    string `mapstructure:"ollama_model"`
	OllamaEndpoint string `mapstructure:"ollama_endpoint"`
	GeminiModel    string `mapstructure:"gemini_model"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
}

// RetryConfig holds backoff settings for upstream calls
type RetryConfig struct {
	Retries     int           `mapstructure:"retries"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	JitterRatio float64       `mapstructure:"jitter_ratio"`
}

// CacheConfig holds in-process cache lifetimes
type CacheConfig struct {
	SentimentTTL  time.Duration `mapstructure:"sentiment_ttl"`
	BriefTTL      time.Duration `mapstructure:"brief_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // Zero disables the background sweeper
}

// InsightsConfig holds communication insight extraction settings
type InsightsConfig struct {
	TopN        int `mapstructure:"top_n"`
	Concurrency int `mapstructure:"concurrency"`
}

// BriefConfig holds brief synthesis settings
type BriefConfig struct {
	Styles       []string `mapstructure:"styles"` // Enabled styles
	DefaultStyle string   `mapstructure:"default_style"`
	Tone         string   `mapstructure:"tone"` // "none", "plain", "ai"
}

// SecurityWarning represents a configuration security issue
type SecurityWarning struct {
	Field   string
	Message string
}

// Supported values.
var (
	ValidProviders = []string{"anthropic", "groq", "ollama", "gemini"}
	ValidStyles    = []string{"mission_brief", "startup_velocity", "management_consulting", "newspaper_newsletter"}
	ValidTones     = []string{"none", "plain", "ai"}
)

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	config := &Config{}

	setDefaults()

	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// CheckSecurityWarnings returns warnings for insecure configuration practices.
func CheckSecurityWarnings(config *Config) []SecurityWarning {
	var warnings []SecurityWarning

	if config.AI.APIKey != "" && os.Getenv("BRIEF_AI_API_KEY") == "" &&
		os.Getenv("ANTHROPIC_API_KEY") == "" && os.Getenv("GROQ_API_KEY") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "ai.api_key",
			Message: "AI API key is set in config file. For security, use environment variables (ANTHROPIC_API_KEY, GROQ_API_KEY, or BRIEF_AI_API_KEY) instead.",
		})
	}

	if config.AI.GeminiAPIKey != "" && os.Getenv("BRIEF_AI_GEMINI_API_KEY") == "" &&
		os.Getenv("GOOGLE_GENAI_API_KEY") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "ai.gemini_api_key",
			Message: "Gemini API key is set in config file. For security, use GOOGLE_GENAI_API_KEY environment variable instead.",
		})
	}

	return warnings
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	if c.AI.Enabled && !slices.Contains(ValidProviders, c.AI.Provider) {
		return brieferrors.NewConfigError("ai.provider",
			"unsupported AI provider "+strconv.Quote(c.AI.Provider)+" (supported: anthropic, groq, ollama, gemini)")
	}
	if c.AI.Timeout < 0 {
		return brieferrors.NewConfigError("ai.timeout", "must not be negative")
	}

	if c.Retry.Retries < 0 {
		return brieferrors.NewConfigError("retry.retries", "must not be negative")
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return brieferrors.NewConfigError("retry.base_delay", "delays must not be negative")
	}
	if c.Retry.JitterRatio < 0 || c.Retry.JitterRatio >= 1 {
		return brieferrors.NewConfigError("retry.jitter_ratio", "must be in [0, 1)")
	}

	if c.Cache.SentimentTTL < 0 || c.Cache.BriefTTL < 0 || c.Cache.SweepInterval < 0 {
		return brieferrors.NewConfigError("cache", "durations must not be negative")
	}

	if c.Insights.TopN < 1 {
		return brieferrors.NewConfigError("insights.top_n", "must be at least 1")
	}
	if c.Insights.Concurrency < 1 {
		return brieferrors.NewConfigError("insights.concurrency", "must be at least 1")
	}

	if len(c.Brief.Styles) == 0 {
		return brieferrors.NewConfigError("brief.styles", "at least one style must be enabled")
	}
	for _, s := range c.Brief.Styles {
		if !slices.Contains(ValidStyles, s) {
			return brieferrors.NewConfigError("brief.styles", "unknown style "+strconv.Quote(s))
		}
	}
	if !slices.Contains(c.Brief.Styles, c.Brief.DefaultStyle) {
		return brieferrors.NewConfigError("brief.default_style",
			strconv.Quote(c.Brief.DefaultStyle)+" is not an enabled style")
	}
	if !slices.Contains(ValidTones, c.Brief.Tone) {
		return brieferrors.NewConfigError("brief.tone", "must be one of: none, plain, ai")
	}
	if c.Brief.Tone == "ai" && !c.AI.Enabled {
		return brieferrors.NewConfigError("brief.tone", "ai tone requires ai.enabled")
	}

	return nil
}

// Policy converts the retry settings into an executor configuration.
func (r RetryConfig) Policy() brieferrors.RetryConfig {
	return brieferrors.RetryConfig{
		Retries:     r.Retries,
		BaseDelay:   r.BaseDelay,
		MaxDelay:    r.MaxDelay,
		JitterRatio: r.JitterRatio,
	}
}

// setDefaults sets default configuration values
func setDefaults() {
	// AI defaults
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "anthropic")
	viper.SetDefault("ai.model", "") // Empty means use per-provider default
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.endpoint", "")
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("ai.anthropic_model", "claude-sonnet-4-20250514")
	viper.SetDefault("ai.groq_model", "llama-3.3-70b-versatile")
	viper.SetDefault("ai.ollama_model", "llama3.2")
	viper.SetDefault("ai.ollama_endpoint", "http://localhost:11434")
	viper.SetDefault("ai.gemini_model", "gemini-1.5-flash")
	viper.SetDefault("ai.gemini_api_key", "")

	// Retry defaults
	viper.SetDefault("retry.retries", brieferrors.DefaultRetries)
	viper.SetDefault("retry.base_delay", "500ms")
	viper.SetDefault("retry.max_delay", "30s")
	viper.SetDefault("retry.jitter_ratio", brieferrors.DefaultJitterRatio)

	// Cache defaults
	viper.SetDefault("cache.sentiment_ttl", "1h")
	viper.SetDefault("cache.brief_ttl", "10m")
	viper.SetDefault("cache.sweep_interval", "5m")

	// Insights defaults
	viper.SetDefault("insights.top_n", 5)
	viper.SetDefault("insights.concurrency", 4)

	// Brief defaults
	viper.SetDefault("brief.styles", ValidStyles)
	viper.SetDefault("brief.default_style", "mission_brief")
	viper.SetDefault("brief.tone", "none")
}
