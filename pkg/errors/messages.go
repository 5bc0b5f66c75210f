package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	if IsAuthorizationDenied(err) {
		return formatAuthorizationError(err)
	}

	var styleErr *UnsupportedStyleError
	if As(err, &styleErr) {
		return formatStyleError(styleErr)
	}

	var inputErr *InvalidInputError
	if As(err, &inputErr) {
		return formatInvalidInputError(inputErr)
	}

	var exhausted *ExhaustedError
	if As(err, &exhausted) {
		return formatExhaustedError(exhausted)
	}

	var aiErr *AIError
	if As(err, &aiErr) {
		return formatAIError(aiErr)
	}

	// Default: return the error message as-is
	return err.Error()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file: ~/.config/360brief/config.toml\n")
	b.WriteString("  • Run 'brief config show' to inspect the effective settings\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

func formatAuthorizationError(err error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Authorization denied: %v\n", err)
	b.WriteString("\nThe request was not retried. To fix this:\n")
	b.WriteString("  • Refresh or replace the API key for the configured AI provider\n")
	b.WriteString("  • Check ANTHROPIC_API_KEY, GROQ_API_KEY, GOOGLE_GENAI_API_KEY or BRIEF_AI_API_KEY\n")

	return b.String()
}

func formatStyleError(err *UnsupportedStyleError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Unknown brief style %q\n", err.Style)
	if len(err.Supported) > 0 {
		b.WriteString("\nAvailable styles:\n")
		for _, s := range err.Supported {
			fmt.Fprintf(&b, "  • %s\n", s)
		}
	}

	return b.String()
}

func formatInvalidInputError(err *InvalidInputError) string {
	if err.Field != "" {
		return fmt.Sprintf("Invalid input for '%s': %s\n", err.Field, err.Message)
	}
	return fmt.Sprintf("Invalid input: %s\n", err.Message)
}

func formatExhaustedError(err *ExhaustedError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Gave up after %d attempts: %v\n", err.Attempts, err.Last)
	b.WriteString("\nThe upstream service kept failing. Try again later or raise retry.retries.\n")

	return b.String()
}

// formatAIError formats an AIError with actionable guidance based on status code.
func formatAIError(err *AIError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "AI provider error (%s) during %s: %s\n", err.Provider, err.Operation, err.Message)

	switch {
	case err.StatusCode == 429:
		b.WriteString("\nRate limited by the provider. Wait a moment and retry.\n")
	case err.StatusCode >= 500:
		b.WriteString("\nThe provider is having trouble. Sentiment falls back to the rule-based analyzer.\n")
	case err.Retryable:
		b.WriteString("\nThis looks temporary. Retrying may help.\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}
