// Package errors provides typed errors for the brief pipeline.
//
// The pipeline distinguishes five failure kinds: invalid input, upstream
// unavailability, authorization denial, unsupported style and exhausted
// retries. Each kind has a concrete type so callers can branch with
// errors.As, and a predicate helper for the common checks. All types support
// errors.Is() and errors.As() from the standard library and
// cockroachdb/errors.
package errors

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind classifies an error into one of the pipeline failure kinds.
type Kind string

// Error kinds surfaced to callers.
const (
	KindUnknown             Kind = "unknown"
	KindInvalidInput        Kind = "invalid_input"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindAuthorizationDenied Kind = "authorization_denied"
	KindUnsupportedStyle    Kind = "unsupported_style"
	KindExhausted           Kind = "exhausted"
)

// InvalidInputError reports a missing or malformed required argument.
type InvalidInputError struct {
	Field   string // Which argument is at fault
	Message string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
	}
	return "invalid input: " + e.Message
}

// NewInvalidInputError creates a new InvalidInputError.
func NewInvalidInputError(field, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: message}
}

// UpstreamError reports a failed call to an external analysis capability.
type UpstreamError struct {
	Provider   string // e.g., "anthropic", "ollama"
	Operation  string // e.g., "Analyze", "Polish"
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %s %s unavailable (HTTP %d): %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream %s %s unavailable: %s", e.Provider, e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(provider, operation, message string) *UpstreamError {
	return &UpstreamError{Provider: provider, Operation: operation, Message: message}
}

// NewUpstreamErrorWithCause creates an UpstreamError and carries over the
// HTTP status of any AIError found in the cause chain.
func NewUpstreamErrorWithCause(provider, operation, message string, cause error) *UpstreamError {
	e := &UpstreamError{Provider: provider, Operation: operation, Message: message, Cause: cause}
	var aiErr *AIError
	if errors.As(cause, &aiErr) {
		e.StatusCode = aiErr.StatusCode
	}
	return e
}

// AuthorizationError reports that credentials were rejected. Retrying does
// not help; the caller has to refresh credentials first.
type AuthorizationError struct {
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("authorization denied for %s: %s", e.Operation, e.Message)
	}
	return "authorization denied: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *AuthorizationError) Unwrap() error {
	return e.Cause
}

// NewAuthorizationError creates a new AuthorizationError.
func NewAuthorizationError(operation, message string) *AuthorizationError {
	return &AuthorizationError{Operation: operation, Message: message}
}

// UnsupportedStyleError reports a brief style tag that is not recognized or
// not enabled.
type UnsupportedStyleError struct {
	Style     string
	Supported []string
}

// Error implements the error interface.
func (e *UnsupportedStyleError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported style %q", e.Style)
	}
	return fmt.Sprintf("unsupported style %q (supported: %s)", e.Style, strings.Join(e.Supported, ", "))
}

// NewUnsupportedStyleError creates a new UnsupportedStyleError.
func NewUnsupportedStyleError(style string, supported []string) *UnsupportedStyleError {
	return &UnsupportedStyleError{Style: style, Supported: supported}
}

// ExhaustedError is returned when every retry attempt failed. Its message is
// the last error's message, unchanged, and it unwraps to that error so the
// original cause stays reachable.
type ExhaustedError struct {
	Attempts int
	Last     error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("retries exhausted after %d attempts", e.Attempts)
	}
	return e.Last.Error()
}

// Unwrap returns the last error seen before giving up.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string // Which config field has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// AIError represents AI provider transport and protocol errors.
//
// Retryable is a hint for the messages shown to users. RunWithRetry does not
// read it and retries any AIError whose status is not 401 or 403.
type AIError struct {
	Provider   string // e.g., "anthropic", "groq"
	Operation  string // e.g., "Chat"
	StatusCode int
	Message    string
	Retryable  bool // informational; see FormatUserError
	Cause      error
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai %s %s failed (HTTP %d): %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ai %s %s failed: %s", e.Provider, e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *AIError) Unwrap() error {
	return e.Cause
}

// NewAIError creates a new AIError.
func NewAIError(provider, operation, message string) *AIError {
	return &AIError{Provider: provider, Operation: operation, Message: message}
}

// NewAIErrorWithStatus creates a new AIError with HTTP status code.
func NewAIErrorWithStatus(provider, operation string, statusCode int, message string) *AIError {
	return &AIError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  isRetryableHTTPStatus(statusCode),
	}
}

// NewAIErrorWithCause creates a new AIError with an underlying cause.
// Transport failures (no HTTP status) are treated as transient.
func NewAIErrorWithCause(provider, operation, message string, cause error) *AIError {
	return &AIError{
		Provider:  provider,
		Operation: operation,
		Message:   message,
		Retryable: cause != nil && !errors.Is(cause, context.Canceled),
		Cause:     cause,
	}
}

// IsInvalidInput checks if an error or any error in its chain is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsUpstreamUnavailable checks if an error or any error in its chain came
// from an external analysis call.
func IsUpstreamUnavailable(err error) bool {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return true
	}
	var aiErr *AIError
	return errors.As(err, &aiErr)
}

// IsAuthorizationDenied reports whether err carries an authorization-denied
// signal: an AuthorizationError, or an upstream/provider error with HTTP 401
// or 403 anywhere in its chain.
func IsAuthorizationDenied(err error) bool {
	if err == nil {
		return false
	}

	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return true
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) && isAuthStatus(upErr.StatusCode) {
		return true
	}

	var aiErr *AIError
	if errors.As(err, &aiErr) && isAuthStatus(aiErr.StatusCode) {
		return true
	}

	return false
}

// IsUnsupportedStyle checks if an error or any error in its chain is an UnsupportedStyleError.
func IsUnsupportedStyle(err error) bool {
	var target *UnsupportedStyleError
	return errors.As(err, &target)
}

// IsExhausted checks if an error or any error in its chain is an ExhaustedError.
func IsExhausted(err error) bool {
	var target *ExhaustedError
	return errors.As(err, &target)
}

// IsConfigError checks if an error or any error in its chain is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsAIError checks if an error or any error in its chain is an AIError.
func IsAIError(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr)
}

// KindOf classifies err. Authorization denial wins over everything else
// because it is the one condition callers must act on.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case IsAuthorizationDenied(err):
		return KindAuthorizationDenied
	case IsInvalidInput(err):
		return KindInvalidInput
	case IsUnsupportedStyle(err):
		return KindUnsupportedStyle
	case IsExhausted(err):
		return KindExhausted
	case IsUpstreamUnavailable(err):
		return KindUpstreamUnavailable
	default:
		return KindUnknown
	}
}

func isAuthStatus(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}

// isRetryableHTTPStatus returns true for HTTP status codes that are typically retryable.
func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}

// Re-export commonly used functions from cockroachdb/errors for convenience.
// This allows consumers to use brieferrors.Wrap() instead of importing two packages.
var (
	// New creates a new error with the given message.
	New = errors.New

	// Newf creates a new error with formatted message.
	Newf = errors.Newf

	// Wrap wraps an error with additional context.
	Wrap = errors.Wrap

	// Wrapf wraps an error with formatted additional context.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Cause returns the root cause of an error.
	Cause = errors.Cause
)
