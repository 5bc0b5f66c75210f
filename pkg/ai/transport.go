package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// jsonCall describes one JSON POST against a provider API.
type jsonCall struct {
	provider string
	url      string
	headers  map[string]string
	body     any

	// errorMessage extracts a human message from an error response body.
	errorMessage func(body []byte) string
}

// postJSON performs the call and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, call jsonCall, out any) error {
	payload, err := json.Marshal(call.body)
	if err != nil {
		return brieferrors.NewAIErrorWithCause(call.provider, "Chat", "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, call.url, bytes.NewReader(payload))
	if err != nil {
		return brieferrors.NewAIErrorWithCause(call.provider, "Chat", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range call.headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return brieferrors.NewAIErrorWithCause(call.provider, "Chat", "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return brieferrors.NewAIErrorWithCause(call.provider, "Chat", "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if call.errorMessage != nil {
			msg = call.errorMessage(respBody)
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return brieferrors.NewAIErrorWithStatus(call.provider, "Chat", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return brieferrors.NewAIErrorWithCause(call.provider, "Chat", "failed to parse response", err)
	}
	return nil
}

// logDebug logs a debug message if verbose logging is enabled.
func logDebug(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
