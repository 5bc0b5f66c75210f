package errors

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ask-andrew/360brief-sub007/pkg/clock"
)

func testRetryConfig(c clock.Clock) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.Clock = c
	return cfg
}

func TestRunWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	for k := 0; k < DefaultRetries; k++ {
		fake := clock.Fake(time.Unix(0, 0))
		calls := 0

		got, err := RunWithRetry(t.Context(), testRetryConfig(fake), func(context.Context) (string, error) {
			calls++
			if calls <= k {
				return "", NewUpstreamError("groq", "Analyze", "flaky")
			}
			return "ok", nil
		})

		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if got != "ok" {
			t.Errorf("k=%d: result = %q, want ok", k, got)
		}
		if calls != k+1 {
			t.Errorf("k=%d: calls = %d, want %d", k, calls, k+1)
		}
		if waits := fake.Waits(); len(waits) != k {
			t.Errorf("k=%d: delays = %d, want %d", k, len(waits), k)
		}
	}
}

func TestRunWithRetry_ExhaustsWithLastError(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	calls := 0
	var last error

	_, err := RunWithRetry(t.Context(), testRetryConfig(fake), func(context.Context) (int, error) {
		calls++
		last = errors.Newf("attempt %d failed", calls)
		return 0, last
	})

	if !IsExhausted(err) {
		t.Fatalf("expected ExhaustedError, got %T: %v", err, err)
	}
	if err.Error() != last.Error() {
		t.Errorf("Error() = %q, want last error %q", err.Error(), last.Error())
	}
	if !errors.Is(err, last) {
		t.Error("errors.Is() should find the last error")
	}
	if calls != DefaultRetries+1 {
		t.Errorf("calls = %d, want %d", calls, DefaultRetries+1)
	}
	if waits := fake.Waits(); len(waits) != DefaultRetries {
		t.Errorf("delays = %d, want %d", len(waits), DefaultRetries)
	}
}

func TestRunWithRetry_StopsOnAuthorizationDenied(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"authorization error", NewAuthorizationError("Chat", "expired")},
		{"http 401", NewAIErrorWithStatus("anthropic", "Chat", 401, "invalid x-api-key")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := clock.Fake(time.Unix(0, 0))
			calls := 0

			_, err := RunWithRetry(t.Context(), testRetryConfig(fake), func(context.Context) (int, error) {
				calls++
				return 0, tt.err
			})

			if err != tt.err {
				t.Errorf("err = %v, want the original error unchanged", err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
			if waits := fake.Waits(); len(waits) != 0 {
				t.Errorf("delays = %v, want none", waits)
			}
		})
	}
}

func TestRunWithRetry_IgnoresAIErrorRetryableHint(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	calls := 0

	got, err := RunWithRetry(t.Context(), testRetryConfig(fake), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewAIErrorWithStatus("openai", "Chat", 400, "bad request")
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q, want ok", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (non-retryable AIError is still retried)", calls)
	}
}

func TestRunWithRetry_InvalidInputFailsFast(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	calls := 0

	err := Retry(t.Context(), testRetryConfig(fake), func(context.Context) error {
		calls++
		return NewInvalidInputError("text", "empty")
	})

	if !IsInvalidInput(err) {
		t.Errorf("expected InvalidInputError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRunWithRetry_DoesNotRetrySuccess(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	calls := 0

	err := Retry(t.Context(), testRetryConfig(fake), func(context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(fake.Waits()) != 0 {
		t.Error("success should not wait")
	}
}

func TestRunWithRetry_BackoffGrowsExponentially(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	cfg := testRetryConfig(fake)
	cfg.JitterRatio = 0

	_ = Retry(t.Context(), cfg, func(context.Context) error {
		return errors.New("down")
	})

	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	got := fake.Waits()
	if len(got) != len(want) {
		t.Fatalf("waits = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRunWithRetry_OnRetryHook(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	cfg := testRetryConfig(fake)
	cfg.Retries = 2

	var attempts []int
	cfg.OnRetry = func(attempt int, _ time.Duration, _ error) {
		attempts = append(attempts, attempt)
	}

	_ = Retry(t.Context(), cfg, func(context.Context) error {
		return errors.New("down")
	})

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestRunWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	calls := 0
	err := Retry(ctx, DefaultRetryConfig(), func(context.Context) error {
		calls++
		return nil
	})

	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRunWithRetry_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cfg := DefaultRetryConfig()
	cfg.BaseDelay = time.Hour

	calls := 0
	err := Retry(ctx, cfg, func(context.Context) error {
		calls++
		cancel()
		return NewUpstreamError("groq", "Analyze", "down")
	})

	if !IsUpstreamUnavailable(err) {
		t.Errorf("expected the upstream error to be preserved, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		max     time.Duration
		attempt int
		jitter  float64
		minWant time.Duration
		maxWant time.Duration
	}{
		{"first attempt no jitter", 500 * time.Millisecond, 30 * time.Second, 0, 0, 500 * time.Millisecond, 500 * time.Millisecond},
		{"third attempt no jitter", 500 * time.Millisecond, 30 * time.Second, 2, 0, 2 * time.Second, 2 * time.Second},
		{"capped at max", time.Second, 5 * time.Second, 10, 0, 5 * time.Second, 5 * time.Second},
		{"no cap when max is zero", time.Second, 0, 6, 0, 64 * time.Second, 64 * time.Second},
		{"twenty percent jitter", time.Second, 30 * time.Second, 1, 0.2, 1600 * time.Millisecond, 2400 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 50 {
				got := CalculateBackoff(tt.base, tt.max, tt.attempt, tt.jitter)
				if got < tt.minWant || got > tt.maxWant {
					t.Fatalf("CalculateBackoff() = %v, want within [%v, %v]", got, tt.minWant, tt.maxWant)
				}
			}
		})
	}
}
