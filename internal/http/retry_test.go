package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeSuccess},
		{errors.New("GET /api/v1/collection/x: status 401"), ErrorTypeCredential},
		{errors.New("AuthenticationFailed: signature mismatch"), ErrorTypeCredential},
		{errors.New("dial tcp: connection refused"), ErrorTypeNetwork},
		{errors.New("unexpected EOF"), ErrorTypeNetwork},
		{fmt.Errorf("fetch: %w", context.DeadlineExceeded), ErrorTypeNetwork},
		{errors.New("marketplace throttled request"), ErrorTypeRetryable},
		{errors.New("status 503 service unavailable"), ErrorTypeRetryable},
		{errors.New("collection not found (404)"), ErrorTypeFatal},
		{fmt.Errorf("fetch: %w", context.Canceled), ErrorTypeFatal},
		{errors.New("something odd"), ErrorTypeFatal},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, ErrorTypeName(got), ErrorTypeName(tt.want))
		}
	}
}

func TestCalculateBackoffBounds(t *testing.T) {
	if got := CalculateBackoff(0, time.Second, time.Minute); got != 0 {
		t.Errorf("CalculateBackoff(0) = %v, want 0", got)
	}
	for attempt := 1; attempt <= 40; attempt++ {
		got := CalculateBackoff(attempt, 100*time.Millisecond, 2*time.Second)
		if got < 0 || got >= 2*time.Second {
			t.Fatalf("CalculateBackoff(%d) = %v, want in [0, 2s)", attempt, got)
		}
	}
}

func TestExecuteWithRetryAttempts(t *testing.T) {
	cfg := Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"success", nil, 1},
		{"fatal is not retried", errors.New("400 bad request"), 1},
		{"credential is not retried", errors.New("403 forbidden"), 1},
		{"network retried to the limit", errors.New("connection reset by peer"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := ExecuteWithRetry(context.Background(), cfg, func() error {
				calls++
				return tt.err
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != (tt.err != nil) {
				t.Errorf("error = %v, want error %v", err, tt.err != nil)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("error %v does not wrap %v", err, tt.err)
			}
		})
	}
}

func TestExecuteWithRetryRecovers(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	var retries []int
	cfg.OnRetry = func(attempt int, err error, errType ErrorType) {
		retries = append(retries, attempt)
	}

	calls := 0
	err := ExecuteWithRetry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("503 server busy")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithRetry() error = %v", err)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", retries)
	}
}

func TestExecuteWithRetryCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxRetries: 5, InitialDelay: 5 * time.Second, MaxDelay: 30 * time.Second}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := ExecuteWithRetry(ctx, cfg, func() error {
		return errors.New("i/o timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("returned after %v, want prompt return on cancel", elapsed)
	}
}

func TestBackoffHonorsRetryAfter(t *testing.T) {
	resp := &nethttp.Response{StatusCode: nethttp.StatusTooManyRequests, Header: nethttp.Header{}}
	resp.Header.Set("Retry-After", "3")

	if got := Backoff(100*time.Millisecond, 10*time.Second, 0, resp); got != 3*time.Second {
		t.Errorf("Backoff() = %v, want 3s from Retry-After", got)
	}
	if got := Backoff(100*time.Millisecond, time.Second, 0, resp); got != time.Second {
		t.Errorf("Backoff() = %v, want capped at 1s", got)
	}

	resp.StatusCode = nethttp.StatusInternalServerError
	if got := Backoff(100*time.Millisecond, time.Second, 0, resp); got >= 200*time.Millisecond {
		t.Errorf("Backoff() on 500 = %v, want jittered below 200ms", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if _, ok := ParseRetryAfter(nil); ok {
		t.Error("ParseRetryAfter(nil) ok = true")
	}

	resp := &nethttp.Response{Header: nethttp.Header{}}
	if _, ok := ParseRetryAfter(resp); ok {
		t.Error("missing header ok = true")
	}

	resp.Header.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(nethttp.TimeFormat))
	if d, ok := ParseRetryAfter(resp); !ok || d != 0 {
		t.Errorf("past date = (%v, %v), want (0, true)", d, ok)
	}

	resp.Header.Set("Retry-After", "soon")
	if _, ok := ParseRetryAfter(resp); ok {
		t.Error("garbage header ok = true")
	}
}
