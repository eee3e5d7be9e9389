package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func noSleep(sleeps *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		if sleeps != nil {
			*sleeps = append(*sleeps, d)
		}
		return nil
	}
}

func rateLimited() error {
	return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}
}

func TestPolicy_ExhaustsExactlyMaxAttempts(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 3, Sleep: noSleep(nil)}

	attempts, err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return rateLimited()
	})

	if calls != 3 || attempts != 3 {
		t.Fatalf("calls=%d attempts=%d, want 3/3", calls, attempts)
	}

	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *retry.Error", err)
	}
	if rerr.Kind != KindRateLimited || rerr.Attempts != 3 {
		t.Errorf("got kind=%s attempts=%d", rerr.Kind, rerr.Attempts)
	}
}

func TestPolicy_SucceedsAfterRateLimits(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calls := 0
	p := Policy{MaxAttempts: 3, Sleep: noSleep(nil), Logger: zap.New(core)}

	attempts, err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return rateLimited()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 2 {
		t.Errorf("warnings = %d, want 2", n)
	}
}

func TestPolicy_PermanentAbortsImmediately(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 5, Sleep: noSleep(nil)}

	_, err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindPermanent {
		t.Errorf("err = %v, want permanent", err)
	}
}

func TestPolicy_BackoffDoublesUpToCap(t *testing.T) {
	var sleeps []time.Duration
	p := Policy{
		MaxAttempts: 6,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
		Sleep:       noSleep(&sleeps),
	}

	_, _ = p.Do(context.Background(), func(context.Context, int) error {
		return fmt.Errorf("wrapped: %w", context.DeadlineExceeded)
	})

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", sleeps, want)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, sleeps[i], want[i])
		}
	}
}

func TestPolicy_ContextCancelledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{
		MaxAttempts: 3,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	_, err := p.Do(ctx, func(context.Context, int) error {
		calls++
		return rateLimited()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"429", rateLimited(), KindRateLimited},
		{"quota", &openai.APIError{HTTPStatusCode: 429, Code: "insufficient_quota"}, KindPermanent},
		{"401", &openai.APIError{HTTPStatusCode: 401}, KindPermanent},
		{"400", &openai.APIError{HTTPStatusCode: 400}, KindPermanent},
		{"500", &openai.APIError{HTTPStatusCode: 500}, KindTransient},
		{"503 request error", &openai.RequestError{HTTPStatusCode: 503}, KindTransient},
		{"408", &openai.APIError{HTTPStatusCode: 408}, KindTransient},
		{"deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), KindTransient},
		{"plain", errors.New("boom"), KindPermanent},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("%s: Classify() = %s, want %s", tt.name, got, tt.want)
		}
	}
}
