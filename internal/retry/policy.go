package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 60 * time.Second
)

// Policy — переиспользуемая политика повторов:
// операция + классификатор + лимит попыток + экспоненциальный backoff.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Classify    Classifier

	// Sleep подменяется в тестах
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *zap.Logger
}

// Error — итог неудачной серии попыток.
type Error struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Backoff — пауза после неудачной попытки attempt (с единицы).
func (p Policy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	max := p.MaxDelay
	if max <= 0 {
		max = DefaultMaxDelay
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Do выполняет op, повторяя её на rate-limit и transient ошибках.
// op получает номер попытки (с единицы).
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	classify := p.Classify
	if classify == nil {
		classify = Classify
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var lastErr error
	var lastKind Kind

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := op(ctx, attempt)
		if err == nil {
			return attempt, nil
		}

		// отмена снаружи, не ретраим
		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}

		lastErr = err
		lastKind = classify(err)

		if !lastKind.Retryable() {
			return attempt, &Error{Kind: lastKind, Attempts: attempt, Err: err}
		}

		if attempt == maxAttempts {
			break
		}

		wait := p.Backoff(attempt)
		log.Warn("request failed, backing off",
			zap.String("kind", lastKind.String()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		if err := sleep(ctx, wait); err != nil {
			return attempt, err
		}
	}

	log.Warn("request failed, attempts exhausted",
		zap.String("kind", lastKind.String()),
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr),
	)
	return maxAttempts, &Error{Kind: lastKind, Attempts: maxAttempts, Err: lastErr}
}

// SleepContext спит d или до отмены контекста.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
