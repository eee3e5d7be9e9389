package sequencer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/retry"
)

// Call — один исходящий запрос для payload с номером index.
type Call[P any, R any] func(ctx context.Context, index int, payload P) (R, error)

// AttemptResult — успешный исход одного запроса.
type AttemptResult[R any] struct {
	Index    int
	Payload  R
	Attempts int
}

// ChunkError — какой запрос из последовательности уронил задачу и почему.
type ChunkError struct {
	Index    int
	Total    int
	Attempts int
	Kind     retry.Kind
	Err      error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("request %d/%d failed: %v", e.Index+1, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Options — параметры последовательной отправки.
type Options struct {
	RequestTimeout time.Duration
	Policy         retry.Policy
}

// Sequencer шлёт запросы строго по порядку, без параллельности.
type Sequencer[P any, R any] struct {
	call    Call[P, R]
	pacer   *Pacer
	timeout time.Duration
	policy  retry.Policy
}

func New[P any, R any](call Call[P, R], pacer *Pacer, opts Options) *Sequencer[P, R] {
	return &Sequencer[P, R]{
		call:    call,
		pacer:   pacer,
		timeout: opts.RequestTimeout,
		policy:  opts.Policy,
	}
}

// Run отправляет payloads по порядку. Результаты идут в том же порядке.
// На первой неуспешной серии попыток останавливается: дальше ничего не шлём.
func (s *Sequencer[P, R]) Run(ctx context.Context, log *zap.Logger, payloads []P) ([]AttemptResult[R], error) {
	if log == nil {
		log = zap.NewNop()
	}

	total := len(payloads)
	results := make([]AttemptResult[R], 0, total)

	for i, payload := range payloads {
		reqLog := log.With(zap.Int("chunk", i), zap.Int("chunks", total))

		policy := s.policy
		policy.Logger = reqLog

		var out R
		attempts, err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
			if err := s.pacer.Wait(ctx); err != nil {
				return err
			}
			defer s.pacer.Done()

			callCtx := ctx
			if s.timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, s.timeout)
				defer cancel()
			}

			reqLog.Debug("sending request",
				zap.Int("attempt", attempt),
				zap.Duration("min_delay", s.pacer.MinDelay()),
			)

			res, err := s.call(callCtx, i, payload)
			if err != nil {
				return err
			}
			out = res
			return nil
		})

		if err != nil {
			kind := retry.KindPermanent
			var rerr *retry.Error
			if errors.As(err, &rerr) {
				kind = rerr.Kind
			}
			reqLog.Error("request aborted",
				zap.String("kind", kind.String()),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			return results, &ChunkError{Index: i, Total: total, Attempts: attempts, Kind: kind, Err: err}
		}

		reqLog.Info("request succeeded", zap.Int("attempt", attempts))
		results = append(results, AttemptResult[R]{
			Index:    i,
			Payload:  out,
			Attempts: attempts,
		})
	}

	return results, nil
}

// Payloads — только полезная нагрузка, в порядке запросов.
func Payloads[R any](results []AttemptResult[R]) []R {
	out := make([]R, len(results))
	for i, r := range results {
		out[i] = r.Payload
	}
	return out
}

// TotalAttempts — сколько всего попыток ушло на последовательность.
func TotalAttempts[R any](results []AttemptResult[R]) int {
	n := 0
	for _, r := range results {
		n += r.Attempts
	}
	return n
}
