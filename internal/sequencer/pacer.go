package sequencer

import (
	"context"
	"time"

	"github.com/Vovarama1992/audioproc/internal/retry"
)

// Pacer держит минимальную паузу между запросами:
// отсчёт идёт от завершения предыдущего запроса.
// Один Pacer на модель/провайдера, живёт между файлами пачки.
type Pacer struct {
	minDelay time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{
		minDelay: minDelay,
		now:      time.Now,
		sleep:    retry.SleepContext,
	}
}

// Wait блокирует до истечения паузы с прошлого запроса.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.minDelay <= 0 || p.last.IsZero() {
		return nil
	}
	wait := p.minDelay - p.now().Sub(p.last)
	if wait <= 0 {
		return nil
	}
	return p.sleep(ctx, wait)
}

// Done отмечает завершение запроса (успешного или нет).
func (p *Pacer) Done() {
	if p == nil {
		return
	}
	p.last = p.now()
}

// MinDelay; для nil-пейсера 0.
func (p *Pacer) MinDelay() time.Duration {
	if p == nil {
		return 0
	}
	return p.minDelay
}
