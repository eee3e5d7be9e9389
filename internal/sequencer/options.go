package sequencer

import (
	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/retry"
)

// OptionsFor собирает таймаут и ретраи для запросов режима mode.
func OptionsFor(cfg config.RequestConfig, mode config.Mode) Options {
	return Options{
		RequestTimeout: cfg.TimeoutFor(mode),
		Policy: retry.Policy{
			MaxAttempts: cfg.Sequencing.MaxAttempts,
			BaseDelay:   cfg.Sequencing.BackoffBase,
			MaxDelay:    cfg.Sequencing.BackoffMax,
			Classify:    retry.Classify,
		},
	}
}
