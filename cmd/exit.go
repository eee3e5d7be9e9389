package main

import (
	"errors"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/converter"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

// exitCode: 2 при ошибке конфигурации или входа, 1 если упала конвертация.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, config.ErrMissingAPIKey),
		errors.Is(err, converter.ErrInput):
		return exitConfig
	default:
		return exitFailure
	}
}
