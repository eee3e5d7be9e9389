package error_notificator

import (
	"context"
	"errors"
)

type Service struct {
	infra []Notificator
}

func NewService(infra ...Notificator) *Service {
	return &Service{infra: infra}
}

// Notify рассылает во все каналы; ошибки каналов собираются вместе.
func (s *Service) Notify(ctx context.Context, source string, err error, details string) error {
	var errs []error
	for _, n := range s.infra {
		if nErr := n.Notify(ctx, source, err, details); nErr != nil {
			errs = append(errs, nErr)
		}
	}
	return errors.Join(errs...)
}
