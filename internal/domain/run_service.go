package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Vovarama1992/audioproc/internal/ports"
)

type runService struct {
	repo ports.RunRepo
}

func NewRunService(repo ports.RunRepo) ports.RunService {
	return &runService{repo: repo}
}

// Record пишет строку журнала; id выдаём сами, если не задан.
func (s *runService) Record(ctx context.Context, rec ports.RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Outputs == nil {
		rec.Outputs = []string{}
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("record run %s: %w", rec.Input, err)
	}
	return nil
}

func (s *runService) Recent(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}
