package ports

import (
	"context"
	"time"
)

const (
	RunStatusDone    = "done"
	RunStatusAborted = "aborted"
)

// DTO одного обработанного файла
type RunRecord struct {
	ID         string
	JobID      string
	Mode       string
	Input      string
	Outputs    []string
	Status     string
	Chunks     int
	Attempts   int
	Bytes      int64
	Error      *string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Репозиторий Postgres
type RunRepo interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, rec RunRecord) error
	ListRecent(ctx context.Context, limit int) ([]RunRecord, error)
}

type RunService interface {
	Record(ctx context.Context, rec RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
}
