package ports

import "context"

// ArtifactMirror — копия готовых артефактов в объектное хранилище.
type ArtifactMirror interface {
	ObjectKey(jobID, filename string) string
	Upload(ctx context.Context, jobID, path string) (string, error)
}
