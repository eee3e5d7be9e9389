package domain

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/audioproc/internal/ports"
)

type s3Service struct {
	client ports.S3Client
	now    func() time.Time
}

func NewS3Service(client ports.S3Client) ports.ArtifactMirror {
	return &s3Service{client: client, now: time.Now}
}

// ObjectKey — путь в бакете: дата/задача/файл
func (s *s3Service) ObjectKey(jobID, filename string) string {
	date := s.now().Format("2006-01-02")
	clean := filepath.Base(filename)
	return fmt.Sprintf("%s/%s/%s", date, jobID, clean)
}

// Upload отправляет готовый файл в бакет
func (s *s3Service) Upload(ctx context.Context, jobID, path string) (string, error) {
	if jobID == "" {
		return "", fmt.Errorf("jobID required")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	return s.client.PutObject(ctx, s.ObjectKey(jobID, path), f, info.Size(), contentTypeOf(path))
}

func contentTypeOf(path string) string {
	ext := filepath.Ext(path)
	switch ext {
	case ".aac":
		return "audio/aac"
	case ".opus":
		return "audio/opus"
	case ".pcm":
		return "audio/L16"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
