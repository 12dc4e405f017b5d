package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"resume-studio/internal/domain"
)

// DefaultArtifactDir is where exports land when no directory is configured.
var DefaultArtifactDir = filepath.Join("resume-data", "generated")

// DirSink writes artifacts into a local directory.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) *DirSink {
	if dir == "" {
		dir = DefaultArtifactDir
	}
	return &DirSink{dir: dir}
}

func (s *DirSink) Put(ctx context.Context, a domain.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(s.dir, a.FileName)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
