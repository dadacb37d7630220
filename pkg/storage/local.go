package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Local stores attachment blobs on the local filesystem under a base
// directory, mirroring the key layout as subdirectories.
type Local struct {
	baseDir string
	logger  zerolog.Logger
}

// NewLocal constructs a filesystem-backed blob store rooted at baseDir.
func NewLocal(baseDir string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("storage base directory must be provided")
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Local{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Save writes the blob to disk and returns its path relative to the base
// directory. Keys containing path traversal are rejected.
func (l *Local) Save(ctx context.Context, key string, reader io.Reader) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(key))
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	target := filepath.Join(l.baseDir, cleaned)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachment directory: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", fmt.Errorf("failed to write attachment file: %w", err)
	}

	l.logger.Info().Str("path", target).Msg("attachment stored on disk")

	return filepath.ToSlash(cleaned), nil
}
