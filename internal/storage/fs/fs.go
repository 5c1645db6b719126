// Package fs implements the storage port on the local filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage"
)

// Store implements storage.Store rooted at a base path.
type Store struct {
	basePath string
	logger   types.Logger
	metrics  types.Metrics
}

// New creates a filesystem store. The base path is created if missing.
func New(basePath string, logger types.Logger, metrics types.Metrics) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	logger.Info(context.Background(), "Filesystem storage initialized", types.Fields{
		"base_path": basePath,
	})

	return &Store{
		basePath: basePath,
		logger:   logger.WithFields(types.Fields{"adapter": "fs"}),
		metrics:  metrics,
	}, nil
}

// Read returns the content of the file at path.
func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()

	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			s.metrics.RecordError("storage_read", "not_found")
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
		}
		s.logger.Error(ctx, "Failed to read object", err, types.Fields{"path": path})
		s.metrics.RecordError("storage_read", "io_error")
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s.metrics.RecordSuccess("storage_read")
	s.metrics.RecordFileSize("input", int64(len(data)))
	s.metrics.RecordDuration("storage_read", time.Since(start).Seconds())

	return data, nil
}

// Write stores data at path, creating parent directories as needed.
func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	start := time.Now()
	full := s.resolve(path)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		s.logger.Error(ctx, "Failed to create directory", err, types.Fields{"path": path})
		s.metrics.RecordError("storage_write", "mkdir")
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		s.logger.Error(ctx, "Failed to write object", err, types.Fields{"path": path})
		s.metrics.RecordError("storage_write", "io_error")
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Debug(ctx, "Object written", types.Fields{
		"path":  path,
		"bytes": len(data),
	})
	s.metrics.RecordSuccess("storage_write")
	s.metrics.RecordFileSize("output", int64(len(data)))
	s.metrics.RecordDuration("storage_write", time.Since(start).Seconds())

	return nil
}

// Exists reports whether a file is present at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(s.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// List returns all file paths under prefix, relative to the base path.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	root := s.resolve(prefix)

	var paths []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.basePath, p)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to list objects", err, types.Fields{"prefix": prefix})
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	return paths, nil
}

// resolve maps a storage path onto the base path, preventing traversal above
// the root.
func (s *Store) resolve(path string) string {
	path = strings.TrimPrefix(path, "/")
	return filepath.Join(s.basePath, filepath.FromSlash(path))
}
