// Package marketfs writes derived market files (exports, charts) under the data path.
package marketfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/finapps/internal/common"
)

// Store writes files beneath basePath. Every write is atomic.
type Store struct {
	basePath string
	logger   *common.Logger
}

// NewStore creates the base directory if needed.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data path %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Msg("MarketFS store opened")
	return &Store{basePath: path, logger: logger}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// Path returns where WriteRaw puts subdir/key.
func (s *Store) Path(subdir, key string) string {
	return filepath.Join(s.basePath, subdir, sanitizeKey(key))
}

// WriteRaw writes data to subdir/key through a temp file and rename, so
// readers never observe a partial file.
func (s *Store) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, sanitizeKey(key))

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug().Str("path", target).Int("bytes", len(data)).Msg("File written")
	return nil
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}
