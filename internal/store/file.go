package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/globotrack/internal/models"
)

// FileStore keeps the profile as a JSON file inside a data directory.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ ProfileStore = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   filepath.Join(dir, ProfileKey+".json"),
		logger: logger,
	}
}

// Path returns the profile file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the profile file.
func (s *FileStore) Load(ctx context.Context) (*models.UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return decodeProfile(data, s.logger), nil
}

// Save writes to a temporary file and renames it over the profile so readers
// never observe a partial write.
func (s *FileStore) Save(ctx context.Context, profile models.UserProfile) error {
	data, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ProfileKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}

	s.logger.Debug("profile saved", "path", s.path, "saved_routes", len(profile.SavedRoutes))
	return nil
}

// Clear removes the profile file. A missing file is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove profile: %w", err)
	}
	return nil
}
