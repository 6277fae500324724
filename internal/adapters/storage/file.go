package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// validKey restricts keys to names that are safe as file names.
var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// File stores each key as <dir>/<key>.json.
// Writes go to a temp file that is renamed into place, so readers never
// observe a half-written value.
type File struct {
	dir string
}

// NewFile creates a file-backed store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &File{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (f *File) Dir() string {
	return f.dir
}

// Get implements ports.KeyValueStore.
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.NewNotFoundError("storage key", key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}

// Set implements ports.KeyValueStore.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (f *File) Name() string {
	return "storage"
}

// Check implements ports.HealthChecker by verifying the directory is usable.
func (f *File) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("storage directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", f.dir)
	}

	return nil
}

func (f *File) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", domain.NewValidationErrorWithValue("key", "must match "+validKey.String(), key)
	}

	return filepath.Join(f.dir, key+".json"), nil
}
