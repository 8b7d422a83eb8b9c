package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ustazhub.kz/internal/ids"
)

// Local stores files on the local filesystem under a single directory.
// Locators are the stored file names; they never contain path separators.
type Local struct {
	dir string
}

// NewLocal creates the upload directory if needed and returns a Local store.
func NewLocal(dir string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage: upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	locator := ids.New() + "_" + sanitizeFilename(filename)
	path := filepath.Join(l.dir, locator)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: close file: %w", err)
	}
	return locator, nil
}

func (l *Local) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	path, err := l.resolve(locator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (l *Local) Remove(ctx context.Context, locator string) error {
	path, err := l.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// resolve guards against path traversal through a crafted locator.
func (l *Local) resolve(locator string) (string, error) {
	if locator == "" || locator != filepath.Base(locator) || strings.HasPrefix(locator, ".") {
		return "", ErrNotFound
	}
	return filepath.Join(l.dir, locator), nil
}

// sanitizeFilename keeps the client-supplied name readable while stripping
// anything that could escape the upload directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}
