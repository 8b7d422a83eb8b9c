// Package storage persists uploaded achievement files. The core treats file
// contents as opaque bytes identified by a locator string.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the locator resolves to no stored file.
var ErrNotFound = errors.New("storage: file not found")

// Store is the backend an achievement submission writes its attachment to.
// Save must either persist the whole stream and return a locator, or fail
// without leaving a usable locator behind.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
	Remove(ctx context.Context, locator string) error
}
