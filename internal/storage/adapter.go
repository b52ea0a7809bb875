// Package storage reads the book from the configured backend.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/metcalfc/folio/internal/reader"
)

// Adapter defines the interface for storage backends
type Adapter interface {
	// Get retrieves data from the given path
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// Name identifies the backend in logs, e.g. "local:/srv/books"
	Name() string

	// Close cleans up any resources
	Close() error
}

// Fetch reads the whole object at path.
func Fetch(ctx context.Context, a Adapter, path string) ([]byte, error) {
	rc, err := a.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// BookSource loads an EPUB through an Adapter on every Load.
type BookSource struct {
	Adapter Adapter
	Path    string
}

func (s BookSource) Load(ctx context.Context) (*reader.Book, error) {
	data, err := Fetch(ctx, s.Adapter, s.Path)
	if err != nil {
		return nil, err
	}
	return reader.NewBook(data)
}

func (s BookSource) String() string {
	return s.Adapter.Name() + "/" + s.Path
}
