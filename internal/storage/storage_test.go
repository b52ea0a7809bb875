package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metcalfc/folio/internal/config"
	"github.com/metcalfc/folio/internal/epubtest"
)

func TestLocalAdapter(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello"), 0644)

	a, err := NewLocalAdapter(dir)
	if err != nil {
		t.Fatalf("NewLocalAdapter failed: %v", err)
	}
	defer a.Close()
	ctx := context.Background()

	data, err := Fetch(ctx, a, "hello.txt")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Fetch = %q", data)
	}

	// Absolute paths bypass the base path.
	data, err = Fetch(ctx, a, filepath.Join(dir, "hello.txt"))
	if err != nil || string(data) != "hello" {
		t.Errorf("absolute Fetch = %q, %v", data, err)
	}

	ok, err := a.Exists(ctx, "hello.txt")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = a.Exists(ctx, "missing.txt")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}

	if _, err := a.Get(ctx, "missing.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Get(missing) = %v, want fs.ErrNotExist", err)
	}

	if !strings.HasPrefix(a.Name(), "local:") {
		t.Errorf("Name = %q", a.Name())
	}
}

func TestBookSource(t *testing.T) {
	dir := t.TempDir()
	epubtest.Write(t, dir, epubtest.Sample())

	a, err := NewAdapter(config.StorageConfig{Adapter: "local", Local: config.LocalStorageOpts{BasePath: dir}})
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}

	src := BookSource{Adapter: a, Path: "book.epub"}
	book, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer book.Close()

	if book.Title != "The Coding Career Handbook" {
		t.Errorf("Title = %q", book.Title)
	}
	if !strings.HasSuffix(src.String(), "/book.epub") {
		t.Errorf("String = %q", src.String())
	}
}

func TestNewAdapterUnknown(t *testing.T) {
	if _, err := NewAdapter(config.StorageConfig{Adapter: "ftp"}); err == nil {
		t.Fatal("expected error for unknown adapter")
	}
}
