// Package render lays out EPUB sections onto surfaces.
//
// It mirrors the shape of browser EPUB libraries: Open returns immediately,
// Ready and Navigation resolve independently in the background, and
// RenderTo binds a Rendition to a Surface.
package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/metcalfc/folio/internal/reader"
	"github.com/patrickmn/go-cache"
)

var (
	// ErrNotReady is returned by RenderTo before the book has loaded.
	ErrNotReady = errors.New("book not ready")
	// ErrEmptySpine is returned when a book has nothing to display.
	ErrEmptySpine = errors.New("epub has an empty spine")
)

const (
	sectionTTL     = 10 * time.Minute
	sectionCleanup = 20 * time.Minute
)

// Book is a document being loaded or loaded.
type Book struct {
	src    reader.Source
	cancel context.CancelFunc

	opened *Future[*reader.Book]
	ready  *Future[[]string]
	nav    *Future[[]reader.TOCEntry]

	sections  *cache.Cache
	closeOnce sync.Once
}

// Open starts loading src and returns immediately.
func Open(src reader.Source) *Book {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Book{
		src:      src,
		cancel:   cancel,
		opened:   newFuture[*reader.Book](),
		ready:    newFuture[[]string](),
		nav:      newFuture[[]reader.TOCEntry](),
		sections: cache.New(sectionTTL, sectionCleanup),
	}
	go b.load(ctx)
	return b
}

func (b *Book) load(ctx context.Context) {
	rb, err := b.src.Load(ctx)
	if err != nil {
		err = fmt.Errorf("load %s: %w", b.src, err)
		b.opened.resolve(nil, err)
		b.ready.resolve(nil, err)
		b.nav.resolve(nil, err)
		return
	}
	b.opened.resolve(rb, nil)

	go func() {
		spine := rb.Spine()
		if len(spine) == 0 {
			b.ready.resolve(nil, ErrEmptySpine)
			return
		}
		b.ready.resolve(spine, nil)
	}()

	go func() {
		b.nav.resolve(rb.TOC())
	}()
}

// Ready waits until the book can be rendered.
func (b *Book) Ready(ctx context.Context) error {
	_, err := b.ready.Wait(ctx)
	return err
}

// Navigation waits for the table of contents.
func (b *Book) Navigation(ctx context.Context) ([]reader.TOCEntry, error) {
	return b.nav.Wait(ctx)
}

// Title returns the metadata title, or "" if the book has not opened.
func (b *Book) Title() string {
	select {
	case <-b.opened.Done():
		rb, _ := b.opened.Wait(context.Background())
		if rb != nil {
			return rb.Title
		}
	default:
	}
	return ""
}

// RenderTo creates a rendition drawing into s. The book must be ready.
func (b *Book) RenderTo(s Surface, opts Options) (*Rendition, error) {
	select {
	case <-b.ready.Done():
	default:
		return nil, ErrNotReady
	}
	if _, err := b.ready.Wait(context.Background()); err != nil {
		return nil, err
	}
	return newRendition(b, s, opts), nil
}

// section returns the parsed section for target, which may be "" for the
// first spine item and may carry a fragment.
func (b *Book) section(target string) (*reader.Section, error) {
	spine, err := b.ready.Wait(context.Background())
	if err != nil {
		return nil, err
	}
	p, _ := reader.SplitHref(target)
	if p == "" {
		p = spine[0]
	}

	if v, ok := b.sections.Get(p); ok {
		return v.(*reader.Section), nil
	}

	rb, err := b.opened.Wait(context.Background())
	if err != nil {
		return nil, err
	}
	sec, err := rb.Section(p)
	if err != nil {
		return nil, err
	}
	b.sections.Set(p, sec, cache.DefaultExpiration)
	return sec, nil
}

// Close stops loading and releases the archive. It waits for an in-flight open to finish.
func (b *Book) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.cancel()
		b.sections.Flush()
		rb, openErr := b.opened.Wait(context.Background())
		if openErr == nil && rb != nil {
			err = rb.Close()
		}
	})
	return err
}
