// Package reader opens EPUB files and extracts their navigation and section content.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// ErrNotFound is returned when an href does not name an item in the book.
var ErrNotFound = errors.New("not found in epub")

// Book is an opened EPUB document.
type Book struct {
	Title string

	rf    *epub.Rootfile
	close func()
}

// Source loads a book from somewhere.
type Source interface {
	Load(ctx context.Context) (*Book, error)
	String() string
}

// FileSource loads a book from a path on disk.
type FileSource string

func (s FileSource) Load(ctx context.Context) (*Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(string(s))
}

func (s FileSource) String() string { return string(s) }

// BytesSource loads a book already read into memory.
type BytesSource struct {
	Name string
	Data []byte
}

func (s BytesSource) Load(ctx context.Context) (*Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewBook(s.Data)
}

func (s BytesSource) String() string { return s.Name }

// Open opens the EPUB at filename.
func Open(filename string) (*Book, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	return newBook(rc.Rootfiles[0], func() { rc.Close() }), nil
}

// NewBook opens an EPUB held in memory.
func NewBook(data []byte) (*Book, error) {
	r, err := epub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read epub: %w", err)
	}
	if len(r.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	return newBook(r.Rootfiles[0], func() {}), nil
}

func newBook(rf *epub.Rootfile, close func()) *Book {
	return &Book{
		Title: strings.TrimSpace(rf.Title),
		rf:    rf,
		close: close,
	}
}

// Close releases the underlying archive.
func (b *Book) Close() error {
	if b.close != nil {
		b.close()
		b.close = nil
	}
	return nil
}

// Spine returns the hrefs of the reading-order items.
func (b *Book) Spine() []string {
	var hrefs []string
	for _, ref := range b.rf.Spine.Itemrefs {
		if ref.Item == nil || ref.Item.HREF == "" {
			continue
		}
		hrefs = append(hrefs, cleanHref(ref.Item.HREF))
	}
	return hrefs
}

// Section reads and parses the item named by href. A fragment, if any, is ignored.
func (b *Book) Section(href string) (*Section, error) {
	p, _ := SplitHref(href)
	item := b.findItem(p)
	if item == nil {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	data, err := readItem(item)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return ParseSection(cleanHref(item.HREF), data)
}

func (b *Book) findItem(p string) *epub.Item {
	p = cleanHref(p)
	for i := range b.rf.Manifest.Items {
		if cleanHref(b.rf.Manifest.Items[i].HREF) == p {
			return &b.rf.Manifest.Items[i]
		}
	}
	base := path.Base(p)
	for i := range b.rf.Manifest.Items {
		if path.Base(cleanHref(b.rf.Manifest.Items[i].HREF)) == base {
			return &b.rf.Manifest.Items[i]
		}
	}
	return nil
}

func readItem(item *epub.Item) ([]byte, error) {
	r, err := item.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// SplitHref splits an href into its path and fragment.
func SplitHref(href string) (p, fragment string) {
	if idx := strings.Index(href, "#"); idx != -1 {
		return href[:idx], href[idx+1:]
	}
	return href, ""
}

func cleanHref(href string) string {
	if href == "" {
		return ""
	}
	if u, err := url.PathUnescape(href); err == nil {
		href = u
	}
	return path.Clean(href)
}

// resolveHref makes href, found in a document under dir, relative to the package directory.
func resolveHref(dir, href string) string {
	p, fragment := SplitHref(href)
	if p == "" {
		return href
	}
	if u, err := url.PathUnescape(p); err == nil {
		p = u
	}
	if dir != "" && dir != "." {
		p = path.Join(dir, p)
	}
	p = path.Clean(p)
	if fragment != "" {
		return p + "#" + fragment
	}
	return p
}
