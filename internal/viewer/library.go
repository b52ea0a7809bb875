package viewer

import (
	"context"

	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/render"
)

// Document is a book that is loading or loaded.
type Document interface {
	Ready(ctx context.Context) error
	Navigation(ctx context.Context) ([]reader.TOCEntry, error)
	Title() string
	RenderTo(s render.Surface, opts render.Options) (Rendition, error)
	Close() error
}

// Rendition is the handle to an active rendering.
type Rendition interface {
	Display(ctx context.Context, target string) error
	Resize() error
	SetFontSize(css string) error
	Destroy()
}

// Library opens a document. It must return without waiting for the load.
type Library func(src reader.Source) Document

// RenderLibrary opens documents with the render package.
func RenderLibrary(src reader.Source) Document {
	return renderDocument{render.Open(src)}
}

type renderDocument struct {
	*render.Book
}

func (d renderDocument) RenderTo(s render.Surface, opts render.Options) (Rendition, error) {
	r, err := d.Book.RenderTo(s, opts)
	if err != nil {
		return nil, err
	}
	return renderRendition{r}, nil
}

type renderRendition struct {
	*render.Rendition
}

func (r renderRendition) SetFontSize(css string) error {
	return r.Themes().FontSize(css)
}
