package render

import "github.com/metcalfc/folio/internal/reader"

// DefaultFontSize is the size, in px, that surfaces treat as unscaled text.
const DefaultFontSize = 16

// Content is one laid-out view handed to a surface.
type Content struct {
	Href    string
	Section *reader.Section
	// Anchor is the index of the block the target fragment points at, or -1.
	Anchor       int
	FontSize     int
	BaseFontSize int
	Width        int
	Height       int
}

// Surface is the element a rendition draws into.
type Surface interface {
	Size() (width, height int)
	Draw(c Content) error
	Clear()
}
