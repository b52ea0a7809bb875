package reader

// TOCEntry is one navigable entry in a book's table of contents.
// Nested entries are flattened depth-first; Level records the depth.
type TOCEntry struct {
	Label string
	Href  string
	Level int
}

// Path returns the href without its fragment.
func (e TOCEntry) Path() string {
	p, _ := SplitHref(e.Href)
	return p
}
