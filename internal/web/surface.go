package web

import (
	"sync"

	"github.com/metcalfc/folio/internal/render"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

// htmlSurface keeps the last drawn content for the next page render. The
// browser reports its viewer size in CSS px.
type htmlSurface struct {
	mu      sync.Mutex
	width   int
	height  int
	content render.Content
	drawn   bool
}

func newHTMLSurface() *htmlSurface {
	return &htmlSurface{width: defaultWidth, height: defaultHeight}
}

func (s *htmlSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *htmlSurface) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

func (s *htmlSurface) Draw(c render.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = c
	s.drawn = true
	return nil
}

func (s *htmlSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = render.Content{}
	s.drawn = false
}

func (s *htmlSurface) snapshot() (render.Content, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content, s.drawn
}
