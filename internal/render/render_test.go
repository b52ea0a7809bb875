package render

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/metcalfc/folio/internal/epubtest"
	"github.com/metcalfc/folio/internal/reader"
)

// gatedSource holds Load until release is closed.
type gatedSource struct {
	reader.Source
	release chan struct{}
}

func (s gatedSource) Load(ctx context.Context) (*reader.Book, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.Source.Load(ctx)
}

type recordingSurface struct {
	mu      sync.Mutex
	w, h    int
	draws   []Content
	cleared int
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Draw(c Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws = append(s.draws, c)
	return nil
}

func (s *recordingSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func (s *recordingSurface) last() Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws[len(s.draws)-1]
}

func sampleSource(t *testing.T) reader.Source {
	t.Helper()
	return reader.FileSource(epubtest.Write(t, t.TempDir(), epubtest.Sample()))
}

func readyBook(t *testing.T) *Book {
	t.Helper()
	b := Open(sampleSource(t))
	t.Cleanup(func() { b.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Ready(ctx); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	return b
}

func TestOpenResolvesReadyAndNavigation(t *testing.T) {
	release := make(chan struct{})
	b := Open(gatedSource{Source: sampleSource(t), release: release})
	defer b.Close()

	if _, err := b.RenderTo(&recordingSurface{}, Options{}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("RenderTo before ready: got %v, want ErrNotReady", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	err := b.Ready(ctx)
	cancel()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Ready should still be pending, got %v", err)
	}

	close(release)

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	toc, err := b.Navigation(ctx)
	if err != nil {
		t.Fatalf("Navigation failed: %v", err)
	}
	if len(toc) != 4 || toc[0].Label != "Introduction" {
		t.Errorf("unexpected toc: %+v", toc)
	}
	if err := b.Ready(ctx); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	if b.Title() != "The Coding Career Handbook" {
		t.Errorf("Title = %q", b.Title())
	}
}

func TestOpenFailureRejectsBothFutures(t *testing.T) {
	b := Open(reader.FileSource("/nonexistent/book.epub"))
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Ready(ctx); err == nil {
		t.Error("expected Ready error")
	}
	if _, err := b.Navigation(ctx); err == nil {
		t.Error("expected Navigation error")
	}
}

func TestRenditionDisplay(t *testing.T) {
	b := readyBook(t)
	s := &recordingSurface{w: 60, h: 20}
	r, err := b.RenderTo(s, Options{})
	if err != nil {
		t.Fatalf("RenderTo failed: %v", err)
	}

	ctx := context.Background()
	if err := r.Display(ctx, ""); err != nil {
		t.Fatalf("Display failed: %v", err)
	}
	c := s.last()
	if c.Href != "text/intro.xhtml" || c.Anchor != -1 {
		t.Errorf("first view = %q anchor %d", c.Href, c.Anchor)
	}
	if c.FontSize != DefaultFontSize || c.Width != 60 {
		t.Errorf("content size = %dpx %d cols", c.FontSize, c.Width)
	}

	if err := r.Display(ctx, "text/principles.xhtml#ship"); err != nil {
		t.Fatalf("Display failed: %v", err)
	}
	c = s.last()
	if c.Anchor != 2 {
		t.Errorf("Anchor = %d, want 2", c.Anchor)
	}
	if r.Location() != "text/principles.xhtml#ship" {
		t.Errorf("Location = %q", r.Location())
	}

	if err := r.Display(ctx, "text/missing.xhtml"); !errors.Is(err, reader.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenditionFontSizeAndResize(t *testing.T) {
	b := readyBook(t)
	s := &recordingSurface{w: 60, h: 20}
	r, _ := b.RenderTo(s, Options{})

	if err := r.Themes().FontSize("18px"); err != nil {
		t.Fatalf("FontSize failed: %v", err)
	}
	if len(s.draws) != 0 {
		t.Errorf("font change before display should not draw")
	}

	r.Display(context.Background(), "")
	s.w = 40
	if err := r.Resize(); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	c := s.last()
	if c.Width != 40 || c.FontSize != 18 {
		t.Errorf("after resize: %d cols %dpx", c.Width, c.FontSize)
	}

	if err := r.Themes().FontSize("huge"); err == nil {
		t.Error("expected error for invalid font size")
	}
}

func TestRenditionDestroy(t *testing.T) {
	b := readyBook(t)
	s := &recordingSurface{w: 60, h: 20}
	r, _ := b.RenderTo(s, Options{})
	r.Display(context.Background(), "")

	r.Destroy()
	r.Destroy()
	if s.cleared != 1 {
		t.Errorf("Clear called %d times, want 1", s.cleared)
	}
	if err := r.Display(context.Background(), ""); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Display after destroy: %v", err)
	}
	if err := r.Resize(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Resize after destroy: %v", err)
	}
	if err := r.Themes().FontSize("20px"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("FontSize after destroy: %v", err)
	}
}

func TestParseFontSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
		err  bool
	}{
		{"16px", 16, false},
		{"17", 17, false},
		{"12pt", 16, false},
		{"1.5em", 24, false},
		{"2rem", 32, false},
		{"-3px", -3, false},
		{"big", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFontSize(tt.in, 16)
		if (err != nil) != tt.err {
			t.Errorf("ParseFontSize(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFontSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name              string
		width, font, base int
		want              int
	}{
		{"base size", 80, 16, 16, 80},
		{"double size", 80, 32, 16, 40},
		{"smaller never widens", 80, 8, 16, 80},
		{"floor", 80, 400, 16, 10},
		{"zero font", 80, 0, 16, 10},
		{"unknown width", 0, 16, 16, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Measure(tt.width, tt.font, tt.base); got != tt.want {
				t.Errorf("Measure = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTextSurfaceLayout(t *testing.T) {
	sec := &reader.Section{
		Href: "a.xhtml",
		Blocks: []reader.Block{
			{Kind: reader.Heading, Level: 1, Text: "Title"},
			{Kind: reader.Paragraph, Text: "one two three four five six"},
			{Kind: reader.ListItem, Text: "item", IDs: []string{"x"}},
			{Kind: reader.Quote, Text: "quoted"},
		},
	}
	s := NewTextSurface(12, 10)
	draws := 0
	s.OnDraw(func() { draws++ })

	if err := s.Draw(Content{Section: sec, Anchor: 2, FontSize: 16, BaseFontSize: 16, Width: 12}); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	var got []string
	for _, l := range s.Lines() {
		got = append(got, ansi.Strip(l))
	}
	want := []string{
		"Title",
		"",
		"one two",
		"three four",
		"five six",
		"",
		"• item",
		"",
		"│ quoted",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if s.AnchorLine() != 6 {
		t.Errorf("AnchorLine = %d, want 6", s.AnchorLine())
	}
	if s.Measure() != 12 {
		t.Errorf("Measure = %d, want 12", s.Measure())
	}

	s.Clear()
	if len(s.Lines()) != 0 || s.AnchorLine() != -1 {
		t.Error("Clear should empty the surface")
	}
	if draws != 2 {
		t.Errorf("OnDraw called %d times, want 2", draws)
	}
}
