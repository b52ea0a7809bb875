package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/metcalfc/folio/internal/reader"
)

const (
	minMeasure   = 10
	defaultWidth = 80
)

// TextStyles styles blocks on a TextSurface.
type TextStyles struct {
	Heading lipgloss.Style
	Quote   lipgloss.Style
	Body    lipgloss.Style
}

// TextSurface lays content out as wrapped terminal lines. A larger font
// size gives a narrower measure, the way larger type fits fewer words per line.
type TextSurface struct {
	mu         sync.Mutex
	width      int
	height     int
	styles     TextStyles
	lines      []string
	anchorLine int
	measure    int
	onDraw     func()
}

// NewTextSurface creates a surface of the given cell size.
func NewTextSurface(width, height int) *TextSurface {
	return &TextSurface{
		width:      width,
		height:     height,
		anchorLine: -1,
		styles: TextStyles{
			Heading: lipgloss.NewStyle(),
			Quote:   lipgloss.NewStyle(),
			Body:    lipgloss.NewStyle(),
		},
	}
}

// SetStyles replaces the block styles used by later draws.
func (s *TextSurface) SetStyles(st TextStyles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styles = st
}

// OnDraw registers fn to run after every Draw and Clear.
func (s *TextSurface) OnDraw(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDraw = fn
}

// SetSize records the available cells. Call Rendition.Resize to relayout.
func (s *TextSurface) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *TextSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *TextSurface) Draw(c Content) error {
	s.mu.Lock()
	measure := Measure(c.Width, c.FontSize, c.BaseFontSize)
	lines, anchor := layout(c, measure, s.styles)
	s.lines = lines
	s.anchorLine = anchor
	s.measure = measure
	fn := s.onDraw
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

func (s *TextSurface) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.anchorLine = -1
	s.measure = 0
	fn := s.onDraw
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Lines returns the laid-out lines.
func (s *TextSurface) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// AnchorLine returns the line of the displayed fragment, or -1.
func (s *TextSurface) AnchorLine() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchorLine
}

// Measure returns the column count used by the last draw.
func (s *TextSurface) Measure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measure
}

// Measure returns the wrap width for text at fontSize in a surface width
// cells wide. Sizes below 1px are laid out as 1px.
func Measure(width, fontSize, base int) int {
	if width <= 0 {
		width = defaultWidth
	}
	if base <= 0 {
		base = DefaultFontSize
	}
	if fontSize < 1 {
		fontSize = 1
	}
	m := width * base / fontSize
	if m > width {
		m = width
	}
	if m < minMeasure {
		m = minMeasure
	}
	return m
}

func layout(c Content, measure int, st TextStyles) ([]string, int) {
	if c.Section == nil {
		return nil, -1
	}

	var lines []string
	anchor := -1
	for i, b := range c.Section.Blocks {
		if i == c.Anchor {
			anchor = len(lines)
		}
		switch b.Kind {
		case reader.Heading:
			lines = append(lines, styled(st.Heading, wrap(b.Text, measure, "", ""))...)
		case reader.ListItem:
			lines = append(lines, styled(st.Body, wrap(b.Text, measure, "• ", "  "))...)
		case reader.Quote:
			lines = append(lines, styled(st.Quote, wrap(b.Text, measure, "│ ", "│ "))...)
		case reader.Preformatted:
			lines = append(lines, styled(st.Body, strings.Split(b.Text, "\n"))...)
		default:
			lines = append(lines, styled(st.Body, wrap(b.Text, measure, "", ""))...)
		}
		lines = append(lines, "")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, anchor
}

// wrap word-wraps text to measure columns, prefixing the first line with
// first and the rest with rest.
func wrap(text string, measure int, first, rest string) []string {
	width := measure - ansi.StringWidth(first)
	if width < 1 {
		width = 1
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		for _, line := range strings.Split(ansi.Wrap(para, width, ""), "\n") {
			prefix := rest
			if len(out) == 0 {
				prefix = first
			}
			out = append(out, prefix+strings.TrimRight(line, " "))
		}
	}
	return out
}

func styled(st lipgloss.Style, lines []string) []string {
	for i, l := range lines {
		if l != "" {
			lines[i] = st.Render(l)
		}
	}
	return lines
}
