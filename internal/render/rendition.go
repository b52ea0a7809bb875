package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/metcalfc/folio/internal/reader"
)

// ErrDestroyed is returned by commands issued after Destroy.
var ErrDestroyed = errors.New("rendition destroyed")

// Options configures a rendition.
type Options struct {
	// BaseFontSize is the px size at which text is laid out unscaled.
	BaseFontSize int
}

// Rendition is an active rendering of a book onto a surface.
type Rendition struct {
	book    *Book
	surface Surface
	opts    Options
	themes  *Themes

	mu        sync.Mutex
	href      string
	section   *reader.Section
	anchor    int
	fontSize  int
	destroyed bool
	once      sync.Once
}

func newRendition(b *Book, s Surface, opts Options) *Rendition {
	if opts.BaseFontSize <= 0 {
		opts.BaseFontSize = DefaultFontSize
	}
	r := &Rendition{
		book:     b,
		surface:  s,
		opts:     opts,
		anchor:   -1,
		fontSize: opts.BaseFontSize,
	}
	r.themes = &Themes{r: r}
	return r
}

// Display shows target, an href with an optional fragment. An empty target
// shows the first item in reading order.
func (r *Rendition) Display(ctx context.Context, target string) error {
	r.mu.Lock()
	destroyed := r.destroyed
	r.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}

	sec, err := r.book.section(target)
	if err != nil {
		return fmt.Errorf("display %q: %w", target, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, fragment := reader.SplitHref(target)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrDestroyed
	}
	r.href = sec.Href
	if fragment != "" {
		r.href += "#" + fragment
	}
	r.section = sec
	r.anchor = sec.Anchor(fragment)
	return r.drawLocked()
}

// Resize lays the current view out again at the surface's current size.
func (r *Rendition) Resize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrDestroyed
	}
	if r.section == nil {
		return nil
	}
	return r.drawLocked()
}

// Themes returns the rendition's style controls.
func (r *Rendition) Themes() *Themes {
	return r.themes
}

// Location returns the href currently displayed.
func (r *Rendition) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.href
}

// FontSize returns the applied font size in px.
func (r *Rendition) FontSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fontSize
}

// Destroy clears the surface. Later commands return ErrDestroyed.
func (r *Rendition) Destroy() {
	r.once.Do(func() {
		r.mu.Lock()
		r.destroyed = true
		r.section = nil
		r.mu.Unlock()
		r.surface.Clear()
	})
}

func (r *Rendition) drawLocked() error {
	w, h := r.surface.Size()
	return r.surface.Draw(Content{
		Href:         r.href,
		Section:      r.section,
		Anchor:       r.anchor,
		FontSize:     r.fontSize,
		BaseFontSize: r.opts.BaseFontSize,
		Width:        w,
		Height:       h,
	})
}

// Themes controls presentation of a rendition.
type Themes struct {
	r *Rendition
}

// FontSize applies a CSS font size such as "18px", "12pt", "1.25em" or "18".
func (t *Themes) FontSize(size string) error {
	px, err := ParseFontSize(size, t.r.opts.BaseFontSize)
	if err != nil {
		return err
	}

	r := t.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrDestroyed
	}
	r.fontSize = px
	if r.section == nil {
		return nil
	}
	return r.drawLocked()
}

// ParseFontSize converts a CSS font size to whole px. em and rem are relative to base.
func ParseFontSize(size string, base int) (int, error) {
	s := strings.TrimSpace(strings.ToLower(size))
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		s = strings.TrimSuffix(s, "pt")
		scale = 4.0 / 3.0
	case strings.HasSuffix(s, "rem"):
		s = strings.TrimSuffix(s, "rem")
		scale = float64(base)
	case strings.HasSuffix(s, "em"):
		s = strings.TrimSuffix(s, "em")
		scale = float64(base)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid font size %q", size)
	}
	return int(math.Round(v * scale)), nil
}
