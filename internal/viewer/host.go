// Package viewer owns the reader lifecycle: it mounts a book onto a surface,
// routes user commands to the rendition, and releases everything on teardown.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/render"
)

var (
	// ErrTornDown is returned when Initialize runs on, or races with, a torn down host.
	ErrTornDown = errors.New("viewer torn down")
	// ErrMounted is returned when Initialize is called twice.
	ErrMounted = errors.New("viewer already mounted")
	// ErrNotReady is returned by NavigateTo when nothing was displayed because
	// the first view is not up yet or the host has been torn down.
	ErrNotReady = errors.New("viewer not ready")
)

// Options configures a Host.
type Options struct {
	Source reader.Source
	// Title is shown until the book's own title is known.
	Title       string
	FontSize    int
	TOCVisible  bool
	ResizeDelay time.Duration
	// StartAt is displayed instead of the first spine item when set.
	StartAt string
	Render  render.Options
	Library Library
	Logger  *log.Logger
	// OnChange is called after every state change, outside the host's lock.
	OnChange func()
}

// State is a snapshot of what the chrome shows.
type State struct {
	Title      string
	TOC        []*reader.TOCEntry
	Current    *reader.TOCEntry
	TOCVisible bool
	FontSize   int
	Ready      bool
}

// Host owns a book and its rendition for the lifetime of one mount.
type Host struct {
	opts  Options
	log   *log.Logger
	ready chan struct{}

	mu         sync.Mutex
	doc        Document
	rendition  Rendition
	toc        []*reader.TOCEntry
	current    *reader.TOCEntry
	tocVisible bool
	fontSize   int
	title      string
	mounted    bool
	tornDown   bool
	timers     map[*time.Timer]struct{}
}

// New creates an unmounted host.
func New(opts Options) *Host {
	if opts.Library == nil {
		opts.Library = RenderLibrary
	}
	if opts.FontSize == 0 {
		opts.FontSize = render.DefaultFontSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Host{
		opts:       opts,
		log:        logger,
		ready:      make(chan struct{}),
		tocVisible: opts.TOCVisible,
		fontSize:   opts.FontSize,
		title:      opts.Title,
		timers:     make(map[*time.Timer]struct{}),
	}
}

// Initialize loads the book, publishes its table of contents as soon as it
// arrives, and renders the first view into surface. Commands are ignored
// until Initialize has joined the load and navigation and displayed a view.
func (h *Host) Initialize(ctx context.Context, surface render.Surface) error {
	h.mu.Lock()
	if h.tornDown {
		h.mu.Unlock()
		return ErrTornDown
	}
	if h.mounted {
		h.mu.Unlock()
		return ErrMounted
	}
	h.mounted = true
	doc := h.opts.Library(h.opts.Source)
	h.doc = doc
	h.mu.Unlock()

	navDone := make(chan struct{})
	go func() {
		defer close(navDone)
		toc, err := doc.Navigation(ctx)
		if err != nil {
			h.log.Printf("navigation unavailable: %v", err)
			return
		}
		h.setTOC(toc)
	}()

	readyErr := doc.Ready(ctx)
	<-navDone
	if readyErr != nil {
		return h.failed(fmt.Errorf("load book: %w", readyErr))
	}

	rendition, err := doc.RenderTo(surface, h.opts.Render)
	if err != nil {
		return h.failed(fmt.Errorf("render book: %w", err))
	}
	if err := rendition.Display(ctx, h.opts.StartAt); err != nil {
		rendition.Destroy()
		return h.failed(fmt.Errorf("display first view: %w", err))
	}

	h.mu.Lock()
	if h.tornDown {
		h.mu.Unlock()
		rendition.Destroy()
		return ErrTornDown
	}
	h.rendition = rendition
	if t := doc.Title(); t != "" {
		h.title = t
	}
	size := h.fontSize
	h.mu.Unlock()

	h.applyFontSize(rendition, size)
	close(h.ready)
	h.changed()
	return nil
}

func (h *Host) failed(err error) error {
	h.mu.Lock()
	torn := h.tornDown
	h.mu.Unlock()
	if torn {
		return ErrTornDown
	}
	h.log.Printf("initialize: %v", err)
	return err
}

func (h *Host) setTOC(entries []reader.TOCEntry) {
	toc := make([]*reader.TOCEntry, len(entries))
	for i := range entries {
		e := entries[i]
		toc[i] = &e
	}

	h.mu.Lock()
	h.toc = toc
	if len(toc) > 0 {
		h.current = toc[0]
		if e := findEntry(toc, h.opts.StartAt); e != nil {
			h.current = e
		}
	}
	h.mu.Unlock()
	h.changed()
}

func findEntry(toc []*reader.TOCEntry, href string) *reader.TOCEntry {
	if href == "" {
		return nil
	}
	for _, e := range toc {
		if e.Href == href {
			return e
		}
	}
	p, _ := reader.SplitHref(href)
	for _, e := range toc {
		if e.Path() == p {
			return e
		}
	}
	return nil
}

// Ready is closed once Initialize has displayed the first view.
func (h *Host) Ready() <-chan struct{} {
	return h.ready
}

// Entry returns the i'th table of contents entry, or nil.
func (h *Host) Entry(i int) *reader.TOCEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.toc) {
		return nil
	}
	return h.toc[i]
}

// NavigateTo displays entry and makes it current. Before the rendition
// exists or after teardown it displays nothing and returns ErrNotReady.
func (h *Host) NavigateTo(ctx context.Context, entry *reader.TOCEntry) error {
	if entry == nil {
		return nil
	}
	h.mu.Lock()
	r := h.rendition
	h.mu.Unlock()
	if r == nil {
		return ErrNotReady
	}

	if err := r.Display(ctx, entry.Href); err != nil {
		if errors.Is(err, render.ErrDestroyed) {
			return ErrNotReady
		}
		return fmt.Errorf("navigate to %q: %w", entry.Label, err)
	}

	h.mu.Lock()
	if h.rendition == r {
		h.current = entry
	}
	h.mu.Unlock()
	h.changed()
	return nil
}

// SetFontSize changes the font size by delta px and applies it to the rendition.
func (h *Host) SetFontSize(delta int) {
	h.mu.Lock()
	h.fontSize += delta
	size := h.fontSize
	r := h.rendition
	h.mu.Unlock()

	if r != nil {
		h.applyFontSize(r, size)
	}
	h.changed()
}

func (h *Host) applyFontSize(r Rendition, size int) {
	if err := r.SetFontSize(fmt.Sprintf("%dpx", size)); err != nil && !errors.Is(err, render.ErrDestroyed) {
		h.log.Printf("apply font size %dpx: %v", size, err)
	}
}

// ToggleTOC flips the panel and resizes the rendition once the layout has settled.
func (h *Host) ToggleTOC() {
	h.mu.Lock()
	h.tocVisible = !h.tocVisible
	immediate := h.rendition != nil && h.opts.ResizeDelay <= 0
	if h.rendition != nil && !immediate {
		h.scheduleResizeLocked(h.opts.ResizeDelay)
	}
	h.mu.Unlock()

	if immediate {
		h.OnResize()
	}
	h.changed()
}

func (h *Host) scheduleResizeLocked(d time.Duration) {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		h.mu.Lock()
		_, live := h.timers[t]
		delete(h.timers, t)
		h.mu.Unlock()
		if live {
			h.OnResize()
		}
	})
	h.timers[t] = struct{}{}
}

// OnResize asks the rendition to lay out again at the surface's size.
func (h *Host) OnResize() {
	h.mu.Lock()
	r := h.rendition
	h.mu.Unlock()
	if r == nil {
		return
	}
	if err := r.Resize(); err != nil && !errors.Is(err, render.ErrDestroyed) {
		h.log.Printf("resize: %v", err)
	}
}

// Teardown cancels pending resizes, destroys the rendition and closes the
// book. Only the first call does anything.
func (h *Host) Teardown() {
	h.mu.Lock()
	if h.tornDown {
		h.mu.Unlock()
		return
	}
	h.tornDown = true
	for t := range h.timers {
		t.Stop()
	}
	h.timers = nil
	r := h.rendition
	h.rendition = nil
	doc := h.doc
	h.doc = nil
	h.mu.Unlock()

	if r != nil {
		r.Destroy()
	}
	if doc != nil {
		if err := doc.Close(); err != nil {
			h.log.Printf("close book: %v", err)
		}
	}
	h.changed()
}

// State returns a snapshot of the current state.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return State{
		Title:      h.title,
		TOC:        h.toc,
		Current:    h.current,
		TOCVisible: h.tocVisible,
		FontSize:   h.fontSize,
		Ready:      h.rendition != nil,
	}
}

func (h *Host) changed() {
	if h.opts.OnChange != nil {
		h.opts.OnChange()
	}
}
