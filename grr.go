//go:build gui

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/render"
	"github.com/metcalfc/folio/internal/viewer"
)

// sizeTheme overrides text sizes inside the reading pane only.
type sizeTheme struct {
	fyne.Theme
	size float32
}

func (t *sizeTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return t.size
	case theme.SizeNameSubHeadingText:
		return t.size * 1.25
	case theme.SizeNameHeadingText:
		return t.size * 1.5
	}
	return t.Theme.Size(name)
}

// richSurface draws sections into a RichText inside a scroll container.
type richSurface struct {
	rich     *widget.RichText
	scroll   *container.Scroll
	override *container.ThemeOverride

	mu     sync.Mutex
	width  int
	height int
}

func newRichSurface() *richSurface {
	rich := widget.NewRichText()
	rich.Wrapping = fyne.TextWrapWord
	scroll := container.NewVScroll(rich)
	return &richSurface{
		rich:     rich,
		scroll:   scroll,
		override: container.NewThemeOverride(scroll, &sizeTheme{Theme: theme.DefaultTheme(), size: render.DefaultFontSize}),
		width:    800,
		height:   600,
	}
}

func (s *richSurface) setSize(size fyne.Size) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || (w == s.width && h == s.height) {
		return false
	}
	s.width, s.height = w, h
	return true
}

func (s *richSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *richSurface) Draw(c render.Content) error {
	segs := segments(c.Section)
	size := float32(c.FontSize)
	if size < 1 {
		size = 1
	}
	anchor, blocks := c.Anchor, 0
	if c.Section != nil {
		blocks = len(c.Section.Blocks)
	}

	fyne.Do(func() {
		s.override.Theme = &sizeTheme{Theme: theme.DefaultTheme(), size: size}
		s.rich.Segments = segs
		s.override.Refresh()
		s.rich.Refresh()

		// Block heights are not known per segment, so scroll proportionally.
		offset := float32(0)
		if anchor > 0 && blocks > 0 {
			offset = s.rich.MinSize().Height * float32(anchor) / float32(blocks)
		}
		s.scroll.Offset = fyne.NewPos(0, offset)
		s.scroll.Refresh()
	})
	return nil
}

func (s *richSurface) Clear() {
	fyne.Do(func() {
		s.rich.Segments = nil
		s.rich.Refresh()
	})
}

func segments(sec *reader.Section) []widget.RichTextSegment {
	if sec == nil {
		return nil
	}
	segs := make([]widget.RichTextSegment, 0, len(sec.Blocks))
	for _, b := range sec.Blocks {
		seg := &widget.TextSegment{Text: b.Text, Style: widget.RichTextStyleParagraph}
		switch b.Kind {
		case reader.Heading:
			seg.Style = widget.RichTextStyleSubHeading
			if b.Level <= 1 {
				seg.Style = widget.RichTextStyleHeading
			}
		case reader.ListItem:
			seg.Text = "• " + b.Text
		case reader.Quote:
			seg.Style = widget.RichTextStyleBlockquote
		case reader.Preformatted:
			seg.Style = widget.RichTextStyleCodeBlock
		}
		segs = append(segs, seg)
	}
	return segs
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Folio - GUI E-book Reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  folio [options] [book.epub]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  T        Show/hide contents\n")
		fmt.Fprintf(os.Stderr, "  +/-      Increase/decrease font size\n")
		fmt.Fprintf(os.Stderr, "  F        Fullscreen\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit\n")
	}
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if f.showVersion {
		fmt.Println(versionString())
		os.Exit(0)
	}

	sess, err := loadSession(context.Background(), f, log.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errNoBook) {
			fmt.Fprintln(os.Stderr, "Try: folio -h")
		}
		os.Exit(1)
	}
	l := sess.labels

	a := app.New()
	w := a.NewWindow("folio")

	surface := newRichSurface()
	var updateChrome func()
	host := viewer.New(sess.hostOptions(func() {
		if updateChrome != nil {
			fyne.Do(updateChrome)
		}
	}))

	toggleBtn := widget.NewButton(l.HideTOC, host.ToggleTOC)
	downBtn := widget.NewButton(l.FontDown, func() { host.SetFontSize(-sess.cfg.Reader.FontStep) })
	upBtn := widget.NewButton(l.FontUp, func() { host.SetFontSize(sess.cfg.Reader.FontStep) })
	sizeLabel := widget.NewLabel("")
	titleLabel := widget.NewLabelWithStyle(sess.cfg.Book.Title, fyne.TextAlignTrailing, fyne.TextStyle{Bold: true})
	header := container.NewHBox(toggleBtn, downBtn, sizeLabel, upBtn, layout.NewSpacer(), titleLabel)

	tocList := widget.NewList(
		func() int { return len(host.State().TOC) },
		func() fyne.CanvasObject { return widget.NewLabel("Chapter") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			st := host.State()
			if id >= len(st.TOC) {
				return
			}
			e := st.TOC[id]
			label := obj.(*widget.Label)
			label.TextStyle.Bold = e == st.Current
			label.SetText(strings.Repeat("    ", e.Level) + e.Label)
		},
	)
	tocList.OnSelected = func(id widget.ListItemID) {
		tocList.UnselectAll()
		entry := host.Entry(id)
		if entry == nil {
			return
		}
		go func() {
			err := host.NavigateTo(context.Background(), entry)
			if errors.Is(err, viewer.ErrNotReady) {
				return
			}
			if err != nil {
				fyne.Do(func() { dialog.ShowError(err, w) })
				return
			}
			sess.remember(entry.Href)
		}()
	}

	tocPanel := container.NewBorder(widget.NewLabelWithStyle(l.Contents, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil, nil, nil, tocList)
	split := container.NewHSplit(tocPanel, surface.override)
	split.Offset = 0.28

	updateChrome = func() {
		st := host.State()
		if st.TOCVisible {
			toggleBtn.SetText(l.HideTOC)
			tocPanel.Show()
		} else {
			toggleBtn.SetText(l.ShowTOC)
			tocPanel.Hide()
		}
		split.Refresh()
		sizeLabel.SetText(fmt.Sprintf(l.FontSize, st.FontSize))
		titleLabel.SetText(st.Title)
		w.SetTitle(st.Title + " - folio")
		tocList.Refresh()
	}
	updateChrome()

	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 't', 'T':
			host.ToggleTOC()
		case '+', '=':
			host.SetFontSize(sess.cfg.Reader.FontStep)
		case '-':
			host.SetFontSize(-sess.cfg.Reader.FontStep)
		}
	})
	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())
		case fyne.KeyQ:
			a.Quit()
		}
	})

	w.Resize(fyne.NewSize(1000, 700))
	w.SetContent(container.NewBorder(header, nil, nil, nil, split))

	done := make(chan struct{})
	var closeOnce sync.Once
	w.SetOnClosed(func() {
		closeOnce.Do(func() { close(done) })
		host.Teardown()
	})

	// Watch the reading pane and forward size changes to the rendition.
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(100 * time.Millisecond):
				if surface.setSize(surface.scroll.Size()) {
					host.OnResize()
				}
			}
		}
	}()

	go func() {
		if err := host.Initialize(context.Background(), surface); err != nil {
			fyne.Do(func() { dialog.ShowError(err, w) })
		}
	}()

	w.ShowAndRun()
	closeOnce.Do(func() { close(done) })
	host.Teardown()
}
