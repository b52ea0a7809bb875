//go:build !gui

package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/metcalfc/folio/internal/epubtest"
	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/render"
	"github.com/metcalfc/folio/internal/viewer"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyModel(t *testing.T, args ...string) *model {
	t.Helper()
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "en_US.UTF-8")
	book := epubtest.Write(t, t.TempDir(), epubtest.Sample())
	sess, err := loadSession(context.Background(), testFlags(t, append(args, book)...), discard)
	if err != nil {
		t.Fatalf("loadSession failed: %v", err)
	}
	m := newModel(sess)
	t.Cleanup(m.host.Teardown)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(initDoneMsg{err: m.host.Initialize(context.Background(), m.surface)})
	if !m.ready {
		t.Fatalf("model not ready: %v", m.err)
	}
	return m
}

func TestModelInitialView(t *testing.T) {
	m := readyModel(t)
	view := m.View()

	for _, want := range []string{"The Coding Career Handbook", "Contents", "Welcome to the book.", "16px", "Ship often"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	st := m.host.State()
	if st.Current != st.TOC[0] || m.cursor != 0 {
		t.Errorf("current = %+v cursor = %d", st.Current, m.cursor)
	}
}

func TestModelNavigate(t *testing.T) {
	m := readyModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 3 {
		t.Fatalf("cursor = %d, want 3", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 3 {
		t.Errorf("cursor moved past the last entry: %d", m.cursor)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should navigate")
	}
	m.Update(cmd())

	if got := m.host.State().Current.Label; got != "Strategy" {
		t.Errorf("Current = %q, want Strategy", got)
	}
	if !strings.Contains(m.View(), "Pick up what they put down.") {
		t.Error("view does not show the chapter")
	}
}

func TestModelFontAndTOC(t *testing.T) {
	m := readyModel(t)

	m.Update(runes("+"))
	m.Update(runes("+"))
	m.Update(runes("-"))
	if got := m.host.State().FontSize; got != 17 {
		t.Errorf("FontSize = %d, want 17", got)
	}
	if !strings.Contains(m.View(), "17px") {
		t.Error("header should show 17px")
	}

	wide := m.viewport.Width
	m.Update(runes("t"))
	st := m.host.State()
	if st.TOCVisible {
		t.Error("contents should be hidden")
	}
	if m.focus != focusContent {
		t.Error("focus should move to the text")
	}
	if m.viewport.Width <= wide {
		t.Errorf("text should widen: %d -> %d", wide, m.viewport.Width)
	}
	if strings.Contains(m.View(), "Ship often") {
		t.Error("contents still drawn")
	}

	m.Update(runes("t"))
	if !m.host.State().TOCVisible {
		t.Error("contents should be visible again")
	}
}

func TestModelTabSwitchesFocus(t *testing.T) {
	m := readyModel(t)
	if m.focus != focusTOC {
		t.Fatal("contents should start focused")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusContent {
		t.Error("tab should focus the text")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 0 {
		t.Error("down in the text should not move the contents cursor")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusTOC {
		t.Error("tab should focus the contents again")
	}
}

func TestModelResumeRemembersChapter(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	m := readyModel(t, "-resume")

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())

	if got := m.sess.store.Chapter(m.sess.hash); got != "text/principles.xhtml" {
		t.Errorf("saved chapter = %q", got)
	}
}

// loadingDoc publishes its contents but never finishes loading.
type loadingDoc struct{}

func (loadingDoc) Ready(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (loadingDoc) Navigation(ctx context.Context) ([]reader.TOCEntry, error) {
	return []reader.TOCEntry{
		{Label: "A", Href: "a.xhtml"},
		{Label: "B", Href: "b.xhtml"},
	}, nil
}

func (loadingDoc) Title() string { return "" }

func (loadingDoc) RenderTo(render.Surface, render.Options) (viewer.Rendition, error) {
	return nil, errors.New("not loaded")
}

func (loadingDoc) Close() error { return nil }

func TestModelResumeIgnoresNavigationBeforeReady(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	m := readyModel(t, "-resume")

	opts := m.sess.hostOptions(nil)
	opts.Library = func(reader.Source) viewer.Document { return loadingDoc{} }
	m.host = viewer.New(opts)
	t.Cleanup(m.host.Teardown)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.host.Initialize(ctx, m.surface) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(m.host.State().TOC) != 2 {
		if time.Now().After(deadline) {
			t.Fatal("contents never published")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should navigate")
	}
	m.Update(cmd())

	if got := m.sess.store.Chapter(m.sess.hash); got != "" {
		t.Errorf("saved chapter = %q, want nothing before the first view", got)
	}
	if m.err != nil {
		t.Errorf("dropped navigation should not show an error: %v", m.err)
	}
	if got := m.host.State().Current.Href; got != "a.xhtml" {
		t.Errorf("Current = %q, want a.xhtml", got)
	}
}

func TestModelInitError(t *testing.T) {
	m := readyModel(t)
	m.Update(initDoneMsg{err: context.Canceled})
	if !strings.Contains(m.View(), "Error:") {
		t.Error("error should show in the status line")
	}
}

func TestModelQuit(t *testing.T) {
	m := readyModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil || !m.quitting {
		t.Fatal("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}
