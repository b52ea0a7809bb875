//go:build !gui

package main

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/render"
	"github.com/metcalfc/folio/internal/viewer"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	quoteStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#AAAAAA"))
)

type focus int

const (
	focusTOC focus = iota
	focusContent
)

type (
	initDoneMsg struct{ err error }
	changedMsg  struct{}
	navDoneMsg  struct {
		entry *reader.TOCEntry
		err   error
	}
)

type model struct {
	sess     *session
	host     *viewer.Host
	surface  *render.TextSurface
	changes  chan struct{}
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	cursor   int
	focus    focus
	width    int
	height   int
	ready    bool
	err      error
	quitting bool
}

func newModel(sess *session) *model {
	changes := make(chan struct{}, 1)
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	surface := render.NewTextSurface(80, 22)
	surface.SetStyles(render.TextStyles{
		Heading: headingStyle,
		Quote:   quoteStyle,
		Body:    lipgloss.NewStyle(),
	})
	surface.OnDraw(notify)

	m := &model{
		sess:     sess,
		host:     viewer.New(sess.hostOptions(notify)),
		surface:  surface,
		changes:  changes,
		keys:     newKeyMap(sess.labels),
		help:     help.New(),
		viewport: viewport.New(80, 22),
		width:    80,
		height:   24,
	}
	if !sess.cfg.Reader.TOCVisible {
		m.focus = focusContent
	}
	m.layout()
	return m
}

func (m *model) Init() tea.Cmd {
	host, surface := m.host, m.surface
	return tea.Batch(
		func() tea.Msg {
			return initDoneMsg{err: host.Initialize(context.Background(), surface)}
		},
		m.waitForChange(),
	)
}

func (m *model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case initDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ready = true
		m.syncCursor()
		m.refresh()
		m.scrollToAnchor()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case navDoneMsg:
		if errors.Is(msg.err, viewer.ErrNotReady) {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sess.remember(msg.entry.Href)
		m.refresh()
		m.scrollToAnchor()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.host.OnResize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.host.State()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.host.ToggleTOC()
		if !m.host.State().TOCVisible {
			m.focus = focusContent
		}
		// The surface takes its new size now; the host redraws after the delay.
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.FontUp):
		m.host.SetFontSize(m.sess.cfg.Reader.FontStep)
		return m, nil

	case key.Matches(msg, m.keys.FontDown):
		m.host.SetFontSize(-m.sess.cfg.Reader.FontStep)
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if st.TOCVisible && m.focus == focusContent {
			m.focus = focusTOC
		} else {
			m.focus = focusContent
		}
		return m, nil
	}

	if m.focus == focusTOC && st.TOCVisible {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(st.TOC)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Select):
			return m, m.navigate(m.host.Entry(m.cursor))
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) navigate(entry *reader.TOCEntry) tea.Cmd {
	if entry == nil {
		return nil
	}
	host := m.host
	return func() tea.Msg {
		return navDoneMsg{entry: entry, err: host.NavigateTo(context.Background(), entry)}
	}
}

// layout sizes the surface and viewport to what the chrome leaves free.
func (m *model) layout() {
	m.help.Width = m.width
	bodyHeight := m.height - 1 - lipgloss.Height(m.footer())
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	bodyWidth := m.width
	if m.host.State().TOCVisible {
		bodyWidth -= tocWidth + 2 // border and gutter
	}
	if bodyWidth < 1 {
		bodyWidth = 1
	}
	m.viewport.Width = bodyWidth
	m.viewport.Height = bodyHeight
	m.surface.SetSize(bodyWidth-1, bodyHeight)
}

func (m *model) refresh() {
	m.viewport.SetContent(strings.Join(m.surface.Lines(), "\n"))
}

func (m *model) scrollToAnchor() {
	if line := m.surface.AnchorLine(); line >= 0 {
		m.viewport.SetYOffset(line)
		return
	}
	m.viewport.GotoTop()
}

func (m *model) syncCursor() {
	st := m.host.State()
	for i, e := range st.TOC {
		if e == st.Current {
			m.cursor = i
			return
		}
	}
}

func (m *model) footer() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	return statusStyle.Render(m.help.View(m.keys))
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	st := m.host.State()
	header := renderHeader(st, m.sess.labels, m.width)

	var body string
	if !m.ready && m.err == nil {
		body = statusStyle.Render(m.sess.labels.Loading)
	} else {
		body = m.viewport.View()
	}
	if st.TOCVisible {
		toc := renderTOC(st, m.sess.labels, m.cursor, m.focus == focusTOC, m.viewport.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, toc, " ", body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer())
}
