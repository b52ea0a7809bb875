//go:build !gui

package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/metcalfc/folio/internal/i18n"
	"github.com/metcalfc/folio/internal/viewer"
)

const tocWidth = 30

var (
	tocStyle = lipgloss.NewStyle().
			Width(tocWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("#444444"))

	tocHeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#888888"))

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AAFF"))

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)
)

// renderTOC draws the chapter list, keeping the cursor row in view.
func renderTOC(st viewer.State, l i18n.Labels, cursor int, focused bool, height int) string {
	inner := tocWidth - 1
	lines := []string{tocHeadingStyle.Render(l.Contents)}

	if len(st.TOC) == 0 {
		lines = append(lines, l.NoChapter)
		return tocStyle.Height(height).Render(strings.Join(lines, "\n"))
	}

	rows := height - 1
	if rows < 1 {
		rows = 1
	}
	first := 0
	if cursor >= rows {
		first = cursor - rows + 1
	}
	last := first + rows
	if last > len(st.TOC) {
		last = len(st.TOC)
	}

	for i := first; i < last; i++ {
		e := st.TOC[i]
		label := strings.Repeat("  ", e.Level) + e.Label
		label = ansi.Truncate(label, inner-2, "…")

		marker := "  "
		if e == st.Current {
			marker = "• "
			label = currentStyle.Render(label)
		}
		row := marker + label
		if focused && i == cursor {
			row = cursorStyle.Render(row)
		}
		lines = append(lines, row)
	}
	return tocStyle.Height(height).Render(strings.Join(lines, "\n"))
}
