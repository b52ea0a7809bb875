//go:build !gui

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/folio/internal/i18n"
	"github.com/metcalfc/folio/internal/viewer"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)
)

// renderHeader draws the toolbar: the contents toggle, the font stepper and
// the book title pushed to the right edge.
func renderHeader(st viewer.State, l i18n.Labels, width int) string {
	toggle := l.ShowTOC
	if st.TOCVisible {
		toggle = l.HideTOC
	}
	left := buttonStyle.Render("[t] "+toggle) + "  " +
		buttonStyle.Render("[-] "+l.FontDown) + " " +
		fmt.Sprintf(l.FontSize, st.FontSize) + " " +
		buttonStyle.Render("[+] "+l.FontUp)

	title := titleStyle.Render(st.Title)
	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(title)
	if gap < 2 {
		gap = 2
	}
	return headerStyle.Render(left + lipgloss.NewStyle().Width(gap).Render("") + title)
}
