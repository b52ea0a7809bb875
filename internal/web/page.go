package web

import (
	"fmt"
	"strings"

	"github.com/metcalfc/folio/internal/i18n"
	"github.com/metcalfc/folio/internal/reader"
	"github.com/metcalfc/folio/internal/viewer"
)

type pageData struct {
	ID         string
	Title      string
	L          i18n.Labels
	TOCVisible bool
	FontSize   int
	FontLabel  string
	Step       int
	TOC        []tocItem
	Blocks     []blockView
	Error      string
}

type tocItem struct {
	Index   int
	Label   string
	Indent  int
	Current bool
}

type blockView struct {
	Kind   string
	Level  int
	Lines  []string
	IDs    []string
	Anchor bool
}

func (s *Server) pageFor(m *mount) pageData {
	st := m.host.State()
	d := pageData{
		ID:         m.id,
		Title:      st.Title,
		L:          s.labels,
		TOCVisible: st.TOCVisible,
		FontSize:   st.FontSize,
		FontLabel:  fmt.Sprintf(s.labels.FontSize, st.FontSize),
		Step:       s.step,
		TOC:        tocItems(st),
	}

	content, ok := m.surface.snapshot()
	if ok && content.Section != nil {
		for i, b := range content.Section.Blocks {
			d.Blocks = append(d.Blocks, blockView{
				Kind:   kindName(b.Kind),
				Level:  b.Level,
				Lines:  strings.Split(b.Text, "\n"),
				IDs:    b.IDs,
				Anchor: i == content.Anchor,
			})
		}
	}
	return d
}

func tocItems(st viewer.State) []tocItem {
	items := make([]tocItem, len(st.TOC))
	for i, e := range st.TOC {
		items[i] = tocItem{
			Index:   i,
			Label:   e.Label,
			Indent:  e.Level,
			Current: e == st.Current,
		}
	}
	return items
}

func kindName(k reader.BlockKind) string {
	switch k {
	case reader.Heading:
		return "heading"
	case reader.ListItem:
		return "item"
	case reader.Quote:
		return "quote"
	case reader.Preformatted:
		return "pre"
	default:
		return "para"
	}
}
