package reader

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// TOC returns the book's table of contents. The EPUB 3 nav document is
// preferred, then the NCX; a book with neither gets one entry per spine item.
func (b *Book) TOC() ([]TOCEntry, error) {
	for _, item := range b.navCandidates() {
		data, err := readItem(item)
		if err != nil {
			continue
		}
		if entries, err := parseNavXHTML(data, path.Dir(cleanHref(item.HREF))); err == nil && len(entries) > 0 {
			return entries, nil
		}
	}

	if item := b.findNCX(); item != nil {
		data, err := readItem(item)
		if err != nil {
			return nil, fmt.Errorf("failed to read NCX: %w", err)
		}
		entries, err := parseNCX(data, path.Dir(cleanHref(item.HREF)))
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	return b.spineTOC(), nil
}

// navCandidates returns XHTML manifest items that look like an EPUB 3 nav document.
// goreader does not expose manifest properties, so the id and file name are used.
func (b *Book) navCandidates() []*epub.Item {
	var out []*epub.Item
	for i := range b.rf.Manifest.Items {
		item := &b.rf.Manifest.Items[i]
		if item.MediaType != "application/xhtml+xml" {
			continue
		}
		id := strings.ToLower(item.ID)
		base := strings.ToLower(path.Base(item.HREF))
		if strings.Contains(id, "nav") || strings.HasPrefix(base, "nav") || strings.HasPrefix(base, "toc") {
			out = append(out, item)
		}
	}
	return out
}

func (b *Book) findNCX() *epub.Item {
	for i := range b.rf.Manifest.Items {
		item := &b.rf.Manifest.Items[i]
		if item.MediaType == "application/x-dtbncx+xml" {
			return item
		}
	}
	for i := range b.rf.Manifest.Items {
		item := &b.rf.Manifest.Items[i]
		if strings.HasSuffix(strings.ToLower(item.HREF), ".ncx") {
			return item
		}
	}
	return nil
}

func (b *Book) spineTOC() []TOCEntry {
	var entries []TOCEntry
	for i, href := range b.Spine() {
		entries = append(entries, TOCEntry{
			Label: fmt.Sprintf("Section %d", i+1),
			Href:  href,
		})
	}
	return entries
}

func parseNCX(data []byte, dir string) ([]TOCEntry, error) {
	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}
	return flattenNavPoints(toc.NavMap.NavPoints, dir, 0), nil
}

func flattenNavPoints(points []navPoint, dir string, level int) []TOCEntry {
	var entries []TOCEntry

	for _, np := range points {
		entries = append(entries, TOCEntry{
			Label: strings.Join(strings.Fields(np.Label.Text), " "),
			Href:  resolveHref(dir, np.Content.Src),
			Level: level,
		})
		if len(np.Children) > 0 {
			entries = append(entries, flattenNavPoints(np.Children, dir, level+1)...)
		}
	}

	return entries
}

// parseNavXHTML reads the <nav epub:type="toc"> list of an EPUB 3 nav document.
func parseNavXHTML(data []byte, dir string) ([]TOCEntry, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	nav := findNode(doc, func(n *html.Node) bool {
		if n.Data != "nav" {
			return false
		}
		for _, a := range n.Attr {
			if (a.Key == "epub:type" || a.Key == "type") && strings.Contains(a.Val, "toc") {
				return true
			}
		}
		return false
	})
	if nav == nil {
		return nil, fmt.Errorf("no toc nav element")
	}

	ol := findNode(nav, func(n *html.Node) bool { return n.Data == "ol" })
	if ol == nil {
		return nil, fmt.Errorf("toc nav has no list")
	}

	var entries []TOCEntry
	walkNavList(ol, dir, 0, &entries)
	return entries, nil
}

func walkNavList(ol *html.Node, dir string, level int, out *[]TOCEntry) {
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}

		var label, href string
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "a":
				href = attr(c, "href")
				label = textContent(c)
			case "span":
				if label == "" {
					label = textContent(c)
				}
			}
		}
		if label != "" {
			*out = append(*out, TOCEntry{
				Label: label,
				Href:  resolveHref(dir, href),
				Level: level,
			})
		}

		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "ol" {
				walkNavList(c, dir, level+1, out)
			}
		}
	}
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
