package reader

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// BlockKind classifies a block of section text.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	ListItem
	Quote
	Preformatted
)

// Block is one run of text between block-level boundaries.
type Block struct {
	Kind  BlockKind
	Level int // 1-6 for headings
	Text  string
	IDs   []string
}

// Section is a parsed spine item.
type Section struct {
	Href   string
	Title  string
	Blocks []Block
}

// Anchor returns the index of the block carrying id, or -1.
func (s *Section) Anchor(id string) int {
	if id == "" {
		return -1
	}
	for i, b := range s.Blocks {
		for _, bid := range b.IDs {
			if bid == id {
				return i
			}
		}
	}
	return -1
}

// lineBreak marks a <br> in collected text so it survives whitespace collapsing.
const lineBreak = "\u2028"

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "body": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// ParseSection converts an XHTML document into ordered text blocks.
func ParseSection(href string, data []byte) (*Section, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", href, err)
	}

	p := &sectionParser{}
	p.walk(doc)
	p.flush()

	s := &Section{Href: href, Title: p.title, Blocks: p.blocks}
	if s.Title == "" {
		for _, b := range s.Blocks {
			if b.Kind == Heading {
				s.Title = b.Text
				break
			}
		}
	}
	return s, nil
}

type sectionParser struct {
	blocks []Block
	stack  []Block
	buf    strings.Builder
	ids    []string
	title  string
}

func (p *sectionParser) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		p.buf.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipTags[n.Data] {
			return
		}
		if n.Data == "head" {
			if t := findNode(n, func(c *html.Node) bool { return c.Data == "title" }); t != nil {
				p.title = textContent(t)
			}
			return
		}
		if n.Data == "br" {
			p.buf.WriteString(lineBreak)
			return
		}
		if blockTags[n.Data] {
			p.flush()
			p.addID(n)
			p.stack = append(p.stack, blockFor(n.Data))
			p.children(n)
			p.flush()
			p.stack = p.stack[:len(p.stack)-1]
			return
		}
		p.addID(n)
	}
	p.children(n)
}

func (p *sectionParser) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *sectionParser) addID(n *html.Node) {
	if id := attr(n, "id"); id != "" {
		p.ids = append(p.ids, id)
	}
}

// flush turns buffered text into a block of the innermost open kind.
// Ids seen without text stay pending for the next block.
func (p *sectionParser) flush() {
	raw := p.buf.String()
	p.buf.Reset()

	b := Block{Kind: Paragraph}
	if len(p.stack) > 0 {
		b = p.stack[len(p.stack)-1]
	}

	var text string
	if b.Kind == Preformatted {
		text = strings.Trim(strings.ReplaceAll(raw, lineBreak, "\n"), "\n")
	} else {
		text = collapse(raw)
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	b.Text = text
	b.IDs = p.ids
	p.ids = nil
	p.blocks = append(p.blocks, b)
}

func blockFor(tag string) Block {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return Block{Kind: Heading, Level: int(tag[1] - '0')}
	case "li", "dt", "dd":
		return Block{Kind: ListItem}
	case "blockquote":
		return Block{Kind: Quote}
	case "pre":
		return Block{Kind: Preformatted}
	}
	return Block{Kind: Paragraph}
}

func collapse(s string) string {
	parts := strings.Split(s, lineBreak)
	out := parts[:0]
	for _, part := range parts {
		if line := strings.Join(strings.Fields(part), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
