// Package epubtest builds small EPUB archives for tests.
package epubtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Chapter is one spine item. Body is the XHTML placed inside <body>.
type Chapter struct {
	ID    string
	Title string
	Body  string
}

// Point is a navigation entry. Href is relative to the package directory.
type Point struct {
	Label    string
	Href     string
	Children []Point
}

// Book describes the archive to build.
type Book struct {
	Title    string
	Chapters []Chapter
	// TOC defaults to one point per chapter.
	TOC []Point
	// Nav writes an EPUB 3 nav document in addition to the NCX.
	Nav bool
	// NoNCX omits toc.ncx.
	NoNCX bool
}

// Href returns the package-relative path of the chapter with id.
func Href(id string) string { return "text/" + id + ".xhtml" }

// Bytes renders b as an EPUB archive.
func Bytes(b Book) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return nil, err
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return nil, err
	}

	toc := b.TOC
	if toc == nil {
		for _, ch := range b.Chapters {
			toc = append(toc, Point{Label: ch.Title, Href: Href(ch.ID)})
		}
	}

	files := []struct{ name, data string }{
		{"META-INF/container.xml", container},
		{"OEBPS/content.opf", opf(b)},
	}
	if !b.NoNCX {
		files = append(files, struct{ name, data string }{"OEBPS/toc.ncx", ncx(b.Title, toc)})
	}
	if b.Nav {
		files = append(files, struct{ name, data string }{"OEBPS/nav.xhtml", nav(toc)})
	}
	for _, ch := range b.Chapters {
		files = append(files, struct{ name, data string }{"OEBPS/" + Href(ch.ID), chapter(ch)})
	}

	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.data)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders b into dir and returns the file path.
func Write(t testing.TB, dir string, b Book) string {
	t.Helper()
	data, err := Bytes(b)
	if err != nil {
		t.Fatalf("build epub: %v", err)
	}
	p := filepath.Join(dir, "book.epub")
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatalf("write epub: %v", err)
	}
	return p
}

// Sample is a three-chapter book with a nested entry and an anchor target.
func Sample() Book {
	return Book{
		Title: "The Coding Career Handbook",
		Chapters: []Chapter{
			{ID: "intro", Title: "Introduction", Body: `<h1>Introduction</h1><p>Welcome to the book.</p>`},
			{ID: "principles", Title: "Principles", Body: `<h1>Principles</h1><p>Learn in public.</p><h2 id="ship">Ship often</h2><p>Small steps compound.</p>`},
			{ID: "strategy", Title: "Strategy", Body: `<h1>Strategy</h1><p>Pick up what they put down.</p>`},
		},
		TOC: []Point{
			{Label: "Introduction", Href: Href("intro")},
			{Label: "Principles", Href: Href("principles"), Children: []Point{
				{Label: "Ship often", Href: Href("principles") + "#ship"},
			}},
			{Label: "Strategy", Href: Href("strategy")},
		},
	}
}

const container = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func opf(b Book) string {
	var manifest, spine strings.Builder
	if !b.NoNCX {
		manifest.WriteString(`    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + "\n")
	}
	if b.Nav {
		manifest.WriteString(`    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
	}
	for _, ch := range b.Chapters {
		fmt.Fprintf(&manifest, `    <item id="%s" href="%s" media-type="application/xhtml+xml"/>`+"\n", ch.ID, Href(ch.ID))
		fmt.Fprintf(&spine, `    <itemref idref="%s"/>`+"\n", ch.ID)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>%s</dc:title>
    <dc:identifier id="uid">urn:test:%s</dc:identifier>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
%s  </manifest>
  <spine toc="ncx">
%s  </spine>
</package>`, html.EscapeString(b.Title), strings.ReplaceAll(strings.ToLower(b.Title), " ", "-"), manifest.String(), spine.String())
}

func ncx(title string, toc []Point) string {
	var sb strings.Builder
	order := 0
	var write func([]Point, string)
	write = func(points []Point, indent string) {
		for _, p := range points {
			order++
			fmt.Fprintf(&sb, `%s<navPoint id="np%d" playOrder="%d"><navLabel><text>%s</text></navLabel><content src="%s"/>`+"\n",
				indent, order, order, html.EscapeString(p.Label), p.Href)
			write(p.Children, indent+"  ")
			sb.WriteString(indent + "</navPoint>\n")
		}
	}
	write(toc, "    ")
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <docTitle><text>%s</text></docTitle>
  <navMap>
%s  </navMap>
</ncx>`, html.EscapeString(title), sb.String())
}

func nav(toc []Point) string {
	var sb strings.Builder
	var write func([]Point)
	write = func(points []Point) {
		sb.WriteString("<ol>")
		for _, p := range points {
			fmt.Fprintf(&sb, `<li><a href="%s">%s</a>`, p.Href, html.EscapeString(p.Label))
			if len(p.Children) > 0 {
				write(p.Children)
			}
			sb.WriteString("</li>")
		}
		sb.WriteString("</ol>")
	}
	write(toc)
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Contents</title></head>
<body><nav epub:type="toc">` + sb.String() + `</nav></body>
</html>`
}

func chapter(ch Chapter) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>%s</title></head>
<body>%s</body>
</html>`, html.EscapeString(ch.Title), ch.Body)
}
