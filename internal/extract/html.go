package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/FocuswithJustin/RefFinder/core/errors"
)

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Head:     true,
	atom.Svg:      true,
}

// blocks end the current segment.
var blocks = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Footer: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

// FromHTML returns the visible text of each block-level element as its own
// segment. Inline markup is flattened so "John <b>3:16</b>" reads as one
// reference; <br> becomes a newline. Legacy encodings declared by a BOM or
// <meta> tag are decoded to UTF-8.
func FromHTML(source string, r io.Reader) ([]Segment, error) {
	utf8r, err := charset.NewReader(r, "")
	if err != nil {
		return nil, errors.NewParse("html", source, err.Error())
	}
	doc, err := html.Parse(utf8r)
	if err != nil {
		return nil, errors.NewParse("html", source, err.Error())
	}

	var (
		segs []Segment
		buf  strings.Builder
		path []string
	)
	flush := func() {
		if strings.TrimSpace(buf.String()) != "" {
			segs = append(segs, Segment{Source: source, Path: strings.Join(path, "/"), Text: buf.String()})
		}
		buf.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				buf.WriteByte('\n')
				return
			}
			if blocks[n.DataAtom] {
				flush()
				path = append(path, n.Data)
				defer func() {
					flush()
					path = path[:len(path)-1]
				}()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()
	return segs, nil
}
