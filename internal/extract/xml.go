package extract

import (
	"io"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html/charset"

	"github.com/FocuswithJustin/RefFinder/core/errors"
)

// DefaultXPath selects the document's root element.
const DefaultXPath = "/*"

// CompileXPath checks an XPath expression, returning a ValidationError if
// it does not compile.
func CompileXPath(expr string) (*xpath.Expr, error) {
	if expr == "" {
		expr = DefaultXPath
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, &errors.ValidationError{Field: "xpath", Value: expr, Message: err.Error(), Err: err}
	}
	return compiled, nil
}

// FromXML returns one segment per node selected by expr. A selected
// element's text is its descendant text with element boundaries read as a
// space, so adjacent elements never run together. Entities are not
// expanded and external resources are never fetched.
func FromXML(source string, r io.Reader, expr string) ([]Segment, error) {
	compiled, err := CompileXPath(expr)
	if err != nil {
		return nil, err
	}
	doc, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict:        true,
			Entity:        map[string]string{},
			CharsetReader: charset.NewReaderLabel,
		},
	})
	if err != nil {
		return nil, errors.NewParse("xml", source, err.Error())
	}

	var segs []Segment
	for _, n := range xmlquery.QuerySelectorAll(doc, compiled) {
		text := nodeText(n)
		if strings.TrimSpace(text) == "" {
			continue
		}
		segs = append(segs, Segment{Source: source, Path: nodePath(n), Text: text})
	}
	return segs, nil
}

func nodeText(n *xmlquery.Node) string {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode, xmlquery.AttributeNode:
		return n.InnerText()
	}
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				b.WriteString(c.Data)
			case xmlquery.ElementNode:
				b.WriteByte(' ')
				walk(c)
				b.WriteByte(' ')
			}
		}
	}
	walk(n)
	return b.String()
}

// nodePath returns the element names from the root to n, e.g.
// "osis/osisText/div/p".
func nodePath(n *xmlquery.Node) string {
	var names []string
	for ; n != nil; n = n.Parent {
		if n.Type == xmlquery.ElementNode {
			name := n.Data
			if n.Prefix != "" {
				name = n.Prefix + ":" + name
			}
			names = append(names, name)
		}
	}
	slices.Reverse(names)
	return strings.Join(names, "/")
}
