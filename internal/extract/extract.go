// Package extract turns input files into plain-text segments for the
// reference finder. It reads text, HTML and XML documents, optionally xz or
// gzip compressed, and tar archives of them.
package extract

import (
	"bytes"
	"encoding/hex"
	"net/http"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/RefFinder/core/errors"
)

// Kind is a document type.
type Kind string

const (
	KindText Kind = "text"
	KindHTML Kind = "html"
	KindXML  Kind = "xml"
)

// ParseKind maps a user-supplied name to a Kind. The empty string means
// "detect".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindText, KindHTML, KindXML:
		return k, nil
	case "txt":
		return KindText, nil
	case "htm", "xhtml":
		return KindHTML, nil
	}
	return "", errors.NewUnsupported("document kind", s)
}

// Segment is a run of text scanned as one unit. Reference offsets are
// relative to Text.
type Segment struct {
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
	Text   string `json:"text"`
}

// Options control extraction.
type Options struct {
	// Kind forces the document type; empty means Detect.
	Kind Kind
	// XPath selects XML nodes; each match becomes a segment. Empty selects
	// the root element.
	XPath string
	// MaxBytes bounds the decompressed size of each document (0 = no limit).
	MaxBytes int64
}

// Extract splits one document into segments.
func Extract(source string, data []byte, opts Options) ([]Segment, error) {
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, &errors.ValidationError{Field: "size", Value: source, Message: "document exceeds the size limit"}
	}
	kind := opts.Kind
	if kind == "" {
		kind = Detect(source, data)
	}
	switch kind {
	case KindHTML:
		return FromHTML(source, bytes.NewReader(data))
	case KindXML:
		return FromXML(source, bytes.NewReader(data), opts.XPath)
	default:
		return FromText(source, data), nil
	}
}

// FromText returns data as a single segment. Invalid UTF-8 is replaced with
// U+FFFD.
func FromText(source string, data []byte) []Segment {
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\ufffd")
	}
	return []Segment{{Source: source, Text: text}}
}

// Detect guesses a document's kind from its name, falling back to
// sniffing its content.
func Detect(name string, data []byte) Kind {
	switch strings.ToLower(path.Ext(stripCompression(name))) {
	case ".html", ".htm", ".xhtml":
		return KindHTML
	case ".xml", ".osis", ".usx", ".tei":
		return KindXML
	case ".txt", ".md", ".text":
		return KindText
	}

	head := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	switch {
	case bytes.HasPrefix(lower, []byte("<?xml")):
		if bytes.Contains(lower, []byte("<html")) {
			return KindHTML
		}
		return KindXML
	case bytes.HasPrefix(lower, []byte("<!doctype html")), bytes.HasPrefix(lower, []byte("<html")):
		return KindHTML
	}
	switch ct := http.DetectContentType(data); {
	case strings.HasPrefix(ct, "text/html"):
		return KindHTML
	case strings.HasPrefix(ct, "text/xml"):
		return KindXML
	}
	return KindText
}

// Digest returns the hex BLAKE3-256 digest of text.
func Digest(text string) string {
	h := blake3.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
