package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/internal/extract"
	"github.com/FocuswithJustin/RefFinder/internal/logging"
	"github.com/FocuswithJustin/RefFinder/internal/validation"
)

// InputFlags select and decode the documents to scan.
type InputFlags struct {
	Paths          []string `arg:"" optional:"" help:"Files or directories to scan; - or nothing reads standard input"`
	Kind           string   `help:"Document kind (text, html, xml); detected when unset"`
	XPath          string   `name:"xpath" help:"XPath selecting the XML elements to scan"`
	IncludeInvalid bool     `name:"include-invalid" help:"Keep references that fail validation"`
}

// ScanResult is one line of scan output.
type ScanResult struct {
	Source     string                `json:"source"`
	Path       string                `json:"path,omitempty"`
	TextHash   string                `json:"text_hash"`
	References []scripture.Reference `json:"references"`
}

// ScanCmd prints the references in each segment as a JSON line.
type ScanCmd struct {
	InputFlags
	Pretty bool `help:"Indent JSON output"`
}

func (c *ScanCmd) Run(ctx context.Context, g *Globals) error {
	return c.each(ctx, g, func(st *stack, seg extract.Segment, refs []scripture.Reference) error {
		return writeJSON(g.stdout, ScanResult{
			Source:     seg.Source,
			Path:       seg.Path,
			TextHash:   extract.Digest(seg.Text),
			References: refs,
		}, c.Pretty)
	})
}

// AnnotateCmd renders each document as HTML.
type AnnotateCmd struct {
	InputFlags
	OutDir string `name:"out-dir" short:"o" help:"Write one .html file per document instead of printing" type:"path"`
}

func (c *AnnotateCmd) Run(ctx context.Context, g *Globals) error {
	var cur *document
	flush := func() error {
		if cur == nil {
			return nil
		}
		defer func() { cur = nil }()
		return cur.write(g.stdout, c.OutDir)
	}

	err := c.each(ctx, g, func(st *stack, seg extract.Segment, refs []scripture.Reference) error {
		if cur != nil && cur.source != seg.Source {
			if err := flush(); err != nil {
				return err
			}
		}
		if cur == nil {
			cur = &document{source: seg.Source}
		}
		cur.sections = append(cur.sections, section{path: seg.Path, html: st.annotator.Annotate(seg.Text, refs)})
		return nil
	})
	if err != nil {
		return err
	}
	return flush()
}

type section struct {
	path string
	html string
}

// document collects the annotated segments of one source.
type document struct {
	source   string
	sections []section
}

func (d *document) write(stdout io.Writer, outDir string) error {
	var b strings.Builder
	for _, s := range d.sections {
		if s.path != "" {
			fmt.Fprintf(&b, "<section data-path=\"%s\">\n", scripture.EscapeHTML(s.path))
		} else {
			b.WriteString("<section>\n")
		}
		b.WriteString(s.html)
		b.WriteString("\n</section>\n")
	}
	if outDir == "" {
		_, err := io.WriteString(stdout, b.String())
		return err
	}

	name, err := validation.SanitizeFilename(strings.TrimLeft(d.source, "/") + ".html")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	page := "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>" +
		scripture.EscapeHTML(d.source) + "</title></head>\n<body>\n" + b.String() + "</body>\n</html>\n"
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

// each extracts every input and calls emit with the references found in
// each segment, in input order.
func (c *InputFlags) each(ctx context.Context, g *Globals, emit func(*stack, extract.Segment, []scripture.Reference) error) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	st, err := openStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	st.annotator = scripture.Annotator{ValidClass: cfg.Finder.ValidClass, InvalidClass: cfg.Finder.InvalidClass}

	kind, err := extract.ParseKind(c.Kind)
	if err != nil {
		return err
	}
	if kind == extract.KindXML || c.XPath != "" {
		if _, err := extract.CompileXPath(c.XPath); err != nil {
			return err
		}
	}
	opts := extract.Options{Kind: kind, XPath: c.XPath, MaxBytes: int64(cfg.Finder.MaxTextBytes)}
	finder := st.finder(c.IncludeInvalid || cfg.Finder.IncludeInvalid)

	visit := func(name string, segs []extract.Segment) (bool, error) {
		start := time.Now()
		total, size := 0, 0
		for _, seg := range segs {
			refs, err := finder.Find(ctx, seg.Text)
			if err != nil {
				return true, err
			}
			total += len(refs)
			size += len(seg.Text)
			if err := emit(st, seg, refs); err != nil {
				return true, err
			}
		}
		logging.ScanCompleted(ctx, name, size, total, time.Since(start), "segments", len(segs))
		return false, nil
	}

	if len(c.Paths) == 0 {
		return extract.WalkReader("stdin", g.stdin, opts, visit)
	}
	for _, p := range c.Paths {
		if err := scanPath(p, g.stdin, opts, visit); err != nil {
			return err
		}
	}
	return nil
}

// scanPath walks a file, a directory tree or standard input ("-").
// Directory walks skip hidden entries and files that look binary.
func scanPath(path string, stdin io.Reader, opts extract.Options, visit extract.Visitor) error {
	if path == "-" {
		return extract.WalkReader("stdin", stdin, opts, visit)
	}
	if err := validation.ValidatePath(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return extract.Walk(path, opts, visit)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, err := looksScannable(p); err != nil || !ok {
			if err == nil {
				logging.Debug("skipping binary file", "path", p)
			}
			return err
		}
		return extract.Walk(p, opts, visit)
	})
}

var archiveExts = map[string]bool{".gz": true, ".xz": true, ".tgz": true, ".txz": true, ".tar": true}

// looksScannable reports whether a file found in a directory walk is an
// archive or starts like text.
func looksScannable(path string) (bool, error) {
	if archiveExts[strings.ToLower(filepath.Ext(path))] {
		return true, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	// Empty files have nothing to find.
	return n > 0 && validation.IsLikelyText(buf[:n]), nil
}
