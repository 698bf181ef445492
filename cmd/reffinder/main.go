// Command reffinder finds scripture references in documents. It scans files
// and standard input, renders annotated HTML, manages the versification
// database and serves the REST API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/core/sqlite"
	"github.com/FocuswithJustin/RefFinder/core/versification"
	"github.com/FocuswithJustin/RefFinder/internal/api"
	"github.com/FocuswithJustin/RefFinder/internal/cache"
	"github.com/FocuswithJustin/RefFinder/internal/config"
	"github.com/FocuswithJustin/RefFinder/internal/logging"
	"github.com/FocuswithJustin/RefFinder/internal/validation"
	"github.com/FocuswithJustin/RefFinder/internal/versedb"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"YAML configuration file" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" placeholder:"LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" placeholder:"FORMAT"`
	Aliases   string `name:"aliases" help:"YAML file of extra book aliases" type:"path"`
	DB        string `name:"db" help:"Versification database; the built-in tables are used when unset" type:"path"`
	System    string `name:"system" help:"Versification system (KJV, NRSV, Vulgate)"`

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// CLI defines the command-line interface for reffinder.
type CLI struct {
	Globals

	Scan     ScanCmd     `cmd:"" help:"Find references in files or standard input"`
	Annotate AnnotateCmd `cmd:"" help:"Render documents as HTML with references marked up"`
	Parts    PartsCmd    `cmd:"" help:"Parse a verse specification such as 3-5,7"`
	Books    BooksCmd    `cmd:"" help:"List the books of a versification system"`
	Validate ValidateCmd `cmd:"" help:"Check whether a verse exists"`
	Versedb  VersedbCmd  `cmd:"" name:"versedb" help:"Versification database maintenance"`
	Serve    ServeCmd    `cmd:"" help:"Start the REST API server"`
	Env      EnvCmd      `cmd:"" help:"Describe the configuration environment variables"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// load reads the configuration, applies global flag overrides and sets up
// logging.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if g.Aliases != "" {
		cfg.Finder.AliasesFile = g.Aliases
	}
	if g.DB != "" {
		cfg.Store.Path = g.DB
	}
	if g.System != "" {
		cfg.Finder.System = g.System
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.InitLoggerTo(g.stderr, level, format)
	return cfg, nil
}

// stack is the finder's view of the configured system.
type stack struct {
	v         *versification.Versification
	oracle    scripture.ContextValidator
	aliases   *scripture.AliasTable
	annotator scripture.Annotator
	close     func()
}

// openStack resolves the system, aliases and oracle. With a database
// configured, verses are checked against the stored system.
func openStack(ctx context.Context, cfg *config.Config) (*stack, error) {
	builtin, err := versification.Get(versification.System(cfg.Finder.System))
	if err != nil {
		return nil, err
	}
	aliases, err := config.LoadAliases(cfg.Finder.AliasesFile)
	if err != nil {
		return nil, err
	}
	st := &stack{v: builtin, oracle: scripture.Sync(builtin), aliases: aliases, close: func() {}}
	if cfg.Store.Path == "" {
		return st, nil
	}

	store, err := versedb.OpenReadOnly(ctx, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("%w (run \"reffinder versedb init\")", err)
	}
	system := string(builtin.System)
	if st.v, err = store.Versification(ctx, system); err != nil {
		store.Close()
		return nil, fmt.Errorf("%w (run \"reffinder versedb init\")", err)
	}
	st.oracle = store.Oracle(system, cache.Config{MaxSize: cfg.Store.CacheSize})
	st.close = func() { store.Close() }
	return st, nil
}

func (st *stack) finder(includeInvalid bool) *scripture.Finder {
	opts := []scripture.Option{scripture.WithAliases(st.aliases)}
	if includeInvalid {
		opts = append(opts, scripture.WithInvalid())
	}
	return scripture.NewFinder(st.oracle, opts...)
}

// PartsCmd parses a verse specification.
type PartsCmd struct {
	Spec string `arg:"" help:"Verse specification, e.g. \"4-7, 9\""`
}

func (c *PartsCmd) Run(g *Globals) error {
	if err := validation.ValidateSpec(c.Spec); err != nil {
		return err
	}
	parts := scripture.ParseParts(c.Spec)
	if parts == nil {
		parts = []scripture.VersePart{}
	}
	display := make([]string, len(parts))
	for i, p := range parts {
		display[i] = p.String()
	}
	return writeJSON(g.stdout, map[string]any{
		"spec":    c.Spec,
		"parts":   parts,
		"display": strings.Join(display, ", "),
	}, true)
}

// BooksCmd lists the books of the configured system.
type BooksCmd struct {
	JSON bool `name:"json" help:"Print JSON instead of a table"`
}

func (c *BooksCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	st, err := openStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if c.JSON {
		return writeJSON(g.stdout, st.v.Books(), true)
	}
	tw := tabwriter.NewWriter(g.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOOK\tOSIS\tTESTAMENT\tCHAPTERS\tVERSES\tALIASES")
	for _, b := range st.v.Books() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", b.Name, b.OSIS, b.Testament, b.Chapters(),
			st.v.TotalVerses(b.Name), strings.Join(st.aliases.Aliases(b.Name), ", "))
	}
	return tw.Flush()
}

// ValidateCmd checks one verse.
type ValidateCmd struct {
	Book    string `arg:"" help:"Book name or alias"`
	Chapter int    `arg:"" help:"Chapter number"`
	Verse   int    `arg:"" help:"Verse number"`
}

func (c *ValidateCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	st, err := openStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	book := c.Book
	if canonical, ok := st.aliases.Canonicalize(book); ok {
		book = canonical
	}
	res, err := st.oracle.ValidateContext(ctx, book, c.Chapter, c.Verse)
	if err != nil {
		return err
	}
	ref := book + " " + strconv.Itoa(c.Chapter) + ":" + strconv.Itoa(c.Verse)
	if !res.Valid {
		fmt.Fprintf(g.stdout, "%s: %s\n", ref, res.Error)
		return fmt.Errorf("%s does not exist", ref)
	}
	fmt.Fprintf(g.stdout, "%s: valid\n", ref)
	return nil
}

// VersedbCmd groups database maintenance.
type VersedbCmd struct {
	Init  VersedbInitCmd  `cmd:"" help:"Create the database and load versification systems"`
	Books VersedbBooksCmd `cmd:"" name:"books" help:"List the systems stored in the database"`
}

// VersedbInitCmd seeds systems into the database.
type VersedbInitCmd struct {
	Systems []string `name:"only" help:"Systems to load (default: all)" placeholder:"SYSTEM"`
}

func (c *VersedbInitCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("no database configured (use --db or store.path)")
	}
	store, err := versedb.Open(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	names := c.Systems
	if len(names) == 0 {
		for _, s := range versification.Systems() {
			names = append(names, string(s))
		}
	}
	for _, name := range names {
		v, err := versification.Get(versification.System(name))
		if err != nil {
			return err
		}
		if err := store.Seed(ctx, v); err != nil {
			return err
		}
		fmt.Fprintf(g.stdout, "loaded %s (%d books)\n", v.System, len(v.Books()))
	}
	return nil
}

// VersedbBooksCmd lists stored systems.
type VersedbBooksCmd struct{}

func (c *VersedbBooksCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("no database configured (use --db or store.path)")
	}
	store, err := versedb.OpenReadOnly(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	systems, err := store.Systems(ctx)
	if err != nil {
		return err
	}
	schema, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout, "%s (schema version %d)\n", cfg.Store.Path, schema)
	tw := tabwriter.NewWriter(g.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYSTEM\tBOOKS\tSEEDED")
	for _, s := range systems {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Name, s.Books, s.SeededAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

// ServeCmd starts the REST API.
type ServeCmd struct {
	Host string `help:"Listen host (overrides server.host)"`
	Port int    `short:"p" help:"Listen port (overrides server.port)"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	st, err := openStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	srv, err := api.New(*cfg, api.Deps{
		Versification: st.v,
		Oracle:        st.oracle,
		Aliases:       st.aliases,
		Version:       version,
	})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}

// EnvCmd lists the environment variables the configuration reads.
type EnvCmd struct{}

func (c *EnvCmd) Run(g *Globals) error {
	text, err := config.Usage()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.stdout, text)
	return err
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.stdout, "reffinder version %s\n", version)
	info := sqlite.GetInfo()
	fmt.Fprintf(g.stdout, "sqlite driver: %s (%s)\n", info.DriverName, info.Package)
	return nil
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	cli.stdin, cli.stdout, cli.stderr = stdin, stdout, stderr

	parser, err := kong.New(&cli,
		kong.Name("reffinder"),
		kong.Description("Find, validate and annotate scripture references."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&cli.Globals)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "reffinder: error: %v\n", err)
		os.Exit(1)
	}
}
