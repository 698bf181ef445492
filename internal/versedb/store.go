// Package versedb stores versification systems in SQLite so a server can
// validate references against data loaded at deploy time rather than the
// tables compiled into the binary.
package versedb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"

	"github.com/FocuswithJustin/RefFinder/core/errors"
	"github.com/FocuswithJustin/RefFinder/core/sqlite"
	"github.com/FocuswithJustin/RefFinder/core/versification"
	"github.com/FocuswithJustin/RefFinder/internal/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SystemInfo summarizes a seeded system.
type SystemInfo struct {
	Name     string    `json:"name"`
	SeededAt time.Time `json:"seeded_at"`
	Books    int       `json:"books"`
}

// Store is a versification database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	sb  squirrel.StatementBuilderType
	now func() time.Time
}

// Open opens or creates the database at dsn and migrates it to the latest
// schema. Use sqlite.Memory for a throwaway store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, errors.NewIO("open", dsn, err)
	}
	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and migrates it. The Store takes ownership of
// db.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := migrate(ctx, db); err != nil {
		return nil, err
	}
	return wrap(db), nil
}

// OpenReadOnly opens an existing, migrated database file without write
// access. Seed fails on the returned Store.
func OpenReadOnly(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	s := wrap(db)
	if v, err := s.SchemaVersion(ctx); err != nil || v == 0 {
		db.Close()
		return nil, errors.NewNotFound("versification schema", path)
	}
	return s, nil
}

func wrap(db *sql.DB) *Store {
	return &Store{
		db:  db,
		sb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		now: time.Now,
	}
}

func newProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectSQLite3, db, fsys)
}

func migrate(ctx context.Context, db *sql.DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return errors.Wrap(err, "create migration provider")
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Wrap(err, "migrate versification store")
	}
	for _, r := range results {
		logging.Debug("migration applied", "source", r.Source.Path, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := newProvider(s.db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed stores v, replacing any rows previously seeded for the same system.
func (s *Store) Seed(ctx context.Context, v *versification.Versification) (err error) {
	system := string(v.System)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin seed")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"chapters", "books", "systems"} {
		col := "system"
		if table == "systems" {
			col = "name"
		}
		if err = s.exec(ctx, tx, s.sb.Delete(table).Where(squirrel.Eq{col: system})); err != nil {
			return errors.Wrapf(err, "clear %s", table)
		}
	}

	err = s.exec(ctx, tx, s.sb.Insert("systems").
		Columns("name", "seeded_at").
		Values(system, s.now().UTC().Format(time.RFC3339)))
	if err != nil {
		return errors.Wrap(err, "insert system")
	}

	for i, b := range v.Books() {
		err = s.exec(ctx, tx, s.sb.Insert("books").
			Columns("system", "ordinal", "name", "osis", "testament", "deuterocanonical").
			Values(system, i, b.Name, b.OSIS, string(b.Testament), b.Deuterocanonical))
		if err != nil {
			return errors.Wrapf(err, "insert book %s", b.Name)
		}
		if len(b.Verses) == 0 {
			continue
		}
		chapters := s.sb.Insert("chapters").Columns("system", "book", "chapter", "verses")
		for ch, n := range b.Verses {
			chapters = chapters.Values(system, b.Name, ch+1, n)
		}
		if err = s.exec(ctx, tx, chapters); err != nil {
			return errors.Wrapf(err, "insert chapters of %s", b.Name)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit seed")
	}
	logging.StoreEvent("seeded", system, "books", len(v.Books()))
	return nil
}

func (s *Store) exec(ctx context.Context, tx *sql.Tx, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// Systems lists the seeded systems by name.
func (s *Store) Systems(ctx context.Context) ([]SystemInfo, error) {
	query, args, err := s.sb.
		Select("s.name", "s.seeded_at", "COUNT(b.name)").
		From("systems s").
		LeftJoin("books b ON b.system = s.name").
		GroupBy("s.name", "s.seeded_at").
		OrderBy("s.name").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list systems")
	}
	defer rows.Close()

	var out []SystemInfo
	for rows.Next() {
		var info SystemInfo
		var seeded string
		if err := rows.Scan(&info.Name, &seeded, &info.Books); err != nil {
			return nil, err
		}
		info.SeededAt, _ = time.Parse(time.RFC3339, seeded)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Books returns a system's books in canonical order with their chapter
// verse counts.
func (s *Store) Books(ctx context.Context, system string) ([]versification.Book, error) {
	if err := s.CheckSystem(ctx, system); err != nil {
		return nil, err
	}
	books, err := s.selectBooks(ctx, s.sb.
		Select("name", "osis", "testament", "deuterocanonical").
		From("books").
		Where(squirrel.Eq{"system": system}).
		OrderBy("ordinal"))
	if err != nil {
		return nil, err
	}

	query, args, err := s.sb.
		Select("book", "verses").
		From("chapters").
		Where(squirrel.Eq{"system": system}).
		OrderBy("book", "chapter").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list chapters")
	}
	defer rows.Close()

	byName := make(map[string]int, len(books))
	for i, b := range books {
		byName[strings.ToLower(b.Name)] = i
	}
	for rows.Next() {
		var book string
		var verses int
		if err := rows.Scan(&book, &verses); err != nil {
			return nil, err
		}
		if i, ok := byName[strings.ToLower(book)]; ok {
			books[i].Verses = append(books[i].Verses, verses)
		}
	}
	return books, rows.Err()
}

// Versification rebuilds a stored system in memory.
func (s *Store) Versification(ctx context.Context, system string) (*versification.Versification, error) {
	books, err := s.Books(ctx, system)
	if err != nil {
		return nil, err
	}
	return versification.New(versification.System(system), books), nil
}

// Book looks up a book by name or OSIS id, case-insensitively.
func (s *Store) Book(ctx context.Context, system, name string) (versification.Book, error) {
	name = strings.TrimSpace(name)
	books, err := s.selectBooks(ctx, s.sb.
		Select("name", "osis", "testament", "deuterocanonical").
		From("books").
		Where(squirrel.Eq{"system": system}).
		Where(squirrel.Or{squirrel.Eq{"name": name}, squirrel.Eq{"osis": name}}).
		Limit(1))
	if err != nil {
		return versification.Book{}, err
	}
	if len(books) == 0 {
		return versification.Book{}, errors.NewNotFound("book", system+"/"+name)
	}
	b := books[0]

	query, args, err := s.sb.
		Select("verses").
		From("chapters").
		Where(squirrel.Eq{"system": system, "book": b.Name}).
		OrderBy("chapter").
		ToSql()
	if err != nil {
		return versification.Book{}, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return versification.Book{}, errors.Wrap(err, "list chapters")
	}
	defer rows.Close()
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return versification.Book{}, err
		}
		b.Verses = append(b.Verses, n)
	}
	return b, rows.Err()
}

// ChapterCount returns the number of chapters in book.
func (s *Store) ChapterCount(ctx context.Context, system, book string) (int, error) {
	b, err := s.Book(ctx, system, book)
	if err != nil {
		return 0, err
	}
	return b.Chapters(), nil
}

// VerseCount returns the number of verses in one chapter.
func (s *Store) VerseCount(ctx context.Context, system, book string, chapter int) (int, error) {
	query, args, err := s.sb.
		Select("c.verses").
		From("chapters c").
		Join("books b ON b.system = c.system AND b.name = c.book").
		Where(squirrel.Eq{"c.system": system, "c.chapter": chapter}).
		Where(squirrel.Or{squirrel.Eq{"b.name": strings.TrimSpace(book)}, squirrel.Eq{"b.osis": strings.TrimSpace(book)}}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.NewNotFound("chapter", fmt.Sprintf("%s/%s %d", system, book, chapter))
	}
	if err != nil {
		return 0, errors.Wrap(err, "count verses")
	}
	return n, nil
}

// CheckSystem returns a NotFoundError unless system has been seeded.
func (s *Store) CheckSystem(ctx context.Context, system string) error {
	query, args, err := s.sb.Select("COUNT(*)").From("systems").Where(squirrel.Eq{"name": system}).ToSql()
	if err != nil {
		return err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return errors.Wrap(err, "look up system")
	}
	if n == 0 {
		return errors.NewNotFound("versification", system)
	}
	return nil
}

func (s *Store) selectBooks(ctx context.Context, q squirrel.SelectBuilder) ([]versification.Book, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	defer rows.Close()

	var books []versification.Book
	for rows.Next() {
		var b versification.Book
		var testament string
		if err := rows.Scan(&b.Name, &b.OSIS, &testament, &b.Deuterocanonical); err != nil {
			return nil, err
		}
		b.Testament = versification.Testament(testament)
		books = append(books, b)
	}
	return books, rows.Err()
}
