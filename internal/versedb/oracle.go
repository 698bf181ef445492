package versedb

import (
	"context"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/RefFinder/core/errors"
	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/core/versification"
	"github.com/FocuswithJustin/RefFinder/internal/cache"
)

// bookEntry is a cached book layout. A zero entry records a lookup that
// found nothing.
type bookEntry struct {
	name   string
	verses []int
}

// Oracle validates verses against one stored system. It satisfies
// scripture.ContextValidator.
type Oracle struct {
	store  *Store
	system string
	books  *cache.LRU[string, bookEntry]
}

// Oracle returns a validator for system backed by an LRU of book layouts.
func (s *Store) Oracle(system string, config cache.Config) *Oracle {
	return &Oracle{
		store:  s,
		system: system,
		books:  cache.New[string, bookEntry](config),
	}
}

// System returns the system the oracle validates against.
func (o *Oracle) System() string {
	return o.system
}

// ValidateContext reports whether book chapter:verse exists. Unknown books
// are answered with a Validation error; only store failures return a Go
// error.
func (o *Oracle) ValidateContext(ctx context.Context, book string, chapter, verse int) (scripture.Validation, error) {
	b, err := o.books.GetOrLoad(strings.ToLower(book), func() (bookEntry, error) {
		found, err := o.store.Book(ctx, o.system, book)
		if errors.Is(err, errors.ErrNotFound) {
			return bookEntry{}, nil
		}
		if err != nil {
			return bookEntry{}, err
		}
		return bookEntry{name: found.Name, verses: found.Verses}, nil
	})
	if err != nil {
		return scripture.Validation{}, err
	}
	if b.name == "" {
		return scripture.Validation{Error: fmt.Sprintf("unknown book: %s", book)}, nil
	}
	return versification.CheckVerse(b.name, len(b.verses), func(ch int) int { return b.verses[ch-1] }, chapter, verse), nil
}

// Stats returns the book cache statistics.
func (o *Oracle) Stats() cache.Stats {
	return o.books.Stats()
}
