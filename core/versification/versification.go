// Package versification holds the book, chapter and verse structure of
// Bible versification systems and answers whether a verse exists.
package versification

import (
	"fmt"
	"strings"
	"sync"

	"github.com/FocuswithJustin/RefFinder/core/errors"
	"github.com/FocuswithJustin/RefFinder/core/scripture"
)

// System identifies a versification system.
type System string

// Supported systems.
const (
	KJV     System = "KJV"
	NRSV    System = "NRSV"
	Vulgate System = "Vulgate"
)

// Testament is the part of the canon a book belongs to.
type Testament string

const (
	OldTestament Testament = "OT"
	NewTestament Testament = "NT"
)

// Book is one book's structure.
type Book struct {
	Name             string    `json:"name"`
	OSIS             string    `json:"osis"`
	Testament        Testament `json:"testament"`
	Deuterocanonical bool      `json:"deuterocanonical,omitempty"`
	Verses           []int     `json:"verses"` // verse count per chapter
}

// Chapters returns the number of chapters.
func (b Book) Chapters() int {
	return len(b.Verses)
}

// Versification is an immutable versification system.
type Versification struct {
	System System
	books  []Book
	index  map[string]int // canonical name and OSIS id, lowercased
}

// New builds a system from books in canonical order. Books are looked up by
// name and OSIS id; a later book shadows an earlier one with the same key.
func New(system System, books []Book) *Versification {
	v := &Versification{System: system, books: books, index: make(map[string]int, len(books)*2)}
	for i, b := range books {
		v.index[strings.ToLower(b.Name)] = i
		v.index[strings.ToLower(b.OSIS)] = i
	}
	return v
}

var (
	kjvOnce     = sync.OnceValue(func() *Versification { return New(KJV, kjvBooks) })
	nrsvOnce    = sync.OnceValue(func() *Versification { return New(NRSV, kjvBooks) })
	vulgateOnce = sync.OnceValue(func() *Versification { return New(Vulgate, vulgateBooks()) })
)

// Get returns the named system. The empty name selects KJV.
func Get(system System) (*Versification, error) {
	switch System(strings.ToUpper(string(system))) {
	case "", "KJV", "LDS":
		return kjvOnce(), nil
	case "NRSV":
		// Differences from KJV are not modeled yet.
		return nrsvOnce(), nil
	case "VULGATE", "VULG", "CATHOLIC":
		return vulgateOnce(), nil
	}
	return nil, errors.NewUnsupported("versification", string(system))
}

// Default returns the KJV system.
func Default() *Versification {
	return kjvOnce()
}

// Systems lists the supported systems.
func Systems() []System {
	return []System{KJV, NRSV, Vulgate}
}

func vulgateBooks() []Book {
	books := make([]Book, 0, len(kjvBooks)+len(vulgateAdditions))
	for _, b := range kjvBooks {
		for _, add := range vulgateAdditions {
			if add.Before == b.Name {
				books = append(books, add.Book)
			}
		}
		books = append(books, b)
	}
	return books
}

// Books returns the books in canonical order. The slice must not be modified.
func (v *Versification) Books() []Book {
	return v.books
}

// Book looks up a book by canonical name or OSIS id, case-insensitively.
func (v *Versification) Book(name string) (Book, bool) {
	i, ok := v.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Book{}, false
	}
	return v.books[i], true
}

// ChapterCount returns the number of chapters in book, or 0 if unknown.
func (v *Versification) ChapterCount(book string) int {
	b, ok := v.Book(book)
	if !ok {
		return 0
	}
	return b.Chapters()
}

// VerseCount returns the number of verses in a chapter, or 0 if either the
// book or the chapter does not exist.
func (v *Versification) VerseCount(book string, chapter int) int {
	b, ok := v.Book(book)
	if !ok || chapter < 1 || chapter > len(b.Verses) {
		return 0
	}
	return b.Verses[chapter-1]
}

// TotalVerses returns the number of verses in book.
func (v *Versification) TotalVerses(book string) int {
	b, _ := v.Book(book)
	total := 0
	for _, n := range b.Verses {
		total += n
	}
	return total
}

// Validate reports whether book chapter:verse exists. It satisfies
// scripture.Validator.
func (v *Versification) Validate(book string, chapter, verse int) scripture.Validation {
	b, ok := v.Book(book)
	if !ok {
		return scripture.Validation{Error: fmt.Sprintf("unknown book: %s", book)}
	}
	return CheckVerse(b.Name, len(b.Verses), func(ch int) int { return b.Verses[ch-1] }, chapter, verse)
}

// CheckVerse applies the range rules shared by every oracle: chapters run
// from 1 to chapters, verses from 1 to verses(chapter).
func CheckVerse(book string, chapters int, verses func(chapter int) int, chapter, verse int) scripture.Validation {
	if chapter < 1 || chapter > chapters {
		return scripture.Validation{Error: fmt.Sprintf("%s has %s", book, plural(chapters, "chapter"))}
	}
	n := verses(chapter)
	if verse < 1 || verse > n {
		return scripture.Validation{Error: fmt.Sprintf("%s %d has %s", book, chapter, plural(n, "verse"))}
	}
	return scripture.Validation{Valid: true}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
