package scripture

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Reference is one scripture reference found in a text.
type Reference struct {
	// ID is "<book without spaces>-<chapter>-<ordinal>", unique within the
	// scan that produced it, e.g. "1Corinthians-13-1".
	ID      string      `json:"id"`
	Book    string      `json:"book"`
	Chapter int         `json:"chapter"`
	Verses  string      `json:"raw_verses"`
	Parts   []VersePart `json:"parts"`
	// Offset and Length locate the reference in the scanned text, from the
	// first byte of the book token to the end of the verse specification.
	Offset           int      `json:"offset"`
	Length           int      `json:"length"`
	Display          string   `json:"display"`
	Valid            bool     `json:"valid"`
	ValidationErrors []string `json:"validation_errors"`
}

// End returns the byte offset just past the reference.
func (r Reference) End() int {
	return r.Offset + r.Length
}

// Text returns the reference exactly as written in text.
func (r Reference) Text(text string) string {
	return text[r.Offset:r.End()]
}

// PartsString joins the parts for display: "3-5, 7".
func (r Reference) PartsString() string {
	return joinParts(r.Parts, ", ")
}

// Query returns the canonical lookup form "<Book> <chapter>:<parts>", for
// example "John 3:16-18,20". It can be passed to a verse-text service.
func (r Reference) Query() string {
	return fmt.Sprintf("%s %d:%s", r.Book, r.Chapter, joinParts(r.Parts, ","))
}

// VerseNumbers returns every verse number the reference covers, in part order.
func (r Reference) VerseNumbers() []int {
	var out []int
	for _, p := range r.Parts {
		for v := p.Start; v <= p.End; v++ {
			out = append(out, v)
		}
	}
	return out
}

func joinParts(parts []VersePart, sep string) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = p.String()
	}
	return strings.Join(s, sep)
}

// Finder turns text into validated References.
type Finder struct {
	aliases        *AliasTable
	oracle         ContextValidator
	includeInvalid bool
}

// Option configures a Finder.
type Option func(*Finder)

// WithAliases replaces the built-in alias table.
func WithAliases(t *AliasTable) Option {
	return func(f *Finder) {
		if t != nil {
			f.aliases = t
		}
	}
}

// WithInvalid keeps references that fail validation, marked Valid=false
// with their errors, instead of dropping them.
func WithInvalid() Option {
	return func(f *Finder) {
		f.includeInvalid = true
	}
}

// NewFinder returns a Finder that checks verses with oracle.
func NewFinder(oracle ContextValidator, opts ...Option) *Finder {
	f := &Finder{aliases: DefaultAliases(), oracle: oracle}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Aliases returns the alias table the Finder resolves books with.
func (f *Finder) Aliases() *AliasTable {
	return f.aliases
}

// Find returns the references in text, in order of appearance. A candidate
// whose book is unknown is skipped without consuming an ordinal; a candidate
// with a known book consumes one even if it then fails validation. An error
// is returned only when ctx is done or the oracle fails.
func (f *Finder) Find(ctx context.Context, text string) ([]Reference, error) {
	refs := []Reference{}
	ordinal := 0
	for c := range f.aliases.Matcher().Candidates(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		book, ok := f.aliases.Canonicalize(c.Book)
		if !ok {
			continue
		}
		chapter, _ := strconv.Atoi(c.Chapter)
		parts := ParseParts(c.Verses)
		if parts == nil {
			parts = []VersePart{}
		}
		id := fmt.Sprintf("%s-%d-%d", strings.Join(strings.FieldsFunc(book, isSpace), ""), chapter, ordinal)
		ordinal++

		errs, err := f.check(ctx, book, chapter, parts)
		if err != nil {
			return nil, fmt.Errorf("validate %s %d: %w", book, chapter, err)
		}
		if len(errs) > 0 && !f.includeInvalid {
			continue
		}
		refs = append(refs, Reference{
			ID:               id,
			Book:             book,
			Chapter:          chapter,
			Verses:           c.Verses,
			Parts:            parts,
			Offset:           c.Start,
			Length:           c.End - c.Start,
			Display:          fmt.Sprintf("%s %d:%s", book, chapter, strings.Join(strings.FieldsFunc(c.Verses, isSpace), "")),
			Valid:            len(errs) == 0,
			ValidationErrors: errs,
		})
	}
	return refs, nil
}

// check asks the oracle about every verse in parts. Without WithInvalid the
// first failure settles the answer; with it, each part reports its first
// failing verse.
func (f *Finder) check(ctx context.Context, book string, chapter int, parts []VersePart) ([]string, error) {
	errs := []string{}
	for _, p := range parts {
		for v := p.Start; v <= p.End; v++ {
			res, err := f.oracle.ValidateContext(ctx, book, chapter, v)
			if err != nil {
				return nil, err
			}
			if res.Valid {
				continue
			}
			errs = append(errs, res.Error)
			if !f.includeInvalid {
				return errs, nil
			}
			break
		}
	}
	return errs, nil
}

// Count returns how many references text contains.
func (f *Finder) Count(ctx context.Context, text string) (int, error) {
	refs, err := f.Find(ctx, text)
	return len(refs), err
}

// ParseReferences finds the valid references in text using the built-in
// aliases and an in-memory oracle.
func ParseReferences(text string, v Validator) []Reference {
	refs, _ := NewFinder(Sync(v)).Find(context.Background(), text)
	return refs
}

// CountReferences returns how many valid references text contains.
func CountReferences(text string, v Validator) int {
	return len(ParseReferences(text, v))
}
