package scripture

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// AliasTable maps book abbreviations to canonical book names. It is built
// once and never modified, so a single table can serve concurrent scans.
type AliasTable struct {
	entries map[string]string
	matcher *Matcher
}

var defaultAliases = sync.OnceValue(func() *AliasTable {
	return newAliasTable(maps.Clone(builtinAliases))
})

// DefaultAliases returns the built-in alias table.
func DefaultAliases() *AliasTable {
	return defaultAliases()
}

// NewAliasTable returns the built-in aliases extended with extra. Keys of
// extra are normalized like any lookup; an extra entry replaces a built-in
// alias of the same spelling.
func NewAliasTable(extra map[string]string) (*AliasTable, error) {
	entries := maps.Clone(builtinAliases)
	for alias, book := range extra {
		key := normalizeAlias(alias)
		if key == "" {
			return nil, fmt.Errorf("alias for %q is empty", book)
		}
		book = strings.TrimSpace(book)
		if book == "" {
			return nil, fmt.Errorf("alias %q has no book", alias)
		}
		entries[key] = book
	}
	return newAliasTable(entries), nil
}

func newAliasTable(entries map[string]string) *AliasTable {
	t := &AliasTable{entries: entries}
	t.matcher = newMatcher(slices.Collect(maps.Keys(entries)))
	return t
}

// Canonicalize resolves raw to its canonical book name. Lookup is
// case-insensitive and ignores surrounding and repeated whitespace.
func (t *AliasTable) Canonicalize(raw string) (string, bool) {
	book, ok := t.entries[normalizeAlias(raw)]
	return book, ok
}

// Matcher returns the candidate scanner for this table's aliases.
func (t *AliasTable) Matcher() *Matcher {
	return t.matcher
}

// Len returns the number of aliases.
func (t *AliasTable) Len() int {
	return len(t.entries)
}

// Books returns the distinct canonical names, sorted.
func (t *AliasTable) Books() []string {
	seen := make(map[string]struct{}, 80)
	for _, book := range t.entries {
		seen[book] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Aliases returns every alias that resolves to book, sorted.
func (t *AliasTable) Aliases(book string) []string {
	var out []string
	for alias, b := range t.entries {
		if b == book {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// Canonicalize resolves raw against the built-in alias table.
func Canonicalize(raw string) (string, bool) {
	return DefaultAliases().Canonicalize(raw)
}

// normalizeAlias folds compatibility forms, trims, collapses whitespace runs
// to a single space and lowercases.
func normalizeAlias(raw string) string {
	fields := strings.FieldsFunc(norm.NFKC.String(raw), isSpace)
	return strings.ToLower(strings.Join(fields, " "))
}

// isSpace reports whether r belongs to the ECMAScript \s class: ASCII
// whitespace, vertical tab, Unicode space separators, line and paragraph
// separators and the byte order mark.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
