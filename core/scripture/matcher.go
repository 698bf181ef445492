package scripture

import (
	"cmp"
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Candidate is a reference-shaped substring found by a Matcher. Nothing about
// it has been checked beyond its shape.
type Candidate struct {
	Book    string // raw book token as written
	Chapter string // 1-3 digits
	Verses  string // verse specification, e.g. "4–7,9"
	Start   int    // byte offset of the book token
	End     int    // byte offset just past the verse specification
}

// Text returns the candidate's span of text.
func (c Candidate) Text(text string) string {
	return text[c.Start:c.End]
}

// Matcher scans text for candidate references:
//
//	<book>[.] <chapter> : <verses>
//
// A candidate starts at the beginning of the text or after whitespace or "(",
// and its verse specification must be followed by whitespace, one of ";.!?)"
// or the end of the text. Neither the leading nor the trailing character is
// part of the candidate.
type Matcher struct {
	re *regexp.Regexp
}

const (
	spaceClass = `\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}`
	verseClass = `0-9,\x{2013}-`
)

func newMatcher(aliases []string) *Matcher {
	// Longest first so "1 cor" wins over "1co" and "song of songs" over "song".
	slices.SortFunc(aliases, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	alt := make([]string, len(aliases))
	for i, a := range aliases {
		alt[i] = regexp.QuoteMeta(a)
	}
	pattern := `(?i)(` + strings.Join(alt, "|") + `)\.?` +
		`[` + spaceClass + `]+(\d{1,3})[` + spaceClass + `]*:[` + spaceClass + `]*` +
		`([` + verseClass + `]+)(?:[;.!?)` + spaceClass + `]|$)`
	return &Matcher{re: regexp.MustCompile(pattern)}
}

// NewMatcher builds a Matcher for the given aliases.
func NewMatcher(aliases []string) *Matcher {
	return newMatcher(slices.Clone(aliases))
}

// Candidates yields the candidates in text from left to right. Candidates
// never overlap. Each call scans independently, so one Matcher can serve any
// number of concurrent scans.
func (m *Matcher) Candidates(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		pos := 0
		for pos < len(text) {
			loc := m.re.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			start := pos + loc[2]
			if !leadsCandidate(text, start) {
				_, size := utf8.DecodeRuneInString(text[start:])
				pos = start + size
				continue
			}
			c := Candidate{
				Book:    text[start : pos+loc[3]],
				Chapter: text[pos+loc[4] : pos+loc[5]],
				Verses:  text[pos+loc[6] : pos+loc[7]],
				Start:   start,
				End:     pos + loc[7],
			}
			if !yield(c) {
				return
			}
			// The terminator is not consumed; it may lead the next candidate.
			pos = c.End
		}
	}
}

// leadsCandidate reports whether a candidate may begin at byte offset i.
func leadsCandidate(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return r == '(' || isSpace(r)
}
