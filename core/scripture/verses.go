package scripture

import (
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// VersePart is an inclusive verse range within one chapter. A single verse
// has Start == End. ParseParts keeps a written 0 as is, so Start may be 0;
// verse 0 never validates, and a Finder reports such a part as invalid.
type VersePart struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewVersePart returns the range covering a and b in ascending order.
func NewVersePart(a, b int) VersePart {
	return VersePart{Start: min(a, b), End: max(a, b)}
}

// String formats the part as "5" or "3-5".
func (p VersePart) String() string {
	if p.Start == p.End {
		return strconv.Itoa(p.Start)
	}
	return strconv.Itoa(p.Start) + "-" + strconv.Itoa(p.End)
}

// Len returns the number of verses in the part.
func (p VersePart) Len() int {
	return p.End - p.Start + 1
}

// segmentGrammar is one comma-separated piece of a verse specification:
// "16", "4-7" or "3 – 5".
type segmentGrammar struct {
	Start string  `parser:"@Int"`
	End   *string `parser:"( Dash @Int )?"`
}

var segmentLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Dash", Pattern: `[-\x{2013}]`},
	{Name: "Whitespace", Pattern: `[` + spaceClass + `]+`},
})

var segmentParser = participle.MustBuild[segmentGrammar](
	participle.Lexer(segmentLexer),
	participle.Elide("Whitespace"),
)

// ParseParts decomposes a verse specification such as "4–7, 9-10,12" into
// parts, in the order written. Segments are separated by commas; empty and
// malformed segments are dropped without error. Reversed ranges are
// normalized, and nothing is sorted or merged. Zero and oversized numbers are
// kept for the validator to reject.
func ParseParts(spec string) []VersePart {
	var parts []VersePart
	for _, seg := range strings.Split(spec, ",") {
		seg = strings.TrimFunc(seg, isSpace)
		if seg == "" {
			continue
		}
		g, err := segmentParser.ParseString("", seg)
		if err != nil {
			continue
		}
		start := verseNumber(g.Start)
		end := start
		if g.End != nil {
			end = verseNumber(*g.End)
		}
		parts = append(parts, NewVersePart(start, end))
	}
	return parts
}

// verseNumber converts a digit run, clamping oversized numbers so they fail
// validation instead of vanishing from the specification.
func verseNumber(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n > math.MaxInt32 {
		return math.MaxInt32
	}
	return n
}
