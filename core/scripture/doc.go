// Package scripture finds scripture references such as "Jn 3:16-18" or
// "1 Cor 13:4–7" in free-form text.
//
// The pipeline has five stages:
//
//   - an AliasTable resolves abbreviations to canonical book names,
//   - a Matcher scans text for candidate references,
//   - ParseParts decomposes a verse specification into ranges,
//   - a Finder validates each verse against an injected oracle and
//     assembles References,
//   - Annotate wraps every reference in an addressable HTML span.
//
// Offsets and lengths are byte positions in the scanned string. Everything in
// this package is safe for concurrent use; the Finder keeps no scan state
// between calls.
package scripture
