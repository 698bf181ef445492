package scripture

import "fmt"

// fakeVerses holds verse counts for the chapters the tests cite.
var fakeVerses = map[string]map[int]int{
	"Genesis":         {1: 31},
	"Song of Solomon": {2: 17},
	"Matthew":         {5: 48, 15: 39},
	"John":            {1: 51, 3: 36, 15: 27},
	"Romans":          {8: 39},
	"1 Corinthians":   {13: 13, 14: 40},
	"Galatians":       {5: 26, 6: 18},
	"1 John":          {1: 10},
	"Revelation":      {22: 21},
}

var fakeOracle = ValidatorFunc(func(book string, chapter, verse int) Validation {
	chapters, ok := fakeVerses[book]
	if !ok {
		return Validation{Error: "unknown book: " + book}
	}
	n, ok := chapters[chapter]
	if !ok {
		return Validation{Error: fmt.Sprintf("%s has no chapter %d", book, chapter)}
	}
	if verse < 1 || verse > n {
		return Validation{Error: fmt.Sprintf("%s %d has %d verses", book, chapter, n)}
	}
	return Validation{Valid: true}
})
