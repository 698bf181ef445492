package scripture

import (
	"slices"
	"testing"
)

func collect(m *Matcher, text string) []Candidate {
	return slices.Collect(m.Candidates(text))
}

func TestMatcherCandidates(t *testing.T) {
	m := DefaultAliases().Matcher()

	tests := []struct {
		name string
		text string
		want []string // candidate spans
	}{
		{"start of text", "John 3:16", []string{"John 3:16"}},
		{"after space", "Read John 3:16 today.", []string{"John 3:16"}},
		{"parenthesized", "(Matt. 15:18–20) and (Gal. 5:19–21).", []string{"Matt. 15:18–20", "Gal. 5:19–21"}},
		{"glued to a word", "xJohn 3:16", nil},
		{"trailing letter", "John 3:16a", nil},
		{"trailing colon", "John 3:16:", nil},
		{"space around colon", "John 3 : 16.", []string{"John 3 : 16"}},
		{"no chapter separator", "John 3.16", nil},
		{"four digit chapter", "John 1234:1", nil},
		{"shared terminator", "John 3:16 Rom 8:28", []string{"John 3:16", "Rom 8:28"}},
		{"semicolon list", "Jn 1:1; Rev 22:20.", []string{"Jn 1:1", "Rev 22:20"}},
		{"bang and question", "John 3:16! Rom 8:28?", []string{"John 3:16", "Rom 8:28"}},
		{"no-break space", "see\u00a0Jn\u00a03:16", []string{"Jn\u00a03:16"}},
		{"line break", "see\nJn 3:16\n", []string{"Jn 3:16"}},
		{"case-insensitive", "GAL 6:1", []string{"GAL 6:1"}},
		{"verse list", "Genesis 1:1,3,5.", []string{"Genesis 1:1,3,5"}},
		{"bare chapter reference", "John 3", nil},
		{"book inside a word", "Also 2:1", nil},
		{"unknown word", "Fake 1:1.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, c := range collect(m, tt.text) {
				got = append(got, c.Text(tt.text))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Candidates(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatcherPrefersLongestAlias(t *testing.T) {
	m := DefaultAliases().Matcher()

	tests := []struct {
		text     string
		wantBook string
	}{
		{"song of songs 2:1", "song of songs"},
		{"song 2:1", "song"},
		{"1 Cor 13:4", "1 Cor"},
		{"1co 13:4", "1co"},
		{"1 Corinthians 13:4", "1 Corinthians"},
		{"1 Chronicles 16:34", "1 Chronicles"},
		{"1ch 16:34", "1ch"},
		{"1 John 1:9", "1 John"},
		{"John 1:9", "John"},
		{"Song of Solomon 2:1", "Song of Solomon"},
		{"Matthew 5:3", "Matthew"},
		{"Mat 5:3", "Mat"},
		{"first samuel 3:1", "first samuel"},
		{"Phil 2:5", "Phil"},
		{"Philemon 1:4", "Philemon"},
	}
	for _, tt := range tests {
		got := collect(m, tt.text)
		if len(got) != 1 {
			t.Errorf("Candidates(%q) returned %d candidates, want 1", tt.text, len(got))
			continue
		}
		if got[0].Book != tt.wantBook {
			t.Errorf("Candidates(%q) book = %q, want %q", tt.text, got[0].Book, tt.wantBook)
		}
	}
}

func TestCandidateFields(t *testing.T) {
	text := "(Matt. 15:18–20)"
	got := collect(DefaultAliases().Matcher(), text)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Book != "Matt" || c.Chapter != "15" || c.Verses != "18–20" {
		t.Errorf("candidate = %+v", c)
	}
	if c.Start != 1 || c.End != len(text)-1 {
		t.Errorf("span = [%d,%d), want [1,%d)", c.Start, c.End, len(text)-1)
	}
}

func TestCandidatesStopEarly(t *testing.T) {
	m := DefaultAliases().Matcher()
	n := 0
	for range m.Candidates("John 3:16 John 3:17 John 3:18") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d candidates, want 2", n)
	}
}

func TestNewMatcher(t *testing.T) {
	aliases := []string{"ps", "psalm"}
	m := NewMatcher(aliases)
	if aliases[0] != "ps" {
		t.Error("NewMatcher() reordered the caller's slice")
	}
	got := collect(m, "Psalm 23:1")
	if len(got) != 1 || got[0].Book != "Psalm" {
		t.Errorf("Candidates() = %+v", got)
	}
	if got := collect(m, "John 3:16"); len(got) != 0 {
		t.Errorf("matcher without john matched %+v", got)
	}
}
