package versification

import (
	"errors"
	"testing"

	rferrors "github.com/FocuswithJustin/RefFinder/core/errors"
	"github.com/FocuswithJustin/RefFinder/core/scripture"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name      string
		system    System
		wantBooks int
	}{
		{"default", "", 66},
		{"kjv", "kjv", 66},
		{"nrsv", NRSV, 66},
		{"vulgate", Vulgate, 73},
		{"catholic alias", "Catholic", 73},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Get(tt.system)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.system, err)
			}
			if got := len(v.Books()); got != tt.wantBooks {
				t.Errorf("Get(%q) has %d books, want %d", tt.system, got, tt.wantBooks)
			}
		})
	}

	_, err := Get("Klingon")
	if !errors.Is(err, rferrors.ErrUnsupported) {
		t.Errorf("Get(Klingon) error = %v, want ErrUnsupported", err)
	}
}

func TestVulgateOrder(t *testing.T) {
	v, _ := Get(Vulgate)
	books := v.Books()
	want := map[int]string{16: "Tobit", 17: "Judith", 18: "Esther", 44: "1 Maccabees", 45: "2 Maccabees", 46: "Matthew"}
	for i, name := range want {
		if books[i].Name != name {
			t.Errorf("Books()[%d] = %q, want %q", i, books[i].Name, name)
		}
	}
	if b, _ := v.Book("Sir"); !b.Deuterocanonical {
		t.Error("Sirach should be deuterocanonical")
	}
}

func TestCounts(t *testing.T) {
	v := Default()
	tests := []struct {
		book     string
		chapter  int
		chapters int
		verses   int
	}{
		{"Genesis", 1, 50, 31},
		{"Psalms", 119, 150, 176},
		{"john", 3, 21, 36},
		{"JOHN", 21, 21, 25},
		{"3John", 1, 1, 14},
		{"Song of Solomon", 8, 8, 14},
		{"Revelation", 22, 22, 21},
		{"Obadiah", 2, 1, 0},
		{"Enoch", 1, 0, 0},
	}
	for _, tt := range tests {
		if got := v.ChapterCount(tt.book); got != tt.chapters {
			t.Errorf("ChapterCount(%q) = %d, want %d", tt.book, got, tt.chapters)
		}
		if got := v.VerseCount(tt.book, tt.chapter); got != tt.verses {
			t.Errorf("VerseCount(%q, %d) = %d, want %d", tt.book, tt.chapter, got, tt.verses)
		}
	}
	if got := v.TotalVerses("Jude"); got != 25 {
		t.Errorf("TotalVerses(Jude) = %d, want 25", got)
	}
}

func TestValidate(t *testing.T) {
	v := Default()
	tests := []struct {
		book           string
		chapter, verse int
		want           scripture.Validation
	}{
		{"John", 3, 16, scripture.Validation{Valid: true}},
		{"John", 3, 36, scripture.Validation{Valid: true}},
		{"John", 3, 37, scripture.Validation{Error: "John 3 has 36 verses"}},
		{"John", 3, 0, scripture.Validation{Error: "John 3 has 36 verses"}},
		{"John", 22, 1, scripture.Validation{Error: "John has 21 chapters"}},
		{"Jude", 2, 1, scripture.Validation{Error: "Jude has 1 chapter"}},
		{"Fake", 1, 1, scripture.Validation{Error: "unknown book: Fake"}},
	}
	for _, tt := range tests {
		if got := v.Validate(tt.book, tt.chapter, tt.verse); got != tt.want {
			t.Errorf("Validate(%q, %d, %d) = %+v, want %+v", tt.book, tt.chapter, tt.verse, got, tt.want)
		}
	}
}

func TestEveryAliasHasABook(t *testing.T) {
	v := Default()
	for _, book := range scripture.DefaultAliases().Books() {
		if _, ok := v.Book(book); !ok {
			t.Errorf("alias target %q is not a KJV book", book)
		}
	}
}

func TestParseReferencesWithKJV(t *testing.T) {
	text := "We love John 3:16-18 and 1 Cor 13:4–7; 14:1. Also Genesis 1:1,3,5; Jn 1:1; Rev 22:20. Not Jn 3:37 or Jude 2:1."
	refs := scripture.ParseReferences(text, Default())
	var got []string
	for _, r := range refs {
		got = append(got, r.ID)
	}
	want := []string{"John-3-0", "1Corinthians-13-1", "Genesis-1-2", "John-1-3", "Revelation-22-4"}
	if len(got) != len(want) {
		t.Fatalf("IDs = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
