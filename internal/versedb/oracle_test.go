package versedb

import (
	"context"
	"testing"

	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/core/versification"
	"github.com/FocuswithJustin/RefFinder/internal/cache"
)

func TestOracleMatchesBuiltin(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t, versification.KJV)
	o := s.Oracle("KJV", cache.DefaultConfig())
	builtin := versification.Default()

	tests := []struct {
		book           string
		chapter, verse int
	}{
		{"John", 3, 16},
		{"John", 3, 37},
		{"John", 22, 1},
		{"Jude", 2, 1},
		{"Psalms", 119, 176},
		{"Fake", 1, 1},
		{"Obadiah", 1, 0},
	}
	for _, tt := range tests {
		got, err := o.ValidateContext(ctx, tt.book, tt.chapter, tt.verse)
		if err != nil {
			t.Fatalf("ValidateContext(%s %d:%d) error = %v", tt.book, tt.chapter, tt.verse, err)
		}
		if want := builtin.Validate(tt.book, tt.chapter, tt.verse); got != want {
			t.Errorf("ValidateContext(%s %d:%d) = %+v, want %+v", tt.book, tt.chapter, tt.verse, got, want)
		}
	}
}

func TestOracleCaches(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t, versification.KJV)
	o := s.Oracle("KJV", cache.Config{MaxSize: 2})
	if o.System() != "KJV" {
		t.Errorf("System() = %q", o.System())
	}
	for _, book := range []string{"John", "john", "Fake", "Fake"} {
		if _, err := o.ValidateContext(ctx, book, 1, 1); err != nil {
			t.Fatal(err)
		}
	}
	st := o.Stats()
	if st.Misses != 2 || st.Hits != 2 || st.Size != 2 {
		t.Errorf("Stats() = %+v, want 2 misses, 2 hits, size 2", st)
	}
}

func TestOracleFinder(t *testing.T) {
	s := newSeededStore(t, versification.KJV)
	f := scripture.NewFinder(s.Oracle("KJV", cache.DefaultConfig()), scripture.WithInvalid())
	refs, err := f.Find(context.Background(), "Read John 3:16 and Jude 2:1.")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(refs) != 2 || !refs[0].Valid || refs[1].Valid {
		t.Fatalf("Find() = %+v", refs)
	}
	if got := refs[1].ValidationErrors; len(got) != 1 || got[0] != "Jude has 1 chapter" {
		t.Errorf("ValidationErrors = %q", got)
	}
}

func TestOracleClosedStore(t *testing.T) {
	s := newSeededStore(t, versification.KJV)
	o := s.Oracle("KJV", cache.DefaultConfig())
	s.Close()
	if _, err := o.ValidateContext(context.Background(), "John", 3, 16); err == nil {
		t.Error("ValidateContext() on a closed store should fail")
	}
}
