package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name    string
		err     *NotFoundError
		wantMsg string
	}{
		{"with ID", NewNotFound("book", "Hezekiah"), "book not found: Hezekiah"},
		{"without ID", &NotFoundError{Resource: "chapter"}, "chapter not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrNotFound) {
				t.Errorf("errors.Is(%v, ErrNotFound) = false", tt.err)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		cause := fmt.Errorf("no rows")
		err := &NotFoundError{Resource: "job", ID: "abc", Err: cause}
		if got := err.Unwrap(); got != cause {
			t.Errorf("Unwrap() = %v, want %v", got, cause)
		}
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{"with field", NewValidation("chapter", "must be positive"), "validation failed for chapter: must be positive"},
		{"without field", &ValidationError{Message: "empty text"}, "validation failed: empty text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Errorf("errors.Is(%v, ErrInvalidInput) = false", tt.err)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	tests := []struct {
		name    string
		err     *IOError
		wantMsg string
	}{
		{"with path", NewIO("read", "/tmp/sermon.txt", cause), "failed to read /tmp/sermon.txt: permission denied"},
		{"without path", NewIO("write", "", cause), "failed to write: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, cause) {
				t.Errorf("errors.Is(%v, cause) = false", tt.err)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("XML", "notes.osis", "unexpected EOF")
	if got, want := err.Error(), "failed to parse XML at notes.osis: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}

	noPath := NewParse("xz", "", "bad header")
	if got, want := noPath.Error(), "failed to parse xz: bad header"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnsupportedError(t *testing.T) {
	tests := []struct {
		name    string
		err     *UnsupportedError
		wantMsg string
	}{
		{"with reason", NewUnsupported("format", "pdf input"), "unsupported format: pdf input"},
		{"without reason", &UnsupportedError{Feature: "versification"}, "unsupported versification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrUnsupported) {
				t.Errorf("errors.Is(%v, ErrUnsupported) = false", tt.err)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := NewNotFound("book", "Enoch")
	wrapped := Wrapf(base, "validate %s %d:%d", "Enoch", 1, 1)
	if got, want := wrapped.Error(), "validate Enoch 1:1: book not found: Enoch"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !Is(wrapped, ErrNotFound) {
		t.Error("wrapped error should match ErrNotFound")
	}

	var nf *NotFoundError
	if !As(wrapped, &nf) || nf.ID != "Enoch" {
		t.Errorf("As() did not recover NotFoundError, got %+v", nf)
	}

	if got := Wrap(ErrCanceled, "scan").Error(); got != "scan: canceled" {
		t.Errorf("Wrap() = %q", got)
	}
}
