// Package validation checks untrusted input before it reaches the finder:
// text size and encoding, batch sizes, and file names and paths given on the
// command line or derived from archive members.
package validation

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/RefFinder/core/errors"
)

// Limits that keep a single request bounded (CWE-400).
const (
	// MaxTextSize is the default maximum text size (1 MiB).
	MaxTextSize = 1 << 20
	// MaxBatchSize is the default maximum number of texts per job.
	MaxBatchSize = 100
	// MaxSpecLength is the maximum verse specification length.
	MaxSpecLength = 256
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Validation errors. Each wraps errors.ErrInvalidInput.
var (
	ErrEmptyText        = fmt.Errorf("%w: text cannot be empty", errors.ErrInvalidInput)
	ErrTextTooLarge     = fmt.Errorf("%w: text too large", errors.ErrInvalidInput)
	ErrInvalidUTF8      = fmt.Errorf("%w: text is not valid UTF-8", errors.ErrInvalidInput)
	ErrNullByte         = fmt.Errorf("%w: null byte not allowed", errors.ErrInvalidInput)
	ErrEmptyBatch       = fmt.Errorf("%w: batch cannot be empty", errors.ErrInvalidInput)
	ErrBatchTooLarge    = fmt.Errorf("%w: batch too large", errors.ErrInvalidInput)
	ErrSpecTooLong      = fmt.Errorf("%w: verse specification too long", errors.ErrInvalidInput)
	ErrInvalidFilename  = fmt.Errorf("%w: invalid filename", errors.ErrInvalidInput)
	ErrFilenameTooLong  = fmt.Errorf("%w: filename too long", errors.ErrInvalidInput)
	ErrEmptyPath        = fmt.Errorf("%w: path cannot be empty", errors.ErrInvalidInput)
	ErrPathTooLong      = fmt.Errorf("%w: path too long", errors.ErrInvalidInput)
	ErrInvalidCharacter = fmt.Errorf("%w: invalid character in path", errors.ErrInvalidInput)
)

// ValidateText checks text submitted for scanning. max <= 0 selects
// MaxTextSize.
func ValidateText(text string, max int) error {
	if max <= 0 {
		max = MaxTextSize
	}
	if text == "" {
		return ErrEmptyText
	}
	if len(text) > max {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTextTooLarge, len(text), max)
	}
	if !utf8.ValidString(text) {
		return ErrInvalidUTF8
	}
	if strings.IndexByte(text, 0) >= 0 {
		return ErrNullByte
	}
	return nil
}

// ValidateBatch checks the number of texts in a job. max <= 0 selects
// MaxBatchSize.
func ValidateBatch(n, max int) error {
	if max <= 0 {
		max = MaxBatchSize
	}
	if n == 0 {
		return ErrEmptyBatch
	}
	if n > max {
		return fmt.Errorf("%w: %d texts exceeds %d", ErrBatchTooLarge, n, max)
	}
	return nil
}

// ValidateSpec checks a verse specification such as "3-5,7".
func ValidateSpec(spec string) error {
	if len(spec) > MaxSpecLength {
		return ErrSpecTooLong
	}
	if !utf8.ValidString(spec) {
		return ErrInvalidUTF8
	}
	return nil
}

// ValidateFilename checks if a filename is safe to create in an output
// directory. It rejects separators, control characters and reserved names.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}
	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}
	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	// Can be confused with command flags.
	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	return nil
}

// SanitizeFilename turns a source name such as "docs.tar/ch1.html" into a
// single safe filename.
func SanitizeFilename(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	filename = strings.NewReplacer("/", "_", "\\", "_").Replace(filename)

	var cleaned strings.Builder
	for _, r := range filename {
		if !unicode.IsControl(r) {
			cleaned.WriteRune(r)
		}
	}
	filename = strings.TrimLeft(cleaned.String(), "-")
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	return filename, nil
}

// ValidatePath checks a path given on the command line.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// IsLikelyText reports whether buf looks like text rather than binary data:
// no NUL bytes and at least 95% printable ASCII among the non-UTF-8-high
// bytes.
func IsLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b >= 0x20 && b <= 0x7e, b == '\t', b == '\n', b == '\r':
			printable++
		case b < 0x20:
			control++
		}
		// Bytes >= 0x80 belong to multibyte sequences and count for neither.
	}
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
