package scripture

import "context"

// Validation is an oracle's answer for one verse.
type Validation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Validator decides whether a single verse exists. Implementations must be
// deterministic and total: unknown books and out-of-range numbers produce
// an invalid Validation, never a panic.
type Validator interface {
	Validate(book string, chapter, verse int) Validation
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(book string, chapter, verse int) Validation

// Validate calls f.
func (f ValidatorFunc) Validate(book string, chapter, verse int) Validation {
	return f(book, chapter, verse)
}

// ContextValidator is an oracle that may block or fail, such as one backed
// by a database. A returned error aborts the scan that asked.
type ContextValidator interface {
	ValidateContext(ctx context.Context, book string, chapter, verse int) (Validation, error)
}

// Sync adapts an in-memory Validator to a ContextValidator.
func Sync(v Validator) ContextValidator {
	return syncValidator{v}
}

type syncValidator struct {
	v Validator
}

func (s syncValidator) ValidateContext(_ context.Context, book string, chapter, verse int) (Validation, error) {
	return s.v.Validate(book, chapter, verse), nil
}
