package scripture

import (
	"cmp"
	"slices"
	"strings"
)

// Default CSS classes for annotated references.
const (
	ValidClass   = "underline decoration-dotted text-blue-700 cursor-pointer"
	InvalidClass = "underline decoration-wavy text-red-600 cursor-pointer"
)

// Annotator renders text with every reference wrapped in a span:
//
//	<span id="ref-John-3-0" class="..." data-refid="John-3-0">John 3:16</span>
//
// Invalid references additionally carry a title listing their errors.
type Annotator struct {
	ValidClass   string
	InvalidClass string
}

// Annotate renders text with the default classes.
func Annotate(text string, refs []Reference) string {
	return Annotator{}.Annotate(text, refs)
}

// Annotate escapes text and wraps each reference. refs must come from a
// scan of text; references that overlap an earlier one or fall outside the
// text are left unwrapped.
func (a Annotator) Annotate(text string, refs []Reference) string {
	if len(refs) == 0 {
		return EscapeHTML(text)
	}
	validClass := cmp.Or(a.ValidClass, ValidClass)
	invalidClass := cmp.Or(a.InvalidClass, InvalidClass)

	sorted := slices.Clone(refs)
	slices.SortStableFunc(sorted, func(x, y Reference) int { return x.Offset - y.Offset })

	var b strings.Builder
	b.Grow(len(text) + len(refs)*128)
	cursor := 0
	for _, ref := range sorted {
		if ref.Offset < cursor || ref.Length <= 0 || ref.End() > len(text) {
			continue
		}
		b.WriteString(EscapeHTML(text[cursor:ref.Offset]))

		class := validClass
		if !ref.Valid {
			class = invalidClass
		}
		id := escapeAttr(ref.ID)
		b.WriteString(`<span id="ref-`)
		b.WriteString(id)
		b.WriteString(`" class="`)
		b.WriteString(escapeAttr(class))
		b.WriteString(`" data-refid="`)
		b.WriteString(id)
		b.WriteByte('"')
		if !ref.Valid {
			b.WriteString(` title="`)
			b.WriteString(escapeAttr(strings.Join(ref.ValidationErrors, "; ")))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		b.WriteString(EscapeHTML(ref.Text(text)))
		b.WriteString("</span>")
		cursor = ref.End()
	}
	b.WriteString(EscapeHTML(text[cursor:]))
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML replaces &, < and > with entities. Quotes pass through.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
