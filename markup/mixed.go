package markup

import "strings"

// Item is one entry of mixed content: a text run when Name is zero, otherwise
// a decoded child element value stored under its tag name.
type Item struct {
	Text  string
	Name  QName
	Value any
}

// IsText reports whether the item is a text run.
func (i Item) IsText() bool {
	return i.Name.IsZero()
}

// Mixed is the interleaved content of a mixed type, in document order.
type Mixed []Item

// Text concatenates the text runs.
func (m Mixed) Text() string {
	var b strings.Builder
	for _, it := range m {
		if it.IsText() {
			b.WriteString(it.Text)
		}
	}

	return b.String()
}
