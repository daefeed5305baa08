package xmlio

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"markup-binder/markup"
)

var (
	errNilReader        = errors.New("nil XML reader")
	errUndeclaredPrefix = errors.New("undeclared namespace prefix")
)

// Reader is a markup.Source over XML text. Values of xsi:type are resolved
// against the namespace declarations in scope and reported in Clark notation.
type Reader struct {
	dec    *xml.Decoder
	depth  int
	done   bool
	scopes []map[string]string
}

var _ markup.Source = (*Reader)(nil)

// NewReader creates a Reader for r.
func NewReader(r io.Reader) (*Reader, error) {
	if r == nil {
		return nil, errNilReader
	}

	return &Reader{dec: xml.NewDecoder(r)}, nil
}

// Next returns the next event. Character data outside the root element is
// skipped.
func (r *Reader) Next() (markup.Event, error) {
	if r.done {
		return markup.Event{}, io.EOF
	}

	for {
		line, column := r.dec.InputPos()

		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			r.done = true
			if r.depth != 0 {
				return markup.Event{}, fmt.Errorf("read xml: unexpected end of document at line %d, column %d", line, column)
			}

			return markup.Event{Kind: markup.EventEndDocument, Line: line, Column: column}, nil
		}

		if err != nil {
			return markup.Event{}, fmt.Errorf("read xml at line %d, column %d: %w", line, column, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			r.depth++
			r.pushScope(t.Attr)

			attrs, err := r.convertAttrs(t.Attr)
			if err != nil {
				return markup.Event{}, fmt.Errorf("read xml at line %d, column %d: %w", line, column, err)
			}

			return markup.Event{
				Kind:   markup.EventStartTag,
				Name:   markup.QName{Space: t.Name.Space, Local: t.Name.Local},
				Attrs:  attrs,
				Line:   line,
				Column: column,
			}, nil
		case xml.EndElement:
			r.depth--
			r.scopes = r.scopes[:len(r.scopes)-1]

			return markup.Event{Kind: markup.EventEndTag, Line: line, Column: column}, nil
		case xml.CharData:
			if r.depth == 0 {
				continue
			}

			return markup.Event{Kind: markup.EventText, Text: string(t), Line: line, Column: column}, nil
		}
	}
}

// pushScope records the namespace declarations of a start tag. The map keys
// are prefixes; the empty key is the default namespace.
func (r *Reader) pushScope(attrs []xml.Attr) {
	var decls map[string]string

	for _, a := range attrs {
		if !isNamespaceDecl(a.Name) {
			continue
		}

		if decls == nil {
			decls = make(map[string]string)
		}

		if a.Name.Space == "xmlns" {
			decls[a.Name.Local] = a.Value
		} else {
			decls[""] = a.Value
		}
	}

	r.scopes = append(r.scopes, decls)
}

func (r *Reader) lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return markup.XMLNamespace, true
	}

	for i := len(r.scopes) - 1; i >= 0; i-- {
		if ns, ok := r.scopes[i][prefix]; ok {
			return ns, true
		}
	}

	return "", prefix == ""
}

// resolveQName turns a prefixed name from an attribute value into Clark
// notation. Unprefixed names take the default namespace.
func (r *Reader) resolveQName(value string) (string, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "{") {
		return value, nil
	}

	prefix, local, ok := strings.Cut(value, ":")
	if !ok {
		prefix, local = "", value
	}

	ns, found := r.lookup(prefix)
	if !found {
		return "", fmt.Errorf("%w %q in %q", errUndeclaredPrefix, prefix, value)
	}

	return markup.QName{Space: ns, Local: local}.String(), nil
}

func (r *Reader) convertAttrs(attrs []xml.Attr) ([]markup.Attr, error) {
	if len(attrs) == 0 {
		return nil, nil
	}

	out := make([]markup.Attr, 0, len(attrs))
	for _, a := range attrs {
		if isNamespaceDecl(a.Name) {
			continue
		}

		name := markup.QName{Space: a.Name.Space, Local: a.Name.Local}
		value := a.Value

		if name == markup.XSIType {
			var err error
			if value, err = r.resolveQName(value); err != nil {
				return nil, err
			}
		}

		out = append(out, markup.Attr{Name: name, Value: value})
	}

	return out, nil
}

func isNamespaceDecl(n xml.Name) bool {
	return n.Space == "xmlns" || (n.Space == "" && n.Local == "xmlns")
}
