package xmlio

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"markup-binder/markup"
)

var (
	errNilWriter        = errors.New("nil XML writer")
	errAttrOutsideStart = errors.New("attribute written outside of a start tag")
	errUnbalancedClose  = errors.New("close without open element")
)

const xsiPrefix = "xsi"

// Writer is a markup.Writer producing XML text. Call Flush when done.
type Writer struct {
	out     *bufio.Writer
	scopes  []scope
	pending bool
	attrs   []markup.Attr
	nextNS  int
	err     error
}

type scope struct {
	tag       string
	defaultNS string
	// prefixes maps namespace to prefix for declarations made on this element.
	prefixes map[string]string
	decls    []markup.Attr
}

var _ markup.Writer = (*Writer)(nil)

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, errNilWriter
	}

	return &Writer{out: bufio.NewWriter(w)}, nil
}

// Header writes the XML declaration. It must be called before the root element.
func (w *Writer) Header() error {
	return w.writeString(xml.Header)
}

// OpenElement starts an element. The start tag is written lazily so that
// attributes and namespace declarations can still be added.
func (w *Writer) OpenElement(name markup.QName) error {
	if err := w.flushStart(false); err != nil {
		return err
	}

	parentNS := ""
	if n := len(w.scopes); n > 0 {
		parentNS = w.scopes[n-1].defaultNS
	}

	sc := scope{tag: name.Local, defaultNS: name.Space}
	if name.Space != parentNS {
		sc.decls = append(sc.decls, markup.Attr{Name: markup.Name("xmlns"), Value: name.Space})
	}

	w.scopes = append(w.scopes, sc)
	w.pending = true
	w.attrs = w.attrs[:0]

	return nil
}

// WriteAttribute adds an attribute to the pending start tag.
func (w *Writer) WriteAttribute(name markup.QName, value string) error {
	if w.err != nil {
		return w.err
	}

	if !w.pending {
		return fmt.Errorf("%w: %s", errAttrOutsideStart, name)
	}

	w.attrs = append(w.attrs, markup.Attr{Name: name, Value: value})

	return nil
}

// WriteText writes escaped character data.
func (w *Writer) WriteText(text string) error {
	if err := w.flushStart(false); err != nil {
		return err
	}

	if w.err != nil {
		return w.err
	}

	if err := xml.EscapeText(w.out, []byte(text)); err != nil {
		w.err = err
	}

	return w.err
}

// CloseElement ends the innermost open element. An element without content is
// written as an empty-element tag.
func (w *Writer) CloseElement() error {
	if len(w.scopes) == 0 {
		return errUnbalancedClose
	}

	if w.pending {
		if err := w.flushStart(true); err != nil {
			return err
		}
	} else {
		if err := w.writeString("</" + w.scopes[len(w.scopes)-1].tag + ">"); err != nil {
			return err
		}
	}

	w.scopes = w.scopes[:len(w.scopes)-1]

	return nil
}

// WriteNil writes <name xsi:nil="true"/>.
func (w *Writer) WriteNil(name markup.QName) error {
	if err := w.OpenElement(name); err != nil {
		return err
	}

	if err := w.WriteAttribute(markup.XSINil, "true"); err != nil {
		return err
	}

	return w.CloseElement()
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}

	return w.out.Flush()
}

func (w *Writer) flushStart(selfClose bool) error {
	if !w.pending {
		return w.err
	}

	w.pending = false
	sc := &w.scopes[len(w.scopes)-1]

	names := make([]string, len(w.attrs))
	for i, a := range w.attrs {
		names[i] = w.attrName(sc, a.Name)
		if a.Name == markup.XSIType {
			w.attrs[i].Value = w.qnameValue(sc, markup.ParseQName(a.Value))
		}
	}

	if err := w.writeString("<" + sc.tag); err != nil {
		return err
	}

	for _, d := range sc.decls {
		if err := w.writeAttr(d.Name.Local, d.Value); err != nil {
			return err
		}
	}

	for i, a := range w.attrs {
		if err := w.writeAttr(names[i], a.Value); err != nil {
			return err
		}
	}

	if selfClose {
		return w.writeString("/>")
	}

	return w.writeString(">")
}

// attrName returns the prefixed attribute name, declaring the namespace on sc
// when it is not yet in scope.
func (w *Writer) attrName(sc *scope, name markup.QName) string {
	switch name.Space {
	case "":
		return name.Local
	case markup.XMLNamespace:
		return "xml:" + name.Local
	}

	return w.prefix(sc, name.Space) + ":" + name.Local
}

// qnameValue writes a name carried in Clark notation as a prefixed name. Names
// in the default namespace stay unprefixed.
func (w *Writer) qnameValue(sc *scope, name markup.QName) string {
	if name.Space == "" || name.Space == sc.defaultNS {
		return name.Local
	}

	return w.prefix(sc, name.Space) + ":" + name.Local
}

// prefix returns the prefix bound to ns, declaring it on sc when it is not
// yet in scope.
func (w *Writer) prefix(sc *scope, ns string) string {
	if ns == markup.XMLNamespace {
		return "xml"
	}

	if prefix, ok := w.lookupPrefix(ns); ok {
		return prefix
	}

	prefix := xsiPrefix
	if ns != markup.XSINamespace {
		w.nextNS++
		prefix = "ns" + strconv.Itoa(w.nextNS)
	}

	if sc.prefixes == nil {
		sc.prefixes = make(map[string]string)
	}

	sc.prefixes[ns] = prefix
	sc.decls = append(sc.decls, markup.Attr{Name: markup.Name("xmlns:" + prefix), Value: ns})

	return prefix
}

func (w *Writer) lookupPrefix(ns string) (string, bool) {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if p, ok := w.scopes[i].prefixes[ns]; ok {
			return p, true
		}
	}

	return "", false
}

func (w *Writer) writeAttr(name, value string) error {
	if err := w.writeString(" " + name + `="`); err != nil {
		return err
	}

	if err := xml.EscapeText(w.out, []byte(value)); err != nil {
		w.err = err
		return err
	}

	return w.writeString(`"`)
}

func (w *Writer) writeString(s string) error {
	if w.err != nil {
		return w.err
	}

	if _, err := w.out.WriteString(s); err != nil {
		w.err = err
	}

	return w.err
}
