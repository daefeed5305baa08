package binder

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/untillpro/goutils/logger"

	"markup-binder/codec"
	"markup-binder/descriptor"
	"markup-binder/diagnostic"
	"markup-binder/dispatch"
	"markup-binder/internal/suggest"
	"markup-binder/markup"
	"markup-binder/model"
	"markup-binder/options"
)

var errNotDone = errors.New("binder: document not complete")

// Binder decodes one document from tokenizer events. It is driven one event
// at a time with Feed, or pulls a whole Source with Decode. A Binder is not
// safe for concurrent use; run one per document.
type Binder struct {
	registry *model.Registry
	dispatch *dispatch.Dispatcher
	codec    codec.Codec
	policy   options.Policy
	expect   reflect.Type

	stack  []*frame
	result reflect.Value
	done   bool
	err    error
	diags  diagnostic.Diagnostics
}

// New creates a Binder over a registry and dispatcher.
func New(registry *model.Registry, d *dispatch.Dispatcher, policy options.Policy) *Binder {
	return &Binder{
		registry: registry,
		dispatch: d,
		codec:    registry.Codec(),
		policy:   policy,
	}
}

// Expect fixes the root type instead of selecting it among the registered
// named types.
func (b *Binder) Expect(t reflect.Type) *Binder {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	b.expect = t

	return b
}

// Reset discards all decode state so the Binder can take another document.
func (b *Binder) Reset() {
	b.stack = b.stack[:0]
	b.result = reflect.Value{}
	b.done = false
	b.err = nil
	b.diags = diagnostic.Diagnostics{}
}

// Done reports whether the document has been completely decoded.
func (b *Binder) Done() bool {
	return b.done
}

// Diagnostics returns the warnings collected in lenient mode.
func (b *Binder) Diagnostics() *diagnostic.Diagnostics {
	return &b.diags
}

// Result returns a pointer to the decoded root record.
func (b *Binder) Result() (any, error) {
	if b.err != nil {
		return nil, b.err
	}

	if !b.done {
		return nil, errNotDone
	}

	return b.result.Interface(), nil
}

// Decode pulls events from src until the end of the document.
func (b *Binder) Decode(src markup.Source) (any, error) {
	for !b.done {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			ev = markup.EndDocument()
		} else if err != nil {
			return nil, diagnostic.Wrap(diagnostic.CodeMalformedDocument, err, "read document")
		}

		if err := b.Feed(ev); err != nil {
			return nil, err
		}
	}

	return b.Result()
}

// Feed consumes one event. The first error is sticky: every later call
// returns it again.
func (b *Binder) Feed(ev markup.Event) error {
	if b.err != nil {
		return b.err
	}

	var err *diagnostic.Error

	switch {
	case b.done:
		err = diagnostic.New(diagnostic.CodeMalformedDocument, "%s event after the end of the document", ev.Kind)
	case ev.Kind == markup.EventStartTag:
		err = b.startTag(ev)
	case ev.Kind == markup.EventText:
		err = b.text(ev)
	case ev.Kind == markup.EventEndTag:
		err = b.endTag(ev)
	case ev.Kind == markup.EventEndDocument:
		err = b.endDocument()
	default:
		err = diagnostic.New(diagnostic.CodeMalformedDocument, "invalid event %s", ev.Kind)
	}

	if err != nil {
		if err.Line == 0 {
			err.At(ev.Line, ev.Column)
		}

		b.err = err

		return err
	}

	return nil
}

func (b *Binder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}

	return b.stack[len(b.stack)-1]
}

func (b *Binder) push(fr *frame, ev markup.Event) {
	fr.line, fr.column = ev.Line, ev.Column
	b.stack = append(b.stack, fr)
}

func (b *Binder) pop() *frame {
	fr := b.top()
	b.stack = b.stack[:len(b.stack)-1]

	return fr
}

// lenient reports whether err is tolerated under the policy; tolerated
// errors are logged and kept as warnings.
func (b *Binder) lenient(flag options.LeniencyEnum, err *diagnostic.Error) bool {
	if !b.policy.Leniency.Has(flag) {
		return false
	}

	logger.Warning(err.Error())
	b.diags.AddWarning(err)

	return true
}

func (b *Binder) startTag(ev markup.Event) *diagnostic.Error {
	fr := b.top()
	if fr == nil {
		return b.startRoot(ev)
	}

	switch fr.kind {
	case frameSkip:
		fr.depth++
		return nil
	case frameCapture:
		_, err := fr.builder.Feed(ev)
		if err != nil {
			return diagnostic.Wrap(diagnostic.CodeMalformedDocument, err, "capture element")
		}

		return nil
	case frameLeaf:
		err := diagnostic.New(diagnostic.CodeUnexpectedElement, "child element inside a simple value").
			For(ev.Name).In(fr.typeName(), fr.field.Field)
		if b.lenient(options.LenientUnknownElements, err) {
			b.push(&frame{kind: frameSkip, name: ev.Name}, ev)
			return nil
		}

		return err
	}

	return b.startChild(fr, ev)
}

func (b *Binder) startRoot(ev markup.Event) *diagnostic.Error {
	if b.result.IsValid() {
		return diagnostic.New(diagnostic.CodeMalformedDocument, "second root element").For(ev.Name)
	}

	if isNil(ev) {
		return diagnostic.New(diagnostic.CodeIllegalNil, "document root cannot be nil").For(ev.Name)
	}

	var (
		t   reflect.Type
		err error
	)

	// A fixed root type cannot be swapped for a hinted subtype.
	if b.expect != nil {
		t, err = b.dispatch.Select([]reflect.Type{b.expect}, ev.Name, markup.QName{})
		if err != nil && b.registry.NameOf(b.expect).IsZero() {
			t, err = b.expect, nil
		}
	} else {
		t, err = b.dispatch.SelectRoot(ev.Name, typeHint(ev))
	}

	if err != nil {
		return asDiagnostic(err, diagnostic.CodeUnknownVariant)
	}

	m, err := b.registry.Resolve(t)
	if err != nil {
		return asDiagnostic(err, diagnostic.CodeModel)
	}

	fr := newRecordFrame(m, ev.Name, nil)
	b.push(fr, ev)

	return b.attributes(fr, ev)
}

func (b *Binder) startChild(fr *frame, ev markup.Event) *diagnostic.Error {
	f, ok := fr.model.Element(ev.Name)
	if !ok {
		return b.startUnmatched(fr, ev)
	}

	if b.policy.EnforceOrder {
		if ok, reason := fr.order.advance(f); !ok {
			return diagnostic.New(diagnostic.CodeUnexpectedElement, "element %s", reason).
				For(ev.Name).In(fr.typeName(), f.Field)
		}
	}

	skip, err := b.occur(fr, f, ev)
	if err != nil || skip {
		if skip {
			b.push(&frame{kind: frameSkip, name: ev.Name}, ev)
		}

		return err
	}

	if isNil(ev) {
		if !f.Nillable {
			return diagnostic.New(diagnostic.CodeIllegalNil, "element is not nillable").
				For(ev.Name).In(fr.typeName(), f.Field)
		}

		f.AssignNil(fr.record())
		if fr.model.Mixed {
			fr.mixed = append(fr.mixed, markup.Item{Name: ev.Name})
		}

		b.push(&frame{kind: frameSkip, name: ev.Name}, ev)

		return nil
	}

	switch f.Slot {
	case model.SlotScalar, model.SlotTokens:
		b.push(&frame{kind: frameLeaf, name: ev.Name, field: f, model: fr.model}, ev)
		return b.leafAttributes(fr, f, ev)
	case model.SlotNode:
		b.push(&frame{kind: frameCapture, name: ev.Name, field: f, builder: markup.NewNodeBuilder(ev)}, ev)
		return nil
	case model.SlotVariant:
		t, err := b.dispatch.SelectField(f, ev.Name, typeHint(ev))
		if err != nil {
			return asDiagnostic(err, diagnostic.CodeUnknownVariant).In(fr.typeName(), f.Field)
		}

		return b.pushRecord(t, f, ev)
	default:
		return b.pushRecord(f.Unit, f, ev)
	}
}

func (b *Binder) pushRecord(t reflect.Type, f *model.Field, ev markup.Event) *diagnostic.Error {
	m, err := b.registry.Resolve(t)
	if err != nil {
		return asDiagnostic(err, diagnostic.CodeModel)
	}

	child := newRecordFrame(m, ev.Name, f)
	b.push(child, ev)

	return b.attributes(child, ev)
}

// startUnmatched routes an element no field declares to the wildcard.
func (b *Binder) startUnmatched(fr *frame, ev markup.Event) *diagnostic.Error {
	w, ok := fr.model.Wildcard()
	if !ok {
		err := diagnostic.New(diagnostic.CodeUnexpectedElement, "no field accepts the element%s",
			didYouMean(ev.Name, fr.model.ElementNames())).
			For(ev.Name).In(fr.typeName(), "")
		if b.lenient(options.LenientUnknownElements, err) {
			b.push(&frame{kind: frameSkip, name: ev.Name}, ev)
			return nil
		}

		return err
	}

	skip, err := b.occur(fr, w, ev)
	if err != nil {
		return err
	}

	if skip {
		b.push(&frame{kind: frameSkip, name: ev.Name}, ev)
		return nil
	}

	b.push(&frame{kind: frameCapture, name: ev.Name, field: w, builder: markup.NewNodeBuilder(ev)}, ev)

	return nil
}

// occur counts an occurrence of f, applying the duplicate policy to choice
// groups and singular fields. skip reports that the element must be dropped.
func (b *Binder) occur(fr *frame, f *model.Field, ev markup.Event) (skip bool, err *diagnostic.Error) {
	if f.Choice && fr.model.IsExclusiveChoice(f.Group) {
		for _, g := range fr.model.GroupMembers(f.Group) {
			if g.Position == f.Position || fr.counts[g.Position] == 0 {
				continue
			}

			if skip, err := b.duplicate(fr, g, ev, "choice already holds "+g.Field); skip || err != nil {
				return skip, err
			}
		}
	}

	if !f.Occurs.Allows(fr.counts[f.Position] + 1) {
		if f.IsMany() || !f.Choice {
			return false, diagnostic.New(diagnostic.CodeTooManyOccurrences, "more than %s occurrences", f.Occurs).
				For(ev.Name).In(fr.typeName(), f.Field)
		}

		if skip, err := b.duplicate(fr, f, ev, "repeated choice member"); skip || err != nil {
			return skip, err
		}
	}

	fr.counts[f.Position]++

	return false, nil
}

// duplicate resolves a second choice occurrence against the earlier field g.
func (b *Binder) duplicate(fr *frame, g *model.Field, ev markup.Event, what string) (bool, *diagnostic.Error) {
	switch b.policy.DuplicateChoice {
	case options.DuplicateFirstWins:
		return true, nil
	case options.DuplicateReject:
		return false, diagnostic.New(diagnostic.CodeTooManyOccurrences, "%s", what).
			For(ev.Name).In(fr.typeName(), g.Field)
	default:
		g.Clear(fr.record())
		fr.counts[g.Position] = 0

		if fr.model.Mixed {
			fr.dropMixed(g)
		}

		return false, nil
	}
}

// attributes binds the attributes of a record's start tag.
func (b *Binder) attributes(fr *frame, ev markup.Event) *diagnostic.Error {
	for _, a := range ev.Attrs {
		if a.Name.Space == markup.XSINamespace {
			continue
		}

		f, ok := fr.model.Attribute(a.Name)
		if ok {
			unit, err := b.decode(f, a.Value)
			if err != nil {
				return diagnostic.Wrap(diagnostic.CodeInvalidValue, err, "invalid attribute value").
					For(a.Name).In(fr.typeName(), f.Field)
			}

			f.Assign(fr.record(), unit)
			fr.counts[f.Position]++

			continue
		}

		if w, ok := fr.model.AttributesWildcard(); ok {
			m := w.Value(fr.record())
			if m.IsNil() {
				m.Set(reflect.MakeMap(w.GoType))
			}

			m.SetMapIndex(reflect.ValueOf(a.Name), reflect.ValueOf(a.Value))
			fr.counts[w.Position] = 1

			continue
		}

		err := diagnostic.New(diagnostic.CodeUnexpectedAttribute, "no field accepts the attribute%s",
			didYouMean(a.Name, fr.model.AttributeNames())).
			For(a.Name).In(fr.typeName(), "")
		if !b.lenient(options.LenientUnknownAttributes, err) {
			return err
		}
	}

	return nil
}

// leafAttributes rejects attributes on a scalar element.
func (b *Binder) leafAttributes(fr *frame, f *model.Field, ev markup.Event) *diagnostic.Error {
	for _, a := range ev.Attrs {
		if a.Name.Space == markup.XSINamespace {
			continue
		}

		err := diagnostic.New(diagnostic.CodeUnexpectedAttribute, "attribute on a simple value").
			For(a.Name).In(fr.typeName(), f.Field)
		if !b.lenient(options.LenientUnknownAttributes, err) {
			return err
		}
	}

	return nil
}

func (b *Binder) text(ev markup.Event) *diagnostic.Error {
	fr := b.top()
	if fr == nil {
		return nil
	}

	switch fr.kind {
	case frameLeaf:
		fr.text.WriteString(ev.Text)
	case frameCapture:
		if _, err := fr.builder.Feed(ev); err != nil {
			return diagnostic.Wrap(diagnostic.CodeMalformedDocument, err, "capture text")
		}
	case frameRecord:
		return b.recordText(fr, ev)
	}

	return nil
}

func (b *Binder) recordText(fr *frame, ev markup.Event) *diagnostic.Error {
	if f, ok := fr.model.Text(); ok {
		if f.Slot == model.SlotMixed {
			fr.appendText(ev.Text)
		} else {
			fr.text.WriteString(ev.Text)
		}

		return nil
	}

	if fr.model.Mixed || strings.TrimSpace(ev.Text) == "" {
		return nil
	}

	err := diagnostic.New(diagnostic.CodeUnexpectedText, "character data in element-only content").
		For(fr.name).In(fr.typeName(), "")
	if b.lenient(options.LenientText, err) {
		return nil
	}

	return err
}

func (b *Binder) endTag(ev markup.Event) *diagnostic.Error {
	fr := b.top()
	if fr == nil {
		return diagnostic.New(diagnostic.CodeMalformedDocument, "end tag without open element")
	}

	switch fr.kind {
	case frameSkip:
		if fr.depth > 0 {
			fr.depth--
			return nil
		}

		b.pop()
	case frameCapture:
		done, err := fr.builder.Feed(ev)
		if err != nil {
			return diagnostic.Wrap(diagnostic.CodeMalformedDocument, err, "capture end tag")
		}

		if done {
			b.pop()
			b.deliver(fr, reflect.ValueOf(fr.builder.Node()))
		}
	case frameLeaf:
		b.pop()

		unit, err := b.leafValue(fr)
		if err != nil {
			return diagnostic.Wrap(diagnostic.CodeInvalidValue, err, "invalid element value").
				For(fr.name).In(fr.typeName(), fr.field.Field).At(fr.line, fr.column)
		}

		b.deliver(fr, unit)
	case frameRecord:
		if err := b.finish(fr); err != nil {
			return err
		}

		b.pop()

		if len(b.stack) == 0 {
			b.result = fr.value
			return nil
		}

		unit := fr.value
		if fr.field.Slot == model.SlotVariant {
			unit = box(unit, fr.field.Unit)
		}

		b.deliver(fr, unit)
	}

	return nil
}

// deliver stores a finished child value into the parent frame.
func (b *Binder) deliver(child *frame, unit reflect.Value) {
	parent := b.top()
	child.field.Assign(parent.record(), unit)

	if parent.model.Mixed {
		parent.mixed = append(parent.mixed, markup.Item{Name: child.name, Value: unit.Interface()})
	}
}

// leafValue decodes the text of a finished scalar element. An empty element
// is a present value; defaults only fill absent fields in finish.
func (b *Binder) leafValue(fr *frame) (reflect.Value, error) {
	return b.decode(fr.field, fr.text.String())
}

func (b *Binder) decode(f *model.Field, text string) (reflect.Value, error) {
	if f.Slot == model.SlotTokens {
		return codec.DecodeTokens(b.codec, text, f.Unit)
	}

	return b.codec.Decode(text, f.Unit)
}

// finish completes a record: simple content, defaults, then the required
// and minimum occurrence checks.
func (b *Binder) finish(fr *frame) *diagnostic.Error {
	rec := fr.record()

	if f, ok := fr.model.Text(); ok {
		if err := b.finishText(fr, f); err != nil {
			return err
		}
	}

	for i := range fr.model.Fields {
		f := &fr.model.Fields[i]
		if fr.counts[i] > 0 || f.IsMany() || f.Role == descriptor.RoleText {
			continue
		}

		if f.Choice && b.groupPopulated(fr, f.Group) {
			continue
		}

		unit, ok, err := f.DefaultUnit(b.codec)
		if err != nil {
			return diagnostic.Wrap(diagnostic.CodeInvalidValue, err, "invalid default").In(fr.typeName(), f.Field)
		}

		if ok {
			f.Assign(rec, unit)
			fr.counts[i] = 1
		}
	}

	checked := make(map[int]bool)

	for i := range fr.model.Fields {
		f := &fr.model.Fields[i]

		if f.Choice {
			if checked[f.Group] {
				continue
			}

			checked[f.Group] = true

			if fr.model.GroupRequired(f.Group) && !b.groupPopulated(fr, f.Group) {
				return diagnostic.New(diagnostic.CodeMissingRequiredField, "no member of choice group %d", f.Group).
					For(fr.name).In(fr.typeName(), f.Field).At(fr.line, fr.column)
			}

			continue
		}

		if n := fr.counts[i]; n < f.Occurs.Min || (f.Required && n == 0) {
			return diagnostic.New(diagnostic.CodeMissingRequiredField, "%d of at least %d occurrences", n, max(f.Occurs.Min, 1)).
				For(requiredName(fr, f)).In(fr.typeName(), f.Field).At(fr.line, fr.column)
		}
	}

	return nil
}

func (b *Binder) finishText(fr *frame, f *model.Field) *diagnostic.Error {
	if f.Slot == model.SlotMixed {
		if len(fr.mixed) > 0 {
			f.Value(fr.record()).Set(reflect.ValueOf(fr.mixed))
			fr.counts[f.Position] = 1
		}

		return nil
	}

	text := fr.text.String()
	if text == "" && !f.IsRequired() && f.Unit.Kind() != reflect.String {
		return nil
	}

	unit, err := b.decode(f, text)
	if err != nil {
		return diagnostic.Wrap(diagnostic.CodeInvalidValue, err, "invalid text content").
			For(fr.name).In(fr.typeName(), f.Field).At(fr.line, fr.column)
	}

	f.Assign(fr.record(), unit)
	fr.counts[f.Position] = 1

	return nil
}

func (b *Binder) groupPopulated(fr *frame, group int) bool {
	for _, g := range fr.model.GroupMembers(group) {
		if fr.counts[g.Position] > 0 {
			return true
		}
	}

	return false
}

func (b *Binder) endDocument() *diagnostic.Error {
	if fr := b.top(); fr != nil {
		return diagnostic.New(diagnostic.CodeMalformedDocument, "document ended inside element").For(fr.name)
	}

	if !b.result.IsValid() {
		return diagnostic.New(diagnostic.CodeMalformedDocument, "document has no root element")
	}

	b.done = true

	return nil
}

func requiredName(fr *frame, f *model.Field) fmt.Stringer {
	if f.Role.IsNamed() {
		return f.QName()
	}

	return fr.name
}

// isNil reports whether the start tag carries xsi:nil="true".
func isNil(ev markup.Event) bool {
	v, ok := ev.Attr(markup.XSINil)
	if !ok {
		return false
	}

	v = strings.TrimSpace(v)

	return v == "true" || v == "1"
}

// typeHint returns the xsi:type of a start tag, zero if absent. The value is
// expected in Clark notation, as produced by the tokenizer.
func typeHint(ev markup.Event) markup.QName {
	v, ok := ev.Attr(markup.XSIType)
	if !ok {
		return markup.QName{}
	}

	return markup.ParseQName(strings.TrimSpace(v))
}

// box converts a pointer to a record into the form the interface iface
// stores: the pointer if it implements iface, otherwise the struct value.
func box(ptr reflect.Value, iface reflect.Type) reflect.Value {
	if ptr.Type().Implements(iface) {
		return ptr
	}

	return ptr.Elem()
}

// didYouMean returns a hint naming the known name closest to name, or "".
func didYouMean(name markup.QName, known []markup.QName) string {
	locals := make([]string, len(known))
	for i, k := range known {
		locals[i] = k.Local
	}

	best, ok := suggest.Closest(name.Local, locals)
	if !ok {
		return ""
	}

	for _, k := range known {
		if k.Local == best {
			return fmt.Sprintf("; did you mean %s?", k)
		}
	}

	return ""
}

func asDiagnostic(err error, code diagnostic.Code) *diagnostic.Error {
	if d, ok := diagnostic.As(err); ok {
		return d
	}

	return diagnostic.Wrap(code, err, "%s", code)
}
