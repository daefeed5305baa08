package emitter

import (
	"reflect"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"markup-binder/codec"
	"markup-binder/descriptor"
	"markup-binder/diagnostic"
	"markup-binder/internal/common"
	"markup-binder/markup"
	"markup-binder/model"
	"markup-binder/options"
)

// Emitter writes records as markup. It holds no per-document state and is
// safe for concurrent use.
type Emitter struct {
	registry *model.Registry
	codec    codec.Codec
	policy   options.Policy
}

// New creates an Emitter over a registry.
func New(registry *model.Registry, policy options.Policy) *Emitter {
	return &Emitter{registry: registry, codec: registry.Codec(), policy: policy}
}

// Emit writes v, a record or a pointer to one, as a document root element
// named after its type.
func (e *Emitter) Emit(w markup.Writer, v any) error {
	return e.EmitAs(w, v, markup.QName{})
}

// EmitAs writes v under the given root name. A zero name uses the name of
// v's type, which then must not be anonymous. The whole value is checked
// before the first call to w; only errors of w itself leave partial output.
func (e *Emitter) EmitAs(w markup.Writer, v any, name markup.QName) error {
	rec, err := recordOf(reflect.ValueOf(v))
	if err != nil {
		return err
	}

	m, err := e.registry.Resolve(rec.Type())
	if err != nil {
		return err
	}

	if name.IsZero() {
		if m.Anonymous() {
			return diagnostic.New(diagnostic.CodeModel, "anonymous type needs an explicit root name").
				In(m.TypeName(), "")
		}

		name = m.Name
	}

	if err := e.validate(m, rec, name); err != nil {
		return err
	}

	return e.record(w, m, rec, name, markup.QName{})
}

func recordOf(v reflect.Value) (reflect.Value, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, diagnostic.New(diagnostic.CodeIllegalNil, "document root cannot be nil")
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		if !v.IsValid() {
			return reflect.Value{}, diagnostic.New(diagnostic.CodeIllegalNil, "document root cannot be nil")
		}

		return reflect.Value{}, diagnostic.New(diagnostic.CodeModel, "%s is not a record", v.Type())
	}

	return v, nil
}

// validate runs the checks of rec and of every record below it and encodes
// every scalar once, so a rejected value writes nothing at all.
func (e *Emitter) validate(m *model.ClassModel, rec reflect.Value, name markup.QName) error {
	skip, err := e.check(m, rec, name)
	if err != nil {
		return err
	}

	if text, ok := m.Text(); ok && text.Slot == model.SlotMixed {
		if mixed := text.Value(rec).Interface().(markup.Mixed); len(mixed) > 0 {
			return e.validateMixed(m, rec, mixed)
		}
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		if skip[i] {
			continue
		}

		for _, occ := range f.Occurrences(rec) {
			if err := e.validateOccurrence(m, f, occ); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Emitter) validateMixed(m *model.ClassModel, rec reflect.Value, items markup.Mixed) error {
	for i := range m.Fields {
		if f := &m.Fields[i]; f.Role == descriptor.RoleAttribute {
			for _, occ := range f.Occurrences(rec) {
				if err := e.validateOccurrence(m, f, occ); err != nil {
					return err
				}
			}
		}
	}

	for _, it := range items {
		if it.IsText() {
			continue
		}

		f, occ, err := mixedOccurrence(m, it)
		if err != nil {
			return err
		}

		if err := e.validateOccurrence(m, f, occ); err != nil {
			return err
		}
	}

	return nil
}

func (e *Emitter) validateOccurrence(m *model.ClassModel, f *model.Field, occ model.Occurrence) error {
	if occ.Nil {
		return nil
	}

	switch f.Slot {
	case model.SlotRecord:
		child, err := e.registry.Resolve(f.Unit)
		if err != nil {
			return err
		}

		return e.validate(child, occ.Unit, f.QName())
	case model.SlotVariant:
		child, rec, name, _, err := e.variantTarget(m, f, occ.Unit)
		if err != nil {
			return err
		}

		return e.validate(child, rec, name)
	case model.SlotScalar, model.SlotTokens:
		_, err := e.encode(m, f, occ.Unit)
		return err
	default:
		return nil
	}
}

// record writes one element for rec.
func (e *Emitter) record(w markup.Writer, m *model.ClassModel, rec reflect.Value, name, hint markup.QName) error {
	skip, err := e.check(m, rec, name)
	if err != nil {
		return err
	}

	if err := w.OpenElement(name); err != nil {
		return err
	}

	if !hint.IsZero() {
		if err := w.WriteAttribute(markup.XSIType, hint.String()); err != nil {
			return err
		}
	}

	if err := e.attributes(w, m, rec); err != nil {
		return err
	}

	if err := e.content(w, m, rec, skip); err != nil {
		return err
	}

	return w.CloseElement()
}

// check verifies required fields, upper bounds and choice exclusivity of one
// record, and returns the choice members the policy skips.
func (e *Emitter) check(m *model.ClassModel, rec reflect.Value, name markup.QName) (map[int]bool, error) {
	var skip map[int]bool

	counts := make([]int, len(m.Fields))
	for i := range m.Fields {
		counts[i] = len(m.Fields[i].Occurrences(rec))
	}

	seen := make(map[int]bool)

	for i := range m.Fields {
		f := &m.Fields[i]
		n := counts[i]

		if !f.Occurs.Allows(n) && f.IsMany() {
			return nil, diagnostic.New(diagnostic.CodeTooManyOccurrences, "%d occurrences, at most %s", n, f.Occurs).
				For(f.QName()).In(m.TypeName(), f.Field)
		}

		if !f.Choice {
			if n < f.Occurs.Min || (f.Required && n == 0) {
				return nil, diagnostic.New(diagnostic.CodeMissingRequiredField, "%d of at least %d occurrences", n, max(f.Occurs.Min, 1)).
					For(fieldName(f, name)).In(m.TypeName(), f.Field)
			}

			continue
		}

		if seen[f.Group] {
			continue
		}

		seen[f.Group] = true

		populated := make([]*model.Field, 0, 1)
		for _, g := range m.GroupMembers(f.Group) {
			if counts[g.Position] > 0 {
				populated = append(populated, g)
			}
		}

		if common.IsEmpty(populated) && m.GroupRequired(f.Group) {
			return nil, diagnostic.New(diagnostic.CodeMissingRequiredField, "no member of choice group %d", f.Group).
				For(name).In(m.TypeName(), f.Field)
		}

		if !common.IsMultiple(populated) || !m.IsExclusiveChoice(f.Group) {
			continue
		}

		if e.policy.ChoiceEncode == options.ChoiceStrict {
			return nil, diagnostic.New(diagnostic.CodeAmbiguousChoice, "%s and %s are both populated", populated[0].Field, populated[1].Field).
				For(name).In(m.TypeName(), populated[1].Field)
		}

		if skip == nil {
			skip = make(map[int]bool)
		}

		for _, g := range populated[1:] {
			skip[g.Position] = true
		}
	}

	return skip, nil
}

func fieldName(f *model.Field, owner markup.QName) markup.QName {
	if f.Role.IsNamed() {
		return f.QName()
	}

	return owner
}

func (e *Emitter) attributes(w markup.Writer, m *model.ClassModel, rec reflect.Value) error {
	for i := range m.Fields {
		f := &m.Fields[i]

		switch f.Role {
		case descriptor.RoleAttribute:
			for _, occ := range f.Occurrences(rec) {
				text, err := e.encode(m, f, occ.Unit)
				if err != nil {
					return err
				}

				if err := w.WriteAttribute(f.QName(), text); err != nil {
					return err
				}
			}
		case descriptor.RoleAttributesWildcard:
			attrs := f.Value(rec).Interface().(map[markup.QName]string)
			names := maps.Keys(attrs)
			slices.SortFunc(names, func(a, b markup.QName) bool { return a.Less(b) })

			for _, n := range names {
				if err := w.WriteAttribute(n, attrs[n]); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (e *Emitter) content(w markup.Writer, m *model.ClassModel, rec reflect.Value, skip map[int]bool) error {
	if text, ok := m.Text(); ok && text.Slot == model.SlotMixed {
		if mixed := text.Value(rec).Interface().(markup.Mixed); len(mixed) > 0 {
			return e.mixed(w, m, mixed)
		}
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		if skip[i] {
			continue
		}

		switch f.Role {
		case descriptor.RoleText:
			if f.Slot == model.SlotMixed {
				continue
			}

			for _, occ := range f.Occurrences(rec) {
				text, err := e.encode(m, f, occ.Unit)
				if err != nil {
					return err
				}

				if err := w.WriteText(text); err != nil {
					return err
				}
			}
		case descriptor.RoleElement, descriptor.RoleWildcard:
			for _, occ := range f.Occurrences(rec) {
				if err := e.occurrence(w, m, f, occ); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// mixed writes interleaved content in its recorded order.
func (e *Emitter) mixed(w markup.Writer, m *model.ClassModel, items markup.Mixed) error {
	for _, it := range items {
		if it.IsText() {
			if err := w.WriteText(it.Text); err != nil {
				return err
			}

			continue
		}

		f, occ, err := mixedOccurrence(m, it)
		if err != nil {
			return err
		}

		if occ.Nil && f.Role == descriptor.RoleElement {
			if err := w.WriteNil(it.Name); err != nil {
				return err
			}

			continue
		}

		if err := e.occurrence(w, m, f, occ); err != nil {
			return err
		}
	}

	return nil
}

// mixedOccurrence finds the field of a mixed content element and unwraps its
// value the way Field.Occurrences does.
func mixedOccurrence(m *model.ClassModel, it markup.Item) (*model.Field, model.Occurrence, error) {
	f, ok := m.Element(it.Name)
	if !ok {
		if f, ok = m.Wildcard(); !ok {
			return nil, model.Occurrence{}, diagnostic.New(diagnostic.CodeUnexpectedElement, "mixed content item matches no field").
				For(it.Name).In(m.TypeName(), "")
		}
	}

	occ := model.Occurrence{Nil: it.Value == nil}
	if !occ.Nil {
		occ.Unit = reflect.ValueOf(it.Value)
		if f.Slot == model.SlotRecord || f.Slot == model.SlotNode {
			occ.Unit = occ.Unit.Elem()
		}
	}

	return f, occ, nil
}

// occurrence writes one element of field f.
func (e *Emitter) occurrence(w markup.Writer, m *model.ClassModel, f *model.Field, occ model.Occurrence) error {
	if occ.Nil {
		return w.WriteNil(f.QName())
	}

	switch f.Slot {
	case model.SlotNode:
		return nodeOf(occ.Unit).Emit(w)
	case model.SlotRecord:
		child, err := e.registry.Resolve(f.Unit)
		if err != nil {
			return err
		}

		return e.record(w, child, occ.Unit, f.QName(), markup.QName{})
	case model.SlotVariant:
		return e.variant(w, m, f, occ.Unit)
	default:
		text, err := e.encode(m, f, occ.Unit)
		if err != nil {
			return err
		}

		if err := w.OpenElement(f.QName()); err != nil {
			return err
		}

		if err := w.WriteText(text); err != nil {
			return err
		}

		return w.CloseElement()
	}
}

// variant writes a variant value under its runtime type's name when that type
// is a candidate; other types are written under the field name with an
// explicit type marker.
func (e *Emitter) variant(w markup.Writer, owner *model.ClassModel, f *model.Field, unit reflect.Value) error {
	m, rec, name, hint, err := e.variantTarget(owner, f, unit)
	if err != nil {
		return err
	}

	return e.record(w, m, rec, name, hint)
}

// variantTarget resolves the model, element name and type marker of a
// variant value.
func (e *Emitter) variantTarget(
	owner *model.ClassModel, f *model.Field, unit reflect.Value,
) (*model.ClassModel, reflect.Value, markup.QName, markup.QName, error) {
	rec := unit
	if rec.Kind() == reflect.Pointer {
		rec = rec.Elem()
	}

	m, err := e.registry.Resolve(rec.Type())
	if err != nil {
		return nil, reflect.Value{}, markup.QName{}, markup.QName{}, err
	}

	name, hint := f.QName(), markup.QName{}

	switch {
	case slices.Contains(f.Candidates, rec.Type()):
		if !m.Anonymous() {
			name = m.Name
		}
	case m.Anonymous():
		return nil, reflect.Value{}, markup.QName{}, markup.QName{},
			diagnostic.New(diagnostic.CodeUnknownVariant, "anonymous type %s is not a candidate", rec.Type()).
				For(f.QName()).In(owner.TypeName(), f.Field)
	default:
		hint = m.Name
	}

	return m, rec, name, hint, nil
}

func nodeOf(unit reflect.Value) *markup.Node {
	if unit.CanAddr() {
		return unit.Addr().Interface().(*markup.Node)
	}

	n := unit.Interface().(markup.Node)

	return &n
}

func (e *Emitter) encode(m *model.ClassModel, f *model.Field, unit reflect.Value) (string, error) {
	var (
		text string
		err  error
	)

	if f.Slot == model.SlotTokens {
		text, err = codec.EncodeTokens(e.codec, unit)
	} else {
		text, err = e.codec.Encode(unit)
	}

	if err != nil {
		return "", diagnostic.Wrap(diagnostic.CodeInvalidValue, err, "cannot encode value").
			For(fieldName(f, m.Name)).In(m.TypeName(), f.Field)
	}

	return text, nil
}
