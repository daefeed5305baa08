package model

import (
	"fmt"
	"reflect"
	"strings"

	"markup-binder/codec"
	"markup-binder/descriptor"
	"markup-binder/diagnostic"
)

var bytesType = reflect.TypeFor[[]byte]()

// classify completes a descriptor with defaults taken from the Go field and
// derives the field's storage layout from the field's Go shape.
func (b *builder) classify(d descriptor.Descriptor, sf reflect.StructField) (Field, error) {
	t := b.spec.Type
	if d.Occurs.Max == 0 {
		d.Occurs.Max = 1
		if isSequence(sf.Type) && !d.Tokens && (d.Role == descriptor.RoleElement || d.Role == descriptor.RoleWildcard) {
			d.Occurs.Max = descriptor.Unbounded
		}
	}

	if err := d.Validate(); err != nil {
		return Field{}, modelError(t, d.Field, "%v", err)
	}

	f := Field{Descriptor: d, Index: sf.Index, GoType: sf.Type}

	var err error

	switch d.Role {
	case descriptor.RoleWildcard:
		err = b.classifyWildcard(&f)
	case descriptor.RoleAttributesWildcard:
		if f.GoType != attrsType {
			return Field{}, modelError(t, d.Field, "attributes wildcard must be %s, got %s", attrsType, f.GoType)
		}

		f.Slot, f.Unit = SlotAttributes, attrsType
	case descriptor.RoleText:
		err = b.classifyText(&f)
	case descriptor.RoleAttribute:
		if f.IsMany() {
			return Field{}, modelError(t, d.Field, "attribute cannot repeat; use tokens")
		}

		err = b.classifyScalar(&f, f.GoType)
	case descriptor.RoleElement:
		err = b.classifyElement(&f)
	}

	if err != nil {
		return Field{}, err
	}

	if f.IsPolymorphic() && f.Slot != SlotVariant {
		return Field{}, modelError(t, d.Field, "candidate types on a %s field; variants must be interfaces", f.Slot)
	}

	if err := b.checkDefault(&f); err != nil {
		return Field{}, err
	}

	return f, nil
}

func isSequence(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t != bytesType
}

func (b *builder) classifyWildcard(f *Field) error {
	item := f.GoType
	if f.IsMany() {
		if !isSequence(item) {
			return modelError(b.spec.Type, f.Field, "repeated wildcard must be a slice, got %s", item)
		}

		item = item.Elem()
	}

	if item.Kind() != reflect.Pointer || item.Elem() != nodeType {
		return modelError(b.spec.Type, f.Field, "wildcard must hold *markup.Node, got %s", item)
	}

	f.Slot, f.Wrap, f.Unit = SlotNode, WrapPointer, nodeType

	return nil
}

func (b *builder) classifyText(f *Field) error {
	if f.GoType == mixedType {
		if !b.spec.Mixed {
			return modelError(b.spec.Type, f.Field, "markup.Mixed text field in a type that is not mixed")
		}

		f.Slot, f.Unit = SlotMixed, mixedType

		return nil
	}

	return b.classifyScalar(f, f.GoType)
}

// classifyScalar handles attribute and text values: a scalar, a pointer to
// one, or a token list.
func (b *builder) classifyScalar(f *Field, t reflect.Type) error {
	if f.Tokens {
		return b.classifyTokens(f, t)
	}

	if t.Kind() == reflect.Pointer {
		f.Wrap = WrapPointer
		t = t.Elem()
	}

	if !b.registry.codec.Supports(t) {
		return modelError(b.spec.Type, f.Field, "%s value of type %s is not a scalar", f.Role, t)
	}

	f.Slot, f.Unit = SlotScalar, t

	return nil
}

func (b *builder) classifyTokens(f *Field, t reflect.Type) error {
	if !isSequence(t) || !b.registry.codec.Supports(t.Elem()) {
		return modelError(b.spec.Type, f.Field, "token list must be a slice of scalars, got %s", t)
	}

	f.Slot, f.Unit = SlotTokens, t

	return nil
}

func (b *builder) classifyElement(f *Field) error {
	t := b.spec.Type
	item := f.GoType

	if f.IsMany() {
		if !isSequence(item) {
			return modelError(t, f.Field, "element with max occurs %s must be a slice, got %s", f.Occurs, item)
		}

		item = item.Elem()
	}

	unit := item
	if elem, ok := descriptor.NillableElem(item); ok {
		f.Wrap, unit = WrapNillable, elem
	} else if item.Kind() == reflect.Pointer {
		f.Wrap, unit = WrapPointer, item.Elem()
	}

	switch {
	case f.Tokens:
		if f.Wrap == WrapPointer {
			return modelError(t, f.Field, "token list cannot be a pointer")
		}

		if err := b.classifyTokens(f, unit); err != nil {
			return err
		}
	case unit == nodeType:
		if f.Wrap != WrapPointer {
			return modelError(t, f.Field, "generic element must be *markup.Node")
		}

		f.Slot, f.Unit = SlotNode, nodeType
	case b.registry.codec.Supports(unit):
		f.Slot, f.Unit = SlotScalar, unit
	case unit.Kind() == reflect.Interface:
		if f.Wrap == WrapPointer {
			return modelError(t, f.Field, "variant cannot be a pointer to an interface")
		}

		f.Slot, f.Unit = SlotVariant, unit
		if err := b.checkCandidates(f); err != nil {
			return err
		}
	case unit.Kind() == reflect.Struct:
		f.Slot, f.Unit = SlotRecord, unit
	default:
		return modelError(t, f.Field, "unsupported element type %s", unit)
	}

	if f.Nillable {
		switch {
		case !f.IsMany() && f.Wrap != WrapNillable:
			return modelError(t, f.Field, "nillable element must be descriptor.Nillable, got %s", item)
		case f.IsMany() && f.Wrap == WrapNone:
			return modelError(t, f.Field, "nillable sequence items must be pointers or descriptor.Nillable, got %s", item)
		}
	}

	return nil
}

// checkCandidates normalizes candidate types to structs and checks that each
// one, or a pointer to it, satisfies the variant interface.
func (b *builder) checkCandidates(f *Field) error {
	if len(f.Candidates) == 0 {
		return modelError(b.spec.Type, f.Field, "interface field %s without candidate types", f.Unit)
	}

	candidates := make([]reflect.Type, len(f.Candidates))
	keys := make([]string, len(f.Candidates))

	for i, c := range f.Candidates {
		if c.Kind() == reflect.Pointer {
			c = c.Elem()
		}

		if c.Kind() != reflect.Struct {
			return modelError(b.spec.Type, f.Field, "candidate %s is not a struct", c)
		}

		if !c.Implements(f.Unit) && !reflect.PointerTo(c).Implements(f.Unit) {
			return modelError(b.spec.Type, f.Field, "candidate %s does not implement %s", c, f.Unit)
		}

		candidates[i] = c
		keys[i] = c.PkgPath() + "." + c.Name()
	}

	f.Candidates = candidates
	f.CandidateKey = strings.Join(keys, "|")

	return nil
}

func (b *builder) checkDefault(f *Field) error {
	if f.Default == nil {
		return nil
	}

	if f.IsMany() {
		return modelError(b.spec.Type, f.Field, "default on a repeated field")
	}

	if f.Role == descriptor.RoleText {
		return modelError(b.spec.Type, f.Field, "default on simple content, which is never absent")
	}

	if _, _, err := f.DefaultUnit(b.registry.codec); err != nil {
		return diagnostic.Wrap(diagnostic.CodeModel, err, "invalid default").In(b.spec.Type.String(), f.Field)
	}

	return nil
}

// DefaultUnit returns the default occurrence of f in the form Assign takes.
// Lexical defaults are decoded with c; factories are called on every use.
func (f *Field) DefaultUnit(c codec.Codec) (reflect.Value, bool, error) {
	raw, ok := f.DefaultValue()
	if !ok {
		return reflect.Value{}, false, nil
	}

	if text, isText := raw.(string); isText {
		switch f.Slot {
		case SlotScalar:
			v, err := c.Decode(text, f.Unit)
			return v, err == nil, err
		case SlotTokens:
			v, err := codec.DecodeTokens(c, text, f.Unit)
			return v, err == nil, err
		}
	}

	v := reflect.ValueOf(raw)

	switch f.Slot {
	case SlotRecord:
		if v.Kind() == reflect.Pointer {
			v = v.Elem()
		}

		if v.Type() != f.Unit {
			break
		}

		ptr := reflect.New(f.Unit)
		ptr.Elem().Set(v)

		return ptr, true, nil
	case SlotVariant, SlotScalar, SlotTokens:
		if v.Type().AssignableTo(f.Unit) {
			return v, true, nil
		}

		if f.Slot == SlotScalar && v.Kind() == f.Unit.Kind() && v.Type().ConvertibleTo(f.Unit) {
			return v.Convert(f.Unit), true, nil
		}
	}

	return reflect.Value{}, false, fmt.Errorf("default %v (%T) does not fit %s", raw, raw, f.Unit)
}
