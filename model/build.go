package model

import (
	"fmt"
	"reflect"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/slices"

	"markup-binder/descriptor"
	"markup-binder/diagnostic"
	"markup-binder/markup"
)

// maxBaseDepth bounds inheritance chains.
const maxBaseDepth = 64

func modelError(t reflect.Type, field, format string, args ...any) error {
	return diagnostic.New(diagnostic.CodeModel, format, args...).In(t.String(), field)
}

// resolveClosureLocked builds the models of roots and of every record and
// candidate type reachable from them, so model errors surface at registration.
func (r *Registry) resolveClosureLocked(roots []reflect.Type) error {
	seen := make(map[reflect.Type]bool)
	queue := slices.Clone(roots)

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if seen[t] {
			continue
		}

		seen[t] = true

		m, err := r.resolveLocked(t, nil)
		if err != nil {
			return err
		}

		for i := range m.Fields {
			switch f := &m.Fields[i]; f.Slot {
			case SlotRecord:
				queue = append(queue, f.Unit)
			case SlotVariant:
				queue = append(queue, f.Candidates...)
			}
		}
	}

	return nil
}

func (r *Registry) resolveLocked(t reflect.Type, chain []reflect.Type) (*ClassModel, error) {
	if m, ok := r.models.Load(t); ok {
		return m.(*ClassModel), nil
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotRecord, t)
	}

	if slices.Contains(chain, t) || len(chain) >= maxBaseDepth {
		return nil, modelError(t, "", "cyclic base type chain")
	}

	cat := r.catalog.Load()

	spec, ok := cat.specs[t]
	if !ok {
		spec = TypeSpec{Type: t}
	}

	b := &builder{registry: r, catalog: cat, spec: spec, chain: append(chain, t)}

	m, err := b.build()
	if err != nil {
		return nil, err
	}

	r.models.Store(t, m)

	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("model: built %s with %d field(s)", m.TypeName(), len(m.Fields)))
	}

	return m, nil
}

type builder struct {
	registry *Registry
	catalog  *catalog
	spec     TypeSpec
	chain    []reflect.Type
}

type ownField struct {
	desc descriptor.Descriptor
	sf   reflect.StructField
}

func (b *builder) build() (*ClassModel, error) {
	t := b.spec.Type

	own, baseField, err := b.ownFields()
	if err != nil {
		return nil, err
	}

	m := &ClassModel{
		Type:         t,
		Name:         b.spec.Name,
		Mixed:        b.spec.Mixed,
		Substitutes:  b.spec.Substitutes,
		wildcard:     noField,
		attrWildcard: noField,
		text:         noField,
	}

	if baseField != nil {
		base, err := b.registry.resolveLocked(baseField.Type, b.chain)
		if err != nil {
			return nil, err
		}

		m.Base = baseField.Type
		m.Mixed = m.Mixed || base.Mixed

		for _, bf := range base.Fields {
			bf.Index = append([]int{baseField.Index[0]}, bf.Index...)
			m.Fields = append(m.Fields, bf)
		}
	}

	for _, of := range own {
		f, err := b.classify(of.desc, of.sf)
		if err != nil {
			return nil, err
		}

		if i := overridden(m.Fields, &f); i >= 0 {
			m.Fields[i] = f
			continue
		}

		m.Fields = append(m.Fields, f)
	}

	for i := range m.Fields {
		m.Fields[i].Position = i
	}

	if err := b.index(m); err != nil {
		return nil, err
	}

	return m, nil
}

// ownFields returns the type's own descriptors in declaration order and the
// embedded base field, if any.
func (b *builder) ownFields() ([]ownField, *reflect.StructField, error) {
	t := b.spec.Type

	var base *reflect.StructField

	if b.spec.Base != nil {
		for i := range t.NumField() {
			sf := t.Field(i)
			if sf.Anonymous && sf.Type == b.spec.Base {
				base = &sf
				break
			}
		}

		if base == nil {
			return nil, nil, modelError(t, "", "base type %s is not embedded by value", b.spec.Base)
		}
	}

	if b.spec.Fields != nil {
		out := make([]ownField, 0, len(b.spec.Fields))

		for _, d := range b.spec.Fields {
			sf, ok := directField(t, d.Field)
			if !ok || (base != nil && sf.Index[0] == base.Index[0]) {
				return nil, nil, modelError(t, d.Field, "no struct field %q", d.Field)
			}

			if !sf.IsExported() {
				return nil, nil, modelError(t, d.Field, "struct field %q is not exported", d.Field)
			}

			out = append(out, ownField{desc: d, sf: sf})
		}

		return out, base, nil
	}

	var out []ownField

	for i := range t.NumField() {
		sf := t.Field(i)

		_, tagged := sf.Tag.Lookup(descriptor.TagKey)
		if sf.Anonymous && !tagged && sf.Type.Kind() == reflect.Struct {
			if base == nil && b.spec.Base == nil {
				base = &sf
			}

			continue
		}

		if !sf.IsExported() {
			continue
		}

		d, ok, err := descriptor.FromTag(sf)
		if err != nil {
			return nil, nil, diagnostic.Wrap(diagnostic.CodeModel, err, "invalid tag").In(t.String(), sf.Name)
		}

		if ok {
			out = append(out, ownField{desc: d, sf: sf})
		}
	}

	return out, base, nil
}

func directField(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := range t.NumField() {
		if sf := t.Field(i); sf.Name == name {
			return sf, true
		}
	}

	return reflect.StructField{}, false
}

// overridden returns the position of the inherited field f replaces, or -1.
// Named fields match on role and qualified name, unnamed ones on role.
func overridden(fields []Field, f *Field) int {
	for i := range fields {
		g := &fields[i]
		if g.Role != f.Role {
			continue
		}

		if !f.Role.IsNamed() || g.QName() == f.QName() {
			return i
		}
	}

	return -1
}

// index builds the lookup tables and checks the cross-field invariants.
func (b *builder) index(m *ClassModel) error {
	m.elements = make(map[markup.QName]int)
	m.attributes = make(map[markup.QName]int)

	hasElements := false

	for i := range m.Fields {
		f := &m.Fields[i]

		switch f.Role {
		case descriptor.RoleElement:
			hasElements = true
			if _, dup := m.elements[f.QName()]; dup {
				return modelError(m.Type, f.Field, "duplicate element %s", f.QName())
			}

			m.elements[f.QName()] = i
		case descriptor.RoleAttribute:
			if _, dup := m.attributes[f.QName()]; dup {
				return modelError(m.Type, f.Field, "duplicate attribute %s", f.QName())
			}

			m.attributes[f.QName()] = i
		case descriptor.RoleWildcard:
			hasElements = true
			if m.wildcard != noField {
				return modelError(m.Type, f.Field, "more than one wildcard field")
			}

			m.wildcard = i
		case descriptor.RoleAttributesWildcard:
			if m.attrWildcard != noField {
				return modelError(m.Type, f.Field, "more than one attributes wildcard field")
			}

			m.attrWildcard = i
		case descriptor.RoleText:
			if m.text != noField {
				return modelError(m.Type, f.Field, "more than one text field")
			}

			m.text = i
		}
	}

	if m.text != noField {
		text := &m.Fields[m.text]
		if hasElements && !m.Mixed {
			return modelError(m.Type, text.Field, "text field next to element fields in a type that is not mixed")
		}

		if m.Mixed && text.Slot != SlotMixed {
			return modelError(m.Type, text.Field, "text field of a mixed type must be markup.Mixed")
		}
	}

	// Candidate names resolve to their variant field unless a declared
	// element already owns them; the first variant field wins.
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Slot != SlotVariant {
			continue
		}

		for _, name := range b.alternateNames(f) {
			if _, taken := m.elements[name]; !taken {
				m.elements[name] = i
			}
		}
	}

	return b.checkGroups(m)
}

func (b *builder) alternateNames(f *Field) []markup.QName {
	var names []markup.QName

	for _, c := range f.Candidates {
		spec, ok := b.catalog.specs[c]
		if !ok {
			continue
		}

		if !spec.Name.IsZero() {
			names = append(names, spec.Name)
		}

		names = append(names, spec.Substitutes...)
	}

	return names
}

// checkGroups verifies that every group is contiguous among element fields and
// is either a sequence or a choice, and records exclusive choices.
func (b *builder) checkGroups(m *ClassModel) error {
	m.exclusive = make(map[int]bool)

	closed := make(map[int]bool)
	choice := make(map[int]bool)
	current := 0

	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Role != descriptor.RoleElement {
			continue
		}

		if f.Group != current {
			if f.Group != 0 && closed[f.Group] {
				return modelError(m.Type, f.Field, "group %d is not contiguous", f.Group)
			}

			closed[current] = true
			current = f.Group
			choice[current] = f.Choice

			if f.Choice {
				m.exclusive[current] = true
			}
		}

		if f.Group == 0 {
			continue
		}

		if choice[f.Group] != f.Choice {
			return modelError(m.Type, f.Field, "group %d mixes choice and sequence members", f.Group)
		}

		if f.Choice && f.IsMany() {
			m.exclusive[f.Group] = false
		}
	}

	return nil
}
