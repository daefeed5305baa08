package model

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"markup-binder/descriptor"
	"markup-binder/markup"
)

const noField = -1

// ClassModel is the resolved binding contract of one struct type. It is built
// once by the Registry and never mutated afterwards.
type ClassModel struct {
	Type reflect.Type
	// Name is the type's own qualified name; zero for anonymous types.
	Name markup.QName
	// Base is the embedded base type, if any.
	Base  reflect.Type
	Mixed bool
	// Fields is the flattened descriptor list: base fields first, overridden
	// in place, then the type's own fields in declaration order.
	Fields      []Field
	Substitutes []markup.QName

	elements     map[markup.QName]int
	attributes   map[markup.QName]int
	wildcard     int
	attrWildcard int
	text         int
	// exclusive marks choice groups whose members are all singular.
	exclusive map[int]bool
}

// Anonymous reports whether the type has no qualified name of its own.
func (m *ClassModel) Anonymous() bool {
	return m.Name.IsZero()
}

// TypeName names the type for diagnostics.
func (m *ClassModel) TypeName() string {
	if m.Anonymous() {
		return m.Type.String()
	}

	return m.Name.String()
}

// Element returns the field bound to a child element name. Names of variant
// candidates and their substitutes resolve to the variant field.
func (m *ClassModel) Element(name markup.QName) (*Field, bool) {
	return m.lookup(m.elements, name)
}

// Attribute returns the field bound to an attribute name.
func (m *ClassModel) Attribute(name markup.QName) (*Field, bool) {
	return m.lookup(m.attributes, name)
}

// ElementNames returns every child element name the type accepts, sorted.
func (m *ClassModel) ElementNames() []markup.QName {
	return sortedNames(m.elements)
}

// AttributeNames returns every attribute name the type accepts, sorted.
func (m *ClassModel) AttributeNames() []markup.QName {
	return sortedNames(m.attributes)
}

func sortedNames(index map[markup.QName]int) []markup.QName {
	names := maps.Keys(index)
	slices.SortFunc(names, func(a, b markup.QName) bool { return a.Less(b) })

	return names
}

// DeclaresElement reports whether the type declares an element field named
// name itself, not through a variant candidate.
func (m *ClassModel) DeclaresElement(name markup.QName) bool {
	f, ok := m.Element(name)

	return ok && f.QName() == name
}

// Substitutable reports whether name is one of the type's substitution names.
func (m *ClassModel) Substitutable(name markup.QName) bool {
	for _, s := range m.Substitutes {
		if s == name {
			return true
		}
	}

	return false
}

// Wildcard returns the field absorbing unmatched child elements.
func (m *ClassModel) Wildcard() (*Field, bool) {
	return m.at(m.wildcard)
}

// AttributesWildcard returns the field absorbing unmatched attributes.
func (m *ClassModel) AttributesWildcard() (*Field, bool) {
	return m.at(m.attrWildcard)
}

// Text returns the simple content field.
func (m *ClassModel) Text() (*Field, bool) {
	return m.at(m.text)
}

// IsExclusiveChoice reports whether group is a choice whose members are
// mutually exclusive: all of them singular.
func (m *ClassModel) IsExclusiveChoice(group int) bool {
	return m.exclusive[group]
}

// GroupMembers returns the fields of a group in resolved order.
func (m *ClassModel) GroupMembers(group int) []*Field {
	var out []*Field

	for i := range m.Fields {
		if m.Fields[i].Group == group {
			out = append(out, &m.Fields[i])
		}
	}

	return out
}

// GroupRequired reports whether a choice group must have a populated member.
func (m *ClassModel) GroupRequired(group int) bool {
	for _, f := range m.GroupMembers(group) {
		if f.IsRequired() {
			return true
		}
	}

	return false
}

// New allocates a zero record and returns the pointer.
func (m *ClassModel) New() reflect.Value {
	return reflect.New(m.Type)
}

func (m *ClassModel) lookup(index map[markup.QName]int, name markup.QName) (*Field, bool) {
	i, ok := index[name]
	if !ok {
		return nil, false
	}

	return &m.Fields[i], true
}

func (m *ClassModel) at(i int) (*Field, bool) {
	if i == noField {
		return nil, false
	}

	return &m.Fields[i], true
}

// String renders the model for diagnostics, one field per line.
func (m *ClassModel) String() string {
	var b strings.Builder

	name := "anonymous"
	if !m.Anonymous() {
		name = m.Name.String()
	}

	fmt.Fprintf(&b, "%s (%s)", name, m.Type)
	if m.Base != nil {
		fmt.Fprintf(&b, " extends %s", m.Base)
	}

	if m.Mixed {
		b.WriteString(" mixed")
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		fmt.Fprintf(&b, "\n  %s %s/%s", f.Descriptor.String(), f.Slot, f.Wrap)

		if f.Group != 0 {
			kind := "seq"
			if f.Choice {
				kind = "choice"
			}

			fmt.Fprintf(&b, " %s:%d", kind, f.Group)
		}

		if f.Nillable {
			b.WriteString(" nillable")
		}

		if f.Role == descriptor.RoleElement && f.IsPolymorphic() {
			fmt.Fprintf(&b, " {%s}", f.CandidateKey)
		}
	}

	return b.String()
}
