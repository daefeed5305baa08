package model

import (
	"reflect"

	"markup-binder/descriptor"
	"markup-binder/markup"
)

// TypeSpec is the registration input for one bound struct type.
type TypeSpec struct {
	// Type is the struct type; a pointer type is replaced by its element.
	Type reflect.Type
	// Name is the type's own qualified name. Named types can be document roots
	// and are found by name when dispatching variants.
	Name markup.QName
	// Base is the type this one extends. It must be embedded by value. When
	// Fields is nil and Base is unset, the first untagged embedded struct is
	// taken as the base.
	Base  reflect.Type
	Mixed bool
	// Fields is the explicit descriptor table of the type's own fields in
	// declaration order. When nil, descriptors are read from `bind` tags.
	Fields []descriptor.Descriptor
	// Substitutes are additional element names that stand for this type.
	Substitutes []markup.QName
}

// Spec builds a TypeSpec for T whose fields are read from struct tags.
func Spec[T any](name markup.QName) TypeSpec {
	return TypeSpec{Type: reflect.TypeFor[T](), Name: name}
}

// Extends sets the base type.
func (s TypeSpec) Extends(base reflect.Type) TypeSpec {
	s.Base = base
	return s
}

// WithFields sets the explicit descriptor table.
func (s TypeSpec) WithFields(fields ...descriptor.Descriptor) TypeSpec {
	s.Fields = fields
	return s
}

// AsMixed marks the type as carrying interleaved text and elements.
func (s TypeSpec) AsMixed() TypeSpec {
	s.Mixed = true
	return s
}

// SubstitutedBy adds substitution names.
func (s TypeSpec) SubstitutedBy(names ...markup.QName) TypeSpec {
	s.Substitutes = append(append([]markup.QName(nil), s.Substitutes...), names...)
	return s
}

func (s TypeSpec) normalize() TypeSpec {
	if s.Type != nil && s.Type.Kind() == reflect.Pointer {
		s.Type = s.Type.Elem()
	}

	if s.Base != nil && s.Base.Kind() == reflect.Pointer {
		s.Base = s.Base.Elem()
	}

	return s
}

// same reports whether two registrations of one type describe the same
// binding. Default factories are not compared.
func (s TypeSpec) same(o TypeSpec) bool {
	if s.Type != o.Type || s.Name != o.Name || s.Base != o.Base || s.Mixed != o.Mixed {
		return false
	}

	if len(s.Fields) != len(o.Fields) || len(s.Substitutes) != len(o.Substitutes) {
		return false
	}

	for i := range s.Substitutes {
		if s.Substitutes[i] != o.Substitutes[i] {
			return false
		}
	}

	for i := range s.Fields {
		a, b := &s.Fields[i], &o.Fields[i]
		if a.Field != b.Field || a.Role != b.Role || a.QName() != b.QName() || a.Occurs != b.Occurs {
			return false
		}
	}

	return true
}
