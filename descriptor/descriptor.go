package descriptor

import (
	"errors"
	"fmt"
	"reflect"

	"markup-binder/markup"
)

var (
	// ErrNoField is returned when a descriptor does not name its Go field.
	ErrNoField = errors.New("descriptor without field")
	// ErrNoName is returned when an element or attribute descriptor has no local name.
	ErrNoName = errors.New("descriptor without local name")
)

// Descriptor is the immutable binding contract of one field.
type Descriptor struct {
	// Field is the Go struct field the descriptor binds.
	Field string
	// Name and Namespace form the markup identity of Element and Attribute fields.
	Name      string
	Namespace string
	Role      Role
	Occurs    Occurs
	// Required forbids omission even when Occurs.Min is zero.
	Required bool
	// Nillable permits an explicit nil marker distinct from omission.
	Nillable bool
	// Group is the sequence group id; 0 means the field belongs to no group.
	Group int
	// Choice marks the field as a member of a choice group: at most one member
	// of Group may be populated.
	Choice bool
	// Tokens collapses a list of scalars into one whitespace-delimited unit.
	Tokens bool
	// Candidates lists the acceptable concrete types of a polymorphic field,
	// most specific first.
	Candidates []reflect.Type
	// Default is applied when the field is absent on decode. It may be a value
	// of the field's type, a lexical string decoded by the codec, or a
	// func() any factory.
	Default any
}

// QName returns the markup identity.
func (d *Descriptor) QName() markup.QName {
	return markup.QName{Space: d.Namespace, Local: d.Name}
}

// IsMany reports whether the field holds a sequence of markup units.
func (d *Descriptor) IsMany() bool {
	return !d.Tokens && d.Occurs.IsMany()
}

// IsRequired reports whether omission is an error.
func (d *Descriptor) IsRequired() bool {
	return d.Required || d.Occurs.Min > 0
}

// IsPolymorphic reports whether the field selects among candidate types.
func (d *Descriptor) IsPolymorphic() bool {
	return len(d.Candidates) > 0
}

// DefaultValue resolves Default, calling the factory if one was given.
func (d *Descriptor) DefaultValue() (any, bool) {
	switch v := d.Default.(type) {
	case nil:
		return nil, false
	case func() any:
		return v(), true
	default:
		return v, true
	}
}

// Validate checks the descriptor on its own; cross-field invariants are
// checked by the class model.
func (d *Descriptor) Validate() error {
	if d.Field == "" {
		return ErrNoField
	}

	if d.Role == RoleInvalid || int(d.Role) >= RoleTotal {
		return fmt.Errorf("field %s: invalid role %s", d.Field, d.Role)
	}

	if d.Role.IsNamed() && d.Name == "" {
		return fmt.Errorf("field %s: %w", d.Field, ErrNoName)
	}

	if err := d.Occurs.Validate(); err != nil {
		return fmt.Errorf("field %s: %w", d.Field, err)
	}

	if d.Choice && d.Group == 0 {
		return fmt.Errorf("field %s: choice member without group", d.Field)
	}

	if d.Nillable && d.Role != RoleElement {
		return fmt.Errorf("field %s: only elements can be nillable, got %s", d.Field, d.Role)
	}

	return nil
}

// String describes the descriptor for diagnostics.
func (d *Descriptor) String() string {
	if d.Role.IsNamed() {
		return fmt.Sprintf("%s %s %s [%s]", d.Field, d.Role, d.QName(), d.Occurs)
	}

	return fmt.Sprintf("%s %s", d.Field, d.Role)
}
