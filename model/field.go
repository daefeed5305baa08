package model

import (
	"reflect"

	"markup-binder/descriptor"
	"markup-binder/markup"
)

// Field is a resolved descriptor together with the layout of the Go struct
// field it binds.
type Field struct {
	descriptor.Descriptor

	// Position is the index of the field in ClassModel.Fields.
	Position int
	// Index is the reflect index path from the model's struct type.
	Index []int
	// GoType is the declared type of the struct field.
	GoType reflect.Type
	Slot   SlotEnum
	Wrap   WrapEnum
	// Unit is the type of one occurrence without the sequence container and
	// the wrapper: the struct type of records, the interface type of variants,
	// the slice type of token lists.
	Unit reflect.Type
	// CandidateKey identifies the candidate list of a variant field.
	CandidateKey string
}

var (
	nodeType  = reflect.TypeFor[markup.Node]()
	mixedType = reflect.TypeFor[markup.Mixed]()
	attrsType = reflect.TypeFor[map[markup.QName]string]()
)

// ItemType returns the type of one stored item: the slice element of a
// sequence, otherwise the field type.
func (f *Field) ItemType() reflect.Type {
	if f.IsMany() {
		return f.GoType.Elem()
	}

	return f.GoType
}

// Value returns the struct field inside record, a value of the model's type.
// Assign and Clear need record to be addressable.
func (f *Field) Value(record reflect.Value) reflect.Value {
	return record.FieldByIndex(f.Index)
}

// Occurrence is one populated item of a field.
type Occurrence struct {
	// Unit is the occurrence value without its wrapper. It is invalid when Nil
	// is set. Records are addressable struct values; variants hold the
	// interface's dynamic value.
	Unit reflect.Value
	Nil  bool
}

// Occurrences lists the populated items of f in record. Absent items are
// skipped; explicitly nil items are reported with Nil set. A singular value
// that is the zero value of its type counts as absent unless the field has a
// default or is required outside a choice.
func (f *Field) Occurrences(record reflect.Value) []Occurrence {
	v := f.Value(record)

	if !f.IsMany() {
		occ, ok := f.occurrence(v, true)
		if !ok {
			return nil
		}

		return []Occurrence{occ}
	}

	out := make([]Occurrence, 0, v.Len())
	for i := range v.Len() {
		if occ, ok := f.occurrence(v.Index(i), false); ok {
			out = append(out, occ)
		}
	}

	return out
}

func (f *Field) occurrence(item reflect.Value, singular bool) (Occurrence, bool) {
	switch f.Wrap {
	case WrapPointer:
		if item.IsNil() {
			if !singular && f.Nillable {
				return Occurrence{Nil: true}, true
			}

			return Occurrence{}, false
		}

		item = item.Elem()
	case WrapNillable:
		switch descriptor.NillableState(item) {
		case descriptor.Absent:
			return Occurrence{}, false
		case descriptor.Nil:
			return Occurrence{Nil: true}, true
		}

		item = descriptor.NillableValue(item)
	default:
		if singular && (f.Choice || !f.IsRequired()) && f.Default == nil && f.omitZero(item) {
			return Occurrence{}, false
		}
	}

	if f.Slot == SlotVariant {
		if item.IsNil() {
			return Occurrence{}, false
		}

		item = item.Elem()
	}

	return Occurrence{Unit: item}, true
}

// omitZero reports whether an unwrapped optional value counts as absent.
func (f *Field) omitZero(v reflect.Value) bool {
	switch f.Slot {
	case SlotTokens, SlotMixed, SlotAttributes:
		return v.Len() == 0
	case SlotVariant:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

// Assign stores one decoded unit into record: appended for sequences,
// overwritten otherwise. Records and nodes are passed as pointers, variants
// as a value assignable to the interface, everything else as a value of Unit.
func (f *Field) Assign(record, unit reflect.Value) {
	f.store(record, f.wrap(unit))
}

// AssignNil stores an explicit nil occurrence.
func (f *Field) AssignNil(record reflect.Value) {
	item := reflect.New(f.ItemType()).Elem()
	if f.Wrap == WrapNillable {
		descriptor.SetNil(item)
	}

	f.store(record, item)
}

// Clear resets the field to its zero value.
func (f *Field) Clear(record reflect.Value) {
	f.Value(record).SetZero()
}

func (f *Field) store(record, item reflect.Value) {
	v := f.Value(record)
	if f.IsMany() {
		v.Set(reflect.Append(v, item))
		return
	}

	v.Set(item)
}

func (f *Field) wrap(unit reflect.Value) reflect.Value {
	byRef := f.Slot == SlotRecord || f.Slot == SlotNode

	switch f.Wrap {
	case WrapPointer:
		if byRef {
			return unit
		}

		ptr := reflect.New(f.Unit)
		ptr.Elem().Set(unit)

		return ptr
	case WrapNillable:
		if byRef {
			unit = unit.Elem()
		}

		item := reflect.New(f.ItemType()).Elem()
		descriptor.SetNillable(item, unit)

		return item
	default:
		if byRef {
			return unit.Elem()
		}

		if f.Slot == SlotVariant {
			item := reflect.New(f.Unit).Elem()
			item.Set(unit)

			return item
		}

		return unit
	}
}
