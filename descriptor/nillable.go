package descriptor

import "reflect"

//go:generate go tool stringer -type=Presence -output=presence_string.go

// Presence distinguishes an omitted element from an explicitly nil one.
type Presence uint8

const (
	Absent Presence = iota
	Present
	Nil
)

// Nillable holds the value of a nillable element.
type Nillable[T any] struct {
	Value T
	State Presence
}

// Some returns a present value.
func Some[T any](v T) Nillable[T] {
	return Nillable[T]{Value: v, State: Present}
}

// NilOf returns an explicitly nil value.
func NilOf[T any]() Nillable[T] {
	return Nillable[T]{State: Nil}
}

// Get returns the value and whether it is present.
func (n Nillable[T]) Get() (T, bool) {
	return n.Value, n.State == Present
}

// IsNil reports whether the element was explicitly nil.
func (n Nillable[T]) IsNil() bool {
	return n.State == Nil
}

func (Nillable[T]) nillableElem() reflect.Type {
	return reflect.TypeFor[T]()
}

type nillable interface {
	nillableElem() reflect.Type
}

var nillableType = reflect.TypeFor[nillable]()

// Field positions inside Nillable.
const (
	nillableValueField = 0
	nillableStateField = 1
)

// NillableElem reports whether t is a Nillable instantiation and returns its
// value type.
func NillableElem(t reflect.Type) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Struct || !t.Implements(nillableType) {
		return nil, false
	}

	return reflect.Zero(t).Interface().(nillable).nillableElem(), true
}

// NillableState returns the presence of a Nillable value.
func NillableState(v reflect.Value) Presence {
	return Presence(v.Field(nillableStateField).Uint())
}

// NillableValue returns the wrapped value of a Nillable.
func NillableValue(v reflect.Value) reflect.Value {
	return v.Field(nillableValueField)
}

// SetNillable stores val into the settable Nillable v and marks it present.
func SetNillable(v, val reflect.Value) {
	v.Field(nillableValueField).Set(val)
	v.Field(nillableStateField).SetUint(uint64(Present))
}

// SetNil marks the settable Nillable v as explicitly nil.
func SetNil(v reflect.Value) {
	v.Field(nillableValueField).SetZero()
	v.Field(nillableStateField).SetUint(uint64(Nil))
}
