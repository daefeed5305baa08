package model

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"markup-binder/codec"
	"markup-binder/markup"
)

var (
	// ErrNilType is returned when a TypeSpec carries no type.
	ErrNilType = errors.New("model: nil reflect.Type provided")
	// ErrNotRecord is returned when a bound type is not a struct.
	ErrNotRecord = errors.New("model: bound type is not a struct")
	// ErrConflictingRegistration indicates an attempt to re-register a type
	// with a different binding, or to give two types the same name.
	ErrConflictingRegistration = errors.New("model: conflicting type registration")
)

// Registry resolves and caches class models. Registration is serialized by a
// mutex; resolved models are read lock-free and never change once installed.
type Registry struct {
	codec codec.Codec

	// mu serializes registration and model construction.
	mu sync.Mutex
	// catalog is replaced wholesale on every registration.
	catalog atomic.Pointer[catalog]
	// models maps reflect.Type to *ClassModel.
	models sync.Map
	// generation counts published catalogs.
	generation atomic.Uint64
}

type catalog struct {
	generation uint64
	specs  map[reflect.Type]TypeSpec
	byName map[markup.QName]reflect.Type
	// order lists registered types in registration order.
	order []reflect.Type
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodec sets the scalar codec used to tell scalar fields from records.
func WithCodec(c codec.Codec) Option {
	return func(r *Registry) {
		if c != nil {
			r.codec = c
		}
	}
}

// New constructs an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{codec: codec.New()}
	for _, opt := range opts {
		opt(r)
	}

	r.publish(&catalog{
		specs:  map[reflect.Type]TypeSpec{},
		byName: map[markup.QName]reflect.Type{},
	})

	return r
}

// Generation identifies the current set of registrations. It changes whenever
// the registrations may have changed and never repeats a value.
func (r *Registry) Generation() uint64 {
	return r.catalog.Load().generation
}

func (r *Registry) publish(c *catalog) {
	c.generation = r.generation.Add(1)
	r.catalog.Store(c)
}

// Codec returns the scalar codec the registry classifies fields with.
func (r *Registry) Codec() codec.Codec {
	return r.codec
}

// Register adds type specs and builds their models. Registering the same spec
// twice is a no-op. A model error rolls the whole call back.
func (r *Registry) Register(specs ...TypeSpec) error {
	return r.install(false, specs)
}

// Replace installs specs over existing registrations and drops every cached
// model, so types are rebuilt on next use.
func (r *Registry) Replace(specs ...TypeSpec) error {
	return r.install(true, specs)
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(specs ...TypeSpec) *Registry {
	if err := r.Register(specs...); err != nil {
		panic(err)
	}

	return r
}

func (r *Registry) install(replace bool, specs []TypeSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.catalog.Load()
	next := prev.clone()
	added := make([]reflect.Type, 0, len(specs))

	for _, spec := range specs {
		spec = spec.normalize()
		if err := next.add(spec, replace); err != nil {
			return err
		}

		added = append(added, spec.Type)
	}

	if len(next.order) == len(prev.order) && !replace {
		return nil
	}

	r.publish(next)
	r.models.Clear()

	if err := r.resolveClosureLocked(added); err != nil {
		r.publish(prev.clone())
		r.models.Clear()

		return err
	}

	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("model: registered %d type(s), %d total", len(added), len(next.order)))
	}

	return nil
}

// Resolve returns the class model of t (or of the struct t points to).
// Unregistered struct types are resolved from their tags as anonymous types.
func (r *Registry) Resolve(t reflect.Type) (*ClassModel, error) {
	if t == nil {
		return nil, ErrNilType
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if m, ok := r.models.Load(t); ok {
		return m.(*ClassModel), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.resolveLocked(t, nil)
}

// MustResolve is like Resolve but panics on error.
func (r *Registry) MustResolve(t reflect.Type) *ClassModel {
	m, err := r.Resolve(t)
	if err != nil {
		panic(err)
	}

	return m
}

// LookupName returns the registered type with the given qualified name.
func (r *Registry) LookupName(name markup.QName) (reflect.Type, bool) {
	t, ok := r.catalog.Load().byName[name]

	return t, ok
}

// NameOf returns the registered name of t, zero if t is anonymous.
func (r *Registry) NameOf(t reflect.Type) markup.QName {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return r.catalog.Load().specs[t].Name
}

// Roots returns the named types in registration order. Any of them may be
// the root element of a document.
func (r *Registry) Roots() []reflect.Type {
	c := r.catalog.Load()
	out := make([]reflect.Type, 0, len(c.byName))

	for _, t := range c.order {
		if !c.specs[t].Name.IsZero() {
			out = append(out, t)
		}
	}

	return out
}

// Types returns every registered type in registration order.
func (r *Registry) Types() []reflect.Type {
	return slices.Clone(r.catalog.Load().order)
}

// Names lists the registered type names sorted by namespace and local name.
func (r *Registry) Names() []markup.QName {
	names := maps.Keys(r.catalog.Load().byName)
	slices.SortFunc(names, func(a, b markup.QName) bool { return a.Less(b) })

	return names
}

// BaseOf returns the base type of t, from its registration or its tags.
func (r *Registry) BaseOf(t reflect.Type) (reflect.Type, bool) {
	m, err := r.Resolve(t)
	if err != nil || m.Base == nil {
		return nil, false
	}

	return m.Base, true
}

// IsSubtype reports whether t equals base or extends it through a chain of
// base types.
func (r *Registry) IsSubtype(t, base reflect.Type) bool {
	for seen := 0; t != nil && seen < maxBaseDepth; seen++ {
		if t == base {
			return true
		}

		next, ok := r.BaseOf(t)
		if !ok {
			return false
		}

		t = next
	}

	return false
}

// Reset removes every registration and cached model.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.publish(&catalog{
		specs:  map[reflect.Type]TypeSpec{},
		byName: map[markup.QName]reflect.Type{},
	})
	r.models.Clear()
}

func (c *catalog) clone() *catalog {
	return &catalog{
		specs:  maps.Clone(c.specs),
		byName: maps.Clone(c.byName),
		order:  slices.Clone(c.order),
	}
}

func (c *catalog) add(spec TypeSpec, replace bool) error {
	if spec.Type == nil {
		return ErrNilType
	}

	if spec.Type.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s", ErrNotRecord, spec.Type)
	}

	old, exists := c.specs[spec.Type]
	if exists && !replace {
		if old.same(spec) {
			return nil
		}

		return fmt.Errorf("%w: %s registered twice with different bindings", ErrConflictingRegistration, spec.Type)
	}

	if !spec.Name.IsZero() {
		if owner, taken := c.byName[spec.Name]; taken && owner != spec.Type {
			return fmt.Errorf("%w: name %s already belongs to %s", ErrConflictingRegistration, spec.Name, owner)
		}
	}

	if exists {
		delete(c.byName, old.Name)
	} else {
		c.order = append(c.order, spec.Type)
	}

	c.specs[spec.Type] = spec
	if !spec.Name.IsZero() {
		c.byName[spec.Name] = spec.Type
	}

	return nil
}
