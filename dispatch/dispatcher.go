package dispatch

import (
	"fmt"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/untillpro/goutils/logger"

	"markup-binder/diagnostic"
	"markup-binder/markup"
	"markup-binder/model"
	"markup-binder/options"
)

// Dispatcher selects concrete types among candidates. It is safe for
// concurrent use.
type Dispatcher struct {
	registry *model.Registry
	cache    *lru.Cache[cacheKey, reflect.Type]
}

type cacheKey struct {
	// generation ties a selection to the registrations it was made under.
	generation uint64
	candidates string
	tag        markup.QName
	hint       markup.QName
}

// New creates a Dispatcher over the registry with a selection cache of the
// given size. A non-positive size uses the default.
func New(registry *model.Registry, size int) *Dispatcher {
	if size <= 0 {
		size = options.DefaultDispatchCacheSize
	}

	cache, err := lru.New[cacheKey, reflect.Type](size)
	if err != nil {
		panic("failed to create dispatch cache: " + err.Error())
	}

	return &Dispatcher{registry: registry, cache: cache}
}

// Select chooses among candidates for an element named tag. A zero hint
// means the element carries no explicit type.
func (d *Dispatcher) Select(candidates []reflect.Type, tag, hint markup.QName) (reflect.Type, error) {
	return d.selectType(candidates, tag, hint, nil)
}

// SelectField chooses the concrete type for an occurrence of the variant
// field f. Hinted types that cannot be stored in the field are ignored.
func (d *Dispatcher) SelectField(f *model.Field, tag, hint markup.QName) (reflect.Type, error) {
	key := cacheKey{generation: d.registry.Generation(), candidates: f.CandidateKey, tag: tag, hint: hint}
	if t, ok := d.cache.Get(key); ok {
		return t, nil
	}

	t, err := d.selectType(f.Candidates, tag, hint, func(t reflect.Type) bool {
		return t.Implements(f.Unit) || reflect.PointerTo(t).Implements(f.Unit)
	})
	if err != nil {
		return nil, err
	}

	d.cache.Add(key, t)

	return t, nil
}

// SelectRoot chooses the type of a document's root element among the named
// registered types.
func (d *Dispatcher) SelectRoot(tag, hint markup.QName) (reflect.Type, error) {
	return d.Select(d.registry.Roots(), tag, hint)
}

// Purge drops cached selections. Selections made before a registry change are
// never reused, so Purge only releases their memory.
func (d *Dispatcher) Purge() {
	d.cache.Purge()
}

func (d *Dispatcher) selectType(
	candidates []reflect.Type, tag, hint markup.QName, accept func(reflect.Type) bool,
) (reflect.Type, error) {
	if t, ok := d.byHint(candidates, hint, accept); ok {
		d.trace(tag, hint, t, "hint")
		return t, nil
	}

	models := make([]*model.ClassModel, len(candidates))

	for i, c := range candidates {
		m, err := d.registry.Resolve(c)
		if err != nil {
			return nil, err
		}

		if m.Name == tag {
			d.trace(tag, hint, c, "name")
			return c, nil
		}

		models[i] = m
	}

	for i, m := range models {
		if m.DeclaresElement(tag) || m.Substitutable(tag) {
			d.trace(tag, hint, candidates[i], "substitution")
			return candidates[i], nil
		}
	}

	return nil, diagnostic.New(diagnostic.CodeUnknownVariant, "no candidate type among %s matches", candidates).For(tag)
}

func (d *Dispatcher) byHint(candidates []reflect.Type, hint markup.QName, accept func(reflect.Type) bool) (reflect.Type, bool) {
	if hint.IsZero() {
		return nil, false
	}

	t, ok := d.registry.LookupName(hint)
	if !ok || (accept != nil && !accept(t)) {
		return nil, false
	}

	for _, c := range candidates {
		if d.registry.IsSubtype(t, c) {
			return t, true
		}
	}

	return nil, false
}

func (d *Dispatcher) trace(tag, hint markup.QName, t reflect.Type, rule string) {
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("dispatch: %s (hint %q) -> %s by %s", tag, hint, t, rule))
	}
}
