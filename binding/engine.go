package binding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"markup-binder/binder"
	"markup-binder/diagnostic"
	"markup-binder/dispatch"
	"markup-binder/emitter"
	"markup-binder/markup"
	"markup-binder/markup/xmlio"
	"markup-binder/model"
	"markup-binder/options"
)

var errNilRegistry = errors.New("binding: nil registry")

// Engine decodes and encodes documents for the types of one registry. It is
// safe for concurrent use by multiple goroutines; every call runs its own
// binder.
type Engine struct {
	registry *model.Registry
	dispatch *dispatch.Dispatcher
	emitter  *emitter.Emitter
	policy   options.Policy
	pool     sync.Pool
}

// New creates an Engine over registry with a policy built from opts.
func New(registry *model.Registry, opts ...options.Option) (*Engine, error) {
	return NewWithPolicy(registry, options.New(opts...))
}

// NewWithPolicy creates an Engine with a ready-made policy, for example one
// loaded with options.LoadFile.
func NewWithPolicy(registry *model.Registry, policy options.Policy) (*Engine, error) {
	if registry == nil {
		return nil, errNilRegistry
	}

	e := &Engine{
		registry: registry,
		dispatch: dispatch.New(registry, policy.DispatchCacheSize),
		emitter:  emitter.New(registry, policy),
		policy:   policy,
	}
	e.pool.New = func() any {
		return binder.New(e.registry, e.dispatch, e.policy)
	}

	return e, nil
}

// Registry returns the registry the engine binds against.
func (e *Engine) Registry() *model.Registry {
	return e.registry
}

// Policy returns the engine's policy.
func (e *Engine) Policy() options.Policy {
	return e.policy
}

// Register adds type specs to the registry.
func (e *Engine) Register(specs ...model.TypeSpec) error {
	return e.registry.Register(specs...)
}

// Replace installs new bindings for already registered types and drops every
// cached model and type selection.
func (e *Engine) Replace(specs ...model.TypeSpec) error {
	if err := e.registry.Replace(specs...); err != nil {
		return err
	}

	e.dispatch.Purge()

	return nil
}

// Decode reads one XML document from r. The root element selects one of the
// registered named types; the result is a pointer to it.
func (e *Engine) Decode(r io.Reader) (any, error) {
	v, _, err := e.decodeXML(r, nil)
	return v, err
}

// Unmarshal decodes an XML document held in data.
func (e *Engine) Unmarshal(data []byte) (any, error) {
	return e.Decode(bytes.NewReader(data))
}

// DecodeSource decodes a document from tokenizer events. Warnings collected
// under a lenient policy are returned even when decoding fails.
func (e *Engine) DecodeSource(src markup.Source) (any, diagnostic.Diagnostics, error) {
	return e.decode(src, nil)
}

func (e *Engine) decodeXML(r io.Reader, expect reflect.Type) (any, diagnostic.Diagnostics, error) {
	src, err := xmlio.NewReader(r)
	if err != nil {
		return nil, diagnostic.Diagnostics{}, err
	}

	return e.decode(src, expect)
}

func (e *Engine) decode(src markup.Source, expect reflect.Type) (any, diagnostic.Diagnostics, error) {
	b := e.pool.Get().(*binder.Binder)
	defer e.pool.Put(b)

	b.Reset()
	b.Expect(expect)

	v, err := b.Decode(src)

	return v, *b.Diagnostics(), err
}

// Encode writes v as a complete XML document to w. Nothing is written when
// encoding fails.
func (e *Engine) Encode(w io.Writer, v any) error {
	return e.EncodeAs(w, v, markup.QName{})
}

// EncodeAs is like Encode with an explicit root element name.
func (e *Engine) EncodeAs(w io.Writer, v any, name markup.QName) error {
	data, err := e.MarshalAs(v, name)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// Marshal returns the XML document for v, a record or a pointer to one.
func (e *Engine) Marshal(v any) ([]byte, error) {
	return e.MarshalAs(v, markup.QName{})
}

// MarshalAs returns the XML document for v under the given root name.
func (e *Engine) MarshalAs(v any, name markup.QName) ([]byte, error) {
	var buf bytes.Buffer

	xw, err := xmlio.NewWriter(&buf)
	if err != nil {
		return nil, err
	}

	if err := xw.Header(); err != nil {
		return nil, err
	}

	if err := e.emitter.EmitAs(xw, v, name); err != nil {
		return nil, err
	}

	if err := xw.Flush(); err != nil {
		return nil, fmt.Errorf("flush document: %w", err)
	}

	return buf.Bytes(), nil
}

// Emit writes v to an arbitrary markup writer. Values are checked before the
// first write, so only a failing writer leaves a partial document in w.
func (e *Engine) Emit(w markup.Writer, v any) error {
	return e.emitter.Emit(w, v)
}

// Events encodes v into tokenizer events without producing text.
func (e *Engine) Events(v any) ([]markup.Event, error) {
	var rec markup.Recorder
	if err := e.emitter.Emit(&rec, v); err != nil {
		return nil, err
	}

	return rec.Events(), nil
}

// RoundTrip encodes v and decodes the result again through an in-memory
// event stream. The copy has the same type as v's record.
func (e *Engine) RoundTrip(v any) (any, error) {
	var rec markup.Recorder
	if err := e.emitter.Emit(&rec, v); err != nil {
		return nil, err
	}

	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out, _, err := e.decode(rec.Source(), t)

	return out, err
}
