package binding

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Decode reads a document whose root must bind to T.
func Decode[T any](e *Engine, r io.Reader) (*T, error) {
	v, _, err := e.decodeXML(r, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return typed[T](v)
}

// Unmarshal decodes data into a new T.
func Unmarshal[T any](e *Engine, data []byte) (*T, error) {
	return Decode[T](e, bytes.NewReader(data))
}

// Clone deep-copies v by encoding and decoding it.
func Clone[T any](e *Engine, v *T) (*T, error) {
	out, err := e.RoundTrip(v)
	if err != nil {
		return nil, err
	}

	return typed[T](out)
}

func typed[T any](v any) (*T, error) {
	out, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("binding: decoded %T, want *%s", v, reflect.TypeFor[T]())
	}

	return out, nil
}
