package codec

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Codec converts scalar values to and from their lexical form.
type Codec interface {
	// Supports reports whether t is a scalar type the codec converts.
	Supports(t reflect.Type) bool
	// Decode parses text into a new value of type t.
	Decode(text string, t reflect.Type) (reflect.Value, error)
	// Encode formats v.
	Encode(v reflect.Value) (string, error)
}

// Scalar is a custom conversion for one type.
type Scalar struct {
	Decode func(text string) (any, error)
	Encode func(v any) (string, error)
}

// Default converts Go primitive kinds, time.Time, time.Duration, []byte and
// encoding.TextMarshaler types, plus any registered custom scalars. A Default
// is immutable once built and safe for concurrent use.
type Default struct {
	custom     map[reflect.Type]Scalar
	enums      map[reflect.Type]map[string]struct{}
	timeLayout string
}

var _ Codec = (*Default)(nil)

// Option configures a Default codec.
type Option func(*Default)

// WithScalar registers a custom conversion for t.
func WithScalar(t reflect.Type, s Scalar) Option {
	return func(d *Default) {
		d.custom[t] = s
	}
}

// WithEnum restricts the string type T to the given lexical values.
func WithEnum[T ~string](values ...T) Option {
	return func(d *Default) {
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[string(v)] = struct{}{}
		}

		d.enums[reflect.TypeFor[T]()] = set
	}
}

// WithTimeLayout sets the layout used for time.Time. Defaults to RFC 3339.
func WithTimeLayout(layout string) Option {
	return func(d *Default) {
		d.timeLayout = layout
	}
}

// New builds a Default codec.
func New(opts ...Option) *Default {
	d := &Default{
		custom:     make(map[reflect.Type]Scalar),
		enums:      make(map[reflect.Type]map[string]struct{}),
		timeLayout: time.RFC3339Nano,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Supports reports whether t, or the type t points to, is convertible.
func (d *Default) Supports(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if _, ok := d.custom[t]; ok {
		return true
	}

	return FromReflectType(t) != 0
}

// Decode parses text into a value of type t. Surrounding whitespace is
// collapsed for every kind except strings.
func (d *Default) Decode(text string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		elem, err := d.Decode(text, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)

		return ptr, nil
	}

	v, err := d.decode(text, t)
	if err != nil {
		return reflect.Value{}, &Error{Text: text, Type: t, Err: err}
	}

	if err := d.checkEnum(t, v); err != nil {
		return reflect.Value{}, &Error{Text: text, Type: t, Err: err}
	}

	return v, nil
}

func (d *Default) decode(text string, t reflect.Type) (reflect.Value, error) {
	if s, ok := d.custom[t]; ok {
		raw, err := s.Decode(text)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(raw).Convert(t), nil
	}

	kind := FromReflectType(t)
	v := reflect.New(t).Elem()
	trimmed := strings.TrimSpace(text)

	switch {
	case kind == KindString:
		v.SetString(text)
	case kind == KindTime:
		tm, err := time.Parse(d.timeLayout, trimmed)
		if err != nil {
			return reflect.Value{}, err
		}

		v.Set(reflect.ValueOf(tm))
	case kind == KindDuration:
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			return reflect.Value{}, err
		}

		v.SetInt(int64(dur))
	case kind == KindBytes:
		b, err := base64.StdEncoding.DecodeString(trimmed)
		if err != nil {
			return reflect.Value{}, err
		}

		v.SetBytes(b)
	case kind == KindText:
		if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(trimmed)); err != nil {
			return reflect.Value{}, err
		}
	case kind != 0:
		return v, decodeByKind(trimmed, text, v)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported scalar type %s", t)
	}

	return v, nil
}

// decodeByKind handles primitives and named primitive enums through the
// underlying reflect.Kind.
func decodeByKind(trimmed, raw string, v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := parseBool(trimmed)
		if err != nil {
			return err
		}

		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(trimmed, 10, v.Type().Bits())
		if err != nil {
			return err
		}

		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(trimmed, 10, v.Type().Bits())
		if err != nil {
			return err
		}

		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := parseFloat(trimmed, v.Type().Bits())
		if err != nil {
			return err
		}

		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported scalar kind %s", v.Kind())
	}

	return nil
}

// parseBool accepts the XML Schema lexical space: true, false, 1, 0.
func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// parseFloat accepts INF, -INF and NaN besides Go float syntax.
func parseFloat(s string, bits int) (float64, error) {
	switch s {
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}

	return strconv.ParseFloat(s, bits)
}

// Encode formats v. Pointers are dereferenced; a nil pointer is an error.
func (d *Default) Encode(v reflect.Value) (string, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", &Error{Type: v.Type(), Err: fmt.Errorf("nil pointer")}
		}

		v = v.Elem()
	}

	if err := d.checkEnum(v.Type(), v); err != nil {
		return "", &Error{Type: v.Type(), Err: err}
	}

	s, err := d.encode(v)
	if err != nil {
		return "", &Error{Type: v.Type(), Err: err}
	}

	return s, nil
}

func (d *Default) encode(v reflect.Value) (string, error) {
	t := v.Type()
	if s, ok := d.custom[t]; ok {
		return s.Encode(v.Interface())
	}

	switch FromReflectType(t) {
	case KindTime:
		return v.Interface().(time.Time).Format(d.timeLayout), nil
	case KindDuration:
		return time.Duration(v.Int()).String(), nil
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.Bytes()), nil
	case KindText:
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}

		return string(b), nil
	case 0:
		return "", fmt.Errorf("unsupported scalar type %s", t)
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(v.Float(), t.Bits()), nil
	default:
		return "", fmt.Errorf("unsupported scalar kind %s", v.Kind())
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	}

	return strconv.FormatFloat(f, 'g', -1, bits)
}

func (d *Default) checkEnum(t reflect.Type, v reflect.Value) error {
	set, ok := d.enums[t]
	if !ok {
		return nil
	}

	if _, ok := set[v.String()]; !ok {
		return fmt.Errorf("value %q is not a member of enumeration %s", v.String(), t)
	}

	return nil
}
