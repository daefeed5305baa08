package codec_test

import (
	"errors"
	"fmt"
	"math"
	"net/netip"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-binder/codec"
)

type Colour string

type Level int

type Point struct{ X, Y int }

func Example() {
	c := codec.New(codec.WithEnum[Colour]("red", "green"))

	v, _ := c.Decode(" 42 ", reflect.TypeFor[int]())
	fmt.Println(v.Interface())

	s, _ := c.Encode(reflect.ValueOf(Colour("red")))
	fmt.Println(s)

	_, err := c.Encode(reflect.ValueOf(Colour("blue")))
	fmt.Println(err != nil)

	list, _ := codec.DecodeTokens(c, " A  B\tC ", reflect.TypeFor[[]string]())
	fmt.Println(list.Interface())
	// Output:
	// 42
	// red
	// true
	// [A B C]
}

func TestDecodeEncode(t *testing.T) {
	addr := netip.MustParseAddr("10.0.0.1")
	stamp := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		text  string
		value any
		out   string
	}{
		{"int", " -12 ", -12, "-12"},
		{"uint8", "255", uint8(255), "255"},
		{"float", "1.5", 1.5, "1.5"},
		{"float32", "0.25", float32(0.25), "0.25"},
		{"infinity", "INF", math.Inf(1), "INF"},
		{"bool word", "true", true, "true"},
		{"bool digit", "0", false, "false"},
		{"string keeps spaces", " a b ", " a b ", " a b "},
		{"named int", "3", Level(3), "3"},
		{"time", "2024-03-01T10:30:00Z", stamp, "2024-03-01T10:30:00Z"},
		{"duration", "1m30s", 90 * time.Second, "1m30s"},
		{"bytes", "aGk=", []byte("hi"), "aGk="},
		{"text marshaler", "10.0.0.1", addr, "10.0.0.1"},
	}

	c := codec.New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := reflect.TypeOf(tt.value)
			require.True(t, c.Supports(typ))

			v, err := c.Decode(tt.text, typ)
			require.NoError(t, err)
			assert.Equal(t, tt.value, v.Interface())

			s, err := c.Encode(v)
			require.NoError(t, err)
			assert.Equal(t, tt.out, s)
		})
	}
}

func TestDecodePointer(t *testing.T) {
	c := codec.New()

	v, err := c.Decode("7", reflect.TypeFor[*int]())
	require.NoError(t, err)
	assert.Equal(t, 7, *v.Interface().(*int))

	s, err := c.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	_, err = c.Encode(reflect.ValueOf((*int)(nil)))
	require.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	c := codec.New(codec.WithEnum[Colour]("red"))

	tests := []struct {
		name string
		text string
		typ  reflect.Type
	}{
		{"int", "x", reflect.TypeFor[int]()},
		{"overflow", "300", reflect.TypeFor[uint8]()},
		{"bool", "yes", reflect.TypeFor[bool]()},
		{"enum", "blue", reflect.TypeFor[Colour]()},
		{"struct", "", reflect.TypeFor[Point]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.text, tt.typ)
			require.Error(t, err)

			var cerr *codec.Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.typ, cerr.Type)
		})
	}

	assert.False(t, c.Supports(reflect.TypeFor[Point]()))
	assert.False(t, c.Supports(reflect.TypeFor[[]string]()))
}

func TestCustomScalar(t *testing.T) {
	c := codec.New(codec.WithScalar(reflect.TypeFor[Point](), codec.Scalar{
		Decode: func(text string) (any, error) {
			var p Point
			_, err := fmt.Sscanf(text, "%d,%d", &p.X, &p.Y)

			return p, err
		},
		Encode: func(v any) (string, error) {
			p := v.(Point)
			return fmt.Sprintf("%d,%d", p.X, p.Y), nil
		},
	}))

	require.True(t, c.Supports(reflect.TypeFor[Point]()))

	v, err := c.Decode("3,4", reflect.TypeFor[Point]())
	require.NoError(t, err)
	assert.Equal(t, Point{3, 4}, v.Interface())

	s, err := c.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "3,4", s)
}

func TestTokens(t *testing.T) {
	c := codec.New()

	assert.Equal(t, []string{"A", "B", "C"}, codec.SplitTokens("\n A B  C\t"))
	assert.Equal(t, "A B C", codec.JoinTokens([]string{"A", "B", "C"}))

	v, err := codec.DecodeTokens(c, "1 2 3", reflect.TypeFor[[]int]())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v.Interface())

	s, err := codec.EncodeTokens(c, v)
	require.NoError(t, err)
	assert.Equal(t, "1 2 3", s)

	_, err = codec.DecodeTokens(c, "1 x", reflect.TypeFor[[]int]())
	require.Error(t, err)

	_, err = codec.DecodeTokens(c, "1", reflect.TypeFor[int]())
	require.Error(t, err)

	v, err = codec.DecodeTokens(c, "   ", reflect.TypeFor[[]string]())
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
}

func TestTimeLayout(t *testing.T) {
	c := codec.New(codec.WithTimeLayout(time.DateOnly))

	v, err := c.Decode("2024-03-01", reflect.TypeFor[time.Time]())
	require.NoError(t, err)

	s, err := c.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", s)
	assert.True(t, strings.HasPrefix(v.Interface().(time.Time).String(), "2024-03-01"))
}

func ExampleFromReflectType() {
	fmt.Println(codec.FromReflectType(reflect.TypeFor[int]()))
	fmt.Println(codec.FromReflectType(reflect.TypeFor[Colour]()))
	fmt.Println(codec.FromReflectType(reflect.TypeFor[time.Duration]()))
	fmt.Println(codec.FromReflectType(reflect.TypeFor[Point]()))
	// Output:
	// KindInt
	// KindPrimitiveEnum
	// KindDuration
	// KindEnum(0)
}
