package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"city", "city", 0},
		{"kitten", "sitting", 3},
		{"shipTo", "shipto", 1},
		{"flaw", "lawn", 2},
		{"straße", "strasse", 2},
		{"größe", "grösse", 2},
		{"名前", "名称", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			a, b := []rune(tt.a), []rune(tt.b)
			assert.Equal(t, tt.want, distance(a, b))
			assert.Equal(t, tt.want, distance(b, a))
		})
	}
}

func TestClosestNonASCII(t *testing.T) {
	got, ok := Closest("straße", []string{"street", "strasse"})
	assert.True(t, ok)
	assert.Equal(t, "strasse", got)

	got, ok = Closest("größ", []string{"größe", "grade"})
	assert.True(t, ok)
	assert.Equal(t, "größe", got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "productname", normalize("product-Name"))
	assert.Equal(t, "shipto", normalize("ship_to"))
	assert.Equal(t, "", normalize("-_."))
}

func TestClosest(t *testing.T) {
	names := []string{"name", "street", "city", "state", "zip"}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"cty", "city", true},
		{"City", "city", true},
		{"strete", "street", true},
		{"stat", "state", true},
		{"floor", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Closest(tt.name, names)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Closest("city", nil)
	assert.False(t, ok)
}
