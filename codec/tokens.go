package codec

import (
	"fmt"
	"reflect"
	"strings"
)

// SplitTokens splits a whitespace-delimited list.
func SplitTokens(s string) []string {
	return strings.Fields(s)
}

// JoinTokens joins list items with single spaces.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

// DecodeTokens decodes a whitespace-delimited list into a new slice of type t.
func DecodeTokens(c Codec, text string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Slice {
		return reflect.Value{}, fmt.Errorf("token list target %s is not a slice", t)
	}

	tokens := SplitTokens(text)
	out := reflect.MakeSlice(t, 0, len(tokens))

	for _, tok := range tokens {
		v, err := c.Decode(tok, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		out = reflect.Append(out, v)
	}

	return out, nil
}

// EncodeTokens encodes every item of the slice v and joins them.
func EncodeTokens(c Codec, v reflect.Value) (string, error) {
	tokens := make([]string, 0, v.Len())

	for i := range v.Len() {
		s, err := c.Encode(v.Index(i))
		if err != nil {
			return "", err
		}

		tokens = append(tokens, s)
	}

	return JoinTokens(tokens), nil
}
