package descriptor

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagKey is the struct tag key read by FromTag.
const TagKey = "bind"

// FromTag parses the `bind` tag of a struct field. The first item is the role,
// the rest are options:
//
//	name=<local>  ns=<namespace>  min=<n>  max=<n|unbounded>
//	required  nillable  group=<id>  choice  tokens  default=<lexical>
//
// ok is false when the field carries no tag or the tag is "-". The local name
// of a named role defaults to the Go field name.
func FromTag(f reflect.StructField) (Descriptor, bool, error) {
	tag, found := f.Tag.Lookup(TagKey)
	if !found || tag == "-" {
		return Descriptor{}, false, nil
	}

	parts := strings.Split(tag, ",")
	role, ok := ParseRole(strings.TrimSpace(parts[0]))
	if !ok {
		return Descriptor{}, false, fmt.Errorf("field %s: unknown role %q", f.Name, parts[0])
	}

	d := Descriptor{Field: f.Name, Role: role}
	if role.IsNamed() {
		d.Name = f.Name
	}

	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		if err := applyTagOption(&d, key, value); err != nil {
			return Descriptor{}, false, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}

	return d, true, nil
}

func applyTagOption(d *Descriptor, key, value string) error {
	var err error

	switch key {
	case "":
	case "name":
		d.Name = value
	case "ns":
		d.Namespace = value
	case "min":
		d.Occurs.Min, err = strconv.Atoi(value)
	case "max":
		d.Occurs.Max, err = ParseMax(value)
	case "required":
		d.Required = true
	case "nillable":
		d.Nillable = true
	case "group":
		d.Group, err = strconv.Atoi(value)
	case "choice":
		d.Choice = true
	case "tokens":
		d.Tokens = true
	case "default":
		d.Default = value
	default:
		return fmt.Errorf("unknown tag option %q", key)
	}

	if err != nil {
		return fmt.Errorf("tag option %s: %w", key, err)
	}

	return nil
}
