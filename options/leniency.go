package options

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// LeniencyEnum selects which document mismatches are tolerated with a warning
// instead of aborting the decode.
type LeniencyEnum int

const (
	LenientUnknownAttributes LeniencyEnum = 1 << iota // attribute matching no field and no attribute wildcard: warn and drop
	LenientUnknownElements                            // element matching no field and no wildcard: warn and skip its subtree
	LenientText                                       // character data in element-only content: warn and drop

	LeniencyAll  LeniencyEnum = (1 << iota) - 1 // all mismatches tolerated
	LeniencyNone LeniencyEnum = 0               // strict decoding
)

type leniencyName struct {
	name string
	flag LeniencyEnum
}

var leniencyNames = []leniencyName{
	{"unknown-attributes", LenientUnknownAttributes},
	{"unknown-elements", LenientUnknownElements},
	{"text", LenientText},
}

// Has reports whether every bit of flag is set.
func (l LeniencyEnum) Has(flag LeniencyEnum) bool {
	return l&flag == flag
}

// Names returns the names of the set flags in declaration order.
func (l LeniencyEnum) Names() []string {
	var names []string
	for _, n := range leniencyNames {
		if l.Has(n.flag) {
			names = append(names, n.name)
		}
	}

	return names
}

// String joins the flag names with "|".
func (l LeniencyEnum) String() string {
	if l == LeniencyNone {
		return "none"
	}

	return strings.Join(l.Names(), "|")
}

// ParseLeniency combines flag names; "all" and "none" are accepted.
func ParseLeniency(names ...string) (LeniencyEnum, error) {
	var l LeniencyEnum

	for _, name := range names {
		switch name {
		case "all":
			l |= LeniencyAll
			continue
		case "none", "":
			continue
		}

		idx := slices.IndexFunc(leniencyNames, func(n leniencyName) bool {
			return n.name == name
		})
		if idx < 0 {
			return 0, fmt.Errorf("unknown leniency %q", name)
		}

		l |= leniencyNames[idx].flag
	}

	return l, nil
}

// UnmarshalYAML accepts a single name or a list of names.
func (l *LeniencyEnum) UnmarshalYAML(node *yaml.Node) error {
	var names []string

	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}

		names = []string{s}
	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return err
		}
	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}

	parsed, err := ParseLeniency(names...)
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}

// MarshalYAML writes the flag names as a list.
func (l LeniencyEnum) MarshalYAML() (any, error) {
	if l == LeniencyNone {
		return "none", nil
	}

	return l.Names(), nil
}
