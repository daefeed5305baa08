package options

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDispatchCacheSize bounds the dispatcher's per-field selection cache.
	DefaultDispatchCacheSize = 1024
	// DefaultEnforceOrder enables sequence-group order checks on decode.
	DefaultEnforceOrder = true
)

// ChoiceEncodePolicy decides what the emitter does with a record that has more
// than one populated member of a choice group.
type ChoiceEncodePolicy uint8

const (
	// ChoiceStrict rejects the record with an ambiguous-choice error.
	ChoiceStrict ChoiceEncodePolicy = iota
	// ChoiceFirst emits the first populated member in declaration order and
	// silently skips the others.
	ChoiceFirst
)

// DuplicateChoicePolicy decides what the binder does when a document presents
// a second member of a choice group (or a repeated singular member).
type DuplicateChoicePolicy uint8

const (
	// DuplicateLastWins discards the earlier value and keeps the most recent one.
	DuplicateLastWins DuplicateChoicePolicy = iota
	// DuplicateFirstWins keeps the earlier value and skips the later element.
	DuplicateFirstWins
	// DuplicateReject fails with too-many-occurrences.
	DuplicateReject
)

// Policy carries the configurable behaviour of the binder, the emitter and the
// dispatcher. It is passed by value and treated as immutable.
type Policy struct {
	ChoiceEncode      ChoiceEncodePolicy    `yaml:"choice-encode"`
	DuplicateChoice   DuplicateChoicePolicy `yaml:"duplicate-choice"`
	Leniency          LeniencyEnum          `yaml:"lenient"`
	EnforceOrder      bool                  `yaml:"enforce-order"`
	DispatchCacheSize int                   `yaml:"dispatch-cache-size"`
}

// Default returns the strict default policy.
func Default() Policy {
	return Policy{
		ChoiceEncode:      ChoiceStrict,
		DuplicateChoice:   DuplicateLastWins,
		Leniency:          LeniencyNone,
		EnforceOrder:      DefaultEnforceOrder,
		DispatchCacheSize: DefaultDispatchCacheSize,
	}
}

// Option is a functional option that mutates a Policy during construction.
type Option func(*Policy)

// New constructs a Policy from the default and the given options.
func New(opts ...Option) Policy {
	p := Default()
	for _, opt := range opts {
		opt(&p)
	}

	if p.DispatchCacheSize <= 0 {
		p.DispatchCacheSize = DefaultDispatchCacheSize
	}

	return p
}

// WithChoiceEncode sets the encode-side choice policy.
func WithChoiceEncode(c ChoiceEncodePolicy) Option {
	return func(p *Policy) {
		p.ChoiceEncode = c
	}
}

// WithDuplicateChoice sets the decode-side duplicate choice policy.
func WithDuplicateChoice(d DuplicateChoicePolicy) Option {
	return func(p *Policy) {
		p.DuplicateChoice = d
	}
}

// WithLeniency sets the tolerated mismatches.
func WithLeniency(l LeniencyEnum) Option {
	return func(p *Policy) {
		p.Leniency = l
	}
}

// WithEnforceOrder toggles sequence-group order checks.
func WithEnforceOrder(enforce bool) Option {
	return func(p *Policy) {
		p.EnforceOrder = enforce
	}
}

// WithDispatchCacheSize sets the dispatcher cache size.
// A non-positive value resets to the default.
func WithDispatchCacheSize(size int) Option {
	return func(p *Policy) {
		if size <= 0 {
			size = DefaultDispatchCacheSize
		}
		p.DispatchCacheSize = size
	}
}

// String returns the YAML name of the policy.
func (c ChoiceEncodePolicy) String() string {
	switch c {
	case ChoiceStrict:
		return "strict"
	case ChoiceFirst:
		return "first"
	default:
		return fmt.Sprintf("ChoiceEncodePolicy(%d)", c)
	}
}

// ParseChoiceEncode parses a YAML name.
func ParseChoiceEncode(s string) (ChoiceEncodePolicy, error) {
	switch s {
	case "strict":
		return ChoiceStrict, nil
	case "first", "skip":
		return ChoiceFirst, nil
	default:
		return 0, fmt.Errorf("unknown choice-encode policy %q", s)
	}
}

// UnmarshalYAML decodes the policy name.
func (c *ChoiceEncodePolicy) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseChoiceEncode(s)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// MarshalYAML encodes the policy name.
func (c ChoiceEncodePolicy) MarshalYAML() (any, error) {
	return c.String(), nil
}

// String returns the YAML name of the policy.
func (d DuplicateChoicePolicy) String() string {
	switch d {
	case DuplicateLastWins:
		return "last-wins"
	case DuplicateFirstWins:
		return "first-wins"
	case DuplicateReject:
		return "reject"
	default:
		return fmt.Sprintf("DuplicateChoicePolicy(%d)", d)
	}
}

// ParseDuplicateChoice parses a YAML name.
func ParseDuplicateChoice(s string) (DuplicateChoicePolicy, error) {
	switch s {
	case "last-wins":
		return DuplicateLastWins, nil
	case "first-wins":
		return DuplicateFirstWins, nil
	case "reject":
		return DuplicateReject, nil
	default:
		return 0, fmt.Errorf("unknown duplicate-choice policy %q", s)
	}
}

// UnmarshalYAML decodes the policy name.
func (d *DuplicateChoicePolicy) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseDuplicateChoice(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// MarshalYAML encodes the policy name.
func (d DuplicateChoicePolicy) MarshalYAML() (any, error) {
	return d.String(), nil
}
