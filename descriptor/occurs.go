package descriptor

import (
	"fmt"
	"strconv"
)

// Unbounded is the Max of an occurrence range without upper limit.
const Unbounded = -1

// Occurs is a cardinality range. The zero value means "unspecified" and is
// filled from the field's Go type: slices default to 0..unbounded, everything
// else to 0..1.
type Occurs struct {
	Min int
	Max int
}

var (
	Once      = Occurs{Min: 1, Max: 1}
	Optional  = Occurs{Min: 0, Max: 1}
	Many      = Occurs{Min: 0, Max: Unbounded}
	OneOrMore = Occurs{Min: 1, Max: Unbounded}
)

// IsZero reports whether the range is unspecified.
func (o Occurs) IsZero() bool {
	return o.Min == 0 && o.Max == 0
}

// IsUnbounded reports whether there is no upper limit.
func (o Occurs) IsUnbounded() bool {
	return o.Max == Unbounded
}

// IsMany reports whether the field holds a sequence.
func (o Occurs) IsMany() bool {
	return o.IsUnbounded() || o.Max > 1
}

// Allows reports whether n occurrences fit the upper bound.
func (o Occurs) Allows(n int) bool {
	return o.IsUnbounded() || n <= o.Max
}

// Validate checks min <= max.
func (o Occurs) Validate() error {
	if o.Min < 0 {
		return fmt.Errorf("negative min occurs %d", o.Min)
	}

	if o.Max == 0 || (o.Max < 0 && o.Max != Unbounded) {
		return fmt.Errorf("invalid max occurs %d", o.Max)
	}

	if !o.IsUnbounded() && o.Min > o.Max {
		return fmt.Errorf("min occurs %d exceeds max occurs %d", o.Min, o.Max)
	}

	return nil
}

// String returns "min..max".
func (o Occurs) String() string {
	max := strconv.Itoa(o.Max)
	if o.IsUnbounded() {
		max = "unbounded"
	}

	return strconv.Itoa(o.Min) + ".." + max
}

// ParseMax parses a max occurs value, accepting "unbounded".
func ParseMax(s string) (int, error) {
	if s == "unbounded" || s == "*" {
		return Unbounded, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid max occurs %q: %w", s, err)
	}

	return n, nil
}
