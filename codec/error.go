package codec

import (
	"fmt"
	"reflect"
)

// Error reports a failed scalar conversion.
type Error struct {
	Text string
	Type reflect.Type
	Err  error
}

func (e *Error) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("cannot encode %s: %v", e.Type, e.Err)
	}

	return fmt.Sprintf("cannot decode %q as %s: %v", e.Text, e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
