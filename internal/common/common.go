// Package common holds small helpers shared by the binding packages.
package common

// UnknownStr is the String() of enum values outside their defined range.
const UnknownStr = "unknown"

// IsEmpty reports whether s has no elements.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsMultiple reports whether s has more than one element.
func IsMultiple[S ~[]E, E any](s S) bool {
	return len(s) > 1
}
