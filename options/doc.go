// Package options provides the binding policy: how strictly documents are
// decoded, how duplicate and ambiguous choice members are treated, and how
// large the dispatcher cache is.
//
// A Policy is built with functional options or loaded from YAML:
//
//	choice-encode: strict        # strict | first
//	duplicate-choice: last-wins  # last-wins | first-wins | reject
//	lenient: [unknown-attributes, unknown-elements, text]
//	enforce-order: true
//	dispatch-cache-size: 1024
package options
