// Package model resolves bound struct types into class models.
//
// A class model is the flattened, ordered list of field descriptors of one
// type: inherited fields first (an embedded base struct contributes its own
// model, and a field of the derived type with the same role and name replaces
// the inherited one in place), then the type's own fields. Each field is
// classified by the Go shape of its struct field (scalar, token list, record,
// variant, generic node, attribute map or mixed content) so the binder and the
// emitter never inspect struct tags or types again.
//
// Types are registered with a TypeSpec, either carrying an explicit
// descriptor table or leaving the table to be read from `bind` struct tags.
// Unregistered struct types reached through fields are resolved from their
// tags as anonymous types. Models are built once and cached; a Registry is
// safe for concurrent use.
package model
