// Package emitter writes bound records as markup.
//
// The emitter walks a record's class model in resolved field order:
// attributes first, then simple or mixed content, elements and wildcard
// content. Each record is checked before its element is opened (required
// fields, upper bounds, choice exclusivity), so an invalid record never
// produces a start tag. Nil occurrences of nillable fields are written with
// the writer's nil marker; absent ones are omitted.
//
// Variant values are written under their runtime type's own name when that
// type is one of the field's candidates. Any other registered type is written
// under the field name with an xsi:type marker, which the dispatcher honors on
// decode.
package emitter
