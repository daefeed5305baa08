// Package codec converts scalar values to and from their lexical text form.
//
// The binder and emitter only talk to the Codec interface. Default covers the
// Go primitive kinds (including named types over them, used for enumerations),
// time.Time, time.Duration, []byte (base64) and encoding.TextMarshaler types.
// Enumeration membership and custom per-type conversions are registered with
// options when the codec is built.
package codec
