// Package diagnostic provides the error taxonomy of the binding engine and the
// warning list collected in lenient mode.
//
// Every structural error is an *Error whose Code is itself an error, so callers
// can branch on the kind of failure:
//
//	if errors.Is(err, diagnostic.CodeMissingRequiredField) { ... }
//
// Errors raised while decoding carry the offending qualified name, the
// enclosing bound type and the document position when the tokenizer supplies
// one. Codec failures are wrapped with CodeInvalidValue and keep the
// underlying error reachable through errors.As.
package diagnostic
