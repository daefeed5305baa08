// Package markup defines the document-level vocabulary shared by the binder and
// the emitter.
//
// Key types:
//   - QName: namespace identifier + local name (prefixes are always resolved)
//   - Event: one tokenizer event (StartTag, Text, EndTag, EndDocument)
//   - Source: pull interface over a tokenizer
//   - Writer: the symmetric write calls used by the emitter
//   - Node: a generically captured element, used by wildcard fields
//   - Mixed: interleaved text and element values of a mixed type
//   - Recorder: a Writer that records events and replays them as a Source
package markup
