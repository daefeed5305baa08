// Package dispatch selects the concrete type of a polymorphic element.
//
// Selection, given the candidate types of a field, the element's tag and an
// optional explicit type hint (xsi:type):
//
//  1. a hint naming a registered type that is a candidate, or extends one,
//     wins;
//  2. otherwise the first candidate whose own name equals the tag;
//  3. otherwise the first candidate that declares an element field, or a
//     substitution name, equal to the tag;
//  4. otherwise the selection fails with an unknown-variant error.
//
// Candidate order is the declaration order, so the result never depends on
// the order unrelated types were registered in. Per-field selections are
// memoized in an LRU cache.
package dispatch
