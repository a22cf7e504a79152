// Package textutil provides the text helpers shared by the resolver, the
// scorer and the property formatter.
//
// The primary use cases are:
//   - Normalizing titles into word sequences for exact-match verification
//   - Normalizing partial dates (year, year-month) to period boundaries
//
// Title normalization lowercases text, treats every rune that is not a letter
// or digit as a separator, and drops empty words. Two titles match when their
// word sequences are identical; there is no fuzzy or edit-distance fallback.
package textutil
