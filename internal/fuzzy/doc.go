// Package fuzzy implements approximate string similarity scoring on a 0-100 scale.
//
// The scorers follow the familiar "ratio" family:
//   - Ratio: normalized indel similarity of the two strings
//   - PartialRatio: best Ratio of the shorter string against windows of the longer
//   - TokenSortRatio / TokenSetRatio: Ratio over whitespace tokens, order-insensitive
//   - WRatio: a weighted combination that picks the most appropriate of the above
//
// Scorers operate on already-processed text. Callers normally go through Similarity or
// ExtractOne, which apply a Processor first and round the result to an integer.
package fuzzy
