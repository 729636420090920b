// Package agreement scores how closely two annotators' role-filler bindings agree on a
// single frame.
//
// Each frame gets four scores in [0, 1]:
//   - key: share of annotator A's roles that annotator B also used
//   - val: share of A's filler lists that B produced verbatim
//   - pair: fuzzy-matched overlap of (role, filler) pairs
//   - total: the key, val and pair scores combined under a Policy
//
// Matching is deliberately greedy and one-directional: every pair of A is matched
// against its nearest pair in B, and a single pair of B may serve several pairs of A.
// Scores are therefore not symmetric; Score(a, b) may differ from Score(b, a).
package agreement
