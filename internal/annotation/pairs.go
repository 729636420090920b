package annotation

import "sort"

// ExtractPairs flattens an annotation into one Pair per filler, ordered by role.
// Fillers of the same role keep their original relative order.
func ExtractPairs(a Annotation) []Pair {
	pairs := make([]Pair, 0, a.FillerCount())
	for role, fillers := range a {
		for _, filler := range fillers {
			pairs = append(pairs, Pair{Role: role, Filler: filler})
		}
	}
	// Map iteration is random, but each role's fillers were appended contiguously and
	// in order, so a stable sort on role alone yields a deterministic sequence.
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Role < pairs[j].Role
	})
	return pairs
}
