package agreement

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vijay-prabhu/rfb-agreement/internal/annotation"
)

// ErrMatchingDegeneracy is returned when an overlap is computed against an empty side.
var ErrMatchingDegeneracy = errors.New("agreement undefined for an empty annotation")

// membershipIOU returns the share of items in seqA that have an equal item in seqB.
// The denominator is len(seqA), not the size of the union.
func membershipIOU[T any](seqA, seqB []T, equal func(T, T) bool) (float64, error) {
	if len(seqA) == 0 || len(seqB) == 0 {
		return 0, fmt.Errorf("%w: %d vs %d items", ErrMatchingDegeneracy, len(seqA), len(seqB))
	}
	matched := 0
	for _, x := range seqA {
		if slices.ContainsFunc(seqB, func(y T) bool { return equal(x, y) }) {
			matched++
		}
	}
	return float64(matched) / float64(len(seqA)), nil
}

// KeyIOU is the share of a's roles that b also uses.
func KeyIOU(a, b annotation.Annotation) (float64, error) {
	return membershipIOU(a.Roles(), b.Roles(), func(x, y string) bool { return x == y })
}

// ValueIOU is the share of a's filler lists that appear verbatim, in the same order,
// among b's filler lists. Roles are ignored.
func ValueIOU(a, b annotation.Annotation) (float64, error) {
	return membershipIOU(fillerLists(a), fillerLists(b), func(x, y []string) bool { return slices.Equal(x, y) })
}

func fillerLists(a annotation.Annotation) [][]string {
	lists := make([][]string, 0, len(a))
	for _, role := range a.Roles() {
		lists = append(lists, a[role])
	}
	return lists
}

// PairIOU matches every pair of seqA to its most similar pair in seqB. Matches scoring
// above threshold contribute score/100 to the intersection; every pair of seqA adds
// one to the union.
func (m *Matcher) PairIOU(seqA, seqB []annotation.Pair, threshold int) (float64, error) {
	if len(seqA) == 0 || len(seqB) == 0 {
		return 0, fmt.Errorf("%w: %d vs %d pairs", ErrMatchingDegeneracy, len(seqA), len(seqB))
	}

	keysB := m.keys(seqB)
	var intersection, union float64
	for _, pair := range seqA {
		match := m.bestMatch(pair, seqB, keysB)
		if match.Score > threshold {
			intersection += float64(match.Score) / 100
		}
		union++
	}
	return intersection / union, nil
}
