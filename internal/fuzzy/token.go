package fuzzy

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// TokenSortRatio compares the strings after sorting their whitespace-separated tokens.
func TokenSortRatio(s1, s2 string) float64 {
	return Ratio(sortedTokens(s1), sortedTokens(s2))
}

// TokenSetRatio compares the shared tokens of both strings with each side's
// remainder, so that extra words on one side do not drag the score down.
func TokenSetRatio(s1, s2 string) float64 {
	setA, setB := tokenSet(s1), tokenSet(s2)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersect, diffAB, diffBA := splitSets(setA, setB)
	if len(intersect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	diffABJoined := strings.Join(diffAB, " ")
	diffBAJoined := strings.Join(diffBA, " ")
	abLen := utf8.RuneCountInString(diffABJoined)
	baLen := utf8.RuneCountInString(diffBAJoined)
	sectLen := utf8.RuneCountInString(strings.Join(intersect, " "))

	// Separator between the intersection and the remainder, when both exist.
	sep := 0
	if sectLen > 0 {
		sep = 1
	}
	sectABLen := sectLen + sep + abLen
	sectBALen := sectLen + sep + baLen

	dist := indelDistance([]rune(diffABJoined), []rune(diffBAJoined))
	result := normalizedIndel(dist, sectABLen+sectBALen)
	if sectLen == 0 {
		return result
	}

	sectAB := normalizedIndel(sep+abLen, sectLen+sectABLen)
	sectBA := normalizedIndel(sep+baLen, sectLen+sectBALen)
	return max(result, sectAB, sectBA)
}

// PartialTokenRatio is PartialRatio over sorted tokens. Any shared token scores 100.
func PartialTokenRatio(s1, s2 string) float64 {
	tokensA, tokensB := strings.Fields(s1), strings.Fields(s2)
	setA, setB := tokenSet(s1), tokenSet(s2)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersect, diffAB, diffBA := splitSets(setA, setB)
	if len(intersect) > 0 {
		return 100
	}

	result := PartialRatio(sortedTokens(s1), sortedTokens(s2))
	if len(tokensA) == len(diffAB) && len(tokensB) == len(diffBA) {
		return result
	}
	return max(result, PartialRatio(strings.Join(diffAB, " "), strings.Join(diffBA, " ")))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// splitSets returns the sorted intersection and both sorted differences.
func splitSets(a, b map[string]struct{}) (intersect, diffAB, diffBA []string) {
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersect = append(intersect, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range b {
		if _, ok := a[tok]; !ok {
			diffBA = append(diffBA, tok)
		}
	}
	sort.Strings(intersect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)
	return intersect, diffAB, diffBA
}
