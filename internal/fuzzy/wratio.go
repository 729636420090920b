package fuzzy

import "unicode/utf8"

// unbaseScale penalizes token-based scores against the plain ratio.
const unbaseScale = 0.95

// WRatio picks the most suitable scorer for the pair based on their length ratio.
// Strings of similar length are compared whole and by tokens; when one is much longer
// the partial scorers take over with a penalty.
func WRatio(s1, s2 string) float64 {
	len1, len2 := utf8.RuneCountInString(s1), utf8.RuneCountInString(s2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	lenRatio := float64(max(len1, len2)) / float64(min(len1, len2))
	end := Ratio(s1, s2)

	if lenRatio < 1.5 {
		token := max(TokenSortRatio(s1, s2), TokenSetRatio(s1, s2))
		return max(end, token*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= 8.0 {
		partialScale = 0.6
	}
	end = max(end, PartialRatio(s1, s2)*partialScale)
	return max(end, PartialTokenRatio(s1, s2)*unbaseScale*partialScale)
}
