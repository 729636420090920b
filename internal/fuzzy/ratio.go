package fuzzy

// Scorer returns the similarity of two processed strings in [0, 100].
type Scorer func(s1, s2 string) float64

// Ratio returns the normalized indel similarity of s1 and s2: 100 * 2*LCS / (len1+len2).
// Two empty strings are identical.
func Ratio(s1, s2 string) float64 {
	return ratioRunes([]rune(s1), []rune(s2))
}

func ratioRunes(a, b []rune) float64 {
	lensum := len(a) + len(b)
	if lensum == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(a, b)) / float64(lensum)
}

// normalizedIndel converts an indel distance over lensum runes into a 0-100 similarity.
func normalizedIndel(dist, lensum int) float64 {
	if lensum == 0 {
		return 100
	}
	return 100 * (1 - float64(dist)/float64(lensum))
}

// indelDistance is the number of insertions and deletions turning a into b.
func indelDistance(a, b []rune) int {
	return len(a) + len(b) - 2*lcsLength(a, b)
}

// lcsLength returns the length of the longest common subsequence of a and b.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// PartialRatio returns the best Ratio between the shorter string and every window of
// the longer one, including windows clipped at either edge.
func PartialRatio(s1, s2 string) float64 {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	best := partialWindows(a, b)
	if len(a) == len(b) && best < 100 {
		if swapped := partialWindows(b, a); swapped > best {
			best = swapped
		}
	}
	return best
}

// partialWindows slides needle (len m) over haystack (len n >= m).
func partialWindows(needle, haystack []rune) float64 {
	m, n := len(needle), len(haystack)
	best := 0.0
	consider := func(window []rune) bool {
		if score := ratioRunes(needle, window); score > best {
			best = score
		}
		return best == 100
	}

	for i := 1; i < m; i++ {
		if consider(haystack[:i]) {
			return best
		}
	}
	for i := 0; i+m <= n; i++ {
		if consider(haystack[i : i+m]) {
			return best
		}
	}
	for i := n - m + 1; i < n; i++ {
		if consider(haystack[i:]) {
			return best
		}
	}
	return best
}
