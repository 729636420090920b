package fuzzy

import (
	"fmt"
	"math"
	"sort"
)

// Scorer names accepted by ScorerByName.
const (
	ScorerRatio             = "ratio"
	ScorerPartialRatio      = "partial_ratio"
	ScorerTokenSortRatio    = "token_sort_ratio"
	ScorerTokenSetRatio     = "token_set_ratio"
	ScorerPartialTokenRatio = "partial_token_ratio"
	ScorerWRatio            = "wratio"
)

var scorers = map[string]Scorer{
	ScorerRatio:             Ratio,
	ScorerPartialRatio:      PartialRatio,
	ScorerTokenSortRatio:    TokenSortRatio,
	ScorerTokenSetRatio:     TokenSetRatio,
	ScorerPartialTokenRatio: PartialTokenRatio,
	ScorerWRatio:            WRatio,
}

// asciiScorers fold their input to ASCII when processing is enabled.
var asciiScorers = map[string]bool{
	ScorerTokenSortRatio:    true,
	ScorerTokenSetRatio:     true,
	ScorerPartialTokenRatio: true,
	ScorerWRatio:            true,
}

// ForcesASCII reports whether the named scorer compares processed input as ASCII only.
func ForcesASCII(name string) bool {
	return asciiScorers[name]
}

// ScorerByName looks up a scorer by its configuration name.
func ScorerByName(name string) (Scorer, error) {
	s, ok := scorers[name]
	if !ok {
		return nil, fmt.Errorf("unknown scorer %q (valid: %v)", name, ScorerNames())
	}
	return s, nil
}

// ScorerNames returns the registered scorer names in sorted order.
func ScorerNames() []string {
	names := make([]string, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Similarity processes both strings and returns the scorer's result rounded to an
// integer in [0, 100]. Halves round to even.
func Similarity(scorer Scorer, processor Processor, s1, s2 string) int {
	if processor != nil {
		s1, s2 = processor(s1), processor(s2)
	}
	return round(scorer(s1, s2))
}

// ExtractOne returns the index and score of the best choice for query. The first
// choice reaching the maximum wins. It returns -1 when choices is empty.
func ExtractOne(query string, choices []string, scorer Scorer, processor Processor) (int, int) {
	if processor != nil {
		query = processor(query)
	}

	bestIdx, bestScore := -1, -1
	for i, choice := range choices {
		if processor != nil {
			choice = processor(choice)
		}
		score := round(scorer(query, choice))
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return -1, 0
	}
	return bestIdx, bestScore
}

func round(score float64) int {
	r := int(math.RoundToEven(score))
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	}
	return r
}
