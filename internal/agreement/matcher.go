package agreement

import (
	"fmt"

	"github.com/vijay-prabhu/rfb-agreement/internal/annotation"
	"github.com/vijay-prabhu/rfb-agreement/internal/fuzzy"
)

// DefaultSeparator joins a pair's role and filler into one comparison string.
const DefaultSeparator = "_"

// MatcherOptions configures a Matcher.
type MatcherOptions struct {
	// Scorer is a fuzzy scorer name; empty selects fuzzy.ScorerWRatio.
	Scorer string
	// Process normalizes case and punctuation before scoring. The weighted and
	// token scorers also drop non-ASCII runes.
	Process bool
	// Separator defaults to DefaultSeparator.
	Separator string
}

// Matcher compares role-filler pairs by fuzzy string similarity.
type Matcher struct {
	scorer    fuzzy.Scorer
	processor fuzzy.Processor
	separator string
}

// Match is the best candidate found for a query pair.
type Match struct {
	Pair  annotation.Pair
	Index int
	Score int
}

// NewMatcher builds a Matcher from options.
func NewMatcher(opts MatcherOptions) (*Matcher, error) {
	name := opts.Scorer
	if name == "" {
		name = fuzzy.ScorerWRatio
	}
	scorer, err := fuzzy.ScorerByName(name)
	if err != nil {
		return nil, err
	}

	m := &Matcher{
		scorer:    scorer,
		processor: fuzzy.NoProcess,
		separator: opts.Separator,
	}
	if opts.Process {
		m.processor = fuzzy.DefaultProcess
		if fuzzy.ForcesASCII(name) {
			m.processor = fuzzy.ASCIIProcess
		}
	}
	if m.separator == "" {
		m.separator = DefaultSeparator
	}
	return m, nil
}

// Similarity returns the similarity of a and b in [0, 100].
func (m *Matcher) Similarity(a, b string) int {
	return fuzzy.Similarity(m.scorer, m.processor, a, b)
}

// BestMatch returns the candidate most similar to query. Ties go to the earliest
// candidate.
func (m *Matcher) BestMatch(query annotation.Pair, candidates []annotation.Pair) (Match, error) {
	if len(candidates) == 0 {
		return Match{}, fmt.Errorf("%w: no candidates for %s", ErrMatchingDegeneracy, query)
	}
	return m.bestMatch(query, candidates, m.keys(candidates)), nil
}

func (m *Matcher) bestMatch(query annotation.Pair, candidates []annotation.Pair, keys []string) Match {
	idx, score := fuzzy.ExtractOne(m.key(query), keys, m.scorer, m.processor)
	return Match{Pair: candidates[idx], Index: idx, Score: score}
}

func (m *Matcher) key(p annotation.Pair) string {
	return p.Role + m.separator + p.Filler
}

func (m *Matcher) keys(pairs []annotation.Pair) []string {
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = m.key(p)
	}
	return keys
}
