package agreement

import (
	"fmt"

	"github.com/vijay-prabhu/rfb-agreement/internal/annotation"
)

// DefaultThreshold is the similarity a pair match must exceed to count.
const DefaultThreshold = 90

// FrameAgreement holds the agreement scores for one frame, each in [0, 1].
type FrameAgreement struct {
	Key   float64 `json:"keys"`
	Val   float64 `json:"vals"`
	Pair  float64 `json:"pairs"`
	Total float64 `json:"total"`
}

var (
	// Unanimous is the agreement of a frame neither annotator annotated.
	Unanimous = FrameAgreement{Key: 1, Val: 1, Pair: 1, Total: 1}
	// Disjoint is the agreement of a frame only one annotator annotated.
	Disjoint = FrameAgreement{}
)

// IsPerfect reports whether all four scores are 1.
func (f FrameAgreement) IsPerfect() bool {
	return f == Unanimous
}

// Options configures a Scorer.
type Options struct {
	Matcher   MatcherOptions
	Threshold int
	Policy    Policy
}

// DefaultOptions mirrors the built-in configuration.
func DefaultOptions() Options {
	return Options{
		Matcher:   MatcherOptions{Process: true},
		Threshold: DefaultThreshold,
		Policy:    PolicyMean,
	}
}

// Scorer computes FrameAgreement values. It holds no per-frame state and is safe for
// concurrent use.
type Scorer struct {
	matcher   *Matcher
	threshold int
	policy    Policy
}

// NewScorer validates options and builds a Scorer.
func NewScorer(opts Options) (*Scorer, error) {
	if opts.Threshold < 0 || opts.Threshold > 100 {
		return nil, fmt.Errorf("threshold must be between 0 and 100, got %d", opts.Threshold)
	}
	if opts.Policy == "" {
		opts.Policy = PolicyMean
	}
	if _, err := ParsePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}
	m, err := NewMatcher(opts.Matcher)
	if err != nil {
		return nil, err
	}
	return &Scorer{matcher: m, threshold: opts.Threshold, policy: opts.Policy}, nil
}

// Matcher returns the scorer's pair matcher.
func (s *Scorer) Matcher() *Matcher {
	return s.matcher
}

// Policy returns the combination policy in use.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// Score compares two annotations. A nil or empty annotation counts as absent: two
// absent sides agree fully, one absent side disagrees fully.
func (s *Scorer) Score(a, b annotation.Annotation) (FrameAgreement, error) {
	switch absentA, absentB := len(a) == 0, len(b) == 0; {
	case absentA && absentB:
		return Unanimous, nil
	case absentA || absentB:
		return Disjoint, nil
	}
	return s.ScorePresent(a, b)
}

// ScorePresent compares two annotations that both carry content. An empty side is
// reported as ErrMatchingDegeneracy rather than scored.
func (s *Scorer) ScorePresent(a, b annotation.Annotation) (FrameAgreement, error) {
	key, err := KeyIOU(a, b)
	if err != nil {
		return FrameAgreement{}, fmt.Errorf("key agreement: %w", err)
	}
	val, err := ValueIOU(a, b)
	if err != nil {
		return FrameAgreement{}, fmt.Errorf("value agreement: %w", err)
	}
	pair, err := s.matcher.PairIOU(annotation.ExtractPairs(a), annotation.ExtractPairs(b), s.threshold)
	if err != nil {
		return FrameAgreement{}, fmt.Errorf("pair agreement: %w", err)
	}

	return FrameAgreement{
		Key:   key,
		Val:   val,
		Pair:  pair,
		Total: s.policy.Combine(key, val, pair),
	}, nil
}
