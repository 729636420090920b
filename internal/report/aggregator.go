package report

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
)

// ErrEmptyCorpus is returned when there are no frames to aggregate. It is distinct
// from a corpus whose frames all scored zero.
var ErrEmptyCorpus = errors.New("no frames to aggregate")

// Averages holds one value per agreement metric.
type Averages struct {
	Keys  float64 `json:"keys"`
	Vals  float64 `json:"vals"`
	Pairs float64 `json:"pairs"`
	Total float64 `json:"total"`
}

// CorpusMetrics summarizes agreement across every frame of a run.
type CorpusMetrics struct {
	ZeroAgreement    float64  `json:"zero_agreement"`
	PerfectAgreement float64  `json:"perfect_agreement"`
	Averages         Averages `json:"averages"`
}

// Buckets partitions frames by total score.
type Buckets struct {
	Zero    int `json:"zero"`
	Partial int `json:"partial"`
	Perfect int `json:"perfect"`
}

// Accumulator collects per-frame scores. The zero value is ready to use.
type Accumulator struct {
	keys, vals, pairs, totals []float64
	buckets                   Buckets
}

// Add records one frame's scores.
func (a *Accumulator) Add(f agreement.FrameAgreement) {
	a.keys = append(a.keys, f.Key)
	a.vals = append(a.vals, f.Val)
	a.pairs = append(a.pairs, f.Pair)
	a.totals = append(a.totals, f.Total)

	switch f.Total {
	case 0:
		a.buckets.Zero++
	case 1:
		a.buckets.Perfect++
	default:
		a.buckets.Partial++
	}
}

// Len returns the number of frames recorded.
func (a *Accumulator) Len() int {
	return len(a.totals)
}

// Buckets returns frame counts by total score.
func (a *Accumulator) Buckets() Buckets {
	return a.buckets
}

// Totals returns the recorded total scores in insertion order.
func (a *Accumulator) Totals() []float64 {
	return a.totals
}

// Metrics computes the corpus summary. Every recorded frame counts toward the
// denominators, including frames one or both annotators left out.
func (a *Accumulator) Metrics() (CorpusMetrics, error) {
	n := a.Len()
	if n == 0 {
		return CorpusMetrics{}, ErrEmptyCorpus
	}
	return CorpusMetrics{
		ZeroAgreement:    float64(a.buckets.Zero) / float64(n),
		PerfectAgreement: float64(a.buckets.Perfect) / float64(n),
		Averages: Averages{
			Keys:  stat.Mean(a.keys, nil),
			Vals:  stat.Mean(a.vals, nil),
			Pairs: stat.Mean(a.pairs, nil),
			Total: stat.Mean(a.totals, nil),
		},
	}, nil
}

// Spread returns the sample standard deviation of each metric. It is zero for fewer
// than two frames.
func (a *Accumulator) Spread() Averages {
	if a.Len() < 2 {
		return Averages{}
	}
	return Averages{
		Keys:  stat.StdDev(a.keys, nil),
		Vals:  stat.StdDev(a.vals, nil),
		Pairs: stat.StdDev(a.pairs, nil),
		Total: stat.StdDev(a.totals, nil),
	}
}

// Accumulate feeds every result into a new Accumulator in GUID order.
func Accumulate(results map[string]agreement.FrameAgreement) *Accumulator {
	acc := &Accumulator{}
	for _, guid := range SortedGUIDs(results) {
		acc.Add(results[guid])
	}
	return acc
}

// Aggregate computes corpus metrics for a set of per-frame results.
func Aggregate(results map[string]agreement.FrameAgreement) (CorpusMetrics, error) {
	return Accumulate(results).Metrics()
}

// Summary is the full corpus report: metrics plus frame buckets and spread.
type Summary struct {
	Frames  int           `json:"frames"`
	Metrics CorpusMetrics `json:"metrics"`
	Buckets Buckets       `json:"buckets"`
	Spread  Averages      `json:"spread"`
}

// Summary computes metrics and collects buckets and spread in one value.
func (a *Accumulator) Summary() (Summary, error) {
	m, err := a.Metrics()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Frames:  a.Len(),
		Metrics: m,
		Buckets: a.buckets,
		Spread:  a.Spread(),
	}, nil
}
