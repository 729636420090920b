package agreement

import "time"

// Phase names a stage of an agreement run.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseScoring     Phase = "scoring"
	PhaseAggregating Phase = "aggregating"
)

// Progress reports how far a phase has advanced.
type Progress struct {
	Phase     Phase
	Current   int
	Total     int
	StartedAt time.Time
}

// ProgressCallback receives progress updates. It may be called from several
// goroutines, but never concurrently.
type ProgressCallback func(Progress)

// ETA returns the estimated time remaining based on current progress
func (p Progress) ETA() time.Duration {
	if p.Current == 0 || p.Total == 0 || p.StartedAt.IsZero() {
		return 0
	}
	elapsed := time.Since(p.StartedAt)
	rate := float64(p.Current) / elapsed.Seconds()
	if rate <= 0 {
		return 0
	}
	remaining := p.Total - p.Current
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}

// Percentage returns the completion percentage (0-100)
func (p Progress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Current * 100) / p.Total
}
