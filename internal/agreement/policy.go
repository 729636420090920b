package agreement

import "fmt"

// Policy selects how the key, val and pair scores combine into a frame's total.
type Policy string

const (
	// PolicyMean averages the component scores.
	PolicyMean Policy = "mean"
	// PolicyProduct multiplies them; the total never exceeds the weakest component.
	PolicyProduct Policy = "product"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyMean, PolicyProduct:
		return p, nil
	default:
		return "", fmt.Errorf("unknown combination policy %q (use mean or product)", s)
	}
}

// Combine folds the component scores into one value.
func (p Policy) Combine(scores ...float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	switch p {
	case PolicyProduct:
		out := 1.0
		for _, s := range scores {
			out *= s
		}
		return out
	default:
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		return sum / float64(len(scores))
	}
}
