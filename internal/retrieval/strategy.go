package retrieval

import "fmt"

// Kind selects a retrieval strategy.
type Kind string

const (
	// KindThreshold returns every chunk at or above a similarity bar.
	KindThreshold Kind = "threshold"
	// KindMMR returns k chunks balancing relevance against redundancy.
	KindMMR Kind = "mmr"
)

// Strategy is a retrieval strategy with its tuning values. Sessions may
// carry their own Strategy to override the configured default.
type Strategy struct {
	Kind      Kind    `json:"strategy"`
	Threshold float32 `json:"threshold"` // threshold: minimum similarity, [0,1]
	K         int     `json:"k"`         // mmr: number of results
	Lambda    float64 `json:"lambda"`    // mmr: 0 favors pure relevance, 1 favors diversity
}

// DefaultStrategy mirrors the out-of-the-box retriever: similarity
// threshold 0.5.
func DefaultStrategy() Strategy {
	return Strategy{Kind: KindThreshold, Threshold: 0.5, K: 6, Lambda: 0.25}
}

// Validate checks the strategy's tuning values.
func (s Strategy) Validate() error {
	switch s.Kind {
	case KindThreshold:
		if s.Threshold < 0 || s.Threshold > 1 {
			return fmt.Errorf("threshold must be within [0,1], got %v", s.Threshold)
		}
	case KindMMR:
		if s.K <= 0 {
			return fmt.Errorf("k must be positive, got %d", s.K)
		}
		if s.Lambda < 0 || s.Lambda > 1 {
			return fmt.Errorf("lambda must be within [0,1], got %v", s.Lambda)
		}
	default:
		return fmt.Errorf("unknown strategy %q", s.Kind)
	}
	return nil
}
