package score

import "livescore/internal/product"

// Scorer computes a ranking score for a single product together with its terms.
type Scorer interface {
	Score(m product.Metric) int
	Breakdown(m product.Metric) Breakdown
}

var _ Scorer = (*Engine)(nil)
