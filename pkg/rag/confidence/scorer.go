// Package confidence derives a scalar retrieval-quality score from a
// ranked candidate set. The score is a proxy for retrieval quality, not
// a calibrated probability.
package confidence

import "industrial-ai-be/pkg/store"

// Score returns the confidence for a ranked chunk set: the top candidate's
// similarity clipped to [0,1]. An empty set yields exactly 0.0.
// Pure function, no side effects.
func Score(chunks []store.Chunk) float64 {
	if len(chunks) == 0 {
		return 0.0
	}

	max := 0.0
	for _, c := range chunks {
		if c.SimilarityScore > max {
			max = c.SimilarityScore
		}
	}

	if max > 1.0 {
		return 1.0
	}
	return max
}
