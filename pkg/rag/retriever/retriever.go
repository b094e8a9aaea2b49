package retriever

import (
	"context"

	"industrial-ai-be/pkg/store"
)

// Retriever is the polymorphic retrieval capability: any backend exposing
// a ranked similarity search over a query vector satisfies it.
type Retriever interface {
	// Retrieve returns candidate chunks ordered by descending similarity.
	// k is the maximum number of candidates; matchThreshold is the minimum
	// similarity to include (0.0 accepts all ranked results).
	Retrieve(ctx context.Context, queryVector []float32, k int, matchThreshold float64) ([]store.Chunk, error)
}
