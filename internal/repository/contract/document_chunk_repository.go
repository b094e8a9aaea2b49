package contract

import (
	"context"

	"industrial-ai-be/internal/model"
)

// ScoredDocumentChunk wraps DocumentChunk with its similarity score
type ScoredDocumentChunk struct {
	Chunk      *model.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	// SearchSimilarWithScore returns chunks with their similarity scores,
	// ordered by descending similarity and filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredDocumentChunk, error)

	Count(ctx context.Context) (int64, error)
}
