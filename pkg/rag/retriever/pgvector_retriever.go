package retriever

import (
	"context"

	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/repository/contract"
	"industrial-ai-be/pkg/store"
)

// PgVectorRetriever adapts the pgvector-backed chunk repository to the
// Retriever contract. Stateless; one network call per Retrieve.
type PgVectorRetriever struct {
	chunkRepo contract.DocumentChunkRepository
}

var _ Retriever = &PgVectorRetriever{}

func NewPgVectorRetriever(chunkRepo contract.DocumentChunkRepository) *PgVectorRetriever {
	return &PgVectorRetriever{chunkRepo: chunkRepo}
}

func (r *PgVectorRetriever) Retrieve(ctx context.Context, queryVector []float32, k int, matchThreshold float64) ([]store.Chunk, error) {
	scored, err := r.chunkRepo.SearchSimilarWithScore(ctx, queryVector, k, matchThreshold)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindRetrieval, "vector search failed", err)
	}

	chunks := make([]store.Chunk, 0, len(scored))
	for _, res := range scored {
		if res.Chunk == nil {
			return nil, apperror.New(apperror.KindRetrieval, "vector search returned malformed row")
		}
		chunks = append(chunks, store.Chunk{
			Text:            res.Chunk.Content,
			SourceDocument:  res.Chunk.SourceDocument,
			SourceLocator:   res.Chunk.SourceLocator,
			SimilarityScore: res.Similarity,
			Origin:          store.OriginLocal,
		})
	}
	return chunks, nil
}
