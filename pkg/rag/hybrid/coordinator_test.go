package hybrid

import (
	"context"
	"errors"
	"testing"

	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/internal/repository/memory"
	"industrial-ai-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	chunks []store.Chunk
	err    error
	calls  int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, queryVector []float32, k int, matchThreshold float64) ([]store.Chunk, error) {
	f.calls++
	return f.chunks, f.err
}

type fakeWebProvider struct {
	chunks []store.Chunk
	err    error
	calls  int
	query  string
}

func (f *fakeWebProvider) Search(ctx context.Context, query string, maxResults int) ([]store.Chunk, error) {
	f.calls++
	f.query = query
	return f.chunks, f.err
}

func localChunks(similarities ...float64) []store.Chunk {
	chunks := make([]store.Chunk, len(similarities))
	for i, sim := range similarities {
		chunks[i] = store.Chunk{
			Text:            "local",
			SourceDocument:  "manual.pdf",
			SimilarityScore: sim,
			Origin:          store.OriginLocal,
		}
	}
	return chunks
}

func webChunks(n int) []store.Chunk {
	chunks := make([]store.Chunk, n)
	for i := range chunks {
		chunks[i] = store.Chunk{
			Text:            "web",
			SourceDocument:  "Result",
			SourceLocator:   "https://example.com",
			SimilarityScore: 0.6 - 0.05*float64(i),
			Origin:          store.OriginWeb,
		}
	}
	return chunks
}

func newTestCoordinator(r *fakeRetriever, w *fakeWebProvider, cfg Config) (*Coordinator, *memory.SessionStore) {
	sessions := memory.NewSessionStore(10)
	return NewCoordinator(r, w, sessions, cfg, logger.NewNopLogger()), sessions
}

func TestHighConfidenceSkipsWebSearch(t *testing.T) {
	r := &fakeRetriever{chunks: localChunks(0.9, 0.8, 0.7, 0.6, 0.5)}
	w := &fakeWebProvider{}
	c, sessions := newTestCoordinator(r, w, DefaultConfig())

	result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.NoError(t, err)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Len(t, result.Chunks, 5)
	assert.False(t, result.WebSearchUsed)
	assert.False(t, result.Augmented)
	assert.Equal(t, 0, w.calls)
	assert.Equal(t, 0, sessions.WebSearchesUsed("s1"))
}

func TestLowConfidenceTriggersWebSearch(t *testing.T) {
	r := &fakeRetriever{chunks: localChunks(0.2)}
	w := &fakeWebProvider{chunks: webChunks(2)}
	c, sessions := newTestCoordinator(r, w, DefaultConfig())

	result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, 1, sessions.WebSearchesUsed("s1"))
	assert.True(t, result.WebSearchUsed)
	assert.True(t, result.Augmented)

	// Local chunks come first, each group keeps its internal order
	require.Len(t, result.Chunks, 3)
	assert.Equal(t, store.OriginLocal, result.Chunks[0].Origin)
	assert.Equal(t, store.OriginWeb, result.Chunks[1].Origin)
	assert.Equal(t, store.OriginWeb, result.Chunks[2].Origin)

	// Confidence reflects local retrieval only
	assert.Equal(t, 0.2, result.Confidence)
}

func TestWebQueryCarriesDomainContext(t *testing.T) {
	r := &fakeRetriever{}
	w := &fakeWebProvider{}
	c, _ := newTestCoordinator(r, w, DefaultConfig())

	_, err := c.Execute(context.Background(), "s1", "conveyor jam", []float32{0.1})

	require.NoError(t, err)
	assert.Equal(t, "conveyor jam industrial automation", w.query)
}

func TestQuotaExhaustionStopsWebSearches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWebSearchesPerSession = 2
	r := &fakeRetriever{chunks: localChunks(0.1)}
	w := &fakeWebProvider{chunks: webChunks(1)}
	c, sessions := newTestCoordinator(r, w, cfg)

	for i := 0; i < 5; i++ {
		result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})
		require.NoError(t, err)
		if i >= 2 {
			// Past the ceiling: best available local result, no web call
			assert.False(t, result.WebSearchUsed)
		}
	}

	assert.Equal(t, 2, w.calls)
	assert.Equal(t, 2, sessions.WebSearchesUsed("s1"))
}

func TestWebSearchDisabledReturnsLocal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebSearchEnabled = false
	r := &fakeRetriever{chunks: localChunks(0.2)}
	w := &fakeWebProvider{chunks: webChunks(1)}
	c, _ := newTestCoordinator(r, w, cfg)

	result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.NoError(t, err)
	assert.Equal(t, 0, w.calls)
	assert.Len(t, result.Chunks, 1)
	assert.False(t, result.WebSearchUsed)
}

func TestRetrieverFailureDegradesToWebOnly(t *testing.T) {
	r := &fakeRetriever{err: apperror.Wrap(apperror.KindRetrieval, "vector search failed", errors.New("backend down"))}
	w := &fakeWebProvider{chunks: webChunks(3)}
	c, _ := newTestCoordinator(r, w, DefaultConfig())

	result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.NoError(t, err)
	require.Len(t, result.Chunks, 3)
	for _, chunk := range result.Chunks {
		assert.Equal(t, store.OriginWeb, chunk.Origin)
	}
	assert.Equal(t, 0.0, result.Confidence)
	assert.True(t, result.WebSearchUsed)
}

func TestRetrieverFailureWithWebDisabledIsFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebSearchEnabled = false
	r := &fakeRetriever{err: apperror.Wrap(apperror.KindRetrieval, "vector search failed", errors.New("backend down"))}
	w := &fakeWebProvider{}
	c, _ := newTestCoordinator(r, w, cfg)

	result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperror.IsKind(err, apperror.KindRetrieval))
	assert.Equal(t, 0, w.calls)
}

func TestWebFailureFallsBackToLocalChunks(t *testing.T) {
	r := &fakeRetriever{chunks: localChunks(0.3)}
	w := &fakeWebProvider{err: errors.New("timeout")}
	c, sessions := newTestCoordinator(r, w, DefaultConfig())

	result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
	assert.False(t, result.Augmented)
	// Quota is committed even though the provider call failed
	assert.Equal(t, 1, sessions.WebSearchesUsed("s1"))
}

func TestBothPathsFailingIsFatal(t *testing.T) {
	r := &fakeRetriever{err: apperror.Wrap(apperror.KindRetrieval, "vector search failed", errors.New("backend down"))}
	w := &fakeWebProvider{err: errors.New("timeout")}
	c, _ := newTestCoordinator(r, w, DefaultConfig())

	_, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindRetrieval))
}

func TestEmptyLocalResultsTriggerWebSearch(t *testing.T) {
	r := &fakeRetriever{}
	w := &fakeWebProvider{chunks: webChunks(1)}
	c, _ := newTestCoordinator(r, w, DefaultConfig())

	result, err := c.Execute(context.Background(), "s1", "question", []float32{0.1})

	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Len(t, result.Chunks, 1)
}
