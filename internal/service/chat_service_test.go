package service

import (
	"context"
	"errors"
	"testing"

	"industrial-ai-be/internal/dto"
	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/internal/repository/memory"
	"industrial-ai-be/pkg/embedding"
	"industrial-ai-be/pkg/llm"
	"industrial-ai-be/pkg/rag/answer"
	"industrial-ai-be/pkg/rag/hybrid"
	"industrial-ai-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type fakeRetriever struct {
	chunks []store.Chunk
}

func (f *fakeRetriever) Retrieve(ctx context.Context, queryVector []float32, k int, matchThreshold float64) ([]store.Chunk, error) {
	return f.chunks, nil
}

type fakeWebProvider struct {
	chunks []store.Chunk
}

func (f *fakeWebProvider) Search(ctx context.Context, query string, maxResults int) ([]store.Chunk, error) {
	return f.chunks, nil
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.response, f.err
}

type serviceFixture struct {
	service  IChatService
	sessions *memory.SessionStore
	web      *fakeWebProvider
}

func newFixture(embedder *fakeEmbedder, retrieved []store.Chunk, model *fakeLLM) *serviceFixture {
	log := logger.NewNopLogger()
	sessions := memory.NewSessionStore(10)
	web := &fakeWebProvider{chunks: []store.Chunk{{
		Text:            "web context",
		SourceDocument:  "Result",
		SourceLocator:   "https://example.com",
		SimilarityScore: 0.6,
		Origin:          store.OriginWeb,
	}}}

	coordinator := hybrid.NewCoordinator(&fakeRetriever{chunks: retrieved}, web, sessions, hybrid.DefaultConfig(), log)
	synthesizer := answer.NewSynthesizer(model, 8000, log)

	svc := NewChatService(embedder, coordinator, synthesizer, sessions, nil, log, 3, 5)
	return &serviceFixture{service: svc, sessions: sessions, web: web}
}

func highConfidenceChunks() []store.Chunk {
	return []store.Chunk{{
		Text:            "relief valves open at 40 bar",
		SourceDocument:  "manual.pdf",
		SourceLocator:   "12",
		SimilarityScore: 0.9,
		Origin:          store.OriginLocal,
	}}
}

func TestAskHappyPath(t *testing.T) {
	f := newFixture(&fakeEmbedder{}, highConfidenceChunks(), &fakeLLM{response: "They open at 40 bar."})

	res, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "when do valves open?", SessionId: "s1"})

	require.NoError(t, err)
	assert.Equal(t, "They open at 40 bar.", res.Answer)
	assert.Equal(t, 0.9, res.ConfidenceScore)
	assert.Equal(t, []string{"manual.pdf (page 12)"}, res.Sources)
	assert.False(t, res.WebSearchUsed)
	assert.Equal(t, 5, res.WebSearchesRemaining)

	// Turn is recorded after a successful answer
	session := f.sessions.GetOrCreate("s1")
	require.Len(t, session.Turns, 1)
	assert.Equal(t, "when do valves open?", session.Turns[0].Question)
}

func TestAskBlankQuestionIsValidationError(t *testing.T) {
	f := newFixture(&fakeEmbedder{}, nil, &fakeLLM{response: "x"})

	_, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "   ", SessionId: "s1"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestAskBlankSessionIsValidationError(t *testing.T) {
	f := newFixture(&fakeEmbedder{}, nil, &fakeLLM{response: "x"})

	_, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "q", SessionId: ""})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestAskEmbeddingFailure(t *testing.T) {
	f := newFixture(&fakeEmbedder{err: errors.New("provider down")}, nil, &fakeLLM{response: "x"})

	_, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "q", SessionId: "s1"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindEmbedding))
}

func TestAskLowConfidenceReportsWebUsage(t *testing.T) {
	weak := []store.Chunk{{
		Text:            "unrelated",
		SourceDocument:  "manual.pdf",
		SimilarityScore: 0.1,
		Origin:          store.OriginLocal,
	}}
	f := newFixture(&fakeEmbedder{}, weak, &fakeLLM{response: "answer"})

	res, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "q", SessionId: "s1"})

	require.NoError(t, err)
	assert.True(t, res.WebSearchUsed)
	assert.Equal(t, 4, res.WebSearchesRemaining)
	assert.Equal(t, 2, res.RetrievedChunkCount)
}

func TestAskLLMFailureDoesNotRecordTurn(t *testing.T) {
	f := newFixture(&fakeEmbedder{}, highConfidenceChunks(), &fakeLLM{err: errors.New("model down")})

	_, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "q", SessionId: "s1"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindLLM))
	assert.Empty(t, f.sessions.GetOrCreate("s1").Turns)
}

func TestGetHistoryReturnsRecordedTurns(t *testing.T) {
	f := newFixture(&fakeEmbedder{}, highConfidenceChunks(), &fakeLLM{response: "a1"})

	_, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "q1", SessionId: "s1"})
	require.NoError(t, err)

	history, err := f.service.GetHistory(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "s1", history.SessionId)
	require.Len(t, history.Turns, 1)
	assert.Equal(t, "q1", history.Turns[0].Question)
	assert.Equal(t, "a1", history.Turns[0].Answer)
}

func TestDeleteSessionResetsQuota(t *testing.T) {
	weak := []store.Chunk{{Text: "x", SourceDocument: "d", SimilarityScore: 0.1, Origin: store.OriginLocal}}
	f := newFixture(&fakeEmbedder{}, weak, &fakeLLM{response: "answer"})

	_, err := f.service.Ask(context.Background(), &dto.ChatRequest{Question: "q", SessionId: "s1"})
	require.NoError(t, err)
	require.Equal(t, 1, f.sessions.WebSearchesUsed("s1"))

	require.NoError(t, f.service.DeleteSession(context.Background(), "s1"))

	assert.Equal(t, 0, f.sessions.WebSearchesUsed("s1"))
	assert.Empty(t, f.sessions.GetOrCreate("s1").Turns)
}

func TestDeleteSessionBlankIdIsValidationError(t *testing.T) {
	f := newFixture(&fakeEmbedder{}, nil, &fakeLLM{response: "x"})

	err := f.service.DeleteSession(context.Background(), "  ")

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
