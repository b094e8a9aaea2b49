package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"industrial-ai-be/internal/dto"
	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/internal/repository/memory"
	"industrial-ai-be/pkg/embedding"
	"industrial-ai-be/pkg/events"
	"industrial-ai-be/pkg/rag/answer"
	"industrial-ai-be/pkg/rag/hybrid"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IChatService defines the question answering service interface
type IChatService interface {
	Ask(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

type chatService struct {
	embeddingProvider embedding.EmbeddingProvider
	coordinator       *hybrid.Coordinator
	synthesizer       *answer.Synthesizer
	sessions          *memory.SessionStore
	pubSub            *gochannel.GoChannel
	logger            logger.ILogger

	recentContextSize        int
	maxWebSearchesPerSession int
}

func NewChatService(
	embeddingProvider embedding.EmbeddingProvider,
	coordinator *hybrid.Coordinator,
	synthesizer *answer.Synthesizer,
	sessions *memory.SessionStore,
	pubSub *gochannel.GoChannel,
	log logger.ILogger,
	recentContextSize int,
	maxWebSearchesPerSession int,
) IChatService {
	return &chatService{
		embeddingProvider:        embeddingProvider,
		coordinator:              coordinator,
		synthesizer:              synthesizer,
		sessions:                 sessions,
		pubSub:                   pubSub,
		logger:                   log,
		recentContextSize:        recentContextSize,
		maxWebSearchesPerSession: maxWebSearchesPerSession,
	}
}

// Ask runs the full pipeline: embed, retrieve, score, maybe augment,
// synthesize, then record the turn. Either a complete answer is returned
// or an explicit error; nothing partial.
func (s *chatService) Ask(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	question := strings.TrimSpace(request.Question)
	sessionId := strings.TrimSpace(request.SessionId)
	if question == "" {
		return nil, apperror.New(apperror.KindValidation, "question must not be empty")
	}
	if sessionId == "" {
		return nil, apperror.New(apperror.KindValidation, "session_id must not be empty")
	}

	embeddingRes, err := s.embeddingProvider.Generate(ctx, question, "RETRIEVAL_QUERY")
	if err != nil {
		// Without a query vector there is nothing to retrieve against
		return nil, apperror.Wrap(apperror.KindEmbedding, "embedding generation failed", err)
	}

	retrieval, err := s.coordinator.Execute(ctx, sessionId, question, embeddingRes.Embedding.Values)
	if err != nil {
		return nil, err
	}

	recentTurns := s.sessions.RecentContext(sessionId, s.recentContextSize)

	result, err := s.synthesizer.Synthesize(ctx, question, retrieval.Chunks, recentTurns, retrieval.Confidence)
	if err != nil {
		return nil, err
	}

	s.sessions.AppendTurn(sessionId, question, result.Answer)

	s.publishAnswered(events.ChatAnsweredEvent{
		EventId:             uuid.New(),
		SessionId:           sessionId,
		ConfidenceScore:     result.ConfidenceScore,
		RetrievedChunkCount: result.RetrievedChunkCount,
		WebSearchUsed:       retrieval.WebSearchUsed,
		AnswerLength:        len(result.Answer),
		OccurredAt:          time.Now(),
	})

	remaining := s.maxWebSearchesPerSession - s.sessions.WebSearchesUsed(sessionId)
	if remaining < 0 {
		remaining = 0
	}

	return &dto.ChatResponse{
		Answer:               result.Answer,
		Sources:              result.Sources,
		ConfidenceScore:      result.ConfidenceScore,
		RetrievedChunkCount:  result.RetrievedChunkCount,
		WebSearchUsed:        retrieval.WebSearchUsed,
		WebSearchesRemaining: remaining,
	}, nil
}

func (s *chatService) GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	sessionId = strings.TrimSpace(sessionId)
	if sessionId == "" {
		return nil, apperror.New(apperror.KindValidation, "session_id must not be empty")
	}

	session := s.sessions.GetOrCreate(sessionId)
	turns := make([]dto.TurnDTO, len(session.Turns))
	for i, t := range session.Turns {
		turns[i] = dto.TurnDTO{
			Question:  t.Question,
			Answer:    t.Answer,
			Timestamp: t.Timestamp,
		}
	}

	return &dto.SessionHistoryResponse{
		SessionId: sessionId,
		Turns:     turns,
	}, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId string) error {
	sessionId = strings.TrimSpace(sessionId)
	if sessionId == "" {
		return apperror.New(apperror.KindValidation, "session_id must not be empty")
	}

	s.sessions.Delete(sessionId)
	return nil
}

// publishAnswered emits the usage event. Best effort; an answer already
// produced is never failed because of the event bus.
func (s *chatService) publishAnswered(event events.ChatAnsweredEvent) {
	if s.pubSub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("chat", "failed to marshal usage event", map[string]interface{}{"error": err.Error()})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(events.TopicChatAnswered, msg); err != nil {
		s.logger.Warn("chat", "failed to publish usage event", map[string]interface{}{"error": err.Error()})
	}
}
