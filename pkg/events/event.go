package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic names for the in-process event bus.
const (
	TopicChatAnswered = "chat.answered"
)

// ChatAnsweredEvent is published after every successfully answered question.
type ChatAnsweredEvent struct {
	EventId             uuid.UUID `json:"event_id"`
	SessionId           string    `json:"session_id"`
	ConfidenceScore     float64   `json:"confidence_score"`
	RetrievedChunkCount int       `json:"retrieved_chunk_count"`
	WebSearchUsed       bool      `json:"web_search_used"`
	AnswerLength        int       `json:"answer_length"`
	OccurredAt          time.Time `json:"occurred_at"`
}

func (e ChatAnsweredEvent) EventType() string {
	return "CHAT_ANSWERED"
}
