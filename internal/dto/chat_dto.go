package dto

import "time"

// ChatRequest is the inbound question contract.
type ChatRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionId string `json:"session_id" validate:"required"`
}

// ChatResponse is the grounded answer returned to the caller.
type ChatResponse struct {
	Answer               string   `json:"answer"`
	Sources              []string `json:"sources"`
	ConfidenceScore      float64  `json:"confidence_score"`
	RetrievedChunkCount  int      `json:"retrieved_chunk_count"`
	WebSearchUsed        bool     `json:"web_search_used"`
	WebSearchesRemaining int      `json:"web_searches_remaining"`
}

type TurnDTO struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionHistoryResponse struct {
	SessionId string    `json:"session_id"`
	Turns     []TurnDTO `json:"turns"`
}
