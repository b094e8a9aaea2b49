// Package hybrid coordinates local vector retrieval with the web search
// fallback: retrieve, score, and augment from the web only when local
// confidence is too low and the session still has quota.
package hybrid

import (
	"context"
	"strings"

	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/internal/repository/memory"
	"industrial-ai-be/pkg/rag/confidence"
	"industrial-ai-be/pkg/rag/retriever"
	"industrial-ai-be/pkg/store"
	"industrial-ai-be/pkg/websearch"
)

// Config encapsulates the coordinator's retrieval parameters
type Config struct {
	TopK                     int
	MatchThreshold           float64
	MinConfidenceThreshold   float64
	WebSearchEnabled         bool
	MaxWebSearchesPerSession int
	WebSearchMaxResults      int
	WebSearchContext         string // domain suffix appended to web queries
}

// DefaultConfig returns the default retrieval configuration
func DefaultConfig() Config {
	return Config{
		TopK:                     5,
		MatchThreshold:           0.0,
		MinConfidenceThreshold:   0.5,
		WebSearchEnabled:         true,
		MaxWebSearchesPerSession: 5,
		WebSearchMaxResults:      3,
		WebSearchContext:         "industrial automation",
	}
}

// Result is the merged retrieval outcome handed to the answer synthesizer.
// Confidence always reflects local retrieval quality; web results are
// never re-scored against it.
type Result struct {
	Chunks        []store.Chunk
	Confidence    float64
	WebSearchUsed bool
	Augmented     bool // true when web results were merged in
}

// Coordinator orchestrates retriever, scorer and web fallback for one request.
type Coordinator struct {
	localRetriever retriever.Retriever
	webProvider    websearch.SearchProvider
	sessions       *memory.SessionStore
	config         Config
	logger         logger.ILogger
}

func NewCoordinator(
	localRetriever retriever.Retriever,
	webProvider websearch.SearchProvider,
	sessions *memory.SessionStore,
	config Config,
	log logger.ILogger,
) *Coordinator {
	return &Coordinator{
		localRetriever: localRetriever,
		webProvider:    webProvider,
		sessions:       sessions,
		config:         config,
		logger:         log,
	}
}

// Execute runs the retrieval pipeline for one question.
//
// Local retrieval failure degrades to a web-only search when the fallback
// is available; it is fatal only when the web path is disabled or the
// session quota is exhausted. A failed web augmentation is never fatal as
// long as local chunks were gathered.
func (c *Coordinator) Execute(ctx context.Context, sessionID, question string, queryVector []float32) (*Result, error) {
	localChunks, retrievalErr := c.localRetriever.Retrieve(ctx, queryVector, c.config.TopK, c.config.MatchThreshold)
	if retrievalErr != nil {
		c.logger.Warn("hybrid", "local retrieval failed, considering web fallback", map[string]interface{}{
			"session_id": sessionID,
			"error":      retrievalErr.Error(),
		})
		localChunks = nil
	}

	localConfidence := confidence.Score(localChunks)

	sufficient := retrievalErr == nil && localConfidence >= c.config.MinConfidenceThreshold
	if sufficient {
		return &Result{
			Chunks:     localChunks,
			Confidence: localConfidence,
		}, nil
	}

	if !c.config.WebSearchEnabled ||
		!c.sessions.TryConsumeWebSearch(sessionID, c.config.MaxWebSearchesPerSession) {
		if retrievalErr != nil {
			return nil, retrievalErr
		}
		// Quota exhausted or fallback disabled: best available local result
		c.logger.Info("hybrid", "web fallback unavailable, returning local result", map[string]interface{}{
			"session_id": sessionID,
			"confidence": localConfidence,
		})
		return &Result{
			Chunks:     localChunks,
			Confidence: localConfidence,
		}, nil
	}

	// Quota is committed at this point even if the provider call fails,
	// preventing retry storms against the ceiling.
	webChunks, webErr := c.webProvider.Search(ctx, c.webQuery(question), c.config.WebSearchMaxResults)
	if webErr != nil {
		webErr = apperror.Wrap(apperror.KindWebSearch, "web search failed", webErr)
		if retrievalErr != nil {
			// Both paths unavailable; the request cannot be served
			c.logger.Error("hybrid", "local and web retrieval both failed", map[string]interface{}{
				"session_id":      sessionID,
				"retrieval_error": retrievalErr.Error(),
				"web_error":       webErr.Error(),
			})
			return nil, retrievalErr
		}
		c.logger.Warn("hybrid", "web augmentation failed, using local chunks only", map[string]interface{}{
			"session_id": sessionID,
			"error":      webErr.Error(),
		})
		return &Result{
			Chunks:        localChunks,
			Confidence:    localConfidence,
			WebSearchUsed: true,
		}, nil
	}

	// Merge local first, preserving each group's internal ranking
	merged := make([]store.Chunk, 0, len(localChunks)+len(webChunks))
	merged = append(merged, localChunks...)
	merged = append(merged, webChunks...)

	c.logger.Info("hybrid", "web search augmented local retrieval", map[string]interface{}{
		"session_id":   sessionID,
		"local_chunks": len(localChunks),
		"web_chunks":   len(webChunks),
		"confidence":   localConfidence,
	})

	return &Result{
		Chunks:        merged,
		Confidence:    localConfidence,
		WebSearchUsed: true,
		Augmented:     len(webChunks) > 0,
	}, nil
}

func (c *Coordinator) webQuery(question string) string {
	if c.config.WebSearchContext == "" {
		return question
	}
	return strings.TrimSpace(question) + " " + c.config.WebSearchContext
}
