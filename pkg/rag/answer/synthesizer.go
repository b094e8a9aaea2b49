package answer

import (
	"context"
	"strings"

	"industrial-ai-be/internal/pkg/apperror"
	"industrial-ai-be/internal/pkg/logger"
	"industrial-ai-be/pkg/llm"
	"industrial-ai-be/pkg/rag/prompt"
	"industrial-ai-be/pkg/store"
)

// Synthesizer turns merged context and recent conversation into the final
// grounded answer via the language model.
type Synthesizer struct {
	llmProvider     llm.LLMProvider
	maxContextChars int
	logger          logger.ILogger
}

func NewSynthesizer(llmProvider llm.LLMProvider, maxContextChars int, log logger.ILogger) *Synthesizer {
	return &Synthesizer{
		llmProvider:     llmProvider,
		maxContextChars: maxContextChars,
		logger:          log,
	}
}

// Synthesize invokes the model at temperature 0 and returns the answer with
// its citations. Sources come only from the chunks that actually reached
// the prompt, deduplicated, best similarity first.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	question string,
	mergedChunks []store.Chunk,
	recentTurns []store.Turn,
	localConfidence float64,
) (*store.AnswerResult, error) {
	prepared := prompt.PrepareContext(mergedChunks, s.maxContextChars)

	messages := prompt.NewContextualBuilder(question, prepared, recentTurns).Messages()

	response, err := s.llmProvider.Chat(ctx, messages, llm.WithTemperature(0))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindLLM, "answer generation failed", err)
	}
	if strings.TrimSpace(response) == "" {
		return nil, apperror.New(apperror.KindLLM, "model returned empty answer")
	}

	s.logger.Debug("answer", "answer synthesized", map[string]interface{}{
		"context_chunks": len(prepared),
		"history_turns":  len(recentTurns),
	})

	return &store.AnswerResult{
		Answer:              response,
		Sources:             citations(prepared),
		ConfidenceScore:     localConfidence,
		RetrievedChunkCount: len(mergedChunks),
	}, nil
}

func citations(chunks []store.Chunk) []string {
	sources := make([]string, 0, len(chunks))
	seen := make(map[string]bool)
	for _, c := range chunks {
		citation := c.Citation()
		if citation == "" || seen[citation] {
			continue
		}
		seen[citation] = true
		sources = append(sources, citation)
	}
	return sources
}
