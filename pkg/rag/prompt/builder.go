package prompt

import (
	"fmt"
	"sort"
	"strings"

	"industrial-ai-be/pkg/llm"
	"industrial-ai-be/pkg/store"
)

const systemInstructions = `You are a technical assistant for industrial equipment and automation.
Use ONLY the reference material provided to answer the question.
If the answer cannot be found in the reference material, say you don't know.
Cite the source document when it supports your answer.`

// PrepareContext orders chunks by descending similarity, drops duplicate
// source+locator entries keeping the best-scoring one, and caps the total
// context at maxChars. The returned slice is what actually reaches the model.
func PrepareContext(chunks []store.Chunk, maxChars int) []store.Chunk {
	ordered := make([]store.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SimilarityScore > ordered[j].SimilarityScore
	})

	var prepared []store.Chunk
	seen := make(map[string]bool)
	total := 0

	for _, c := range ordered {
		key := c.SourceDocument + "|" + c.SourceLocator
		if seen[key] {
			continue
		}
		if maxChars > 0 && total+len(c.Text) > maxChars && len(prepared) > 0 {
			break
		}
		seen[key] = true
		prepared = append(prepared, c)
		total += len(c.Text)
	}
	return prepared
}

// ContextualBuilder assembles the chat messages for answer synthesis:
// system framing, recent conversational turns (oldest first), and the
// prepared context chunks, followed by the user's question.
type ContextualBuilder struct {
	question string
	chunks   []store.Chunk
	turns    []store.Turn
}

func NewContextualBuilder(question string, chunks []store.Chunk, turns []store.Turn) *ContextualBuilder {
	return &ContextualBuilder{
		question: question,
		chunks:   chunks,
		turns:    turns,
	}
}

// Messages builds the full provider-agnostic message history.
func (b *ContextualBuilder) Messages() []llm.Message {
	messages := make([]llm.Message, 0, len(b.turns)*2+2)

	messages = append(messages, llm.Message{Role: "system", Content: systemInstructions})

	for _, turn := range b.turns {
		messages = append(messages, llm.Message{Role: "user", Content: turn.Question})
		messages = append(messages, llm.Message{Role: "assistant", Content: turn.Answer})
	}

	messages = append(messages, llm.Message{Role: "user", Content: b.buildUserPrompt()})
	return messages
}

func (b *ContextualBuilder) buildUserPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("<reference_material>\n")
	if len(b.chunks) == 0 {
		prompt.WriteString("(no reference material was retrieved)\n")
	}
	for i, c := range b.chunks {
		prompt.WriteString(fmt.Sprintf("--- Source %d: %s ---\n", i+1, c.Citation()))
		prompt.WriteString(c.Text)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</question>\n\n")
	prompt.WriteString("Answer based strictly on the reference material above:")

	return prompt.String()
}
