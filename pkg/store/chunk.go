package store

// Origin marks where a retrieved chunk came from.
type Origin string

const (
	OriginLocal Origin = "LOCAL"
	OriginWeb   Origin = "WEB"
)

// Chunk is a retrieved passage with its provenance and similarity score.
// Chunks are immutable once produced and live only for the duration of a request.
type Chunk struct {
	Text            string  `json:"text"`
	SourceDocument  string  `json:"source_document"`
	SourceLocator   string  `json:"source_locator"` // page number for local docs, URL for web results
	SimilarityScore float64 `json:"similarity_score"`
	Origin          Origin  `json:"origin"`
}

// Citation renders the chunk as a human-readable source string.
func (c Chunk) Citation() string {
	if c.Origin == OriginWeb {
		if c.SourceLocator != "" {
			return c.SourceDocument + " (" + c.SourceLocator + ")"
		}
		return c.SourceDocument
	}
	if c.SourceLocator != "" {
		return c.SourceDocument + " (page " + c.SourceLocator + ")"
	}
	return c.SourceDocument
}

// AnswerResult is the final grounded answer returned to the caller.
type AnswerResult struct {
	Answer              string   `json:"answer"`
	Sources             []string `json:"sources"`
	ConfidenceScore     float64  `json:"confidence_score"`
	RetrievedChunkCount int      `json:"retrieved_chunk_count"`
}
