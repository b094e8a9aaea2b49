package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"industrial-ai-be/pkg/store"
)

// DuckDuckGoProvider implements SearchProvider using the free DuckDuckGo
// Instant Answer API. No API key required.
type DuckDuckGoProvider struct {
	BaseURL string
	Client  *http.Client
}

var _ SearchProvider = &DuckDuckGoProvider{}

func NewDuckDuckGoProvider(baseURL string) *DuckDuckGoProvider {
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com"
	}
	return &DuckDuckGoProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// --- Response structs (Internal to this package) ---

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics,omitempty"` // Nested topic groups
}

type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) ([]store.Chunk, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		p.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo search error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var ddg ddgResponse
	if err := json.Unmarshal(bodyBytes, &ddg); err != nil {
		return nil, fmt.Errorf("duckduckgo search error: malformed response: %w", err)
	}

	var chunks []store.Chunk

	// The abstract, when present, is the best single result
	if ddg.AbstractText != "" {
		chunks = append(chunks, webChunk(ddg.Heading, ddg.AbstractText, ddg.AbstractURL, len(chunks)))
	}

	for _, topic := range flattenTopics(ddg.RelatedTopics) {
		if len(chunks) >= maxResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		chunks = append(chunks, webChunk(topicTitle(topic), topic.Text, topic.FirstURL, len(chunks)))
	}

	if len(chunks) > maxResults {
		chunks = chunks[:maxResults]
	}
	return chunks, nil
}

func flattenTopics(topics []ddgTopic) []ddgTopic {
	var flat []ddgTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			flat = append(flat, flattenTopics(t.Topics)...)
			continue
		}
		flat = append(flat, t)
	}
	return flat
}

func topicTitle(t ddgTopic) string {
	// The API has no separate title field; the text itself doubles as one
	const maxTitleLen = 60
	if len(t.Text) > maxTitleLen {
		return t.Text[:maxTitleLen] + "..."
	}
	return t.Text
}

// webChunk maps one web result into a Chunk tagged origin=WEB.
// Web results carry a decreasing pseudo-similarity so merged ordering
// and source ordering stay well defined.
func webChunk(title, text, resultURL string, rank int) store.Chunk {
	return store.Chunk{
		Text:            text,
		SourceDocument:  title,
		SourceLocator:   resultURL,
		SimilarityScore: 0.6 - 0.05*float64(rank),
		Origin:          store.OriginWeb,
	}
}
