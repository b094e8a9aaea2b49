package websearch

import (
	"context"

	"industrial-ai-be/pkg/store"
)

// SearchProvider defines the contract for any external web search backend.
// Implementations are stateless and unaware of sessions; per-session quota
// enforcement belongs to the hybrid coordinator.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]store.Chunk, error)
}
