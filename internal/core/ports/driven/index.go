package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// EmbeddingIndex turns chunks into a persistent, queryable similarity index.
// Build and Connect are distinct: Connect never rebuilds, and Build always
// replaces whatever was stored at the handle.
type EmbeddingIndex interface {
	// Build embeds every chunk and writes it to storage at handle.
	// Existing storage at the handle is removed first; a removal that still
	// fails after retries returns domain.ErrStorageIO.
	Build(ctx context.Context, chunks []domain.Chunk, handle domain.IndexHandle) error

	// Connect opens an existing collection without rebuilding.
	// Returns domain.ErrNotFound if the location has no valid collection.
	Connect(ctx context.Context, handle domain.IndexHandle) (IndexConnection, error)

	// Remove deletes the storage at handle. Missing storage is not an error.
	Remove(ctx context.Context, handle domain.IndexHandle) error
}

// IndexConnection is a live, read-only handle to a built collection.
type IndexConnection interface {
	// Query returns up to k chunks ordered by similarity descending,
	// ties broken by chunk position. An empty collection yields an empty
	// slice and no error.
	Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of chunks in the collection.
	Count(ctx context.Context) (int, error)

	// Handle returns the handle the connection was opened from.
	Handle() domain.IndexHandle

	// Close releases resources.
	Close() error
}
