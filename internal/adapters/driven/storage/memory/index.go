package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.EmbeddingIndex = (*Index)(nil)

// Index is an in-memory EmbeddingIndex. Nothing touches the filesystem,
// so a handle's Path is only used as a key.
type Index struct {
	mu       sync.RWMutex
	embedder driven.EmbeddingService
	stores   map[string]*collection
}

type collection struct {
	name   string
	chunks []domain.Chunk
}

// NewIndex creates an empty in-memory index.
func NewIndex(embedder driven.EmbeddingService) *Index {
	return &Index{
		embedder: embedder,
		stores:   make(map[string]*collection),
	}
}

// Build replaces the collection stored under handle.Path.
func (i *Index) Build(ctx context.Context, chunks []domain.Chunk, handle domain.IndexHandle) error {
	if handle.Path == "" || handle.Collection == "" {
		return fmt.Errorf("%w: index handle is incomplete", domain.ErrInvalidInput)
	}

	i.mu.Lock()
	delete(i.stores, handle.Path)
	i.mu.Unlock()

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)

	if len(stored) > 0 {
		texts := make([]string, len(stored))
		for n, c := range stored {
			texts[n] = c.Content
		}
		vectors, err := i.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embedding chunks: %v", domain.ErrRetrievalUnavailable, err)
		}
		if len(vectors) != len(stored) {
			return fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
				domain.ErrRetrievalUnavailable, len(vectors), len(stored))
		}
		for n := range stored {
			stored[n].Embedding = vectors[n]
		}
	}

	i.mu.Lock()
	i.stores[handle.Path] = &collection{name: handle.Collection, chunks: stored}
	i.mu.Unlock()
	return nil
}

// Connect returns a connection to a previously built collection.
func (i *Index) Connect(_ context.Context, handle domain.IndexHandle) (driven.IndexConnection, error) {
	i.mu.RLock()
	c, ok := i.stores[handle.Path]
	i.mu.RUnlock()

	if !ok || c.name != handle.Collection {
		return nil, fmt.Errorf("%w: collection %s", domain.ErrNotFound, handle.Collection)
	}
	return &connection{index: i, handle: handle}, nil
}

// Remove drops the collection stored under handle.Path.
func (i *Index) Remove(_ context.Context, handle domain.IndexHandle) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.stores, handle.Path)
	return nil
}

type connection struct {
	index  *Index
	handle domain.IndexHandle
}

func (c *connection) chunks() ([]domain.Chunk, error) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	stored, ok := c.index.stores[c.handle.Path]
	if !ok || stored.name != c.handle.Collection {
		return nil, fmt.Errorf("%w: collection %s was removed", domain.ErrRetrievalUnavailable, c.handle.Collection)
	}
	return stored.chunks, nil
}

func (c *connection) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	chunks, err := c.chunks()
	if err != nil {
		return nil, err
	}

	query, err := c.index.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrRetrievalUnavailable, err)
	}

	scored := make([]domain.ScoredChunk, len(chunks))
	for n, chunk := range chunks {
		scored[n] = domain.ScoredChunk{Chunk: chunk, Similarity: domain.CosineSimilarity(query, chunk.Embedding)}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Similarity != scored[b].Similarity {
			return scored[a].Similarity > scored[b].Similarity
		}
		return scored[a].Position < scored[b].Position
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (c *connection) Count(_ context.Context) (int, error) {
	chunks, err := c.chunks()
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (c *connection) Handle() domain.IndexHandle { return c.handle }

func (c *connection) Close() error { return nil }
