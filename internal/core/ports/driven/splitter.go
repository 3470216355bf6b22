package driven

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// Splitter segments a document into ordered chunks.
type Splitter interface {
	// Split returns the chunks of doc in document order.
	Split(doc *domain.Document) ([]domain.Chunk, error)
}
