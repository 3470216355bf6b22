package domain

import "time"

// Document is the text extracted from an upload.
// It is transient: the pipeline discards it once it has been chunked.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the uploaded filename.
	Name string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was extracted.
	CreatedAt time.Time
}

// Chunk represents a retrievable passage within a document.
// Chunks are immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	// Retrieval ties are broken by position.
	Position int

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// ScoredChunk is a chunk returned by a similarity query.
type ScoredChunk struct {
	Chunk

	// Similarity is the cosine similarity with the query (-1 to 1).
	Similarity float64
}

// ProcessResult describes a document that was indexed for a session.
type ProcessResult struct {
	// SessionID is the session the document was bound to.
	SessionID string

	// DocumentName is the uploaded filename.
	DocumentName string

	// ChunkCount is the number of chunks written to the index.
	ChunkCount int
}
