// Package chunker splits document text into overlapping fixed-size chunks.
//
// Splitting is a hard cut on character (rune) boundaries: windows are
// exactly chunkSize runes long, except the last one, and neighbouring
// windows share exactly overlap runes. Paragraph and sentence boundaries are
// not considered.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Ensure Processor implements the interface.
var _ driven.Splitter = (*Processor)(nil)

// Split segments text into windows of chunkSize runes, each starting
// chunkSize-overlap runes after the previous one. The final window may be
// shorter. Empty text yields no chunks.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, n/step+1)
	for start := 0; ; start += step {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}
	}
	return chunks, nil
}

// Join reverses Split: it concatenates chunks, dropping the overlap prefix
// of every chunk after the first.
func Join(chunks []string, overlap int) string {
	var out []rune
	for i, c := range chunks {
		r := []rune(c)
		if i > 0 {
			if overlap >= len(r) {
				continue
			}
			r = r[overlap:]
		}
		out = append(out, r...)
	}
	return string(out)
}

func validate(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			domain.ErrConfiguration, chunkSize, overlap)
	}
	return nil
}

// Processor splits documents into domain chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Parameters are not clamped; call Validate to surface bad values at setup.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromSettings creates a processor from RAG settings.
func FromSettings(s domain.RAGSettings) *Processor {
	return New(WithChunkSize(s.ChunkSize), WithOverlap(s.ChunkOverlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Validate reports a configuration error for unusable parameters.
func (p *Processor) Validate() error {
	return validate(p.chunkSize, p.overlap)
}

// Split turns the document content into ordered chunks.
func (p *Processor) Split(doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	texts, err := Split(doc.Content, p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    text,
			Position:   i,
			Metadata:   map[string]any{"source": doc.Name},
		}
	}
	return chunks, nil
}
