package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an upload format with no normaliser.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Documents cannot be indexed without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates a provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline error categories.

	// ErrConfiguration indicates invalid settings such as bad chunk parameters.
	// Fatal at setup, not recoverable at runtime.
	ErrConfiguration = errors.New("configuration error")

	// ErrStorageIO indicates a storage read, write or delete failure.
	// Recoverable by retrying the whole upload.
	ErrStorageIO = errors.New("storage I/O error")

	// ErrRetrievalUnavailable indicates the index is missing, corrupted or unreachable.
	// The query yields no answer.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGeneration indicates the language model call failed.
	// The failure is recorded as an assistant turn.
	ErrGeneration = errors.New("generation failed")
)

// ErrorKind groups errors for presentation.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindIO            ErrorKind = "io"
	KindRetrieval     ErrorKind = "retrieval"
	KindGeneration    ErrorKind = "generation"
	KindUnknown       ErrorKind = "unknown"
)

// Classify maps an error onto its pipeline category.
// Returns the empty kind for a nil error.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrStorageIO):
		return KindIO
	case errors.Is(err, ErrRetrievalUnavailable):
		return KindRetrieval
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	default:
		return KindUnknown
	}
}

// IsBanner reports whether the kind is shown as a banner rather than an
// assistant turn.
func (k ErrorKind) IsBanner() bool {
	return k == KindConfiguration || k == KindIO || k == KindUnknown
}
