package domain

// AnswerState is the terminal state of a query.
type AnswerState string

const (
	AnswerStateAnswered AnswerState = "answered"
	AnswerStateFailed   AnswerState = "failed"
)

// Messages shown to the user when a query cannot be answered normally.
const (
	// NoContextSentinel replaces an empty retrieval result in the prompt.
	NoContextSentinel = "No relevant information found in the document."

	// RetrievalFailedMessage is recorded when no index connection is available.
	RetrievalFailedMessage = "Error retrieving relevant information from the document."

	// GenerationErrorPrefix prefixes the cause of a failed LLM call.
	GenerationErrorPrefix = "Error generating response: "
)

// Answer is the outcome of a single question.
type Answer struct {
	// Text is the assistant turn that was appended to the ledger.
	Text string

	// State is Answered or Failed.
	State AnswerState

	// Reason explains a failure ("retrieval unavailable", "generation failed").
	Reason string

	// Chunks are the passages used as context.
	Chunks []ScoredChunk
}

// Failed reports whether the query ended in the Failed state.
func (a *Answer) Failed() bool {
	return a.State == AnswerStateFailed
}
