package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRAGAnswer is the question-answering template.
	// It uses {chat_history}, {context} and {question} placeholders.
	PromptRAGAnswer = "rag_answer"
)

// DefaultRAGAnswerPrompt is used when no prompt store is configured or the
// stored template cannot be read.
const DefaultRAGAnswerPrompt = `Answer the question strictly based on the provided context.
If the context does not contain enough information to provide a confident answer, respond with: 'I don't have enough information to answer this question based on the given context', and ask the user to enter a specific query related to the document.
However, if you can answer the question using general knowledge, provide a response afterward, clearly indicating that it is not derived from the provided context.
Be kind and respectful in your response.

Previous conversation:
{chat_history}

Context:
{context}

Question: {question}

Answer:
`
