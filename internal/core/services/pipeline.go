package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure RagPipeline implements the interface.
var _ driving.ChatService = (*RagPipeline)(nil)

// settingsReader is the part of SettingsService the services need.
type settingsReader interface {
	Get() (*domain.AppSettings, error)
}

// Failure reasons reported on Answer.Reason.
const (
	reasonRetrieval  = "retrieval unavailable"
	reasonGeneration = "generation failed"
)

// RagPipeline answers questions: retrieve, build context, compose the
// prompt, generate. Every question records one user turn and one
// assistant turn, whatever the outcome.
type RagPipeline struct {
	sessions  *SessionStore
	retriever *RetrieverService
	llm       driven.LLMService
	prompts   driven.PromptStore
	settings  settingsReader
}

// NewRagPipeline creates a pipeline. prompts may be nil to use the built-in template.
func NewRagPipeline(
	sessions *SessionStore,
	retriever *RetrieverService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	settings settingsReader,
) *RagPipeline {
	return &RagPipeline{
		sessions:  sessions,
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		settings:  settings,
	}
}

// Ask runs one question through the pipeline.
func (p *RagPipeline) Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	s, err := p.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	rag, err := p.ragSettings()
	if err != nil {
		return nil, err
	}
	if p.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrLLMUnavailable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ask")

	if err := s.ledger.Append(domain.RoleUser, question); err != nil {
		return nil, err
	}

	// Retrieve
	conn, err := p.retriever.Get(ctx, s)
	if conn == nil {
		if err == nil {
			err = fmt.Errorf("%w: no document processed for session %s", domain.ErrRetrievalUnavailable, s.id)
		}
		return p.fail(s, domain.RetrievalFailedMessage, reasonRetrieval, nil, err)
	}

	// BuildContext
	doneRetrieve := logger.Timed("retrieve")
	chunks, err := conn.Query(ctx, question, rag.TopK)
	doneRetrieve()
	if err != nil {
		p.retriever.Invalidate(s)
		if !errors.Is(err, domain.ErrRetrievalUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
		}
		return p.fail(s, domain.RetrievalFailedMessage, reasonRetrieval, nil, err)
	}
	logger.Debug("retrieved %d chunks", len(chunks))

	// ComposePrompt
	prompt := renderPrompt(p.template(), s.ledger.AsPromptHistory(), buildContext(chunks), question)

	// Generate
	genCtx := ctx
	if rag.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, rag.GenerateTimeout)
		defer cancel()
	}

	doneGenerate := logger.Timed("generate")
	text, err := p.llm.Generate(genCtx, prompt, driven.GenerateOptions{Temperature: rag.Temperature})
	doneGenerate()
	if err != nil {
		return p.fail(s, domain.GenerationErrorPrefix+err.Error(), reasonGeneration, chunks,
			fmt.Errorf("%w: %w", domain.ErrGeneration, err))
	}

	// Answered
	if err := s.ledger.Append(domain.RoleAssistant, text); err != nil {
		return nil, err
	}
	return &domain.Answer{
		Text:   text,
		State:  domain.AnswerStateAnswered,
		Chunks: chunks,
	}, nil
}

// fail records msg as the assistant turn and returns the Failed answer.
func (p *RagPipeline) fail(
	s *Session,
	msg, reason string,
	chunks []domain.ScoredChunk,
	cause error,
) (*domain.Answer, error) {
	logger.Warn("%s: %v", reason, cause)
	if err := s.ledger.Append(domain.RoleAssistant, msg); err != nil {
		return nil, err
	}
	return &domain.Answer{
		Text:   msg,
		State:  domain.AnswerStateFailed,
		Reason: reason,
		Chunks: chunks,
	}, cause
}

func (p *RagPipeline) ragSettings() (domain.RAGSettings, error) {
	if p.settings == nil {
		return domain.DefaultAppSettings().RAG, nil
	}
	settings, err := p.settings.Get()
	if err != nil {
		return domain.RAGSettings{}, err
	}
	return settings.RAG, nil
}

func (p *RagPipeline) template() string {
	if p.prompts == nil {
		return driven.DefaultRAGAnswerPrompt
	}
	tmpl, err := p.prompts.Load(driven.PromptRAGAnswer)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			logger.Warn("loading prompt %s: %v", driven.PromptRAGAnswer, err)
		}
		return driven.DefaultRAGAnswerPrompt
	}
	return tmpl
}

// buildContext joins chunk texts, substituting the sentinel for no results.
func buildContext(chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return domain.NoContextSentinel
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n")
}

// renderPrompt fills the template placeholders. Substituted values are not rescanned.
func renderPrompt(template, history, contextText, question string) string {
	return strings.NewReplacer(
		"{chat_history}", history,
		"{context}", contextText,
		"{question}", question,
	).Replace(template)
}
