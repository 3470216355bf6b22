package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// mockSessionService keeps turns in memory.
type mockSessionService struct {
	nextID    string
	known     map[string]bool
	turns     map[string][]domain.Turn
	resumeErr error
	clearErr  error
	cleared   []string
}

func newMockSessionService(ids ...string) *mockSessionService {
	m := &mockSessionService{
		nextID: "new-session",
		known:  make(map[string]bool),
		turns:  make(map[string][]domain.Turn),
	}
	for _, id := range ids {
		m.known[id] = true
	}
	return m
}

func (m *mockSessionService) Start() string {
	m.known[m.nextID] = true
	return m.nextID
}

func (m *mockSessionService) Resume(_ context.Context, id string) error {
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.known[id] = true
	return nil
}

func (m *mockSessionService) Status(id string) (*domain.SessionStatus, error) {
	if !m.known[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.SessionStatus{ID: id, TurnCount: len(m.turns[id])}, nil
}

func (m *mockSessionService) History(id string) ([]domain.Turn, error) {
	if !m.known[id] {
		return nil, domain.ErrNotFound
	}
	return m.turns[id], nil
}

func (m *mockSessionService) ClearHistory(_ context.Context, id string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, id)
	delete(m.turns, id)
	return nil
}

func (m *mockSessionService) record(id string, role domain.Role, text string) {
	m.turns[id] = append(m.turns[id], domain.Turn{
		Role:      role,
		Text:      text,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
}

// mockDocumentService reports three chunks for any upload.
type mockDocumentService struct {
	err error
	got []domain.RawDocument
}

func (m *mockDocumentService) Process(
	_ context.Context, sessionID string, raw domain.RawDocument,
) (*domain.ProcessResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.got = append(m.got, raw)
	return &domain.ProcessResult{SessionID: sessionID, DocumentName: raw.Name, ChunkCount: 3}, nil
}

func (m *mockDocumentService) SupportedTypes() []string {
	return []string{"application/pdf", "text/markdown", "text/plain"}
}

// mockChatService answers by echoing the question and records both turns.
type mockChatService struct {
	sessions *mockSessionService
	answer   *domain.Answer
	err      error
	asked    []string
}

func (m *mockChatService) Ask(_ context.Context, sessionID, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if m.answer == nil && m.err != nil {
		return nil, m.err
	}
	answer := m.answer
	if answer == nil {
		answer = &domain.Answer{Text: "echo: " + question, State: domain.AnswerStateAnswered}
	}
	m.sessions.record(sessionID, domain.RoleUser, question)
	m.sessions.record(sessionID, domain.RoleAssistant, answer.Text)
	return answer, m.err
}

// mockSettingsService stores settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	saved       int
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  domain.DefaultOllamaURL,
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    "gpt-4o-mini",
			APIKey:   "sk-1234567890abcdef",
		},
		RAG: domain.RAGSettings{
			TopK:         domain.DefaultTopK,
			Temperature:  domain.DefaultTemperature,
			ChunkSize:    domain.DefaultChunkSize,
			ChunkOverlap: domain.DefaultChunkOverlap,
		},
	}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	m.saved++
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	m.saved++
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	m.saved++
	return nil
}

func (m *mockSettingsService) SetRAG(rag domain.RAGSettings) error {
	if rag.ChunkOverlap >= rag.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be smaller than chunk size", domain.ErrConfiguration)
	}
	m.settings.RAG = rag
	m.saved++
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return newMockSettingsService().settings
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

var (
	_ driving.SessionService  = (*mockSessionService)(nil)
	_ driving.DocumentService = (*mockDocumentService)(nil)
	_ driving.ChatService     = (*mockChatService)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	session  *mockSessionService
	document *mockDocumentService
	chat     *mockChatService
	settings *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup func
// that also resets command flags.
func setupTestServices(ids ...string) (*testServices, func()) {
	ts := &testServices{
		session:  newMockSessionService(ids...),
		document: &mockDocumentService{},
		settings: newMockSettingsService(),
	}
	ts.chat = &mockChatService{sessions: ts.session}

	sessionService = ts.session
	documentService = ts.document
	chatService = ts.chat
	settingsService = ts.settings

	return ts, func() {
		sessionService = nil
		documentService = nil
		chatService = nil
		settingsService = nil
		promptChanges = nil
		closeServices = nil
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	processSessionID = ""
	askFile, askSessionID, askTranscript = "", "", ""
	chatFile, chatSessionID = "", ""
	clearSessionID = ""
	tuiFile, tuiSessionID = "", ""
	envFile = ""
	verbose = false
	ephemeral = false
	resetChanged(rootCmd)
}

// resetChanged clears parse state so required and "only changed" flags
// behave the same in every test.
func resetChanged(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetChanged(sub)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (stdout, stderr string, err error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (stdout, stderr string, err error) {
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}
