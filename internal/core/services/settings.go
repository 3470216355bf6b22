package services

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyRAGTopK         = "rag.top_k"
	keyRAGTemperature  = "rag.temperature"
	keyRAGChunkSize    = "rag.chunk_size"
	keyRAGChunkOverlap = "rag.chunk_overlap"
	keyRAGTimeout      = "rag.generate_timeout"
	keyRAGIndexDir     = "rag.index_dir"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// Provider API keys fall back to their environment variables when unset.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	timeout, err := s.getDuration(keyRAGTimeout, defaults.RAG.GenerateTimeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.getBaseURL(keyEmbedBaseURL, embedProvider),
			APIKey:   s.getAPIKey(keyEmbedAPIKey, embedProvider),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.getBaseURL(keyLLMBaseURL, llmProvider),
			APIKey:   s.getAPIKey(keyLLMAPIKey, llmProvider),
		},
		RAG: domain.RAGSettings{
			TopK:            s.getInt(keyRAGTopK, defaults.RAG.TopK),
			Temperature:     s.getFloat(keyRAGTemperature, defaults.RAG.Temperature),
			ChunkSize:       s.getInt(keyRAGChunkSize, defaults.RAG.ChunkSize),
			ChunkOverlap:    s.getInt(keyRAGChunkOverlap, defaults.RAG.ChunkOverlap),
			GenerateTimeout: timeout,
			IndexDir:        s.configStore.GetString(keyRAGIndexDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
// API keys that only come from the environment are not written to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if s.shouldPersistKey(settings.Embedding.Provider, settings.Embedding.APIKey) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if s.shouldPersistKey(settings.LLM.Provider, settings.LLM.APIKey) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return s.saveRAG(settings.RAG)
}

func (s *SettingsService) saveRAG(rag domain.RAGSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyRAGTopK, rag.TopK},
		{keyRAGTemperature, rag.Temperature},
		{keyRAGChunkSize, rag.ChunkSize},
		{keyRAGChunkOverlap, rag.ChunkOverlap},
		{keyRAGTimeout, rag.GenerateTimeout.String()},
		{keyRAGIndexDir, rag.IndexDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrConfiguration, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrConfiguration, provider)
	}

	if apiKey == "" {
		apiKey = s.getenv(provider.APIKeyEnv())
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		settings.Embedding.BaseURL = localBaseURL(provider, settings.Embedding.BaseURL)
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	if !provider.RequiresAPIKey() {
		if err := s.configStore.Set(keyEmbedAPIKey, ""); err != nil {
			return fmt.Errorf("clear api key: %w", err)
		}
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrConfiguration, provider)
	}

	if apiKey == "" {
		apiKey = s.getenv(provider.APIKeyEnv())
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		settings.LLM.BaseURL = localBaseURL(provider, settings.LLM.BaseURL)
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey
	if !provider.RequiresAPIKey() {
		if err := s.configStore.Set(keyLLMAPIKey, ""); err != nil {
			return fmt.Errorf("clear api key: %w", err)
		}
	}

	return s.Save(settings)
}

// SetRAG updates retrieval and generation policy after validating it.
func (s *SettingsService) SetRAG(rag domain.RAGSettings) error {
	if err := rag.Validate(); err != nil {
		return err
	}
	return s.saveRAG(rag)
}

// Validate checks that both providers are configured and the RAG policy is sound.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}

	if !settings.LLM.IsConfigured() {
		if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
			return fmt.Errorf("%w: %s needs an API key; run 'sercha-rag settings llm' or set %s",
				domain.ErrConfiguration, settings.LLM.Provider.Description(), env)
		}
		return fmt.Errorf("%w: LLM provider %s is not configured", domain.ErrConfiguration, settings.LLM.Provider)
	}

	return settings.RAG.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt keeps an explicit 0 so that validation can reject it.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

// getFloat keeps an explicit 0, which is a valid temperature.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.GetFloat(key)
	if !ok {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrConfiguration, key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// getBaseURL defaults local providers to the Ollama endpoint.
// Empty is valid for cloud providers.
func (s *SettingsService) getBaseURL(key string, provider domain.AIProvider) string {
	return localBaseURL(provider, s.configStore.GetString(key))
}

// getAPIKey returns the configured key or the provider's environment variable.
func (s *SettingsService) getAPIKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	if env := provider.APIKeyEnv(); env != "" {
		return s.getenv(env)
	}
	return ""
}

func (s *SettingsService) shouldPersistKey(provider domain.AIProvider, apiKey string) bool {
	if apiKey == "" {
		return false
	}
	env := provider.APIKeyEnv()
	return env == "" || apiKey != s.getenv(env)
}

func localBaseURL(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return current
	}
	if current == "" {
		return domain.DefaultOllamaURL
	}
	return current
}
