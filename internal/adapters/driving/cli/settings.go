package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, the LLM provider and the
retrieval parameters.

Settings are stored in ~/.sercha-rag/config.toml. API keys may instead be
provided through GROQ_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY, either
in the environment or in a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index documents and questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that answers questions.`,
	RunE:  runSettingsLLM,
}

var settingsRAGCmd = &cobra.Command{
	Use:   "rag",
	Short: "Set retrieval and chunking parameters",
	Long: `Set retrieval and chunking parameters. Only the flags given are changed.

Chunking changes apply to documents processed afterwards.`,
	Example: `  sercha-rag settings rag --top-k 8 --temperature 0.2
  sercha-rag settings rag --chunk-size 800 --chunk-overlap 100`,
	Args: cobra.NoArgs,
	RunE: runSettingsRAG,
}

func init() {
	flags := settingsRAGCmd.Flags()
	flags.Int("top-k", domain.DefaultTopK, "chunks retrieved per question")
	flags.Float64("temperature", domain.DefaultTemperature, "LLM sampling temperature (0-2)")
	flags.Int("chunk-size", domain.DefaultChunkSize, "maximum chunk length in characters")
	flags.Int("chunk-overlap", domain.DefaultChunkOverlap, "characters shared by neighbouring chunks")
	flags.Duration("generate-timeout", 0, "timeout for one LLM call (0 = none)")
	flags.String("index-dir", "", "root directory for session indexes")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsRAGCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settingsService, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())

	// LLM settings
	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	// Retrieval settings
	rag := settings.RAG
	cmd.Println("[RAG]")
	cmd.Printf("  Top K: %d\n", rag.TopK)
	cmd.Printf("  Temperature: %g\n", rag.Temperature)
	cmd.Printf("  Chunk size: %d\n", rag.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", rag.ChunkOverlap)
	if rag.GenerateTimeout > 0 {
		cmd.Printf("  Generate timeout: %s\n", rag.GenerateTimeout)
	} else {
		cmd.Printf("  Generate timeout: none\n")
	}
	if rag.IndexDir != "" {
		cmd.Printf("  Index dir: %s\n", rag.IndexDir)
	} else {
		cmd.Printf("  Index dir: (user cache)\n")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'sercha-rag settings llm' or 'sercha-rag settings embedding' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set, export %s)\n", provider.APIKeyEnv())
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsRAG(cmd *cobra.Command, _ []string) error {
	settingsService, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	rag := settings.RAG
	flags := cmd.Flags()
	changed := 0
	if flags.Changed("top-k") {
		rag.TopK, _ = flags.GetInt("top-k")
		changed++
	}
	if flags.Changed("temperature") {
		rag.Temperature, _ = flags.GetFloat64("temperature")
		changed++
	}
	if flags.Changed("chunk-size") {
		rag.ChunkSize, _ = flags.GetInt("chunk-size")
		changed++
	}
	if flags.Changed("chunk-overlap") {
		rag.ChunkOverlap, _ = flags.GetInt("chunk-overlap")
		changed++
	}
	if flags.Changed("generate-timeout") {
		rag.GenerateTimeout, _ = flags.GetDuration("generate-timeout")
		changed++
	}
	if flags.Changed("index-dir") {
		rag.IndexDir, _ = flags.GetString("index-dir")
		changed++
	}
	if changed == 0 {
		return cmd.Help()
	}

	if err := settingsService.SetRAG(rag); err != nil {
		return fmt.Errorf("failed to save RAG settings: %w", err)
	}

	cmd.Printf("Updated %d RAG setting(s)\n", changed)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	settingsService, err := requireSettings()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader, settingsService)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	settingsService, err := requireSettings()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader, settingsService)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader, settingsService driving.SettingsService) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Printf("Enter API key [$%s]: ", selectedProvider.APIKeyEnv())
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" && os.Getenv(selectedProvider.APIKeyEnv()) == "" {
			return fmt.Errorf("API key is required for this provider (or set %s)", selectedProvider.APIKeyEnv())
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader, settingsService driving.SettingsService) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Printf("Enter API key [$%s]: ", selectedProvider.APIKeyEnv())
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" && os.Getenv(selectedProvider.APIKeyEnv()) == "" {
			return fmt.Errorf("API key is required for this provider (or set %s)", selectedProvider.APIKeyEnv())
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when stdin is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
