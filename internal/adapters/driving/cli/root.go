// Package cli provides the cobra command tree for sercha-rag.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set by SetVersion from build flags.
var version = "dev"

// defaultEnvFile is loaded when present. A missing file is not an error.
const defaultEnvFile = ".env"

// Root flags.
var (
	verbose   bool
	ephemeral bool
	envFile   string
)

// Services are the driving ports the commands run against.
type Services struct {
	Session  driving.SessionService
	Document driving.DocumentService
	Chat     driving.ChatService

	// PromptChanges reports edited prompt names. May be nil.
	PromptChanges <-chan string

	// Warnings are shown once before the command runs.
	Warnings []string

	// Close releases provider and index resources. May be nil.
	Close func()
}

// Options are the root flags that change how services are built.
type Options struct {
	// Ephemeral keeps session indexes in memory.
	Ephemeral bool
}

// Wiring builds services after flags are parsed, so that --ephemeral and
// the .env file take effect.
type Wiring struct {
	Settings func(opts Options) (driving.SettingsService, error)
	Services func(ctx context.Context, opts Options, settings driving.SettingsService) (*Services, error)
}

var (
	wiring          Wiring
	settingsService driving.SettingsService
	sessionService  driving.SessionService
	documentService driving.DocumentService
	chatService     driving.ChatService
	promptChanges   <-chan string
	closeServices   func()
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Chat with your documents",
	Long: `sercha-rag indexes a PDF, text or Markdown document and answers
questions about it with retrieval-augmented generation.

Upload a document with 'process', then ask questions with 'ask' or start
an interactive session with 'chat' or 'tui'.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace pipeline stages to stderr")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep session indexes in memory")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load provider API keys from this file (default .env)")
}

// SetVersion sets the version shown by the version command.
func SetVersion(v string) {
	version = v
}

// SetWiring sets the factories used to build services on demand.
func SetWiring(w Wiring) {
	wiring = w
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			closeServices()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func persistentPreRun(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	return loadEnv(envFile)
}

// loadEnv loads provider keys without overriding the environment.
func loadEnv(path string) error {
	if path == "" {
		err := godotenv.Load(defaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", defaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	logger.Debug("loaded environment from %s", path)
	return nil
}

func options() Options {
	return Options{Ephemeral: ephemeral}
}

// requireSettings returns the settings service, building it on first use.
func requireSettings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if wiring.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	svc, err := wiring.Settings(options())
	if err != nil {
		return nil, err
	}
	settingsService = svc
	return svc, nil
}

// requireServices builds the session, document and chat services on first use.
func requireServices(cmd *cobra.Command) error {
	if sessionService != nil && documentService != nil && chatService != nil {
		return nil
	}
	if wiring.Services == nil {
		return errors.New("services not configured")
	}

	settings, err := requireSettings()
	if err != nil {
		return err
	}

	svc, err := wiring.Services(cmd.Context(), options(), settings)
	if err != nil {
		return err
	}
	for _, w := range svc.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	sessionService = svc.Session
	documentService = svc.Document
	chatService = svc.Chat
	promptChanges = svc.PromptChanges
	closeServices = svc.Close
	return nil
}
