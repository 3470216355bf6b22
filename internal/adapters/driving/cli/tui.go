package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui"
)

var (
	tuiFile      string
	tuiSessionID string
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for sercha-rag.

The TUI shows the chat transcript, takes questions and uploads documents.
Prompt templates are reloaded while it runs.

Controls:
  Enter    - Send question / Select
  Ctrl+O   - Upload a document
  Ctrl+L   - Clear history and document
  PgUp/Dn  - Scroll transcript
  Esc      - Back
  F1       - Help
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiFile, "file", "f", "", "document to process before starting")
	tuiCmd.Flags().StringVarP(&tuiSessionID, "session", "s", "", "session to resume")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := requireServices(cmd); err != nil {
		return err
	}

	sessionID, err := openSession(cmd.Context(), tuiSessionID)
	if err != nil {
		return err
	}
	if tuiFile != "" {
		if _, err := processFile(cmd.Context(), sessionID, tuiFile); err != nil {
			return err
		}
	}

	ports := tui.NewPorts(sessionService, documentService, chatService)
	ports.SessionID = sessionID
	ports.PromptChanges = promptChanges

	// Create the TUI app
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Set up context from command
	app.WithContext(cmd.Context())

	// Create and run the bubbletea program
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
