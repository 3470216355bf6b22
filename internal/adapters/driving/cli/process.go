package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var processSessionID string

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Index a document into a chat session",
	Long: `Extract, chunk and index a PDF, text or Markdown file.

A new session is created unless --session names an existing one, in which
case its document and transcript are replaced. The session id is printed
so that later 'ask' and 'chat' runs can resume it.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processSessionID, "session", "s", "", "session to replace the document of")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	sessionID, err := openSession(cmd.Context(), processSessionID)
	if err != nil {
		return err
	}

	result, err := processFile(cmd.Context(), sessionID, args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Processed %d chunks\n", result.ChunkCount)
	cmd.Printf("Session: %s\n", result.SessionID)
	return nil
}

// openSession starts a session, or resumes id from a previous run.
func openSession(ctx context.Context, id string) (string, error) {
	if id == "" {
		return sessionService.Start(), nil
	}
	if err := sessionService.Resume(ctx, id); err != nil {
		return "", fmt.Errorf("resuming session %s: %w", id, err)
	}
	return id, nil
}

// processFile reads path and indexes it into the session.
func processFile(ctx context.Context, sessionID, path string) (*domain.ProcessResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageIO, err)
	}

	return documentService.Process(ctx, sessionID, domain.RawDocument{
		Name:    filepath.Base(path),
		Content: content,
	})
}
