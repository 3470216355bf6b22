package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	askFile       string
	askSessionID  string
	askTranscript string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a document",
	Long: `Answer a single question from a document.

Either --file processes a document first, or --session resumes a session
created by 'process'. With --transcript the session transcript is written
as json or yaml after the answer.`,
	Example: `  sercha-rag ask --file report.pdf "What is the conclusion?"
  sercha-rag ask --session 3f2a... "Who wrote it?" --transcript yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "document to process before asking")
	askCmd.Flags().StringVarP(&askSessionID, "session", "s", "", "session created by 'process'")
	askCmd.Flags().StringVar(&askTranscript, "transcript", "", "also print the transcript (json or yaml)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askFile == "" && askSessionID == "" {
		return errors.New("either --file or --session is required")
	}
	if askTranscript != "" && !validTranscriptFormat(askTranscript) {
		return errUnknownFormat(askTranscript)
	}
	if err := requireServices(cmd); err != nil {
		return err
	}

	sessionID, err := openSession(cmd.Context(), askSessionID)
	if err != nil {
		return err
	}
	if askFile != "" {
		result, err := processFile(cmd.Context(), sessionID, askFile)
		if err != nil {
			return err
		}
		cmd.Printf("Processed %d chunks\n\n", result.ChunkCount)
	}

	answer, err := chatService.Ask(cmd.Context(), sessionID, args[0])
	if answer == nil {
		return err
	}
	cmd.Println(answer.Text)
	if err != nil && domain.Classify(err).IsBanner() {
		return err
	}

	if askTranscript != "" {
		turns, err := sessionService.History(sessionID)
		if err != nil {
			return err
		}
		cmd.Println()
		if err := writeTranscript(cmd.OutOrStdout(), turns, askTranscript); err != nil {
			return err
		}
	}

	if answer.Failed() {
		return errAnswerFailed
	}
	return nil
}

// errAnswerFailed gives a failed answer a non-zero exit status. The
// assistant turn has already been printed.
var errAnswerFailed = errors.New("question could not be answered")
