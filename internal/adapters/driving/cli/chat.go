package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	chatFile      string
	chatSessionID string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about a document in the terminal",
	Long: `Start a line-based chat about a document.

Commands:
  /upload PATH           - Process a new document, replacing the current one
  /history [json|yaml]   - Show the transcript
  /clear                 - Clear the transcript and the document
  /quit                  - Leave the chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatFile, "file", "f", "", "document to process first")
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "session created by 'process'")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	sessionID, err := openSession(cmd.Context(), chatSessionID)
	if err != nil {
		return err
	}
	if chatFile != "" {
		if err := chatUpload(cmd, sessionID, chatFile); err != nil {
			return err
		}
	}

	cmd.Printf("Session %s. Type /quit to leave.\n", sessionID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			chatAsk(cmd, sessionID, line)
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "/quit", "/exit":
			return nil
		case "/upload":
			if arg == "" {
				cmd.Println("Usage: /upload PATH")
				continue
			}
			if err := chatUpload(cmd, sessionID, arg); err != nil {
				printBanner(cmd, err)
			}
		case "/history":
			chatHistory(cmd, sessionID, arg)
		case "/clear":
			if err := sessionService.ClearHistory(cmd.Context(), sessionID); err != nil {
				printBanner(cmd, err)
				continue
			}
			cmd.Println("Chat history cleared. Upload a document to continue.")
		default:
			cmd.Printf("Unknown command %s\n", name)
		}
	}
}

func chatUpload(cmd *cobra.Command, sessionID, path string) error {
	result, err := processFile(cmd.Context(), sessionID, path)
	if err != nil {
		return err
	}
	cmd.Printf("Processed %d chunks from %s\n", result.ChunkCount, result.DocumentName)
	return nil
}

func chatAsk(cmd *cobra.Command, sessionID, question string) {
	answer, err := chatService.Ask(cmd.Context(), sessionID, question)
	if answer != nil {
		cmd.Printf("%s: %s\n", roleLabel(domain.RoleAssistant), answer.Text)
	}
	if err != nil && (answer == nil || domain.Classify(err).IsBanner()) {
		printBanner(cmd, err)
	}
}

func chatHistory(cmd *cobra.Command, sessionID, format string) {
	if format != "" && !validTranscriptFormat(format) {
		printBanner(cmd, errUnknownFormat(format))
		return
	}
	turns, err := sessionService.History(sessionID)
	if err != nil {
		printBanner(cmd, err)
		return
	}
	if len(turns) == 0 {
		cmd.Println("No messages yet.")
		return
	}
	if err := writeTranscript(cmd.OutOrStdout(), turns, format); err != nil {
		printBanner(cmd, err)
	}
}

// printBanner reports an error that is not part of the transcript.
func printBanner(cmd *cobra.Command, err error) {
	cmd.PrintErrf("Error (%s): %v\n", domain.Classify(err), err)
}
