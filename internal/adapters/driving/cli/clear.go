package cli

import (
	"github.com/spf13/cobra"
)

var clearSessionID string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear a session's history and document",
	Long: `Reset a session created by 'process'. The transcript and the indexed
document are removed; follow-up questions need a new upload.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().StringVarP(&clearSessionID, "session", "s", "", "session to clear")
	_ = clearCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	sessionID, err := openSession(cmd.Context(), clearSessionID)
	if err != nil {
		return err
	}
	if err := sessionService.ClearHistory(cmd.Context(), sessionID); err != nil {
		return err
	}

	cmd.Printf("Session %s cleared\n", sessionID)
	return nil
}
