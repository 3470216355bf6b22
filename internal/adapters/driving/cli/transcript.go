package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Transcript formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validTranscriptFormat(format string) bool {
	switch format {
	case formatText, formatJSON, formatYAML:
		return true
	}
	return false
}

func errUnknownFormat(format string) error {
	return fmt.Errorf("unknown transcript format %q (use %s, %s or %s)", format, formatText, formatJSON, formatYAML)
}

// writeTranscript writes turns in display order.
func writeTranscript(w io.Writer, turns []domain.Turn, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if turns == nil {
			turns = []domain.Turn{}
		}
		return enc.Encode(turns)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(turns); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		for _, turn := range turns {
			if _, err := fmt.Fprintf(w, "%s: %s\n", roleLabel(turn.Role), turn.Text); err != nil {
				return err
			}
		}
		return nil
	default:
		return errUnknownFormat(format)
	}
}

func roleLabel(role domain.Role) string {
	switch role {
	case domain.RoleUser:
		return "You"
	case domain.RoleAssistant:
		return "Assistant"
	default:
		return strings.ToUpper(string(role))
	}
}
