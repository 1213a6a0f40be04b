package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/docreader/tts"
	"github.com/dgnsrekt/docreader/tts/engines/espeak"
)

var (
	checkInstalled = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render
	checkMissing   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render
	checkOptional  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Check which speech engine can be used",
		Long:  paragraph(fmt.Sprintf("\n%s that the speech engine selected by the configuration is installed.", keyword("Check"))),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := espeak.Check(cmd.Context(), ttsConfig.Espeak.Binary)
			return printCheck(os.Stdout, ttsConfig.Engine, status)
		},
	}
)

// printCheck reports the engine status. It fails only when espeak was
// requested explicitly and is missing.
func printCheck(w io.Writer, engine string, status espeak.Status) error {
	fmt.Fprintln(w, header("Speech engine"))
	fmt.Fprintf(w, "  configured: %s\n\n", engine)

	switch {
	case status.Installed:
		version := status.Version
		if version == "" {
			version = "unknown version"
		}
		fmt.Fprintf(w, "  %s %s %s\n", checkInstalled("✓ "+status.Name+":"), status.Path, faint(version))
	case engine == tts.EngineEspeak:
		fmt.Fprintf(w, "  %s not installed\n    %s\n", checkMissing("✗ "+status.Name+":"), status.Instructions)
	default:
		fmt.Fprintf(w, "  %s not installed (optional)\n    %s\n", checkOptional("○ "+status.Name+":"), status.Instructions)
	}

	fmt.Fprintf(w, "  %s always available\n", checkInstalled("✓ simulated:"))

	if engine == tts.EngineEspeak && !status.Installed {
		return fmt.Errorf("%w: %s", tts.ErrEngineNotAvailable, status.Name)
	}
	if engine != tts.EngineSimulated && !status.Installed {
		fmt.Fprintf(w, "\n  %s\n", faint("Documents will be read with simulated playback."))
	}
	return nil
}
