package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# mouse support: click a sentence to jump to it
mouse: false
# extra YAML catalog of documents and voices
# catalog: "~/.config/docreader/catalog.yml"
# reload the document when its file changes
watch: false

# Text-to-speech configuration
tts:
  # Engine: auto, espeak or simulated. auto uses espeak when installed.
  engine: "auto"
  # Preferred voice language (BCP 47)
  language: "en"
  # Voice id to select when available
  # voice: "en-gb"
  # Playback speed: 0.5, 0.75, 1, 1.25, 1.5 or 2
  speed: 1.0
  # Number of segmented documents kept in memory
  cache_size: 32

  # Visual settings
  highlight_enabled: true
  highlight_color: "yellow"
  show_progress: true

  # eSpeak NG engine configuration
  espeak:
    # binary: "espeak-ng"
    words_per_minute: 175

  # Simulated engine configuration, used when no speech engine is installed
  simulated:
    char_duration: "50ms"
    voice_latency: "300ms"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the docreader config file",
	Long:    paragraph(fmt.Sprintf("\n%s the docreader config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("docreader config\ndocreader config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("docreader", configFile)
		if err != nil {
			return fmt.Errorf("unable to open editor: %w", err)
		}
		c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("editor exited: %w", err)
		}

		fmt.Println("Config file:", configFile)
		return nil
	},
}

// ensureConfigFile writes defaultConfig to configFile unless it already
// exists. An unset configFile falls back to the file viper picked.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no config file location found, pass --config")
	}

	switch ext := filepath.Ext(configFile); ext {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("%q is not a supported configuration type: use .yaml or .yml", ext)
	}

	_, err := os.Stat(configFile)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("unable to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	log.Info("created config file", "path", configFile)
	return nil
}
