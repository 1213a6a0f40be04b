package ui

// Config contains TUI-specific configuration.
type Config struct {
	EnableMouse bool `env:"DOCREADER_MOUSE"`

	// Sentence highlighting, taken from the TTS configuration
	Highlight      bool
	HighlightColor string
	ShowProgress   bool

	// For debugging the UI
	HighPerformancePager bool `env:"DOCREADER_HIGH_PERFORMANCE_PAGER" envDefault:"true"`
}
