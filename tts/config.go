package tts

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Engine names accepted by Config.Engine.
const (
	EngineAuto      = "auto"
	EngineEspeak    = "espeak"
	EngineSimulated = "simulated"
)

// Config contains all TTS configuration options.
type Config struct {
	// Engine selection: auto picks espeak when installed, else simulated.
	Engine   string `yaml:"engine" env:"DOCREADER_TTS_ENGINE" envDefault:"auto"`
	Language string `yaml:"language" env:"DOCREADER_TTS_LANGUAGE" envDefault:"en"`
	Voice    string `yaml:"voice" env:"DOCREADER_TTS_VOICE"`

	// Playback settings
	Speed     float64 `yaml:"speed" env:"DOCREADER_TTS_SPEED" envDefault:"1.0"`
	CacheSize int     `yaml:"cache_size" env:"DOCREADER_TTS_CACHE_SIZE" envDefault:"32"`

	// Visual settings
	HighlightEnabled bool   `yaml:"highlight_enabled" env:"DOCREADER_TTS_HIGHLIGHT_ENABLED" envDefault:"true"`
	HighlightColor   string `yaml:"highlight_color" env:"DOCREADER_TTS_HIGHLIGHT_COLOR" envDefault:"yellow"`
	ShowProgress     bool   `yaml:"show_progress" env:"DOCREADER_TTS_SHOW_PROGRESS" envDefault:"true"`

	// Engine-specific configurations
	Espeak    EspeakConfig    `yaml:"espeak"`
	Simulated SimulatedConfig `yaml:"simulated"`
}

// EspeakConfig contains eSpeak engine specific settings.
type EspeakConfig struct {
	Binary         string `yaml:"binary" env:"DOCREADER_TTS_ESPEAK_BINARY"`
	WordsPerMinute int    `yaml:"words_per_minute" env:"DOCREADER_TTS_ESPEAK_WPM" envDefault:"175"`
}

// SimulatedConfig contains settings for the simulated fallback engine.
type SimulatedConfig struct {
	CharDuration time.Duration `yaml:"char_duration" env:"DOCREADER_TTS_SIM_CHAR_DURATION" envDefault:"50ms"`
	VoiceLatency time.Duration `yaml:"voice_latency" env:"DOCREADER_TTS_SIM_VOICE_LATENCY" envDefault:"300ms"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:   EngineAuto,
		Language: DefaultLanguage,

		Speed:     DefaultSpeed,
		CacheSize: 32,

		HighlightEnabled: true,
		HighlightColor:   "yellow",
		ShowProgress:     true,

		Espeak:    DefaultEspeakConfig(),
		Simulated: DefaultSimulatedConfig(),
	}
}

// DefaultEspeakConfig returns default eSpeak configuration. An empty binary
// means espeak-ng, then espeak, are looked up on PATH.
func DefaultEspeakConfig() EspeakConfig {
	return EspeakConfig{
		WordsPerMinute: 175,
	}
}

// DefaultSimulatedConfig returns default simulated engine configuration.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		CharDuration: 50 * time.Millisecond,
		VoiceLatency: 300 * time.Millisecond,
	}
}

var (
	validEngines = []string{EngineAuto, EngineEspeak, EngineSimulated}
	validColors  = []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white", "none"}
)

// Validate checks if the configuration is valid. It normalizes the engine
// name, language tag, highlight color and speed in place.
func (c *Config) Validate() error {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if !slices.Contains(validEngines, c.Engine) {
		return fmt.Errorf("%w: invalid TTS engine '%s': must be one of %v", ErrInvalidConfig, c.Engine, validEngines)
	}

	tag, err := language.Parse(strings.ReplaceAll(c.Language, "_", "-"))
	if err != nil {
		return fmt.Errorf("%w: invalid language %q: %v", ErrInvalidConfig, c.Language, err)
	}
	c.Language = tag.String()

	if c.Speed < MinSpeed || c.Speed > MaxSpeed {
		return fmt.Errorf("%w: speed must be between %.2f and %.2f, got %.2f", ErrInvalidConfig, MinSpeed, MaxSpeed, c.Speed)
	}
	c.Speed = SnapSpeed(c.Speed)

	if c.CacheSize < 1 || c.CacheSize > 1024 {
		return fmt.Errorf("%w: cache_size must be between 1 and 1024, got %d", ErrInvalidConfig, c.CacheSize)
	}

	c.HighlightColor = strings.ToLower(c.HighlightColor)
	if !slices.Contains(validColors, c.HighlightColor) {
		return fmt.Errorf("%w: invalid highlight color '%s': must be one of %v", ErrInvalidConfig, c.HighlightColor, validColors)
	}

	if err := c.Espeak.Validate(); err != nil {
		return fmt.Errorf("espeak config: %w", err)
	}
	if err := c.Simulated.Validate(); err != nil {
		return fmt.Errorf("simulated config: %w", err)
	}

	return nil
}

// Validate checks if the eSpeak configuration is valid.
func (c *EspeakConfig) Validate() error {
	if c.WordsPerMinute < 80 || c.WordsPerMinute > 450 {
		return fmt.Errorf("%w: words_per_minute must be between 80 and 450, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}
	return nil
}

// Validate checks if the simulated engine configuration is valid.
func (c *SimulatedConfig) Validate() error {
	if c.CharDuration <= 0 || c.CharDuration > time.Second {
		return fmt.Errorf("%w: char_duration must be in (0, 1s], got %v", ErrInvalidConfig, c.CharDuration)
	}
	if c.VoiceLatency < 0 || c.VoiceLatency > 10*time.Second {
		return fmt.Errorf("%w: voice_latency must be in [0, 10s], got %v", ErrInvalidConfig, c.VoiceLatency)
	}
	return nil
}

// ControllerOptions converts the configuration into controller options.
func (c *Config) ControllerOptions() []Option {
	return []Option{
		WithLanguage(c.Language),
		WithVoice(c.Voice),
		WithSpeed(c.Speed),
	}
}
