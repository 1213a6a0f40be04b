package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads TTS configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.engine") {
		cfg.Engine = viper.GetString("tts.engine")
	}
	if viper.IsSet("tts.language") {
		cfg.Language = viper.GetString("tts.language")
	}
	if viper.IsSet("tts.voice") {
		cfg.Voice = viper.GetString("tts.voice")
	}

	// Playback settings
	if viper.IsSet("tts.speed") {
		cfg.Speed = viper.GetFloat64("tts.speed")
	}
	if viper.IsSet("tts.cache_size") {
		cfg.CacheSize = viper.GetInt("tts.cache_size")
	}

	// Visual settings
	if viper.IsSet("tts.highlight_enabled") {
		cfg.HighlightEnabled = viper.GetBool("tts.highlight_enabled")
	}
	if viper.IsSet("tts.highlight_color") {
		cfg.HighlightColor = viper.GetString("tts.highlight_color")
	}
	if viper.IsSet("tts.show_progress") {
		cfg.ShowProgress = viper.GetBool("tts.show_progress")
	}

	cfg.Espeak = loadEspeakConfig()
	cfg.Simulated = loadSimulatedConfig()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return cfg, nil
}

// loadEspeakConfig loads eSpeak-specific configuration from Viper.
func loadEspeakConfig() EspeakConfig {
	cfg := DefaultEspeakConfig()

	if viper.IsSet("tts.espeak.binary") {
		cfg.Binary = viper.GetString("tts.espeak.binary")
	}
	if viper.IsSet("tts.espeak.words_per_minute") {
		cfg.WordsPerMinute = viper.GetInt("tts.espeak.words_per_minute")
	}

	return cfg
}

// loadSimulatedConfig loads simulated engine configuration from Viper.
func loadSimulatedConfig() SimulatedConfig {
	cfg := DefaultSimulatedConfig()

	if viper.IsSet("tts.simulated.char_duration") {
		if d, err := time.ParseDuration(viper.GetString("tts.simulated.char_duration")); err == nil {
			cfg.CharDuration = d
		}
	}
	if viper.IsSet("tts.simulated.voice_latency") {
		if d, err := time.ParseDuration(viper.GetString("tts.simulated.voice_latency")); err == nil {
			cfg.VoiceLatency = d
		}
	}

	return cfg
}

// SetDefaults sets default values in Viper for TTS configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.engine", defaults.Engine)
	viper.SetDefault("tts.language", defaults.Language)

	// Playback settings
	viper.SetDefault("tts.speed", defaults.Speed)
	viper.SetDefault("tts.cache_size", defaults.CacheSize)

	// Visual settings
	viper.SetDefault("tts.highlight_enabled", defaults.HighlightEnabled)
	viper.SetDefault("tts.highlight_color", defaults.HighlightColor)
	viper.SetDefault("tts.show_progress", defaults.ShowProgress)

	// eSpeak defaults
	viper.SetDefault("tts.espeak.words_per_minute", defaults.Espeak.WordsPerMinute)

	// Simulated defaults
	viper.SetDefault("tts.simulated.char_duration", defaults.Simulated.CharDuration.String())
	viper.SetDefault("tts.simulated.voice_latency", defaults.Simulated.VoiceLatency.String())
}
