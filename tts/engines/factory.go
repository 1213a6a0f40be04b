package engines

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/docreader/tts"
	"github.com/dgnsrekt/docreader/tts/engines/espeak"
)

// New selects a Speech implementation for cfg.Engine. With "auto", espeak
// is used when installed and the simulated engine otherwise; an unavailable
// platform engine is not an error in that mode. Voice lists load in the
// background and are delivered through OnVoicesChanged.
func New(ctx context.Context, cfg tts.Config, dir VoiceDirectory, logger *log.Logger) (tts.Speech, error) {
	if logger == nil {
		logger = log.Default()
	}

	switch cfg.Engine {
	case tts.EngineSimulated:
		return newSimulated(ctx, cfg, dir, logger), nil

	case tts.EngineEspeak, tts.EngineAuto, "":
		speech, err := newEspeak(ctx, cfg, logger)
		if err == nil {
			return speech, nil
		}
		if cfg.Engine == tts.EngineEspeak || !errors.Is(err, tts.ErrEngineNotAvailable) {
			return nil, err
		}
		logger.Info("no speech engine found, using simulated playback", "reason", err)
		return newSimulated(ctx, cfg, dir, logger), nil

	default:
		return nil, fmt.Errorf("%w: unknown engine %q", tts.ErrInvalidConfig, cfg.Engine)
	}
}

func newEspeak(ctx context.Context, cfg tts.Config, logger *log.Logger) (tts.Speech, error) {
	binding, err := espeak.New(cfg.Espeak, logger.WithPrefix("espeak"))
	if err != nil {
		return nil, err
	}

	native := NewNative(binding, logger.WithPrefix("native"))
	go func() {
		if err := binding.LoadVoices(ctx); err != nil {
			logger.Warn("could not list espeak voices", "error", err)
		}
	}()
	return native, nil
}

func newSimulated(ctx context.Context, cfg tts.Config, dir VoiceDirectory, logger *log.Logger) tts.Speech {
	sim := NewSimulated(dir,
		WithCharDuration(cfg.Simulated.CharDuration),
		WithSimulatedLogger(logger.WithPrefix("sim")),
	)
	go func() {
		if err := sim.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("could not load voices", "error", err)
		}
	}()
	return sim
}
