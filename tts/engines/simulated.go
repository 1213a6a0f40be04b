package engines

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/docreader/tts"
)

// VoiceDirectory supplies the voice list for the simulated engine.
type VoiceDirectory interface {
	TTSVoices(ctx context.Context) ([]tts.Voice, error)
}

// Timer is a pending callback created by a Clock.
type Timer interface {
	Stop() bool
}

// Clock schedules the simulated engine's completion timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Simulated stands in for a speech engine on hosts without one. Each
// utterance "plays" for a time proportional to its length and then
// completes; nothing is audible.
type Simulated struct {
	dir          VoiceDirectory
	clock        Clock
	charDuration time.Duration
	logger       *log.Logger

	mu        sync.Mutex
	voices    []tts.Voice
	listeners []func([]tts.Voice)
	current   *simHandle
	closed    bool
}

type simHandle struct {
	id   string
	s    *Simulated
	done func(error)

	timer     Timer
	started   time.Time
	remaining time.Duration
	paused    bool
}

func (h *simHandle) ID() string { return h.id }

func (h *simHandle) Cancel() { h.s.cancel(h) }

// SimulatedOption configures a Simulated engine.
type SimulatedOption func(*Simulated)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) SimulatedOption {
	return func(s *Simulated) {
		s.clock = c
	}
}

// WithCharDuration sets the simulated time per character at speed 1.0.
func WithCharDuration(d time.Duration) SimulatedOption {
	return func(s *Simulated) {
		if d > 0 {
			s.charDuration = d
		}
	}
}

// WithSimulatedLogger sets the engine logger.
func WithSimulatedLogger(l *log.Logger) SimulatedOption {
	return func(s *Simulated) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSimulated creates a simulated engine. Voices stay empty until Load
// succeeds.
func NewSimulated(dir VoiceDirectory, opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		dir:          dir,
		clock:        realClock{},
		charDuration: tts.DefaultSimulatedConfig().CharDuration,
		logger:       log.Default().WithPrefix("sim"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the voice list from the directory and notifies listeners.
func (s *Simulated) Load(ctx context.Context) error {
	if s.dir == nil {
		return nil
	}

	voices, err := s.dir.TTSVoices(ctx)
	if err != nil {
		return fmt.Errorf("load voices: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return tts.ErrEngineClosed
	}
	s.voices = slices.Clone(voices)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.logger.Debug("voices loaded", "count", len(voices))
	for _, fn := range listeners {
		fn(slices.Clone(voices))
	}
	return nil
}

// Kind implements tts.Speech.
func (s *Simulated) Kind() tts.SpeechKind { return tts.KindSimulated }

// Voices implements tts.Speech.
func (s *Simulated) Voices() []tts.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.voices)
}

// OnVoicesChanged implements tts.Speech.
func (s *Simulated) OnVoicesChanged(fn func([]tts.Voice)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Duration returns how long text plays at speed.
func (s *Simulated) Duration(text string, speed float64) time.Duration {
	if speed <= 0 {
		speed = tts.DefaultSpeed
	}
	n := utf8.RuneCountInString(text)
	return time.Duration(float64(n) * float64(s.charDuration) / speed)
}

// Speak implements tts.Speech.
func (s *Simulated) Speak(u tts.Utterance, done func(error)) (tts.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, tts.ErrEngineClosed
	}
	s.stopLocked()

	h := &simHandle{
		id:        uuid.NewString(),
		s:         s,
		done:      done,
		remaining: s.Duration(u.Text, u.Speed),
	}
	s.current = h
	s.startLocked(h)

	s.logger.Debug("speaking", "utterance", h.id, "duration", h.remaining)
	return h, nil
}

// CancelAll implements tts.Speech.
func (s *Simulated) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// PauseActive stops the running timer and keeps the time left on it.
func (s *Simulated) PauseActive() {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.current
	if h == nil || h.paused {
		return
	}
	// A timer that already fired completes normally.
	if !h.timer.Stop() {
		return
	}
	h.paused = true
	h.remaining -= s.clock.Now().Sub(h.started)
	if h.remaining < 0 {
		h.remaining = 0
	}
}

// ResumeActive restarts the timer with the time left when paused.
func (s *Simulated) ResumeActive() {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.current
	if h == nil || !h.paused {
		return
	}
	h.paused = false
	s.startLocked(h)
}

// Close implements tts.Speech.
func (s *Simulated) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
	return nil
}

func (s *Simulated) startLocked(h *simHandle) {
	h.started = s.clock.Now()
	h.timer = s.clock.AfterFunc(h.remaining, func() { s.fire(h) })
}

func (s *Simulated) stopLocked() {
	if s.current == nil {
		return
	}
	if s.current.timer != nil {
		s.current.timer.Stop()
	}
	s.current = nil
}

func (s *Simulated) cancel(h *simHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == h {
		s.stopLocked()
	}
}

func (s *Simulated) fire(h *simHandle) {
	s.mu.Lock()
	if s.current != h || h.paused {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.mu.Unlock()

	h.done(nil)
}
