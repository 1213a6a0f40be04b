// Package engines provides the Speech implementations driven by the
// playback controller.
package engines

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/docreader/tts"
)

const nativeVoicePrefix = "voice-"

// Native adapts a platform speech Binding to tts.Speech.
//
// Voice IDs are synthetic ("voice-<n>") and encode the voice's position in
// the binding's list, so they stay valid only until the next voice reload.
type Native struct {
	binding tts.Binding
	logger  *log.Logger

	mu        sync.Mutex
	system    []tts.SystemVoice
	voices    []tts.Voice
	listeners []func([]tts.Voice)
	current   *nativeHandle
	closed    bool
}

type nativeHandle struct {
	id   string
	n    *Native
	done func(error)
}

func (h *nativeHandle) ID() string { return h.id }

func (h *nativeHandle) Cancel() { h.n.cancel(h) }

// NewNative creates a Native speech over binding.
func NewNative(binding tts.Binding, logger *log.Logger) *Native {
	if logger == nil {
		logger = log.Default().WithPrefix("native")
	}
	n := &Native{
		binding: binding,
		logger:  logger,
	}
	binding.OnVoicesChanged(n.reloadVoices)
	n.reloadVoices()
	return n
}

// Kind implements tts.Speech.
func (n *Native) Kind() tts.SpeechKind { return tts.KindNative }

// Voices implements tts.Speech.
func (n *Native) Voices() []tts.Voice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.voices)
}

// OnVoicesChanged implements tts.Speech.
func (n *Native) OnVoicesChanged(fn func([]tts.Voice)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Speak implements tts.Speech. Any active utterance is canceled first.
func (n *Native) Speak(u tts.Utterance, done func(error)) (tts.Handle, error) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil, tts.ErrEngineClosed
	}

	replaced := n.current != nil
	h := &nativeHandle{id: uuid.NewString(), n: n, done: done}
	n.current = h

	su := &tts.SystemUtterance{
		Text: u.Text,
		Rate: u.Speed,
	}
	if u.Voice != nil {
		if sv, ok := n.systemVoiceLocked(u.Voice.ID); ok {
			su.Voice = &sv
		} else {
			n.logger.Debug("voice not in engine list, using default", "voice", u.Voice.ID)
		}
	}
	su.OnEnd = func() { n.finish(h, nil) }
	su.OnError = func(err error) { n.finish(h, err) }
	n.mu.Unlock()

	if replaced {
		n.binding.Cancel()
	}

	if err := n.binding.Speak(su); err != nil {
		n.mu.Lock()
		if n.current == h {
			n.current = nil
		}
		n.mu.Unlock()
		return nil, fmt.Errorf("speak: %w", err)
	}

	return h, nil
}

// CancelAll implements tts.Speech.
func (n *Native) CancelAll() {
	n.mu.Lock()
	n.current = nil
	n.mu.Unlock()
	n.binding.Cancel()
}

// PauseActive implements tts.Speech.
func (n *Native) PauseActive() {
	n.mu.Lock()
	active := n.current != nil
	n.mu.Unlock()
	if active {
		n.binding.Pause()
	}
}

// ResumeActive implements tts.Speech.
func (n *Native) ResumeActive() {
	n.mu.Lock()
	active := n.current != nil
	n.mu.Unlock()
	if active {
		n.binding.Resume()
	}
}

// Close cancels any utterance and closes the binding.
func (n *Native) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.current = nil
	n.mu.Unlock()

	n.binding.Cancel()
	return n.binding.Close()
}

func (n *Native) cancel(h *nativeHandle) {
	n.mu.Lock()
	if n.current != h {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.mu.Unlock()
	n.binding.Cancel()
}

// finish reports the end of h unless it was canceled or replaced. The
// binding may invoke callbacks from inside Speak or Cancel, so done always
// runs on its own goroutine.
func (n *Native) finish(h *nativeHandle, err error) {
	n.mu.Lock()
	if n.current != h {
		n.mu.Unlock()
		n.logger.Debug("stale engine callback dropped", "utterance", h.id)
		return
	}
	n.current = nil
	n.mu.Unlock()

	go h.done(err)
}

func (n *Native) reloadVoices() {
	system := n.binding.Voices()

	voices := make([]tts.Voice, len(system))
	for i, sv := range system {
		voices[i] = tts.Voice{
			ID:       nativeVoicePrefix + strconv.Itoa(i),
			Name:     sv.Name,
			Language: sv.Lang,
		}
	}

	n.mu.Lock()
	if slices.Equal(n.system, system) {
		n.mu.Unlock()
		return
	}
	n.system = system
	n.voices = voices
	listeners := slices.Clone(n.listeners)
	n.mu.Unlock()

	n.logger.Debug("voices loaded", "count", len(voices))
	for _, fn := range listeners {
		fn(slices.Clone(voices))
	}
}

func (n *Native) systemVoiceLocked(id string) (tts.SystemVoice, bool) {
	idx, err := strconv.Atoi(strings.TrimPrefix(id, nativeVoicePrefix))
	if err != nil || !strings.HasPrefix(id, nativeVoicePrefix) || idx < 0 || idx >= len(n.system) {
		return tts.SystemVoice{}, false
	}
	return n.system[idx], true
}
