// Package tts provides sentence-driven text-to-speech playback for
// documents.
package tts

import (
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/docreader/tts/sentence"
)

// Controller owns playback position, state, speed and voice selection and
// mediates between user commands and a Speech implementation.
//
// Every speak request is tagged with a generation number. Any command that
// cancels or replaces the in-flight request bumps the generation first, so a
// completion that was already on its way is recognized as stale and dropped.
type Controller struct {
	// Core components
	speech    Speech
	segmenter Segmenter
	logger    *log.Logger
	language  string
	voiceID   string

	// State management
	mu      sync.Mutex
	machine *StateMachine
	seq     uint64
	closed  bool

	// Sentences and content
	sentences []string
	index     int

	// Playback settings
	speed  float64
	voices []Voice
	voice  *Voice

	// In-flight request
	gen    uint64
	active Handle

	// Errors
	lastErr    error
	pendingErr error

	// Callbacks
	onChange []func(State)
	onError  []func(error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithSegmenter replaces the default sentence segmenter.
func WithSegmenter(s Segmenter) Option {
	return func(c *Controller) {
		if s != nil {
			c.segmenter = s
		}
	}
}

// WithLogger sets the logger used for transition tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLanguage sets the target language used to choose the default voice.
func WithLanguage(lang string) Option {
	return func(c *Controller) {
		c.language = lang
	}
}

// WithVoice sets the ID of the voice selected once voices become available.
// Unknown IDs fall back to the language default.
func WithVoice(id string) Option {
	return func(c *Controller) {
		c.voiceID = id
	}
}

// WithSpeed sets the initial playback speed.
func WithSpeed(speed float64) Option {
	return func(c *Controller) {
		c.speed = SnapSpeed(speed)
	}
}

// NewController creates a controller driving speech. The controller does not
// own speech; closing it remains the caller's job.
func NewController(speech Speech, opts ...Option) *Controller {
	c := &Controller{
		speech:    speech,
		segmenter: SegmenterFunc(sentence.Segment),
		logger:    log.Default().WithPrefix("tts"),
		language:  DefaultLanguage,
		machine:   NewStateMachine(),
		speed:     DefaultSpeed,
	}

	for _, opt := range opts {
		opt(c)
	}

	speech.OnVoicesChanged(c.handleVoices)
	c.handleVoices(speech.Voices())

	return c
}

// LoadContent segments text and resets playback to its first sentence. Any
// in-flight speech, including speech for a previous document, is canceled.
func (c *Controller) LoadContent(text string) {
	sentences := c.segmenter.Segment(text)

	_ = c.update(func() (bool, error) {
		ev := EventLoad
		if len(sentences) == 0 {
			ev = EventClear
		}

		tr, _ := c.fire(ev)
		if err := c.apply(tr.Effect); err != nil {
			return true, err
		}
		c.speech.CancelAll()

		c.sentences = sentences
		c.index = 0
		c.lastErr = nil

		c.logger.Debug("content loaded", "sentences", len(sentences), "state", c.machine.Current())
		return true, nil
	})
}

// Play starts playback at the current sentence, or resumes it when paused.
// It is a no-op while already playing or when nothing is loaded. A speak
// failure returns the controller to Ready and is returned here as well.
func (c *Controller) Play() error {
	return c.update(func() (bool, error) {
		if len(c.sentences) == 0 {
			return false, nil
		}

		tr, ok := c.fire(EventPlay)
		if !ok {
			return false, nil
		}

		c.lastErr = nil
		return true, c.apply(tr.Effect)
	})
}

// Pause suspends playback. It is a no-op unless playing.
func (c *Controller) Pause() {
	_ = c.update(func() (bool, error) {
		tr, ok := c.fire(EventPause)
		if !ok {
			return false, nil
		}
		return true, c.apply(tr.Effect)
	})
}

// Stop cancels playback and returns to Ready. The current sentence index is
// kept.
func (c *Controller) Stop() {
	_ = c.update(func() (bool, error) {
		tr, ok := c.fire(EventStop)
		if !ok {
			return false, nil
		}
		return true, c.apply(tr.Effect)
	})
}

// TogglePlayback pauses when playing and plays otherwise.
func (c *Controller) TogglePlayback() error {
	if c.State().IsPlaying() {
		c.Pause()
		return nil
	}
	return c.Play()
}

// SkipToSentence moves to sentence i. In-flight speech is canceled; when
// playing, sentence i starts immediately. Out-of-range indexes leave the
// state untouched and return ErrInvalidSentenceIndex.
func (c *Controller) SkipToSentence(i int) error {
	return c.update(func() (bool, error) {
		return c.seekLocked(i)
	})
}

// NextSentence is SkipToSentence(current+1).
func (c *Controller) NextSentence() error {
	return c.update(func() (bool, error) {
		return c.seekLocked(c.index + 1)
	})
}

// PreviousSentence is SkipToSentence(current-1).
func (c *Controller) PreviousSentence() error {
	return c.update(func() (bool, error) {
		return c.seekLocked(c.index - 1)
	})
}

// ChangeSpeed sets the playback speed, snapped to the nearest speed step.
// While playing, the current sentence restarts at the new speed.
func (c *Controller) ChangeSpeed(speed float64) error {
	return c.update(func() (bool, error) {
		c.speed = SnapSpeed(speed)

		tr, ok := c.fire(EventSpeed)
		if !ok {
			return true, nil
		}
		return true, c.apply(tr.Effect)
	})
}

// SelectVoice selects the voice with the given ID for subsequent
// utterances. Current playback is not interrupted. Unknown IDs leave the
// selection unchanged and return ErrVoiceNotFound.
func (c *Controller) SelectVoice(id string) error {
	return c.update(func() (bool, error) {
		v, ok := FindVoice(c.voices, id)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrVoiceNotFound, id)
		}
		c.voice = &v
		return true, nil
	})
}

// SetSelectedVoice is SelectVoice(v.ID).
func (c *Controller) SetSelectedVoice(v Voice) error {
	return c.SelectVoice(v.ID)
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// OnChange registers a callback invoked with a snapshot after every change.
// Callbacks run outside the controller lock and may issue commands.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// OnError registers a callback for utterance errors.
func (c *Controller) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, fn)
}

// Close cancels in-flight speech and detaches the controller from its
// speech. Later commands return ErrControllerClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.cancelInFlight()
	c.speech.CancelAll()
	c.closed = true
	return nil
}

// Private helper methods

func (c *Controller) update(fn func() (bool, error)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}

	changed, err := fn()

	var (
		snap       State
		changeFns  []func(State)
		errorFns   []func(error)
		pendingErr = c.pendingErr
	)
	c.pendingErr = nil

	if changed {
		c.seq++
		snap = c.snapshotLocked()
		changeFns = slices.Clone(c.onChange)
	}
	if pendingErr != nil {
		errorFns = slices.Clone(c.onError)
	}
	c.mu.Unlock()

	for _, fn := range changeFns {
		fn(snap)
	}
	for _, fn := range errorFns {
		fn(pendingErr)
	}

	return err
}

func (c *Controller) fire(ev Event) (Transition, bool) {
	from := c.machine.Current()
	tr, ok := c.machine.Fire(ev)
	if !ok {
		c.logger.Debug("event ignored", "state", from, "event", ev)
		return tr, false
	}
	c.logger.Debug("transition", "from", from, "event", ev, "to", tr.To, "effect", tr.Effect, "sentence", c.index)
	return tr, true
}

func (c *Controller) apply(eff Effect) error {
	switch eff {
	case EffectNone:
	case EffectSpeak:
		return c.speakCurrent()
	case EffectResume:
		if c.active != nil {
			c.speech.ResumeActive()
			return nil
		}
		return c.speakCurrent()
	case EffectPause:
		if c.active != nil {
			c.speech.PauseActive()
		}
	case EffectCancel:
		c.cancelInFlight()
	case EffectRestart:
		c.cancelInFlight()
		return c.speakCurrent()
	case EffectAdvance:
		c.active = nil
		c.index++
		return c.speakCurrent()
	case EffectAdvanceHeld:
		c.active = nil
		c.index++
	case EffectSettle, EffectFail:
		c.active = nil
	}
	return nil
}

func (c *Controller) seekLocked(i int) (bool, error) {
	if i < 0 || i >= len(c.sentences) {
		return false, fmt.Errorf("%w: %d (have %d)", ErrInvalidSentenceIndex, i, len(c.sentences))
	}

	tr, ok := c.fire(EventSeek)
	if !ok {
		return false, nil
	}

	// The index moves before the effect so a restart speaks sentence i.
	c.index = i
	return true, c.apply(tr.Effect)
}

func (c *Controller) speakCurrent() error {
	c.gen++
	gen := c.gen

	u := Utterance{
		Text:  c.sentences[c.index],
		Speed: c.speed,
	}
	if c.voice != nil {
		v := *c.voice
		u.Voice = &v
	}

	h, err := c.speech.Speak(u, func(err error) {
		c.handleDone(gen, err)
	})
	if err != nil {
		c.active = nil
		return c.failLocked(NewUtteranceError(err, "speak", c.index))
	}

	c.active = h
	c.logger.Debug("speaking", "sentence", c.index, "gen", gen, "utterance", h.ID(), "speed", c.speed)
	return nil
}

func (c *Controller) cancelInFlight() {
	c.gen++
	if c.active == nil {
		return
	}
	h := c.active
	c.active = nil
	h.Cancel()
	c.logger.Debug("canceled", "utterance", h.ID())
}

func (c *Controller) failLocked(err error) error {
	if tr, ok := c.fire(EventFailed); ok {
		_ = c.apply(tr.Effect)
	}
	c.lastErr = err
	c.pendingErr = err
	c.logger.Warn("utterance failed", "sentence", c.index, "error", err)
	return err
}

func (c *Controller) handleDone(gen uint64, err error) {
	_ = c.update(func() (bool, error) {
		if gen != c.gen || c.active == nil {
			c.logger.Debug("stale completion dropped", "gen", gen, "current", c.gen)
			return false, nil
		}

		if err != nil {
			_ = c.failLocked(NewUtteranceError(err, "utterance", c.index))
			return true, nil
		}

		ev := EventFinished
		if c.index >= len(c.sentences)-1 {
			ev = EventFinishedLast
		}

		tr, ok := c.fire(ev)
		if !ok {
			return false, nil
		}
		// A failed follow-up speak is already recorded by failLocked.
		_ = c.apply(tr.Effect)
		return true, nil
	})
}

func (c *Controller) handleVoices(voices []Voice) {
	_ = c.update(func() (bool, error) {
		c.voices = slices.Clone(voices)

		switch {
		case len(c.voices) == 0:
			c.voice = nil
		case c.voice != nil:
			if v, ok := FindVoice(c.voices, c.voice.ID); ok {
				c.voice = &v
				break
			}
			fallthrough
		default:
			if v, ok := FindVoice(c.voices, c.voiceID); ok {
				c.voice = &v
				break
			}
			v, _ := PreferredVoice(c.voices, c.language)
			c.voice = &v
			c.logger.Debug("default voice selected", "voice", v.Name, "language", v.Language)
		}
		return true, nil
	})
}

func (c *Controller) snapshotLocked() State {
	s := State{
		Seq:     c.seq,
		Current: c.machine.Current(),
		// Sentence slices are replaced on load, never mutated in place.
		Sentences: c.sentences,
		Index:     c.index,
		Speed:     c.speed,
		Voices:    slices.Clone(c.voices),
		Engine:    c.speech.Kind(),
		LastError: c.lastErr,
	}
	if c.voice != nil {
		v := *c.voice
		s.Voice = &v
	}
	return s
}
