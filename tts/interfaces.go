package tts

// Speech is the capability the Controller drives to render sentences. Two
// implementations exist: one backed by a platform speech engine and a
// simulated, timer-based fallback for hosts without one.
type Speech interface {
	// Kind reports which variant is active.
	Kind() SpeechKind

	// Voices returns a copy of the currently known voice list.
	Voices() []Voice

	// OnVoicesChanged registers the listener invoked every time the voice
	// list is replaced. Voice lists may arrive late and more than once.
	OnVoicesChanged(fn func([]Voice))

	// Speak submits one utterance. At most one utterance is active at a
	// time; a new Speak replaces any previous one. done is called exactly
	// once when the utterance finishes (nil) or fails, never from within
	// Speak itself, and never after the utterance was canceled.
	Speak(u Utterance, done func(error)) (Handle, error)

	// CancelAll cancels the active utterance, if any. It is idempotent.
	CancelAll()

	// PauseActive suspends the active utterance without discarding it.
	PauseActive()

	// ResumeActive continues a suspended utterance.
	ResumeActive()

	// Close releases the underlying engine.
	Close() error
}

// Handle refers to one submitted utterance.
type Handle interface {
	// ID identifies the utterance in logs.
	ID() string

	// Cancel stops the utterance; its completion will not be reported.
	Cancel()
}

// Segmenter splits document text into sentences.
type Segmenter interface {
	Segment(text string) []string
}

// SegmenterFunc adapts a plain function to the Segmenter interface.
type SegmenterFunc func(text string) []string

// Segment calls f(text).
func (f SegmenterFunc) Segment(text string) []string { return f(text) }

// SpeechKind identifies a Speech implementation.
type SpeechKind int

const (
	// KindSimulated is the timer-based fallback.
	KindSimulated SpeechKind = iota
	// KindNative is backed by a platform speech engine.
	KindNative
)

// String returns the string representation of the kind.
func (k SpeechKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindSimulated:
		return "simulated"
	default:
		return "unknown"
	}
}

// Voice represents a TTS voice offered by a Speech implementation.
type Voice struct {
	ID       string `yaml:"id"`       // Voice identifier
	Name     string `yaml:"name"`     // Human-readable name
	Language string `yaml:"language"` // Language code (e.g., "en-US")
}

// Utterance is a request to render a single sentence as speech.
type Utterance struct {
	Text  string  // Sentence text
	Voice *Voice  // Voice to use, nil for the engine default
	Speed float64 // Rate multiplier (1.0 = normal)
}
