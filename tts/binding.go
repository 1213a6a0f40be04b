package tts

// Binding is a platform speech engine as seen by the native Speech variant.
// It mirrors the usual system speech API: a voice list that may be reported
// late, one utterance object per request carrying its own callbacks, and
// global cancel, pause and resume.
type Binding interface {
	// Voices returns the voices the engine currently knows about.
	Voices() []SystemVoice

	// OnVoicesChanged registers fn to be called when the engine reports a
	// new voice list. It may be called any number of times.
	OnVoicesChanged(fn func())

	// Speak queues u. Exactly one of u.OnEnd and u.OnError is eventually
	// called unless the utterance is canceled first.
	Speak(u *SystemUtterance) error

	// Cancel drops every queued and in-progress utterance.
	Cancel()

	Pause()
	Resume()

	// Close releases engine resources.
	Close() error
}

// SystemVoice is a voice as reported by a platform engine.
type SystemVoice struct {
	Name string
	Lang string
	// URI is the engine's own identifier for the voice.
	URI string
}

// SystemUtterance is a single request submitted to a Binding.
type SystemUtterance struct {
	Text    string
	Voice   *SystemVoice
	Rate    float64
	OnEnd   func()
	OnError func(error)
}
