package tts

// StateType represents the current state of the playback controller.
type StateType int

const (
	// StateIdle indicates no sentences are loaded.
	StateIdle StateType = iota
	// StateReady indicates sentences are loaded and nothing is playing.
	StateReady
	// StatePlaying indicates one sentence's utterance is in flight.
	StatePlaying
	// StatePaused indicates playback is suspended.
	StatePaused
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Event is an input to the playback state machine. Events come either from
// user commands or from speech completion notifications.
type Event int

const (
	EventLoad         Event = iota // content with at least one sentence
	EventClear                     // empty content
	EventPlay                      // play command
	EventPause                     // pause command
	EventStop                      // stop command
	EventSeek                      // skip to a sentence
	EventSpeed                     // speed change
	EventFinished                  // utterance finished, more sentences remain
	EventFinishedLast              // utterance for the last sentence finished
	EventFailed                    // utterance reported an error
)

var eventNames = [...]string{
	EventLoad:         "load",
	EventClear:        "clear",
	EventPlay:         "play",
	EventPause:        "pause",
	EventStop:         "stop",
	EventSeek:         "seek",
	EventSpeed:        "speed",
	EventFinished:     "finished",
	EventFinishedLast: "finished-last",
	EventFailed:       "failed",
}

// String returns the string representation of the event.
func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

// Effect is the side effect the Controller performs after a transition.
type Effect int

const (
	// EffectNone changes nothing beyond the state itself.
	EffectNone Effect = iota
	// EffectSpeak issues a speak request for the current sentence.
	EffectSpeak
	// EffectResume resumes the suspended request, or speaks afresh if none.
	EffectResume
	// EffectPause suspends the in-flight request.
	EffectPause
	// EffectCancel cancels the in-flight request.
	EffectCancel
	// EffectRestart cancels the in-flight request and speaks the current
	// sentence again.
	EffectRestart
	// EffectAdvance moves to the next sentence and speaks it.
	EffectAdvance
	// EffectAdvanceHeld moves to the next sentence without speaking.
	EffectAdvanceHeld
	// EffectSettle clears the finished request at the end of the document.
	EffectSettle
	// EffectFail clears the failed request and records the error.
	EffectFail
)

var effectNames = [...]string{
	EffectNone:        "none",
	EffectSpeak:       "speak",
	EffectResume:      "resume",
	EffectPause:       "pause",
	EffectCancel:      "cancel",
	EffectRestart:     "restart",
	EffectAdvance:     "advance",
	EffectAdvanceHeld: "advance-held",
	EffectSettle:      "settle",
	EffectFail:        "fail",
}

// String returns the string representation of the effect.
func (e Effect) String() string {
	if e < 0 || int(e) >= len(effectNames) {
		return "unknown"
	}
	return effectNames[e]
}

// Transition is one row of the transition table.
type Transition struct {
	To     StateType
	Effect Effect
}

type transitionKey struct {
	from  StateType
	event Event
}

// StateMachine holds the playback transition table. Auto-advance is an
// ordinary (Playing, Finished) row, so the next utterance is issued by the
// completion handler instead of a nested play call.
type StateMachine struct {
	current     StateType
	transitions map[transitionKey]Transition
	onEnter     map[StateType]func()
	onExit      map[StateType]func()
}

// NewStateMachine creates a new state machine with valid transitions.
func NewStateMachine() *StateMachine {
	t := map[transitionKey]Transition{}
	add := func(from StateType, ev Event, to StateType, eff Effect) {
		t[transitionKey{from, ev}] = Transition{To: to, Effect: eff}
	}

	// Loading content cancels whatever was playing, from any state.
	for _, s := range []StateType{StateIdle, StateReady, StatePlaying, StatePaused} {
		add(s, EventLoad, StateReady, EffectCancel)
		add(s, EventClear, StateIdle, EffectCancel)
	}

	add(StateReady, EventPlay, StatePlaying, EffectSpeak)
	add(StatePaused, EventPlay, StatePlaying, EffectResume)

	add(StatePlaying, EventPause, StatePaused, EffectPause)

	add(StatePlaying, EventStop, StateReady, EffectCancel)
	add(StatePaused, EventStop, StateReady, EffectCancel)

	add(StateReady, EventSeek, StateReady, EffectNone)
	add(StatePlaying, EventSeek, StatePlaying, EffectRestart)
	add(StatePaused, EventSeek, StatePaused, EffectCancel)

	add(StatePlaying, EventSpeed, StatePlaying, EffectRestart)

	add(StatePlaying, EventFinished, StatePlaying, EffectAdvance)
	add(StatePaused, EventFinished, StatePaused, EffectAdvanceHeld)
	add(StatePlaying, EventFinishedLast, StateReady, EffectSettle)
	add(StatePaused, EventFinishedLast, StateReady, EffectSettle)

	add(StatePlaying, EventFailed, StateReady, EffectFail)
	add(StatePaused, EventFailed, StateReady, EffectFail)

	return &StateMachine{
		current:     StateIdle,
		transitions: t,
		onEnter:     make(map[StateType]func()),
		onExit:      make(map[StateType]func()),
	}
}

// Lookup returns the transition for event in state from without applying it.
func (sm *StateMachine) Lookup(from StateType, ev Event) (Transition, bool) {
	tr, ok := sm.transitions[transitionKey{from, ev}]
	return tr, ok
}

// Fire applies event to the current state. It returns false, leaving the
// state untouched, when the table has no row for the pair.
func (sm *StateMachine) Fire(ev Event) (Transition, bool) {
	tr, ok := sm.Lookup(sm.current, ev)
	if !ok {
		return Transition{}, false
	}

	if tr.To != sm.current {
		if exitFn, ok := sm.onExit[sm.current]; ok && exitFn != nil {
			exitFn()
		}
	}

	prev := sm.current
	sm.current = tr.To

	if tr.To != prev {
		if enterFn, ok := sm.onEnter[tr.To]; ok && enterFn != nil {
			enterFn()
		}
	}

	return tr, true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.onEnter[state] = fn
}

// OnExit registers a callback for exiting a state.
func (sm *StateMachine) OnExit(state StateType, fn func()) {
	sm.onExit[state] = fn
}

// State is a point-in-time snapshot of the playback controller.
type State struct {
	Seq       uint64    // Increases with every change; higher is newer
	Current   StateType // Current state of the controller
	Sentences []string  // Segmented sentences of the loaded content
	Index     int       // Current sentence index (0-based)
	Speed     float64   // Playback rate multiplier
	Voice     *Voice    // Selected voice, nil when no voices exist
	Voices    []Voice   // Voice list offered by the active speech
	Engine    SpeechKind
	LastError error // Last utterance error, cleared by the next play
}

// IsPlaying reports whether an utterance is in flight.
func (s State) IsPlaying() bool {
	return s.Current == StatePlaying
}

// IsActive returns true if playback is playing or paused.
func (s State) IsActive() bool {
	return s.Current == StatePlaying || s.Current == StatePaused
}

// CanPlay returns true if playback can start or resume.
func (s State) CanPlay() bool {
	return s.Current == StateReady || s.Current == StatePaused
}

// CanPause returns true if playback can be paused.
func (s State) CanPause() bool {
	return s.Current == StatePlaying
}

// CanStop returns true if playback can be stopped.
func (s State) CanStop() bool {
	return s.IsActive()
}

// HasPrevious reports whether a previous sentence exists.
func (s State) HasPrevious() bool {
	return s.Index > 0
}

// HasNext reports whether a next sentence exists.
func (s State) HasNext() bool {
	return s.Index < len(s.Sentences)-1
}

// CurrentSentence returns the sentence at Index, or "" when none is loaded.
func (s State) CurrentSentence() string {
	if s.Index < 0 || s.Index >= len(s.Sentences) {
		return ""
	}
	return s.Sentences[s.Index]
}

// Progress returns playback progress through the document as a percentage.
func (s State) Progress() float64 {
	if len(s.Sentences) == 0 {
		return 0
	}
	return float64(s.Index+1) / float64(len(s.Sentences)) * 100
}
