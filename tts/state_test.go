package tts

import (
	"testing"
)

// TestStateTypeString tests the String method of StateType.
func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state    StateType
		expected string
	}{
		{StateIdle, "idle"},
		{StateReady, "ready"},
		{StatePlaying, "playing"},
		{StatePaused, "paused"},
		{StateType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("StateType(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestEventAndEffectString(t *testing.T) {
	if got := EventFinishedLast.String(); got != "finished-last" {
		t.Errorf("EventFinishedLast.String() = %q", got)
	}
	if got := EffectAdvanceHeld.String(); got != "advance-held" {
		t.Errorf("EffectAdvanceHeld.String() = %q", got)
	}
}

// TestStatePredicates tests the convenience predicates on State.
func TestStatePredicates(t *testing.T) {
	tests := []struct {
		state    StateType
		playing  bool
		active   bool
		canPlay  bool
		canPause bool
	}{
		{StateIdle, false, false, false, false},
		{StateReady, false, false, true, false},
		{StatePlaying, true, true, false, true},
		{StatePaused, false, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			s := State{Current: tt.state}
			if got := s.IsPlaying(); got != tt.playing {
				t.Errorf("IsPlaying() = %v, want %v", got, tt.playing)
			}
			if got := s.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := s.CanStop(); got != tt.active {
				t.Errorf("CanStop() = %v, want %v", got, tt.active)
			}
			if got := s.CanPlay(); got != tt.canPlay {
				t.Errorf("CanPlay() = %v, want %v", got, tt.canPlay)
			}
			if got := s.CanPause(); got != tt.canPause {
				t.Errorf("CanPause() = %v, want %v", got, tt.canPause)
			}
		})
	}
}

// TestStateWithData tests State with sentence data.
func TestStateWithData(t *testing.T) {
	s := State{
		Current:   StatePlaying,
		Sentences: []string{"One.", "Two.", "Three."},
		Index:     1,
		Speed:     1.0,
	}

	if got := s.CurrentSentence(); got != "Two." {
		t.Errorf("CurrentSentence() = %q, want %q", got, "Two.")
	}
	if !s.HasPrevious() || !s.HasNext() {
		t.Error("Expected both previous and next sentences")
	}

	s.Index = 2
	if s.HasNext() {
		t.Error("Expected no next sentence at the end")
	}
	if got := s.Progress(); got != 100 {
		t.Errorf("Progress() = %v, want 100", got)
	}

	empty := State{}
	if empty.CurrentSentence() != "" || empty.Progress() != 0 {
		t.Error("Expected empty state to have no sentence and zero progress")
	}
}

// TestNewStateMachine tests state machine creation.
func TestNewStateMachine(t *testing.T) {
	sm := NewStateMachine()
	if sm == nil {
		t.Fatal("NewStateMachine returned nil")
	}
	if sm.Current() != StateIdle {
		t.Errorf("Initial state = %v, want idle", sm.Current())
	}
}

// TestStateMachineTable checks every row of the transition table.
func TestStateMachineTable(t *testing.T) {
	tests := []struct {
		from   StateType
		event  Event
		to     StateType
		effect Effect
	}{
		{StateIdle, EventLoad, StateReady, EffectCancel},
		{StatePlaying, EventLoad, StateReady, EffectCancel},
		{StatePaused, EventClear, StateIdle, EffectCancel},
		{StateReady, EventPlay, StatePlaying, EffectSpeak},
		{StatePaused, EventPlay, StatePlaying, EffectResume},
		{StatePlaying, EventPause, StatePaused, EffectPause},
		{StatePlaying, EventStop, StateReady, EffectCancel},
		{StatePaused, EventStop, StateReady, EffectCancel},
		{StateReady, EventSeek, StateReady, EffectNone},
		{StatePlaying, EventSeek, StatePlaying, EffectRestart},
		{StatePaused, EventSeek, StatePaused, EffectCancel},
		{StatePlaying, EventSpeed, StatePlaying, EffectRestart},
		{StatePlaying, EventFinished, StatePlaying, EffectAdvance},
		{StatePaused, EventFinished, StatePaused, EffectAdvanceHeld},
		{StatePlaying, EventFinishedLast, StateReady, EffectSettle},
		{StatePlaying, EventFailed, StateReady, EffectFail},
	}

	sm := NewStateMachine()
	for _, tt := range tests {
		tr, ok := sm.Lookup(tt.from, tt.event)
		if !ok {
			t.Errorf("(%s, %s): no transition", tt.from, tt.event)
			continue
		}
		if tr.To != tt.to || tr.Effect != tt.effect {
			t.Errorf("(%s, %s) = (%s, %s), want (%s, %s)",
				tt.from, tt.event, tr.To, tr.Effect, tt.to, tt.effect)
		}
	}
}

// TestStateMachineInvalidTransition tests that unknown pairs are ignored.
func TestStateMachineInvalidTransition(t *testing.T) {
	invalid := []struct {
		from  StateType
		event Event
	}{
		{StateIdle, EventPlay},
		{StateIdle, EventSeek},
		{StateReady, EventPause},
		{StateReady, EventStop},
		{StateReady, EventSpeed},
		{StateReady, EventFinished},
		{StatePaused, EventPause},
		{StatePaused, EventSpeed},
		{StatePlaying, EventPlay},
	}

	sm := NewStateMachine()
	for _, tt := range invalid {
		if _, ok := sm.Lookup(tt.from, tt.event); ok {
			t.Errorf("(%s, %s) should have no transition", tt.from, tt.event)
		}
	}

	if _, ok := sm.Fire(EventPause); ok {
		t.Error("Fire(pause) from idle should fail")
	}
	if sm.Current() != StateIdle {
		t.Errorf("Failed fire changed state to %s", sm.Current())
	}
}

// TestStateMachineSequentialTransitions walks a full playback cycle.
func TestStateMachineSequentialTransitions(t *testing.T) {
	sm := NewStateMachine()
	steps := []struct {
		event Event
		want  StateType
	}{
		{EventLoad, StateReady},
		{EventPlay, StatePlaying},
		{EventFinished, StatePlaying},
		{EventPause, StatePaused},
		{EventPlay, StatePlaying},
		{EventFinishedLast, StateReady},
		{EventClear, StateIdle},
	}

	for _, step := range steps {
		if _, ok := sm.Fire(step.event); !ok {
			t.Fatalf("Fire(%s) failed from %s", step.event, sm.Current())
		}
		if sm.Current() != step.want {
			t.Fatalf("After %s: state = %s, want %s", step.event, sm.Current(), step.want)
		}
	}
}

// TestStateMachineCallbacks tests enter and exit callbacks.
func TestStateMachineCallbacks(t *testing.T) {
	sm := NewStateMachine()

	var entered, exited int
	sm.OnEnter(StatePlaying, func() { entered++ })
	sm.OnExit(StatePlaying, func() { exited++ })

	sm.Fire(EventLoad)
	sm.Fire(EventPlay)
	if entered != 1 {
		t.Errorf("Expected 1 enter, got %d", entered)
	}

	// Self transitions do not re-enter.
	sm.Fire(EventFinished)
	sm.Fire(EventSeek)
	if entered != 1 || exited != 0 {
		t.Errorf("Self transitions fired callbacks: enter=%d exit=%d", entered, exited)
	}

	sm.Fire(EventStop)
	if exited != 1 {
		t.Errorf("Expected 1 exit, got %d", exited)
	}
}

// TestStateMachineNilCallbacks tests that nil callbacks are tolerated.
func TestStateMachineNilCallbacks(t *testing.T) {
	sm := NewStateMachine()
	sm.OnEnter(StateReady, nil)
	sm.OnExit(StateIdle, nil)

	if _, ok := sm.Fire(EventLoad); !ok {
		t.Fatal("Fire(load) failed")
	}
}
