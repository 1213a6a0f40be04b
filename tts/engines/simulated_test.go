package engines

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/docreader/tts"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

type staticVoices struct {
	voices []tts.Voice
	err    error
}

func (d staticVoices) TTSVoices(ctx context.Context) ([]tts.Voice, error) {
	return d.voices, d.err
}

func newTestSimulated(clock *fakeClock) *Simulated {
	return NewSimulated(nil,
		WithClock(clock),
		WithCharDuration(50*time.Millisecond),
		WithSimulatedLogger(quietLogger()),
	)
}

func TestSimulatedDuration(t *testing.T) {
	s := newTestSimulated(newFakeClock())

	tests := []struct {
		text  string
		speed float64
		want  time.Duration
	}{
		{"Hello.", 1, 300 * time.Millisecond},
		{"Hello.", 2, 150 * time.Millisecond},
		{"Hello.", 0.5, 600 * time.Millisecond},
		{"Hello.", 0, 300 * time.Millisecond},
		{"héllo", 1, 250 * time.Millisecond},
		{"", 1, 0},
	}
	for _, tt := range tests {
		if got := s.Duration(tt.text, tt.speed); got != tt.want {
			t.Errorf("Duration(%q, %v) = %v, want %v", tt.text, tt.speed, got, tt.want)
		}
	}
}

func TestSimulatedCompletes(t *testing.T) {
	clock := newFakeClock()
	s := newTestSimulated(clock)

	var done []error
	if _, err := s.Speak(tts.Utterance{Text: "Hello.", Speed: 1}, func(err error) { done = append(done, err) }); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}

	clock.Advance(299 * time.Millisecond)
	if len(done) != 0 {
		t.Fatal("completed early")
	}
	clock.Advance(time.Millisecond)
	if len(done) != 1 || done[0] != nil {
		t.Fatalf("expected one nil completion, got %v", done)
	}
}

func TestSimulatedCancel(t *testing.T) {
	clock := newFakeClock()
	s := newTestSimulated(clock)

	var done int
	h, _ := s.Speak(tts.Utterance{Text: "Hello.", Speed: 1}, func(error) { done++ })
	h.Cancel()
	clock.Advance(time.Second)
	if done != 0 {
		t.Error("canceled utterance completed")
	}

	_, _ = s.Speak(tts.Utterance{Text: "Hello.", Speed: 1}, func(error) { done++ })
	s.CancelAll()
	clock.Advance(time.Second)
	if done != 0 {
		t.Error("utterance completed after CancelAll")
	}
}

func TestSimulatedSpeakReplacesActive(t *testing.T) {
	clock := newFakeClock()
	s := newTestSimulated(clock)

	var first, second int
	old, _ := s.Speak(tts.Utterance{Text: "Hello.", Speed: 1}, func(error) { first++ })
	_, _ = s.Speak(tts.Utterance{Text: "Hi.", Speed: 1}, func(error) { second++ })

	clock.Advance(time.Second)
	if first != 0 || second != 1 {
		t.Errorf("expected only the second to complete, got first=%d second=%d", first, second)
	}

	// Canceling a replaced handle must not touch the current one.
	old.Cancel()
}

func TestSimulatedPauseResume(t *testing.T) {
	clock := newFakeClock()
	s := newTestSimulated(clock)

	var done int
	_, _ = s.Speak(tts.Utterance{Text: "Hello.", Speed: 1}, func(error) { done++ })

	clock.Advance(100 * time.Millisecond)
	s.PauseActive()

	// Paused time does not count.
	clock.Advance(time.Minute)
	if done != 0 {
		t.Fatal("paused utterance completed")
	}

	s.ResumeActive()
	clock.Advance(199 * time.Millisecond)
	if done != 0 {
		t.Fatal("resumed utterance completed early")
	}
	clock.Advance(time.Millisecond)
	if done != 1 {
		t.Fatalf("expected completion after remaining time, got %d", done)
	}
}

func TestSimulatedPauseIdempotent(t *testing.T) {
	clock := newFakeClock()
	s := newTestSimulated(clock)

	// No active utterance.
	s.PauseActive()
	s.ResumeActive()

	var done int
	_, _ = s.Speak(tts.Utterance{Text: "Hi.", Speed: 1}, func(error) { done++ })
	s.PauseActive()
	s.PauseActive()
	s.ResumeActive()
	s.ResumeActive()
	clock.Advance(150 * time.Millisecond)
	if done != 1 {
		t.Errorf("expected exactly one completion, got %d", done)
	}
}

func TestSimulatedLoad(t *testing.T) {
	voices := []tts.Voice{
		{ID: "voice1", Name: "Emma (Female)", Language: "en-US"},
		{ID: "voice2", Name: "Michael (Male)", Language: "en-US"},
	}
	s := NewSimulated(staticVoices{voices: voices}, WithSimulatedLogger(quietLogger()))

	var got []tts.Voice
	s.OnVoicesChanged(func(v []tts.Voice) { got = v })

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 || len(s.Voices()) != 2 {
		t.Errorf("expected 2 voices, got %d and %d", len(got), len(s.Voices()))
	}
	if s.Kind() != tts.KindSimulated {
		t.Errorf("Kind() = %v", s.Kind())
	}
}

func TestSimulatedLoadError(t *testing.T) {
	cause := errors.New("directory offline")
	s := NewSimulated(staticVoices{err: cause}, WithSimulatedLogger(quietLogger()))
	if err := s.Load(context.Background()); !errors.Is(err, cause) {
		t.Errorf("Load() error = %v, want %v", err, cause)
	}
	if len(s.Voices()) != 0 {
		t.Error("voices set despite error")
	}
}

func TestSimulatedClose(t *testing.T) {
	clock := newFakeClock()
	s := newTestSimulated(clock)

	var done int
	_, _ = s.Speak(tts.Utterance{Text: "Hi.", Speed: 1}, func(error) { done++ })
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	clock.Advance(time.Second)
	if done != 0 {
		t.Error("utterance completed after close")
	}
	if _, err := s.Speak(tts.Utterance{Text: "Hi."}, func(error) {}); !errors.Is(err, tts.ErrEngineClosed) {
		t.Errorf("expected ErrEngineClosed, got %v", err)
	}
}
