// Package sync delivers controller snapshots to the rendering side and keeps
// sentence highlighting in step with playback.
package sync

import (
	"sync"

	"github.com/dgnsrekt/docreader/tts"
)

const errorBuffer = 8

// Manager fans controller snapshots out to a UI loop. Only the newest
// snapshot is kept: a slow consumer sees the latest state, never a backlog.
type Manager struct {
	mu     sync.Mutex
	latest tts.State
	have   bool
	closed bool

	updates chan tts.State
	errors  chan error

	// Callbacks
	onSentenceChange []func(int)
}

// NewManager creates a new synchronization manager.
func NewManager() *Manager {
	return &Manager{
		updates: make(chan tts.State, 1),
		errors:  make(chan error, errorBuffer),
	}
}

// Attach subscribes the manager to c's change and error notifications and
// publishes c's current state.
func (m *Manager) Attach(c *tts.Controller) {
	c.OnChange(m.Publish)
	c.OnError(m.PublishError)
	m.Publish(c.State())
}

// Publish offers a snapshot. Snapshots older than the last published one
// are dropped, since listeners may run on different goroutines.
func (m *Manager) Publish(s tts.State) {
	m.mu.Lock()
	if m.closed || (m.have && s.Seq <= m.latest.Seq) {
		m.mu.Unlock()
		return
	}

	moved := !m.have || s.Index != m.latest.Index || len(s.Sentences) != len(m.latest.Sentences)
	m.latest = s
	m.have = true

	select {
	case <-m.updates:
	default:
	}
	m.updates <- s

	var callbacks []func(int)
	if moved {
		callbacks = append(callbacks, m.onSentenceChange...)
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(s.Index)
	}
}

// PublishError queues an error for the UI. Errors beyond the buffer are
// dropped; the snapshot still carries the most recent one.
func (m *Manager) PublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || err == nil {
		return
	}
	select {
	case m.errors <- err:
	default:
	}
}

// Updates returns the snapshot channel. It is closed by Close.
func (m *Manager) Updates() <-chan tts.State {
	return m.updates
}

// Errors returns the error channel. It is closed by Close.
func (m *Manager) Errors() <-chan error {
	return m.errors
}

// Latest returns the newest published snapshot.
func (m *Manager) Latest() (tts.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.have
}

// GetCurrentSentence returns the index of the current sentence.
func (m *Manager) GetCurrentSentence() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest.Index
}

// OnSentenceChange registers a callback for sentence changes, including a
// newly loaded document.
func (m *Manager) OnSentenceChange(callback func(int)) {
	if callback == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSentenceChange = append(m.onSentenceChange, callback)
}

// Close stops delivery and closes both channels.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.updates)
	close(m.errors)
}
