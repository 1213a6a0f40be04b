package tts

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between TTS and UI.

// StateChangedMsg carries a new controller snapshot.
type StateChangedMsg struct {
	State State
}

// ErrorMsg indicates an error occurred in the TTS system.
type ErrorMsg struct {
	Err         error
	Recoverable bool
}

// ContentReloadedMsg carries document text that changed on disk.
type ContentReloadedMsg struct {
	Path string
	Text string
}

// WaitForState returns a command that delivers the next snapshot received on
// ch. It returns nil once ch is closed.
func WaitForState(ch <-chan State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return StateChangedMsg{State: s}
	}
}

// WaitForError returns a command that delivers the next error received on ch.
func WaitForError(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return ErrorMsg{Err: err, Recoverable: IsRecoverableError(err)}
	}
}

// WaitForReload returns a command that delivers the next reloaded content
// received on ch.
func WaitForReload(ch <-chan ContentReloadedMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
