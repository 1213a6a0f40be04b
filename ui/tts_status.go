package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/dgnsrekt/docreader/tts"
)

const maxVoiceWidth = 18

// ttsStatus renders playback state for the status bar.
type ttsStatus struct {
	state        tts.State
	kind         tts.SpeechKind
	showProgress bool
}

func stateIcon(s tts.StateType) string {
	switch s {
	case tts.StatePlaying:
		return "▶"
	case tts.StatePaused:
		return "⏸"
	case tts.StateReady:
		return "■"
	default:
		return "○"
	}
}

func stateColor(s tts.StateType) lipgloss.TerminalColor {
	switch s {
	case tts.StatePlaying:
		return green
	case tts.StatePaused:
		return yellowGreen
	default:
		return dimFg
	}
}

// sentenceLabel is the "Sentence i of n" position label.
func sentenceLabel(s tts.State) string {
	if len(s.Sentences) == 0 {
		return "No sentences"
	}
	return fmt.Sprintf("Sentence %d of %d", s.Index+1, len(s.Sentences))
}

func voiceLabel(v *tts.Voice) string {
	if v == nil {
		return "default voice"
	}
	return runewidth.Truncate(v.Name, maxVoiceWidth, ellipsis)
}

// icon returns the colored state icon.
func (t ttsStatus) icon() string {
	return lipgloss.NewStyle().Foreground(stateColor(t.state.Current)).Render(stateIcon(t.state.Current))
}

// note returns the plain-text part of the status bar.
func (t ttsStatus) note() string {
	parts := []string{t.state.Current.String()}
	if t.state.Current == tts.StateIdle {
		parts = append(parts, "nothing to read")
		return strings.Join(parts, " · ")
	}

	parts = append(parts, sentenceLabel(t.state))
	if t.showProgress {
		parts = append(parts, fmt.Sprintf("%.0f%%", t.state.Progress()))
	}
	parts = append(parts,
		tts.FormatSpeed(t.state.Speed),
		voiceLabel(t.state.Voice),
		t.kind.String(),
	)
	if t.state.LastError != nil {
		parts = append(parts, "error: "+t.state.LastError.Error())
	}
	return strings.Join(parts, " · ")
}
