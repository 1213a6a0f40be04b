package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/dgnsrekt/docreader/tts"
)

const statusBarHeight = 1

var (
	pagerHelpHeight int

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerStatusMessage struct {
	message string
	isError bool
}

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	state    pagerState
	showHelp bool
	keys     keyMap

	// Follow keeps the current sentence in view as playback advances.
	follow bool

	statusMessage      pagerStatusMessage
	statusMessageTimer *time.Timer

	// Latest controller snapshot and where each sentence was rendered.
	tts   tts.State
	spans []sentenceSpan
}

func newPagerModel(common *commonModel) pagerModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	vp.HighPerformanceRendering = common.cfg.HighPerformancePager //nolint:staticcheck

	return pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: vp,
		keys:     newKeyMap(),
		follow:   true,
		tts:      common.player.State(),
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight

	if m.showHelp {
		if pagerHelpHeight == 0 {
			pagerHelpHeight = strings.Count(m.helpView(), "\n")
		}
		m.viewport.Height -= (statusBarHeight + pagerHelpHeight)
	}
	m.render()
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

// setState adopts a new controller snapshot.
func (m *pagerModel) setState(s tts.State) {
	moved := s.Index != m.tts.Index || len(s.Sentences) != len(m.tts.Sentences)
	m.tts = s
	m.render()
	if moved && m.follow {
		m.scrollToCurrent()
	}
}

func (m *pagerModel) render() {
	r := sentenceRenderer{
		width:     m.viewport.Width,
		highlight: m.common.cfg.Highlight,
		style:     highlightStyle(m.common.cfg.HighlightColor),
	}
	current := -1
	if m.tts.Current != tts.StateIdle {
		current = m.tts.Index
	}

	var content string
	content, m.spans = r.render(m.tts.Sentences, current)
	if len(m.tts.Sentences) == 0 {
		content = subtleStyle.Render(indent("This document has nothing to read.", gutterWidth))
	}
	m.viewport.SetContent(content)
}

// scrollToCurrent moves the viewport so the current sentence sits in the
// upper third of the screen when it is not already fully visible.
func (m *pagerModel) scrollToCurrent() {
	if m.tts.Index < 0 || m.tts.Index >= len(m.spans) {
		return
	}
	span := m.spans[m.tts.Index]
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height
	if span.start >= top && span.end <= bottom {
		return
	}
	m.viewport.SetYOffset(max(0, span.start-m.viewport.Height/3))
}

func (m *pagerModel) showStatusMessage(msg pagerStatusMessage) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m *pagerModel) showError(err error) tea.Cmd {
	return m.showStatusMessage(pagerStatusMessage{message: err.Error(), isError: true})
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, ok := m.handleKey(msg); ok {
			return m, cmd
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if i := sentenceAt(m.spans, m.viewport.YOffset+msg.Y); i >= 0 {
				if err := m.common.player.SkipToSentence(i); err != nil {
					return m, m.showError(err)
				}
				return m, nil
			}
		}

	case statusMessageTimeoutMsg:
		m.state = pagerStateBrowse
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey runs reader commands. It reports false for keys the viewport
// should handle instead.
func (m *pagerModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	player := m.common.player
	k := m.keys

	var err error
	switch {
	case key.Matches(msg, k.PlayPause):
		err = player.TogglePlayback()
	case key.Matches(msg, k.Stop):
		player.Stop()
	case key.Matches(msg, k.Next):
		err = player.NextSentence()
	case key.Matches(msg, k.Previous):
		err = player.PreviousSentence()
	case key.Matches(msg, k.Restart):
		err = player.SkipToSentence(0)
	case key.Matches(msg, k.Faster):
		if speed, ok := tts.NextSpeed(m.tts.Speed); ok {
			err = player.ChangeSpeed(speed)
		}
	case key.Matches(msg, k.Slower):
		if speed, ok := tts.PreviousSpeed(m.tts.Speed); ok {
			err = player.ChangeSpeed(speed)
		}
	case key.Matches(msg, k.Voice):
		id, ok := nextVoice(m.tts)
		if !ok {
			return m.showStatusMessage(pagerStatusMessage{message: "No other voices"}), true
		}
		err = player.SelectVoice(id)
	case key.Matches(msg, k.Follow):
		m.follow = !m.follow
		if m.follow {
			m.scrollToCurrent()
			return m.showStatusMessage(pagerStatusMessage{message: "Following playback"}), true
		}
		return m.showStatusMessage(pagerStatusMessage{message: "Stopped following playback"}), true
	case key.Matches(msg, k.Copy):
		sentence := m.tts.CurrentSentence()
		if sentence == "" {
			return nil, true
		}
		// Copy using OSC 52
		termenv.Copy(sentence)
		// Copy using native system clipboard
		_ = clipboard.WriteAll(sentence)
		return m.showStatusMessage(pagerStatusMessage{message: "Copied sentence"}), true
	case key.Matches(msg, k.Edit):
		if m.common.doc.Path == "" {
			return m.showStatusMessage(pagerStatusMessage{message: "Document has no local file"}), true
		}
		log.Info("opening editor", "file", m.common.doc.Path)
		return openEditor(m.common.doc.Path), true
	case key.Matches(msg, k.Reload):
		if m.common.load == nil {
			return nil, true
		}
		return loadDocument(m.common.load), true
	case key.Matches(msg, k.Top):
		m.viewport.GotoTop()
		return m.sync(), true
	case key.Matches(msg, k.Bottom):
		m.viewport.GotoBottom()
		return m.sync(), true
	case key.Matches(msg, k.Help):
		m.toggleHelp()
		return m.sync(), true
	default:
		return nil, false
	}

	if err != nil {
		log.Debug("command failed", "key", msg.String(), "error", err)
		return m.showError(err), true
	}
	return nil, true
}

func (m pagerModel) sync() tea.Cmd {
	if m.viewport.HighPerformanceRendering { //nolint:staticcheck
		return viewport.Sync(m.viewport) //nolint:staticcheck
	}
	return nil
}

// nextVoice returns the voice after the selected one, wrapping around.
func nextVoice(s tts.State) (string, bool) {
	if len(s.Voices) < 2 {
		return "", false
	}
	next := 0
	if s.Voice != nil {
		for i, v := range s.Voices {
			if v.ID == s.Voice.ID {
				next = (i + 1) % len(s.Voices)
				break
			}
		}
	}
	return s.Voices[next].ID, true
}

func (m pagerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	// Footer
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == pagerStateStatusMessage
	status := ttsStatus{
		state:        m.tts,
		kind:         m.tts.Engine,
		showProgress: m.common.cfg.ShowProgress,
	}

	// Logo
	logo := logoView() + statusBarNoteStyle(" ") + status.icon()

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude))

	// "Help" note
	helpNote := statusBarHelpStyle(" ? Help ")

	// Note
	note := m.common.doc.Title + " · " + status.note()
	if showStatusMessage {
		note = m.statusMessage.message
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	style := statusBarNoteStyle
	if showStatusMessage {
		style = statusBarMessageStyle
		if m.statusMessage.isError {
			style = statusBarErrorStyle
		}
	}
	note = style(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func (m pagerModel) helpView() (s string) {
	cols := m.keys.helpColumns()

	s += "\n"
	for i := range cols[0] {
		left := cols[0][i].Help()
		line := fmt.Sprintf("%-9s%-22s", left.Key, left.Desc)
		if i < len(cols[1]) {
			right := cols[1][i].Help()
			line += fmt.Sprintf("%-9s%s", right.Key, right.Desc)
		}
		s += line + "\n"
	}
	s += "\nclick a sentence to jump to it"

	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}
