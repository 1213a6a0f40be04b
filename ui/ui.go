// Package ui provides the terminal reader for docreader.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"

	"github.com/dgnsrekt/docreader/tts"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

// Player is the playback surface the reader drives. *tts.Controller
// implements it.
type Player interface {
	State() tts.State
	LoadContent(text string)
	TogglePlayback() error
	Stop()
	NextSentence() error
	PreviousSentence() error
	SkipToSentence(i int) error
	ChangeSpeed(speed float64) error
	SelectVoice(id string) error
}

// Document describes what the reader shows.
type Document struct {
	Title string
	// Path is the local file backing the document, if any.
	Path string
}

// Options wires the reader to a playback session.
type Options struct {
	Document Document
	Player   Player

	// Updates and Errors usually come from a sync.Manager attached to the
	// player.
	Updates <-chan tts.State
	Errors  <-chan error

	// Reloads delivers document text changed on disk. Optional.
	Reloads <-chan tts.ContentReloadedMsg

	// Load reads the document text again. Optional.
	Load func() (string, error)
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, opts Options) *tea.Program {
	log.Debug(
		"Starting reader",
		"high_perf_pager", cfg.HighPerformancePager,
		"document", opts.Document.Title,
	)

	teaOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		teaOpts = append(teaOpts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, opts), teaOpts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	statusMessageTimeoutMsg struct{}
	editorFinishedMsg       struct{ err error }
	contentLoadedMsg        string
)

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	doc    Document
	player Player
	load   func() (string, error)
	width  int
	height int
}

type model struct {
	common   *commonModel
	fatalErr error
	pager    pagerModel

	updates <-chan tts.State
	errors  <-chan error
	reloads <-chan tts.ContentReloadedMsg
}

func newModel(cfg Config, opts Options) model {
	common := &commonModel{
		cfg:    cfg,
		doc:    opts.Document,
		player: opts.Player,
		load:   opts.Load,
	}
	m := model{
		common:  common,
		updates: opts.Updates,
		errors:  opts.Errors,
		reloads: opts.Reloads,
	}
	if opts.Player == nil {
		m.fatalErr = errors.New("no playback session")
		return m
	}
	m.pager = newPagerModel(common)
	return m
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.updates != nil {
		cmds = append(cmds, tts.WaitForState(m.updates))
	}
	if m.errors != nil {
		cmds = append(cmds, tts.WaitForError(m.errors))
	}
	if m.reloads != nil {
		cmds = append(cmds, tts.WaitForReload(m.reloads))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key := msg.String(); key == "ctrl+c" || key == "q" || key == keyEsc {
			if key == keyEsc && m.pager.showHelp {
				m.pager.toggleHelp()
				return m, nil
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.pager.setSize(msg.Width, msg.Height)

	case tts.StateChangedMsg:
		m.pager.setState(msg.State)
		return m, tts.WaitForState(m.updates)

	case tts.ErrorMsg:
		log.Debug("playback error", "error", msg.Err, "recoverable", msg.Recoverable)
		return m, tea.Batch(m.pager.showError(msg.Err), tts.WaitForError(m.errors))

	case tts.ContentReloadedMsg:
		log.Info("document changed on disk", "path", msg.Path)
		m.common.player.LoadContent(msg.Text)
		return m, tea.Batch(
			m.pager.showStatusMessage(pagerStatusMessage{message: "Reloaded"}),
			tts.WaitForReload(m.reloads),
		)

	case contentLoadedMsg:
		m.common.player.LoadContent(string(msg))
		return m, m.pager.showStatusMessage(pagerStatusMessage{message: "Reloaded"})

	case editorFinishedMsg:
		if msg.err != nil {
			log.Error("editor failed", "error", msg.err)
			return m, m.pager.showError(msg.err)
		}
		if m.common.load != nil {
			return m, loadDocument(m.common.load)
		}
		return m, nil

	case errMsg:
		return m, m.pager.showError(msg.err)
	}

	var cmd tea.Cmd
	m.pager, cmd = m.pager.update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}
	return m.pager.View()
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

func loadDocument(load func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := load()
		if err != nil {
			log.Error("unable to reload document", "error", err)
			return errMsg{err}
		}
		return contentLoadedMsg(text)
	}
}

func openEditor(path string) tea.Cmd {
	cb := func(err error) tea.Msg {
		return editorFinishedMsg{err}
	}
	cmd, err := editor.Cmd("docreader", path)
	if err != nil {
		return func() tea.Msg { return cb(err) }
	}
	return tea.ExecProcess(cmd, cb)
}

// ETC

const keyEsc = "esc"

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
