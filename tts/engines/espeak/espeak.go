// Package espeak drives eSpeak NG (or classic eSpeak) as a platform speech
// engine. Each utterance runs in its own process.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/docreader/tts"
)

// Binaries tried, in order, when no binary is configured.
var defaultBinaries = []string{"espeak-ng", "espeak"}

// Rate limits accepted by espeak's -s flag.
const (
	minWordsPerMinute = 80
	maxWordsPerMinute = 450
)

// Binding implements tts.Binding on top of the espeak command line tool.
type Binding struct {
	binary string
	wpm    int
	logger *log.Logger

	mu        sync.Mutex
	voices    []tts.SystemVoice
	listeners []func()
	proc      *process
	closed    bool
}

type process struct {
	cmd      *exec.Cmd
	u        *tts.SystemUtterance
	canceled bool
	paused   bool
}

// LookPath resolves the espeak binary. An empty binary tries espeak-ng and
// then espeak. It returns tts.ErrEngineNotAvailable when none is found.
func LookPath(binary string) (string, error) {
	candidates := defaultBinaries
	if binary != "" {
		candidates = []string{binary}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %v found in PATH", tts.ErrEngineNotAvailable, candidates)
}

// New creates a binding for the configured binary. Voices are not loaded
// until LoadVoices is called.
func New(cfg tts.EspeakConfig, logger *log.Logger) (*Binding, error) {
	path, err := LookPath(cfg.Binary)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default().WithPrefix("espeak")
	}
	return &Binding{
		binary: path,
		wpm:    cfg.WordsPerMinute,
		logger: logger,
	}, nil
}

// LoadVoices runs "espeak --voices" and publishes the parsed list.
func (b *Binding) LoadVoices(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, b.binary, "--voices").Output()
	if err != nil {
		return fmt.Errorf("list voices: %w", err)
	}
	voices := parseVoices(out)

	b.mu.Lock()
	b.voices = voices
	listeners := slices.Clone(b.listeners)
	b.mu.Unlock()

	b.logger.Debug("voices listed", "binary", b.binary, "count", len(voices))
	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Voices implements tts.Binding.
func (b *Binding) Voices() []tts.SystemVoice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.voices)
}

// OnVoicesChanged implements tts.Binding.
func (b *Binding) OnVoicesChanged(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Speak starts a new espeak process for u. Callbacks run on the goroutine
// waiting for the process.
func (b *Binding) Speak(u *tts.SystemUtterance) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return tts.ErrEngineClosed
	}
	b.killLocked()

	cmd := exec.Command(b.binary, speakArgs(u, b.wpm)...)
	cmd.Stdin = strings.NewReader(u.Text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", b.binary, err)
	}

	p := &process{cmd: cmd, u: u}
	b.proc = p
	b.logger.Debug("process started", "pid", cmd.Process.Pid, "voice", voiceName(u.Voice), "rate", u.Rate)

	go b.wait(p, &stderr)
	return nil
}

// Cancel implements tts.Binding.
func (b *Binding) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.killLocked()
}

// Pause suspends the running espeak process.
func (b *Binding) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.proc
	if p == nil || p.paused {
		return
	}
	if err := suspend(p.cmd.Process); err != nil {
		b.logger.Warn("pause failed", "error", err)
		return
	}
	p.paused = true
}

// Resume continues a suspended espeak process.
func (b *Binding) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.proc
	if p == nil || !p.paused {
		return
	}
	if err := resume(p.cmd.Process); err != nil {
		b.logger.Warn("resume failed", "error", err)
		return
	}
	p.paused = false
}

// Close kills any running process.
func (b *Binding) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.killLocked()
	b.closed = true
	return nil
}

func (b *Binding) killLocked() {
	p := b.proc
	if p == nil {
		return
	}
	b.proc = nil
	p.canceled = true
	if err := p.cmd.Process.Kill(); err != nil {
		b.logger.Debug("kill failed", "pid", p.cmd.Process.Pid, "error", err)
	}
}

func (b *Binding) wait(p *process, stderr *bytes.Buffer) {
	err := p.cmd.Wait()

	b.mu.Lock()
	if p.canceled || b.proc != p {
		b.mu.Unlock()
		return
	}
	b.proc = nil
	b.mu.Unlock()

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		if p.u.OnError != nil {
			p.u.OnError(err)
		}
		return
	}
	if p.u.OnEnd != nil {
		p.u.OnEnd()
	}
}

func speakArgs(u *tts.SystemUtterance, wpm int) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = tts.DefaultSpeed
	}
	speed := int(float64(wpm) * rate)
	speed = max(minWordsPerMinute, min(maxWordsPerMinute, speed))

	args := []string{"-s", strconv.Itoa(speed)}
	if u.Voice != nil && u.Voice.URI != "" {
		args = append(args, "-v", u.Voice.URI)
	}
	return append(args, "--stdin")
}

func voiceName(v *tts.SystemVoice) string {
	if v == nil {
		return "default"
	}
	return v.Name
}

// parseVoices reads the table printed by "espeak --voices":
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en   (en 2)
func parseVoices(out []byte) []tts.SystemVoice {
	var voices []tts.SystemVoice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		lang := fields[1]
		voices = append(voices, tts.SystemVoice{
			Name: strings.ReplaceAll(fields[3], "_", " "),
			Lang: lang,
			URI:  lang,
		})
	}
	return voices
}
