package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/glamour/styles"

	"github.com/dgnsrekt/docreader/internal/library"
	"github.com/dgnsrekt/docreader/tts"
	"github.com/dgnsrekt/docreader/tts/engines/espeak"
)

func TestResolveDocument(t *testing.T) {
	lib, err := library.New()
	if err != nil {
		t.Fatal(err)
	}

	doc, err := resolveDocument(lib, []string{"doc3"})
	if err != nil || doc.ID != "doc3" {
		t.Fatalf("resolve by id = %v, %v", doc.ID, err)
	}

	doc, err = resolveDocument(lib, []string{"css techniques"})
	if err != nil || doc.ID != "doc5" {
		t.Fatalf("resolve by title = %v, %v", doc.ID, err)
	}

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Local. File."), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err = resolveDocument(lib, []string{path})
	if err != nil || doc.Path != path || doc.Title != "notes" {
		t.Fatalf("resolve by path = %+v, %v", doc, err)
	}

	if _, err := resolveDocument(lib, []string{t.TempDir()}); err == nil {
		t.Error("directories should be rejected")
	}
}

func TestDocumentFromReader(t *testing.T) {
	doc, err := documentFromReader(strings.NewReader("---\ntitle: x\n---\n# Hi\n\nThere."))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content != "# Hi\n\nThere." || !doc.IsMarkdown() {
		t.Errorf("doc = %+v", doc)
	}
}

func TestPrintDocuments(t *testing.T) {
	lib, err := library.New()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	now := time.Date(2025, 5, 27, 0, 0, 0, 0, time.UTC)
	if err := printDocuments(&buf, lib.Documents("pdf"), now); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "Improving Experimentation Techniques") {
		t.Errorf("newest document should come first: %q", lines[1])
	}
	if !strings.Contains(lines[1], "ago") {
		t.Errorf("date should be relative: %q", lines[1])
	}

	buf.Reset()
	if err := printDocuments(&buf, nil, now); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No documents.") {
		t.Errorf("empty listing = %q", buf.String())
	}
}

func TestPrintVoicesMarksSelection(t *testing.T) {
	voices := []tts.Voice{
		{ID: "voice1", Name: "Emma (Female)", Language: "en-US"},
		{ID: "voice3", Name: "Sophie (Female)", Language: "en-GB"},
	}
	cfg := tts.DefaultConfig()
	cfg.Voice = "voice3"

	var buf bytes.Buffer
	if err := printVoices(&buf, voices, cfg); err != nil {
		t.Fatal(err)
	}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		marked := strings.HasPrefix(line, "* ")
		if marked != strings.Contains(line, "voice3") {
			t.Errorf("unexpected marker on %q", line)
		}
	}
}

func TestRenderDocument(t *testing.T) {
	style = styles.NoTTYStyle
	width = 60
	t.Cleanup(func() {
		style = styles.AutoStyle
		width = 0
	})

	lib, err := library.New()
	if err != nil {
		t.Fatal(err)
	}
	doc, err := lib.Document("doc5")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := renderDocument(&buf, doc); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Advanced CSS Techniques") || !strings.Contains(out, "Flexbox") {
		t.Errorf("rendered document is missing content:\n%s", out)
	}
	if !doc.IsPlainText() {
		t.Fatalf("expected %s to be plain text, got %q", doc.ID, doc.FileType)
	}
	if strings.Contains(out, "```") {
		t.Errorf("plain text rendered with code fences:\n%s", out)
	}
}

func TestPrintCheck(t *testing.T) {
	var buf bytes.Buffer
	installed := espeak.Status{Name: "espeak-ng", Installed: true, Path: "/usr/bin/espeak-ng", Version: "1.51"}
	if err := printCheck(&buf, tts.EngineAuto, installed); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "/usr/bin/espeak-ng") || !strings.Contains(buf.String(), "1.51") {
		t.Errorf("missing binary details:\n%s", buf.String())
	}

	missing := espeak.Status{Name: "espeak-ng", Instructions: "Install with: brew install espeak-ng"}
	buf.Reset()
	if err := printCheck(&buf, tts.EngineAuto, missing); err != nil {
		t.Fatalf("auto engine should not fail: %v", err)
	}
	if !strings.Contains(buf.String(), "simulated playback") {
		t.Errorf("expected fallback note:\n%s", buf.String())
	}

	buf.Reset()
	if err := printCheck(&buf, tts.EngineEspeak, missing); !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Fatalf("expected ErrEngineNotAvailable, got %v", err)
	}
	if !strings.Contains(buf.String(), "brew install") {
		t.Errorf("expected instructions:\n%s", buf.String())
	}
}

func TestEnsureConfigFile(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	configFile = filepath.Join(t.TempDir(), "nested", "docreader.yml")
	if err := ensureConfigFile(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != defaultConfig {
		t.Error("expected default config to be written")
	}

	// existing files are left alone
	if err := os.WriteFile(configFile, []byte("mouse: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ensureConfigFile(); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(configFile); string(data) != "mouse: true\n" {
		t.Errorf("config overwritten: %q", data)
	}

	configFile = filepath.Join(t.TempDir(), "docreader.toml")
	if err := ensureConfigFile(); err == nil {
		t.Error("expected unsupported extension error")
	}
}
