// Package library is the document catalog the reader opens documents from.
// It also serves as the voice directory for the simulated speech engine.
package library

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/docreader/tts"
	"github.com/dgnsrekt/docreader/tts/sentence"
	"github.com/dgnsrekt/docreader/utils"
)

//go:embed seed.yaml
var seedCatalog []byte

// Errors returned by the library.
var (
	ErrNotFound            = errors.New("document not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// Document is one catalog entry.
type Document struct {
	ID         string    `yaml:"id"`
	Title      string    `yaml:"title"`
	UploadDate time.Time `yaml:"upload_date"`
	FileType   string    `yaml:"file_type"`
	Content    string    `yaml:"content"`
	Thumbnail  string    `yaml:"thumbnail,omitempty"`
	SourceType string    `yaml:"source_type"`
	// Path is set for documents added from a local file.
	Path string `yaml:"path,omitempty"`
}

// IsMarkdown reports whether Content is markdown.
func (d Document) IsMarkdown() bool {
	return utils.IsMarkdownFile("." + d.FileType)
}

// IsPlainText reports whether Content is a plain text file.
func (d Document) IsPlainText() bool {
	return strings.EqualFold(d.FileType, "txt")
}

// SpeakableText returns the text handed to the segmenter: markdown is
// reduced to plain text, everything else is returned as is.
func (d Document) SpeakableText() string {
	if !d.IsMarkdown() {
		return d.Content
	}
	plain, err := sentence.PlainText(d.Content)
	if err != nil {
		return d.Content
	}
	return plain
}

type catalog struct {
	Voices    []tts.Voice `yaml:"voices"`
	Documents []Document  `yaml:"documents"`
}

// Library is an in-memory document catalog.
type Library struct {
	latency time.Duration
	logger  *log.Logger
	now     func() time.Time

	mu     sync.RWMutex
	docs   []Document
	voices []tts.Voice
}

// Option configures a Library.
type Option func(*Library)

// WithLatency delays voice lookups, like a remote directory would.
func WithLatency(d time.Duration) Option {
	return func(l *Library) {
		l.latency = d
	}
}

// WithLogger sets the library logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a library seeded with the built-in sample documents and
// voices.
func New(opts ...Option) (*Library, error) {
	l := &Library{
		logger: log.Default().WithPrefix("library"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	var seed catalog
	if err := yaml.Unmarshal(seedCatalog, &seed); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	l.docs = seed.Documents
	l.voices = seed.Voices

	return l, nil
}

// LoadCatalog merges documents and voices from a YAML catalog file. Entries
// whose ID already exists replace the existing entry.
func (l *Library) LoadCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse catalog %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, d := range c.Documents {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		l.putLocked(d)
	}
	for _, v := range c.Voices {
		if i := slices.IndexFunc(l.voices, func(e tts.Voice) bool { return e.ID == v.ID }); i >= 0 {
			l.voices[i] = v
			continue
		}
		l.voices = append(l.voices, v)
	}

	l.logger.Debug("catalog loaded", "path", path, "documents", len(c.Documents), "voices", len(c.Voices))
	return nil
}

// Documents returns documents newest first. A non-empty filter keeps
// documents whose title contains it or whose file type equals it, ignoring
// case.
func (l *Library) Documents(filter string) []Document {
	l.mu.RLock()
	docs := slices.Clone(l.docs)
	l.mu.RUnlock()

	if filter != "" {
		f := strings.ToLower(filter)
		docs = slices.DeleteFunc(docs, func(d Document) bool {
			return !strings.Contains(strings.ToLower(d.Title), f) && strings.ToLower(d.FileType) != f
		})
	}

	slices.SortStableFunc(docs, func(a, b Document) int {
		return b.UploadDate.Compare(a.UploadDate)
	})
	return docs
}

// Document looks a document up by ID.
func (l *Library) Document(id string) (Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, d := range l.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Find returns documents whose titles fuzzy-match query, best match first.
func (l *Library) Find(query string) []Document {
	l.mu.RLock()
	docs := slices.Clone(l.docs)
	l.mu.RUnlock()

	titles := make([]string, len(docs))
	for i, d := range docs {
		titles[i] = d.Title
	}

	matches := fuzzy.Find(query, titles)
	found := make([]Document, 0, len(matches))
	for _, m := range matches {
		found = append(found, docs[m.Index])
	}
	return found
}

// Resolve finds the document a command line argument refers to: an ID
// first, then the best fuzzy title match.
func (l *Library) Resolve(ref string) (Document, error) {
	if d, err := l.Document(ref); err == nil {
		return d, nil
	}
	if found := l.Find(ref); len(found) > 0 {
		return found[0], nil
	}
	return Document{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// AddFile reads a local text or markdown file into the catalog. Adding the
// same path again refreshes its content and keeps its ID.
func (l *Library) AddFile(path string) (Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext != "txt" && !utils.IsMarkdownFile(path) {
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	doc := Document{
		ID:         uuid.NewString(),
		Title:      strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		UploadDate: l.now(),
		FileType:   ext,
		Content:    string(content),
		SourceType: "file",
		Path:       abs,
	}
	if i := slices.IndexFunc(l.docs, func(d Document) bool { return d.Path == abs }); i >= 0 {
		doc.ID = l.docs[i].ID
	}
	l.putLocked(doc)

	l.logger.Debug("document added", "id", doc.ID, "path", abs, "bytes", len(content))
	return doc, nil
}

// Delete removes a document.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.docs, func(d Document) bool { return d.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l.docs = slices.Delete(l.docs, i, i+1)
	return nil
}

// TTSVoices returns the fallback voice list after the configured latency.
func (l *Library) TTSVoices(ctx context.Context) ([]tts.Voice, error) {
	if l.latency > 0 {
		t := time.NewTimer(l.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.voices), nil
}

func (l *Library) putLocked(d Document) {
	if i := slices.IndexFunc(l.docs, func(e Document) bool { return e.ID == d.ID }); i >= 0 {
		l.docs[i] = d
		return
	}
	l.docs = append(l.docs, d)
}
