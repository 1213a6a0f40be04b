// Package reader assembles a playback session for one document: speech
// engine, cached segmenter, controller, state hub and optional file watcher.
package reader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/docreader/internal/cache"
	"github.com/dgnsrekt/docreader/internal/library"
	"github.com/dgnsrekt/docreader/internal/watch"
	"github.com/dgnsrekt/docreader/tts"
	"github.com/dgnsrekt/docreader/tts/engines"
	"github.com/dgnsrekt/docreader/tts/sentence"
	"github.com/dgnsrekt/docreader/tts/sync"
)

// Options configures a Session.
type Options struct {
	Config   tts.Config
	Document library.Document
	Voices   engines.VoiceDirectory

	// CacheDir holds the on-disk segment cache. Empty keeps the cache in
	// memory only.
	CacheDir string

	// Watch reloads the document when its file changes.
	Watch bool

	// Speech overrides engine selection.
	Speech tts.Speech

	Logger *log.Logger
}

// Session is one document opened for reading aloud.
type Session struct {
	Controller *tts.Controller
	Manager    *sync.Manager
	Speech     tts.Speech
	Document   library.Document

	logger   *log.Logger
	segments *cache.SegmentCache
	watcher  *watch.Watcher
	reloads  chan tts.ContentReloadedMsg
	cancel   context.CancelFunc
}

// Open builds a session and loads the document into the controller.
func Open(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		Document: opts.Document,
		logger:   logger,
		cancel:   cancel,
	}

	speech := opts.Speech
	if speech == nil {
		var err error
		speech, err = engines.New(ctx, opts.Config, opts.Voices, logger.WithPrefix("tts"))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("speech engine: %w", err)
		}
	}
	s.Speech = speech

	cacheCfg := cache.DefaultCacheConfig()
	cacheCfg.MemoryEntries = opts.Config.CacheSize
	cacheCfg.DiskPath = opts.CacheDir
	segments, err := cache.NewSegmentCache(sentence.NewParser(), cacheCfg, logger.WithPrefix("cache"))
	if err != nil {
		cancel()
		_ = speech.Close()
		return nil, fmt.Errorf("segment cache: %w", err)
	}
	s.segments = segments

	ctrlOpts := append(opts.Config.ControllerOptions(),
		tts.WithSegmenter(segments),
		tts.WithLogger(logger.WithPrefix("tts")),
	)
	s.Controller = tts.NewController(speech, ctrlOpts...)
	s.Manager = sync.NewManager()
	s.Manager.Attach(s.Controller)

	s.Controller.LoadContent(opts.Document.SpeakableText())

	if opts.Watch && opts.Document.Path != "" {
		if err := s.startWatch(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	logger.Debug("session opened",
		"document", opts.Document.ID,
		"engine", speech.Kind(),
		"sentences", len(s.Controller.State().Sentences),
	)
	return s, nil
}

func (s *Session) startWatch(ctx context.Context) error {
	s.reloads = make(chan tts.ContentReloadedMsg, 1)

	w, err := watch.New(s.Document.Path, s.publishReload, watch.WithLogger(s.logger.WithPrefix("watch")))
	if err != nil {
		return fmt.Errorf("watch document: %w", err)
	}
	s.watcher = w

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("watcher stopped", "error", err)
		}
	}()
	return nil
}

// publishReload offers new content, replacing any reload not yet consumed.
func (s *Session) publishReload(content string) {
	doc := s.Document
	doc.Content = content
	msg := tts.ContentReloadedMsg{Path: doc.Path, Text: doc.SpeakableText()}

	select {
	case <-s.reloads:
	default:
	}
	select {
	case s.reloads <- msg:
	default:
	}
}

// Reloads delivers document text changed on disk. It is nil unless the
// session watches its document.
func (s *Session) Reloads() <-chan tts.ContentReloadedMsg {
	if s.reloads == nil {
		return nil
	}
	return s.reloads
}

// Reload reads the document file again and returns its speakable text.
// Catalog documents without a file return their stored text.
func (s *Session) Reload() (string, error) {
	if s.Document.Path == "" {
		return s.Document.SpeakableText(), nil
	}
	content, err := os.ReadFile(s.Document.Path)
	if err != nil {
		return "", fmt.Errorf("reload document: %w", err)
	}
	doc := s.Document
	doc.Content = string(content)
	return doc.SpeakableText(), nil
}

// Close stops playback and releases the engine, watcher and cache.
func (s *Session) Close() error {
	s.cancel()

	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	if s.Controller != nil {
		errs = append(errs, s.Controller.Close())
	}
	if s.Manager != nil {
		s.Manager.Close()
	}
	if s.Speech != nil {
		errs = append(errs, s.Speech.Close())
	}
	if s.segments != nil {
		errs = append(errs, s.segments.Close())
	}
	return errors.Join(errs...)
}
