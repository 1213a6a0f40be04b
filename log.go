package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "docreader").CacheDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return filepath.Join(dir, "docreader.log"), nil
}

// setupLog sends logs to a file in the user cache dir when DOCREADER_DEBUG
// is set, and discards them otherwise since the TUI owns the terminal.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	if os.Getenv("DOCREADER_DEBUG") == "" {
		return func() error { return nil }, nil
	}

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err //nolint:wrapcheck
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.DateTime)
	return f.Close, nil
}

// enableDebugLog raises the log level for --debug. When no log file is set
// up, logs go to stderr.
func enableDebugLog() {
	if os.Getenv("DOCREADER_DEBUG") == "" {
		log.SetOutput(os.Stderr)
	}
	log.SetLevel(log.DebugLevel)
}
