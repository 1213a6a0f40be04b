package tts

import (
	"errors"
	"time"
)

// Common errors for the TTS system.
var (
	// Engine errors
	ErrEngineNotAvailable = errors.New("speech engine is not available")
	ErrEngineClosed       = errors.New("speech engine has been closed")
	ErrVoiceNotFound      = errors.New("requested voice not found")
	ErrUtterance          = errors.New("utterance failed")
	ErrNotSupported       = errors.New("operation not supported by speech engine")

	// Content errors
	ErrNoContent            = errors.New("no sentences loaded")
	ErrInvalidSentenceIndex = errors.New("invalid sentence index")

	// Controller errors
	ErrControllerClosed = errors.New("TTS controller has been closed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidSpeed  = errors.New("invalid playback speed")
)

// IsRecoverableError checks if an error is recoverable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	var ttsErr *TTSError
	if errors.As(err, &ttsErr) {
		return ttsErr.IsRecoverable()
	}

	// Non-recoverable errors
	switch {
	case errors.Is(err, ErrEngineClosed),
		errors.Is(err, ErrControllerClosed),
		errors.Is(err, ErrInvalidConfig):
		return false
	}

	// Most errors are recoverable
	return true
}

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for informational messages.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for warnings that don't prevent operation.
	SeverityWarning
	// SeverityError is for errors that prevent normal operation.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// TTSError provides detailed error information.
type TTSError struct {
	Err       error          // The underlying error
	Component string         // Component that generated the error
	Action    string         // Action being performed when error occurred
	Sentence  int            // Sentence index involved, -1 if none
	Severity  ErrorSeverity  // Severity of the error
	Timestamp time.Time      // When the error occurred
	Context   map[string]any // Additional context
}

// Error implements the error interface.
func (e *TTSError) Error() string {
	if e.Err == nil {
		return "unknown TTS error"
	}
	if e.Component == "" {
		return e.Err.Error()
	}
	if e.Action == "" {
		return e.Component + ": " + e.Err.Error()
	}
	return e.Component + ": " + e.Action + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TTSError) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *TTSError) IsRecoverable() bool {
	if e.Severity == SeverityCritical {
		return false
	}
	return IsRecoverableError(e.Err)
}

// NewTTSError creates a new TTS error with context.
func NewTTSError(err error, component, action string) *TTSError {
	return &TTSError{
		Err:       err,
		Component: component,
		Action:    action,
		Sentence:  -1,
		Severity:  SeverityError,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
}

// WithSeverity sets the error severity.
func (e *TTSError) WithSeverity(severity ErrorSeverity) *TTSError {
	e.Severity = severity
	return e
}

// WithSentence records the sentence index the error relates to.
func (e *TTSError) WithSentence(index int) *TTSError {
	e.Sentence = index
	return e
}

// WithContext adds context to the error.
func (e *TTSError) WithContext(key string, value any) *TTSError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// utteranceError wraps an engine failure so that errors.Is(err, ErrUtterance)
// holds alongside the original cause.
type utteranceError struct {
	cause error
}

func (e *utteranceError) Error() string {
	if e.cause == nil {
		return ErrUtterance.Error()
	}
	return ErrUtterance.Error() + ": " + e.cause.Error()
}

func (e *utteranceError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrUtterance}
	}
	return []error{ErrUtterance, e.cause}
}

// NewUtteranceError reports an engine failure for sentence index.
func NewUtteranceError(cause error, action string, index int) *TTSError {
	return NewTTSError(&utteranceError{cause: cause}, "speech", action).WithSentence(index)
}
