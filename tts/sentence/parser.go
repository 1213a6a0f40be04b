// Package sentence splits document text into the sentences spoken by the
// playback controller.
package sentence

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// A sentence is a maximal run of characters other than '.', '!' and '?'
// followed by one or more of those terminators.
var sentenceRegex = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Segment splits text into sentences. Every returned sentence is trimmed and
// ends with a terminator; trailing text without a terminator is not a
// sentence and is dropped. A run of terminators after whitespace, as in
// "Hello. ... World.", is kept as its own sentence so indexes line up with
// the matches. Text with no terminators yields an empty slice.
func Segment(text string) []string {
	matches := sentenceRegex.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		sentences = append(sentences, strings.TrimSpace(m))
	}
	return sentences
}

// Parser extracts sentences from markdown or plain text content.
type Parser struct {
	markdown bool
	// Sentences shorter than minLength runes are skipped.
	minLength int
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMarkdown makes the parser render markdown to plain text before
// segmenting, skipping code blocks and link destinations.
func WithMarkdown(enabled bool) ParserOption {
	return func(p *Parser) {
		p.markdown = enabled
	}
}

// WithMinLength skips sentences shorter than n runes.
func WithMinLength(n int) ParserOption {
	return func(p *Parser) {
		p.minLength = n
	}
}

// NewParser creates a new sentence parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Segment splits text into sentences, stripping markdown first when the
// parser was configured for it. Markdown that fails to render falls back to
// the raw text.
func (p *Parser) Segment(text string) []string {
	if p.markdown {
		if plain, err := PlainText(text); err == nil {
			text = plain
		}
	}

	sentences := Segment(text)
	if p.minLength <= 0 {
		return sentences
	}

	kept := sentences[:0]
	for _, s := range sentences {
		if utf8.RuneCountInString(s) >= p.minLength {
			kept = append(kept, s)
		}
	}
	return kept
}

// EstimateDuration estimates how long text takes to speak at speed 1.0,
// assuming 150 words per minute.
func EstimateDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return time.Duration(float64(words) * 60.0 / 150.0 * float64(time.Second))
}
