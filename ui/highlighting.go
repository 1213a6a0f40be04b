package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const (
	gutterWidth  = 2
	minWrapWidth = 10
)

// sentenceSpan is the half-open range of content lines a sentence occupies.
type sentenceSpan struct {
	start, end int
}

func (s sentenceSpan) contains(line int) bool {
	return line >= s.start && line < s.end
}

type sentenceRenderer struct {
	width     int
	highlight bool
	style     lipgloss.Style
}

// render lays sentences out one paragraph each, wrapped to the renderer's
// width, marking the current one. Sentences are separated by a blank line.
func (r sentenceRenderer) render(sentences []string, current int) (string, []sentenceSpan) {
	wrapWidth := max(r.width-gutterWidth*2, minWrapWidth)

	var (
		b     strings.Builder
		spans = make([]sentenceSpan, len(sentences))
		line  int
	)
	for i, s := range sentences {
		if i > 0 {
			b.WriteString("\n")
			line++
		}

		lines := strings.Split(wrap.String(wordwrap.String(s, wrapWidth), wrapWidth), "\n")
		spans[i] = sentenceSpan{start: line, end: line + len(lines)}

		for j, l := range lines {
			gutter := strings.Repeat(" ", gutterWidth)
			style := sentenceStyle
			if i == current {
				gutter = gutterStyle.Render("▌ ")
				if r.highlight {
					style = r.style
				}
			}
			b.WriteString(gutter + style.Render(l))
			if j < len(lines)-1 {
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		line += len(lines)
	}

	return strings.TrimSuffix(b.String(), "\n"), spans
}

// sentenceAt returns the index of the sentence rendered on line, or -1.
func sentenceAt(spans []sentenceSpan, line int) int {
	for i, s := range spans {
		if s.contains(line) {
			return i
		}
		if s.start > line {
			break
		}
	}
	return -1
}
