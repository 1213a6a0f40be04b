package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	normalFg    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#dddddd"}
	dimFg       = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia     = lipgloss.Color("#EE6FF8")
	green       = lipgloss.Color("#04B575")
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	yellowGreen = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(dimFg)

	sentenceStyle = lipgloss.NewStyle().Foreground(normalFg)

	gutterStyle = lipgloss.NewStyle().Foreground(yellowGreen)
)

// highlightColors maps the configured color names to terminal colors.
var highlightColors = map[string]lipgloss.TerminalColor{
	"yellow":  lipgloss.AdaptiveColor{Light: "#FFF3A3", Dark: "#8A7A00"},
	"green":   lipgloss.AdaptiveColor{Light: "#C8F7D9", Dark: "#1C6B46"},
	"blue":    lipgloss.AdaptiveColor{Light: "#CCE4FF", Dark: "#1F4E8C"},
	"magenta": lipgloss.AdaptiveColor{Light: "#F9D2FC", Dark: "#7A2D84"},
	"cyan":    lipgloss.AdaptiveColor{Light: "#CCF5F7", Dark: "#146D73"},
	"red":     lipgloss.AdaptiveColor{Light: "#FFD1DC", Dark: "#8C1F3A"},
	"white":   lipgloss.AdaptiveColor{Light: "#F2F2F2", Dark: "#BBBBBB"},
	"black":   lipgloss.AdaptiveColor{Light: "#3A3A3A", Dark: "#101010"},
}

func highlightStyle(color string) lipgloss.Style {
	if strings.EqualFold(color, "none") {
		return lipgloss.NewStyle().Foreground(normalFg).Bold(true).Underline(true)
	}
	bg, ok := highlightColors[strings.ToLower(color)]
	if !ok {
		bg = lipgloss.Color(color)
	}
	return lipgloss.NewStyle().Foreground(normalFg).Background(bg).Bold(true)
}

func logoView() string {
	return logoStyle.Render(" docreader ")
}
