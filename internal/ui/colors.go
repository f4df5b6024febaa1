package ui

import "github.com/charmbracelet/lipgloss"

// palette is the stylesheet for the run view, spotify-green accents on a
// muted base.
type palette struct {
	title  lipgloss.Style
	status lipgloss.Style
	track  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	help   lipgloss.Style
}

func newPalette() palette {
	return palette{
		title:  bold("#1DB954").MarginBottom(1),
		status: fg("#AAAAAA"),
		track:  fg("#FFFFFF"),
		ok:     bold("#1DB954"),
		err:    bold("#FF5555"),
		help:   fg("#626262").Italic(true),
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}
