// Package ui renders the one-shot run command as a terminal view: a spinner
// for the current pipeline phase, a scrolling log of resolved tracks, and
// the playlist URL once the run completes. Built on bubbletea with lipgloss
// styling; progress arrives as pipeline events over a channel.
package ui
