package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/threadlist/internal/pipeline"
)

// maxVisibleTracks bounds the scrolling track log so long threads don't
// push the status line off screen.
const maxVisibleTracks = 12

type eventMsg struct {
	event pipeline.Event
}

type streamClosedMsg struct{}

// Model renders one pipeline run: a spinner with the current phase, a
// scrolling log of resolved tracks, and the playlist URL at the end.
type Model struct {
	spinner     spinner.Model
	styles      palette
	events      <-chan pipeline.Event
	status      string
	tracks      []string
	total       int
	playlistURL string
	failure     string
	finished    bool
}

// NewModel builds a model consuming events. The channel must be closed by
// the producer once the terminal event has been sent.
func NewModel(events <-chan pipeline.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = fg("#1DB954")

	return Model{
		spinner: sp,
		styles:  newPalette(),
		events:  events,
		status:  "Connecting...",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case eventMsg:
		switch ev := msg.event; ev.Kind {
		case pipeline.KindStatus:
			m.status = ev.Text
		case pipeline.KindTrack:
			m.total++
			m.tracks = append(m.tracks, fmt.Sprintf("%s by %s", ev.TrackName, ev.ArtistName))
			if len(m.tracks) > maxVisibleTracks {
				m.tracks = m.tracks[1:]
			}
		case pipeline.KindDone:
			m.status = ev.Text
			m.playlistURL = ev.PlaylistURL
			m.finished = true
		case pipeline.KindFatal:
			m.failure = ev.Text
			m.finished = true
		}
		return m, m.waitForEvent()

	case streamClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("threadlist"))
	b.WriteString("\n")

	for _, track := range m.tracks {
		b.WriteString(m.styles.track.Render("  ♪ " + track))
		b.WriteString("\n")
	}

	switch {
	case m.failure != "":
		b.WriteString(m.styles.err.Render("✗ " + m.failure))
	case m.finished:
		b.WriteString(m.styles.ok.Render(fmt.Sprintf("✓ %d tracks added", m.total)))
		b.WriteString("\n")
		b.WriteString(m.styles.ok.Render(m.playlistURL))
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.status.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

// PlaylistURL reports the final playlist URL, empty until the run succeeds.
func (m Model) PlaylistURL() string {
	return m.playlistURL
}

// Failure reports the terminal failure message, empty on success.
func (m Model) Failure() string {
	return m.failure
}
