package ui

import (
	"strings"
	"testing"

	"github.com/desertthunder/threadlist/internal/pipeline"
)

func applyEvent(t *testing.T, m Model, ev pipeline.Event) Model {
	t.Helper()
	updated, _ := m.Update(eventMsg{event: ev})
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected a Model, got %T", updated)
	}
	return next
}

func TestModel(t *testing.T) {
	events := make(chan pipeline.Event)

	t.Run("Status Updates The Phase Line", func(t *testing.T) {
		m := NewModel(events)
		m = applyEvent(t, m, pipeline.Event{Kind: pipeline.KindStatus, Text: "Creating Spotify Playlist..."})

		if !strings.Contains(m.View(), "Creating Spotify Playlist...") {
			t.Error("expected the status text in the view")
		}
	})

	t.Run("Tracks Accumulate In Order", func(t *testing.T) {
		m := NewModel(events)
		m = applyEvent(t, m, pipeline.Event{Kind: pipeline.KindTrack, TrackName: "Karma Police", ArtistName: "Radiohead"})
		m = applyEvent(t, m, pipeline.Event{Kind: pipeline.KindTrack, TrackName: "Reckoner", ArtistName: "Radiohead"})

		view := m.View()
		first := strings.Index(view, "Karma Police")
		second := strings.Index(view, "Reckoner")
		if first == -1 || second == -1 || first > second {
			t.Errorf("expected tracks in order, got view:\n%s", view)
		}
	})

	t.Run("Track Log Is Bounded", func(t *testing.T) {
		m := NewModel(events)
		for range 20 {
			m = applyEvent(t, m, pipeline.Event{Kind: pipeline.KindTrack, TrackName: "t", ArtistName: "a"})
		}
		if len(m.tracks) != maxVisibleTracks {
			t.Errorf("expected %d visible tracks, got %d", maxVisibleTracks, len(m.tracks))
		}
		if m.total != 20 {
			t.Errorf("expected total 20, got %d", m.total)
		}
	})

	t.Run("Done Shows The Playlist URL", func(t *testing.T) {
		m := NewModel(events)
		m = applyEvent(t, m, pipeline.Event{
			Kind:        pipeline.KindDone,
			Text:        "Hooray! dana, Your Playlist is ready!",
			PlaylistURL: "https://open.spotify.com/playlist/xyz",
		})

		if m.PlaylistURL() != "https://open.spotify.com/playlist/xyz" {
			t.Errorf("expected the playlist URL, got %q", m.PlaylistURL())
		}
		if !strings.Contains(m.View(), "https://open.spotify.com/playlist/xyz") {
			t.Error("expected the playlist URL in the view")
		}
	})

	t.Run("Fatal Shows The Failure", func(t *testing.T) {
		m := NewModel(events)
		m = applyEvent(t, m, pipeline.Event{Kind: pipeline.KindFatal, Text: "That doesn't look like a Reddit post URL."})

		if m.Failure() == "" {
			t.Error("expected a failure message")
		}
		if !strings.Contains(m.View(), "That doesn't look like a Reddit post URL.") {
			t.Error("expected the failure text in the view")
		}
	})
}
