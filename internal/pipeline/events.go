package pipeline

import (
	"encoding/json"
	"fmt"
)

// EventKind discriminates the progress event variants.
type EventKind int

const (
	// KindStatus is a human-readable phase update.
	KindStatus EventKind = iota
	// KindTrack reports one resolved track.
	KindTrack
	// KindDone is the terminal success event carrying the playlist URL.
	KindDone
	// KindFatal is the terminal failure event with a user-facing message.
	KindFatal
)

func (k EventKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindTrack:
		return "track"
	case KindDone:
		return "done"
	case KindFatal:
		return "fatal"
	default:
		return ""
	}
}

// Event is one progress message for the client. Events are generated and
// delivered strictly in order, one at a time; sinks must not coalesce or
// reorder them.
type Event struct {
	Kind        EventKind
	Text        string // status or fatal message
	TrackName   string
	ArtistName  string
	PlaylistURL string
	DisplayName string
}

// Terminal reports whether the event ends the session.
func (e Event) Terminal() bool {
	return e.Kind == KindDone || e.Kind == KindFatal
}

// MarshalJSON renders the wire shapes the web client consumes:
// {"status": ...}, {"message": "<track> by <artist>"} and
// {"status": ..., "playlist_url": ...}. Fatal shares the status shape.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindTrack:
		return json.Marshal(map[string]string{
			"message": fmt.Sprintf("%s by %s", e.TrackName, e.ArtistName),
		})
	case KindDone:
		return json.Marshal(map[string]string{
			"status":       e.Text,
			"playlist_url": e.PlaylistURL,
		})
	default:
		return json.Marshal(map[string]string{"status": e.Text})
	}
}

// Sink receives progress events. Send must deliver synchronously so event
// order matches generation order within a session.
type Sink interface {
	Send(Event) error
}

// SinkFunc adapts a function to the [Sink] interface.
type SinkFunc func(Event) error

func (f SinkFunc) Send(e Event) error { return f(e) }

// DiscardSink drops all events; used when no client is attached.
var DiscardSink = SinkFunc(func(Event) error { return nil })

func statusEvent(format string, args ...any) Event {
	return Event{Kind: KindStatus, Text: fmt.Sprintf(format, args...)}
}

func trackEvent(name, artist string) Event {
	return Event{Kind: KindTrack, TrackName: name, ArtistName: artist}
}

func doneEvent(playlistURL, displayName string) Event {
	return Event{
		Kind:        KindDone,
		Text:        fmt.Sprintf("Hooray! %s, Your Playlist is ready!", displayName),
		PlaylistURL: playlistURL,
		DisplayName: displayName,
	}
}

func fatalEvent(format string, args ...any) Event {
	return Event{Kind: KindFatal, Text: fmt.Sprintf(format, args...)}
}
