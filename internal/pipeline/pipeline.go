package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/threadlist/internal/services"
	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/desertthunder/threadlist/internal/threads"
	"golang.org/x/time/rate"
)

// State tracks where a session's pipeline currently is. Failed is reachable
// from every non-terminal state.
type State int

const (
	AwaitingInput State = iota
	FetchingThread
	FetchingComments
	CreatingPlaylist
	ResolvingTracks
	PopulatingPlaylist
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case FetchingThread:
		return "fetching_thread"
	case FetchingComments:
		return "fetching_comments"
	case CreatingPlaylist:
		return "creating_playlist"
	case ResolvingTracks:
		return "resolving_tracks"
	case PopulatingPlaylist:
		return "populating_playlist"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Channel is the session's duplex stream: the two pipeline inputs come in
// as text lines, progress events go out in generation order.
type Channel interface {
	Sink
	ReadLine(ctx context.Context) (string, error)
}

// Engine runs one session's pipeline. One Engine per session; engines share
// nothing but the HTTP connection pool buried in their collaborators.
type Engine struct {
	id      string
	source  threads.Source
	catalog services.Catalog
	cache   SearchCache
	limiter *rate.Limiter
	market  string
	logger  *log.Logger

	state State
}

// NewEngine builds an Engine for one session. cache and limiter may be nil;
// defaultMarket is used when the client sends an empty market line.
func NewEngine(id string, source threads.Source, catalog services.Catalog, cache SearchCache, limiter *rate.Limiter, defaultMarket string, logger *log.Logger) *Engine {
	if defaultMarket == "" {
		defaultMarket = DefaultMarket
	}
	return &Engine{
		id:      id,
		source:  source,
		catalog: catalog,
		cache:   cache,
		limiter: limiter,
		market:  defaultMarket,
		logger:  logger.With("session", id),
		state:   AwaitingInput,
	}
}

// State reports the engine's current state. Terminal once Run returns.
func (e *Engine) State() State {
	return e.state
}

// Run drives the session to a terminal state. Every failure is converted to
// a Fatal event on ch before returning; the returned error exists for the
// caller's logs, never for the client. The caller closes ch afterwards.
func (e *Engine) Run(ctx context.Context, ch Channel) error {
	err := e.run(ctx, ch)
	if err != nil {
		if e.state != Failed {
			// Errors without a specific failure message still get a
			// terminal event before the channel closes.
			e.fail(ch, err, "Something went wrong while building the playlist. Please try again.")
		}
		e.state = Failed
		e.logger.Error("session failed", "error", err)
	}
	return err
}

func (e *Engine) run(ctx context.Context, ch Channel) error {
	url, market, err := e.readInput(ctx, ch)
	if err != nil {
		return err
	}
	e.market = market

	e.state = FetchingThread
	if err := ch.Send(statusEvent("Fetching messages from Reddit Post...")); err != nil {
		return err
	}

	sourceGuard := NewGuard(ch, nil)
	catalogGuard := NewGuard(ch, e.catalog)

	thread, err := e.fetchThread(ctx, sourceGuard, url)
	if err != nil {
		return e.fail(ch, err, "Could not fetch the Reddit post. Please check the URL and try again.")
	}

	e.state = FetchingComments
	if err := e.expandComments(ctx, sourceGuard, thread); err != nil {
		return e.fail(ch, err, "Reddit stopped responding while loading comments. Please try again later.")
	}

	e.state = CreatingPlaylist
	if err := ch.Send(statusEvent("Creating Spotify Playlist...")); err != nil {
		return err
	}

	user, playlist, err := e.createPlaylist(ctx, catalogGuard, thread, url)
	if err != nil {
		return e.fail(ch, err, "Could not create the Spotify playlist. Try reconnecting your Spotify account.")
	}
	if err := ch.Send(statusEvent("Playlist created. Finding songs...")); err != nil {
		return err
	}

	e.state = ResolvingTracks
	tracks, err := e.resolveTracks(ctx, ch, catalogGuard, thread)
	if err != nil {
		return err
	}
	tracks = Dedupe(tracks)

	e.state = PopulatingPlaylist
	if err := ch.Send(statusEvent("Adding songs to playlist...")); err != nil {
		return err
	}
	if err := Populate(ctx, e.catalog, catalogGuard, e.logger, playlist.ID, tracks); err != nil {
		return err
	}

	e.state = Done
	e.logger.Info("session complete", "playlist", playlist.URL, "tracks", len(tracks))
	return ch.Send(doneEvent(playlist.URL, user.DisplayName))
}

// readInput consumes the two inbound lines: thread URL, then market code.
// An empty market line means the configured default.
func (e *Engine) readInput(ctx context.Context, ch Channel) (url, market string, err error) {
	url, err = ch.ReadLine(ctx)
	if err != nil {
		return "", "", err
	}
	market, err = ch.ReadLine(ctx)
	if err != nil {
		return "", "", err
	}
	url = strings.TrimSpace(url)
	market = strings.TrimSpace(market)
	if market == "" {
		market = e.market
	}

	if _, perr := threads.ParseThreadURL(url); perr != nil {
		return "", "", e.fail(ch, perr, "That doesn't look like a Reddit post URL.")
	}
	return url, market, nil
}

func (e *Engine) fetchThread(ctx context.Context, guard *Guard, url string) (*threads.Thread, error) {
	var thread *threads.Thread
	err := guard.Do(ctx, "thread fetch", func(ctx context.Context) error {
		t, err := e.source.FetchThread(ctx, url)
		if err != nil {
			return err
		}
		thread = t
		return nil
	})
	return thread, err
}

func (e *Engine) expandComments(ctx context.Context, guard *Guard, thread *threads.Thread) error {
	return guard.Do(ctx, "comment pagination", func(ctx context.Context) error {
		return e.source.ExpandAll(ctx, thread)
	})
}

func (e *Engine) createPlaylist(ctx context.Context, guard *Guard, thread *threads.Thread, url string) (*services.User, *services.Playlist, error) {
	var user *services.User
	err := guard.Do(ctx, "user lookup", func(ctx context.Context) error {
		u, err := e.catalog.CurrentUser(ctx)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	name := PlaylistName(thread.Title)
	description := fmt.Sprintf("Playlist created from Reddit post: %s", url)

	var playlist *services.Playlist
	err = guard.Do(ctx, "playlist creation", func(ctx context.Context) error {
		p, err := e.catalog.CreatePlaylist(ctx, user.ID, name, description)
		if err != nil {
			return err
		}
		playlist = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, playlist, nil
}

// resolveTracks walks the candidate queries in traversal order. A query
// that matches nothing is logged and dropped; a query whose search exhausts
// its retries is announced on the channel and skipped.
func (e *Engine) resolveTracks(ctx context.Context, ch Channel, guard *Guard, thread *threads.Thread) ([]*services.Track, error) {
	resolver := NewResolver(e.catalog, e.cache, guard, e.limiter, e.market, e.logger)

	var tracks []*services.Track
	var walkErr error
	ExtractQueries(thread, func(query string) bool {
		track, err := resolver.Resolve(ctx, query)
		switch {
		case err == nil && track == nil:
			e.logger.Info("no match for line", "query", query)
			return true
		case err == nil:
			tracks = append(tracks, track)
			if serr := ch.Send(trackEvent(track.Name, track.Artist)); serr != nil {
				walkErr = serr
				return false
			}
			return true
		case errors.Is(err, shared.ErrAttemptsExhausted):
			e.logger.Warn("abandoning line after repeated failures", "query", query, "error", err)
			if serr := ch.Send(statusEvent("Skipping a line after repeated search failures...")); serr != nil {
				walkErr = serr
				return false
			}
			return true
		default:
			walkErr = err
			return false
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return tracks, nil
}

// fail converts err into a user-facing Fatal event and marks the session
// Failed. The original error is preserved for the caller's logs.
func (e *Engine) fail(ch Channel, err error, text string) error {
	e.state = Failed
	if serr := ch.Send(fatalEvent("%s", text)); serr != nil {
		e.logger.Error("could not deliver failure message", "error", serr)
	}
	return err
}
