package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/threadlist/internal/pipeline"
	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/desertthunder/threadlist/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// localChannel feeds the pipeline its two input lines from the command line
// instead of a websocket, and forwards progress events to a callback.
type localChannel struct {
	lines []string
	send  func(pipeline.Event) error
}

func (c *localChannel) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(c.lines) == 0 {
		return "", io.EOF
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line, nil
}

func (c *localChannel) Send(e pipeline.Event) error {
	return c.send(e)
}

// Run builds a playlist from a thread URL given as an argument, streaming
// progress to the terminal.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: thread URL argument is required", shared.ErrInvalidArgument)
	}

	config := r.loadConfig(cmd)

	spotify, err := r.spotifyService(config)
	if err != nil {
		return err
	}
	creds := config.Credentials.Spotify
	if creds.AccessToken == "" {
		return fmt.Errorf("%w: no access token, run `threadlist auth` first", shared.ErrMissingCredentials)
	}
	spotify.SetToken(creds.Token())

	db, repo, err := r.openCache()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	var cache pipeline.SearchCache
	if repo != nil {
		cache = repo
	}

	var limiter *rate.Limiter
	if config.Pipeline.SearchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Pipeline.SearchRate), 1)
	}

	market := cmd.String("market")
	engine := pipeline.NewEngine(shared.GenerateID(), r.source, spotify, cache, limiter, config.Pipeline.DefaultMarket, r.logger)

	if cmd.Bool("plain") {
		return r.runPlain(ctx, engine, url, market)
	}
	return r.runTUI(ctx, engine, url, market)
}

func (r *Runner) runPlain(ctx context.Context, engine *pipeline.Engine, url, market string) error {
	ch := &localChannel{
		lines: []string{url, market},
		send: func(e pipeline.Event) error {
			switch e.Kind {
			case pipeline.KindTrack:
				return r.writePlain("♪ %s by %s\n", e.TrackName, e.ArtistName)
			case pipeline.KindDone:
				if err := r.writePlainln("✓ %s", e.Text); err != nil {
					return err
				}
				return r.writePlain("%s\n", e.PlaylistURL)
			case pipeline.KindFatal:
				return r.writePlain("✗ %s\n", e.Text)
			default:
				return r.writePlain("%s\n", e.Text)
			}
		},
	}

	return engine.Run(ctx, ch)
}

// tuiChannel bridges the pipeline to the TUI's event channel. Sends unblock
// when ctx is cancelled so the pipeline stops once its reader is gone.
func tuiChannel(ctx context.Context, events chan<- pipeline.Event, url, market string) *localChannel {
	return &localChannel{
		lines: []string{url, market},
		send: func(e pipeline.Event) error {
			select {
			case events <- e:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

func (r *Runner) runTUI(ctx context.Context, engine *pipeline.Engine, url, market string) error {
	// Quitting the TUI cancels the run so the pipeline stops issuing
	// external calls at its next suspension point.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pipeline.Event)
	ch := tuiChannel(ctx, events, url, market)

	runErr := make(chan error, 1)
	go func() {
		runErr <- engine.Run(ctx, ch)
		close(events)
	}()

	program := tea.NewProgram(ui.NewModel(events))
	finalModel, err := program.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if model, ok := finalModel.(ui.Model); ok && model.Failure() != "" {
		return <-runErr
	}
	return nil
}
