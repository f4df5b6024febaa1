package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/threadlist/internal/pipeline"
	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func newTestRunner(config *shared.Config) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
	return runner, output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config")
			}
			if runner.logger == nil {
				t.Error("expected default logger")
			}
			if runner.output == nil {
				t.Error("expected default output")
			}
			if runner.httpClient == nil {
				t.Error("expected default http client")
			}
		})
	})

	t.Run("register returns all commands", func(t *testing.T) {
		runner, _ := newTestRunner(nil)
		commands := runner.register()

		expected := []string{"auth", "serve", "run", "cache"}
		if len(commands) != len(expected) {
			t.Fatalf("expected %d commands, got %d", len(expected), len(commands))
		}
		for i, name := range expected {
			if commands[i].Name != name {
				t.Errorf("expected command %q at index %d, got %q", name, i, commands[i].Name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		runner, output := newTestRunner(nil)

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := output.String(); got != "{\"key\":\"value\"}\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("writePlain formats output", func(t *testing.T) {
		runner, output := newTestRunner(nil)

		if err := runner.writePlain("found %d tracks\n", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := output.String(); got != "found 3 tracks\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("writePlainln appends newline", func(t *testing.T) {
		runner, output := newTestRunner(nil)

		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := output.String(); got != "done\n" {
			t.Errorf("unexpected output %q", got)
		}
	})
}

func TestLocalChannel(t *testing.T) {
	t.Run("serves queued lines then EOF", func(t *testing.T) {
		ch := &localChannel{lines: []string{"first", "second"}}

		ctx := context.Background()
		for _, expected := range []string{"first", "second"} {
			line, err := ch.ReadLine(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if line != expected {
				t.Errorf("expected %q, got %q", expected, line)
			}
		}

		if _, err := ch.ReadLine(ctx); !errors.Is(err, io.EOF) {
			t.Errorf("expected EOF after queue drains, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ch := &localChannel{lines: []string{"unread"}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := ch.ReadLine(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context error, got %v", err)
		}
	})
}

func TestTUIChannel(t *testing.T) {
	t.Run("Send delivers to the event reader", func(t *testing.T) {
		events := make(chan pipeline.Event, 1)
		ch := tuiChannel(context.Background(), events, "url", "US")

		if err := ch.Send(pipeline.Event{Kind: pipeline.KindStatus, Text: "working"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := <-events; got.Text != "working" {
			t.Errorf("expected the event to pass through, got %v", got)
		}
	})

	t.Run("Send unblocks when the run is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		events := make(chan pipeline.Event) // nobody reading
		ch := tuiChannel(ctx, events, "url", "US")

		cancel()
		if err := ch.Send(pipeline.Event{Kind: pipeline.KindStatus}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context error, got %v", err)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	writeTestConfig := func(t *testing.T) string {
		t.Helper()
		dir := t.TempDir()
		config := shared.DefaultConfig()
		config.Cache.Path = filepath.Join(dir, "cache.db")

		configPath := filepath.Join(dir, "config.toml")
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		return configPath
	}

	runCLI := func(t *testing.T, runner *Runner, args ...string) error {
		t.Helper()
		app := &cli.Command{Name: "threadlist", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"threadlist"}, args...))
	}

	t.Run("migrate creates schema", func(t *testing.T) {
		configPath := writeTestConfig(t)
		runner, output := newTestRunner(nil)

		if err := runCLI(t, runner, "cache", "migrate", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Cache database ready") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})

	t.Run("status reports empty cache", func(t *testing.T) {
		configPath := writeTestConfig(t)
		runner, output := newTestRunner(nil)

		if err := runCLI(t, runner, "cache", "migrate", "--config", configPath); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "cache", "status", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Entries: 0") {
			t.Errorf("expected zero entries, got %q", output.String())
		}
	})

	t.Run("status with json flag", func(t *testing.T) {
		configPath := writeTestConfig(t)
		runner, output := newTestRunner(nil)

		if err := runCLI(t, runner, "cache", "migrate", "--config", configPath); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "cache", "status", "--config", configPath, "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "\"entries\": 0") {
			t.Errorf("expected JSON entries field, got %q", output.String())
		}
	})

	t.Run("clear reports removed rows", func(t *testing.T) {
		configPath := writeTestConfig(t)
		runner, output := newTestRunner(nil)

		if err := runCLI(t, runner, "cache", "migrate", "--config", configPath); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "cache", "clear", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Removed 0 cached results") {
			t.Errorf("expected removal count, got %q", output.String())
		}
	})

	t.Run("rollback drops schema", func(t *testing.T) {
		configPath := writeTestConfig(t)
		runner, _ := newTestRunner(nil)

		if err := runCLI(t, runner, "cache", "migrate", "--config", configPath); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		if err := runCLI(t, runner, "cache", "rollback", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestRunCommand(t *testing.T) {
	t.Run("requires url argument", func(t *testing.T) {
		runner, _ := newTestRunner(shared.DefaultConfig())

		app := &cli.Command{Name: "threadlist", Commands: runner.register()}
		err := app.Run(context.Background(), []string{"threadlist", "run"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("requires stored tokens", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = "id"
		config.Credentials.Spotify.ClientSecret = "secret"
		runner, _ := newTestRunner(config)

		app := &cli.Command{Name: "threadlist", Commands: runner.register()}
		err := app.Run(context.Background(), []string{"threadlist", "run", "--config", "", "https://www.reddit.com/r/music/comments/abc123/"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
