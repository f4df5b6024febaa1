package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/desertthunder/threadlist/internal/threads"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	source, err := threads.NewRedditSource(httpClient, config.Credentials.Reddit.UserAgent)
	if err != nil {
		logger.Fatalf("failed to create Reddit client: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Source:     source,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "threadlist",
		Usage:    "Turn a Reddit discussion thread into a Spotify playlist",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
