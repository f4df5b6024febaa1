package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/threadlist/internal/pipeline"
	"github.com/desertthunder/threadlist/internal/server"
	"github.com/desertthunder/threadlist/internal/services"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Serve starts the web server: the browser client, the cookie-based OAuth
// flow and the websocket session endpoint.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	host := config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := config.Server.Port
	if cmd.Int("port") != 0 {
		port = cmd.Int("port")
	}

	spotify, err := r.spotifyService(config)
	if err != nil {
		return err
	}

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

	// Each websocket session gets its own catalog carrying that visitor's
	// tokens; only the HTTP connection pool is shared.
	newCatalog := func(accessToken, refreshToken string) services.Catalog {
		creds := config.Credentials.Spotify
		catalog, err := services.NewSpotifyService(creds.ClientID, creds.ClientSecret, creds.RedirectURI, r.httpClient)
		if err != nil {
			r.logger.Errorf("failed to create session catalog: %v", err)
			return nil
		}
		catalog.SetToken(&oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken})
		return catalog
	}

	index, err := server.NewIndexHandler(r.logger)
	if err != nil {
		return fmt.Errorf("failed to load index template: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger), server.RecoveryMiddleware(r.logger))
	router.Handler(index)
	router.Handler(server.NewWebAuthHandler(spotify, r.logger))
	router.Handler(server.NewSessionHandler(r.source, newCatalog, cache, config.Pipeline.DefaultMarket, config.Pipeline.SearchRate, r.logger))

	srv := server.NewServer(host, port, router, r.logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.writePlain("→ Listening on http://%s:%d\n", host, port)
		serverErrors <- srv.Start()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
