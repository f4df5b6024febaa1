// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// authCommand runs the OAuth authorization code flow and stores the tokens.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

// serveCommand starts the web server with the browser client.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
			},
		},
		Action: r.Serve,
	}
}

// runCommand builds a playlist from a thread URL without the web server.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Build a playlist from a Reddit thread URL",
		ArgsUsage: "<url>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "market",
				Aliases: []string{"m"},
				Usage:   "Spotify market for track search",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print progress as plain text instead of the TUI",
			},
		},
		Action: r.Run,
	}
}

// cacheCommand manages the local search cache database.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the track search cache",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or upgrade the cache database schema",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheMigrate,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the last cache migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheRollback,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached search results",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
			{
				Name:  "status",
				Usage: "Show cache statistics",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStatus,
			},
		},
	}
}
