// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database setup and migration status.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the persistence server over the local database.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve setlists over HTTP from the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port from config)",
			},
		},
		Action: r.Serve,
	}
}

// songsCommand manages the song catalog.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Song catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song to the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "Song artist",
					},
					&cli.StringFlag{
						Name:    "key",
						Aliases: []string{"k"},
						Usage:   "Musical key",
					},
					&cli.StringFlag{
						Name:    "duration",
						Aliases: []string{"d"},
						Usage:   "Duration as m:ss or decimal minutes",
						Value:   "0",
					},
				},
				Action: r.SongsAdd,
			},
			{
				Name:  "list",
				Usage: "List the song catalog",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:  "import",
				Usage: "Import songs from a CSV file (title,artist,key,duration)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.SongsImport,
			},
		},
	}
}

// setlistsCommand manages setlists and their sets.
func setlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "setlists",
		Aliases: []string{"sl"},
		Usage:   "Setlist operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an empty setlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.SetlistsCreate,
			},
			{
				Name:  "list",
				Usage: "List setlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SetlistsList,
			},
			{
				Name:  "show",
				Usage: "Print a setlist with its sets and durations",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (txt, md, csv, json)",
						Value:   "txt",
					},
				},
				Action: r.SetlistsShow,
			},
			{
				Name:      "export",
				Usage:     "Export one or more setlists to files",
				ArgsUsage: "[setlist ids...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every setlist",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (md, csv, txt, json)",
						Value:   "md",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file for a single setlist (\"-\" for stdout) or directory for several",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers for bulk exports",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Setlist loads per second for bulk exports",
						Value: 5,
					},
				},
				Action: r.SetlistsExport,
			},
			{
				Name:  "move",
				Usage: "Move a song into a set, the pool, or a new set and save",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "song",
						Aliases:  []string{"s"},
						Usage:    "Song ID or title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Aliases:  []string{"t"},
						Usage:    "Target: set ID, set number, \"pool\", or \"new\"",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Position within the target (default: end)",
						Value:   -1,
					},
				},
				Action: r.SetlistsMove,
			},
			{
				Name:  "move-set",
				Usage: "Move a set to another set's position and save",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "set",
						Usage:    "Set ID or number to move",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Aliases:  []string{"t"},
						Usage:    "Set ID or number whose position it takes",
						Required: true,
					},
				},
				Action: r.SetlistsMoveSet,
			},
		},
	}
}

// editCommand returns the top-level TUI command for interactive set editing.
func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "edit",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive set editor",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Edit,
	}
}
