// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/tunehost/internal/formatter"
	"github.com/urfave/cli/v3"
)

// hostFlags are shared by every command that starts the host.
func hostFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "Library connection URL, overrides database.url",
			Sources: cli.EnvVars("TUNEHOST_DATABASE"),
		},
		&cli.StringSliceFlag{
			Name:    "plugin",
			Aliases: []string{"p"},
			Usage:   "Plugin to load, overrides plugins.enabled (repeatable)",
		},
	}
}

func withHostFlags(flags ...cli.Flag) []cli.Flag {
	return append(hostFlags(), flags...)
}

// setupCommand handles setup operations for the configuration file and library schema.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file if missing and migrate the library database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "Library connection URL, overrides database.url",
				Sources: cli.EnvVars("TUNEHOST_DATABASE"),
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// libraryCommand handles library writes, each announced to database delegates.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Change the song library",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a library directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: withHostFlags(
					&cli.StringSliceFlag{
						Name:    "subdir",
						Aliases: []string{"s"},
						Usage:   "Subdirectory found below the directory (repeatable)",
					},
				),
				Action: r.LibraryAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a library directory and its songs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  hostFlags(),
				Action: r.LibraryRemove,
			},
			{
				Name:  "scan-demo",
				Usage: "Simulate a scan that discovers a directory of generated songs",
				Flags: withHostFlags(
					&cli.StringFlag{
						Name:  "path",
						Usage: "Directory the generated songs live in",
						Value: "/music/demo",
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of songs to generate",
						Value:   12,
					},
				),
				Action: r.LibraryScanDemo,
			},
			{
				Name:   "directories",
				Usage:  "List library directories",
				Flags:  hostFlags(),
				Action: r.LibraryDirectories,
			},
		},
	}
}

// songsCommand handles read-only song queries through ORM sessions.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Query songs through an ORM session",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List songs in library order",
				Flags: withHostFlags(
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of songs to list (0 for all)",
						Value: 50,
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Only list songs by this artist",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv, or json",
						Value:   string(formatter.Text),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
				),
				Action: r.SongsList,
			},
			{
				Name:   "random",
				Usage:  "Pick one available song at random",
				Flags:  hostFlags(),
				Action: r.SongsRandom,
			},
			{
				Name:   "count",
				Usage:  "Count available songs",
				Flags:  hostFlags(),
				Action: r.SongsCount,
			},
		},
	}
}

// pluginsCommand handles plugin discovery and menu actions.
func pluginsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "plugins",
		Usage: "Inspect plugins and trigger their menu actions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List available plugins",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PluginsList,
			},
			{
				Name:   "actions",
				Usage:  "List the menu actions added by the loaded plugins",
				Flags:  hostFlags(),
				Action: r.PluginsActions,
			},
			{
				Name:  "run",
				Usage: "Trigger a menu action by location and text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "location"},
					&cli.StringArg{Name: "text"},
				},
				Flags:  hostFlags(),
				Action: r.PluginsRun,
			},
		},
	}
}

// playerCommand drives the player so player delegates can be observed.
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Player operations",
		Commands: []*cli.Command{
			{
				Name:  "demo",
				Usage: "Queue songs and walk the player through play, seek, volume, and skip",
				Flags: withHostFlags(
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of songs to queue",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "volume",
						Usage: "Volume to set during the demo",
						Value: 80,
					},
				),
				Action: r.PlayerDemo,
			},
		},
	}
}

// menuCommand returns the top-level TUI command for browsing plugin menu actions.
func menuCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "menu",
		Aliases: []string{"tui", "ui"},
		Usage:   "Browse and trigger plugin menu actions interactively",
		Flags: withHostFlags(
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File log records are written to while the menu is open",
				Value: "./tmp/tunehost-menu.log",
			},
		),
		Action: r.Menu,
	}
}
