// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// defaultConfigPath is where commands look for configuration when no
// --config flag is given.
const defaultConfigPath = "config.toml"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// runCommand starts the bot's long-poll loop.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the bot: poll for messages, search, deliver audio",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Run,
	}
}

// searchCommand mirrors the chat flow locally in a TUI.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search the catalog and pick a track to fetch",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to save fetched audio into",
				Value:   ".",
			},
		},
		Action: r.Search,
	}
}

// fetchCommand extracts one track directly, skipping search.
func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch audio for a known artist and title",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "artist",
				Aliases:  []string{"a"},
				Usage:    "Track artist",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Track title",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to save fetched audio into",
				Value:   ".",
			},
		},
		Action: r.Fetch,
	}
}

// setupCommand prepares the config file and the track cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the track cache",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}
