package main

import (
	"context"
	"os"

	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/startup"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logging.Fatal("%v", err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "gallery",
		Usage:   "Wedding photo and video gallery server",
		Version: startup.Version,
		Commands: []*cli.Command{
			serveCommand(),
			hashPasswordCommand(),
		},
		DefaultCommand: "serve",
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the gallery HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				Sources: cli.EnvVars("GALLERY_CONFIG"),
			},
		},
		Action: runServe,
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "cost",
				Usage: "bcrypt cost",
				Value: defaultCost,
			},
		},
		Action: runHashPassword,
	}
}
