package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keywell/vault/cmd/app/commands"
	"github.com/keywell/vault/internal/app"
	"github.com/keywell/vault/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server with the rotation scheduler and key monitor",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "hash-api-token",
			Usage: "Hash an operator API token for the API_TOKEN_HASH setting",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Plaintext API token to hash",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunHashAPIToken(
					container.TokenHasher(),
					commands.DefaultIO().Writer,
					cmd.String("token"),
				)
			},
		},
	}
}
