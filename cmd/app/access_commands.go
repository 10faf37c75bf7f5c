package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keywell/vault/cmd/app/commands"
	"github.com/keywell/vault/internal/app"
	"github.com/keywell/vault/internal/config"
)

func getAccessCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-policy",
			Usage: "Create an access policy",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Unique policy name",
				},
				&cli.StringFlag{
					Name:     "pattern",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Glob pattern of secret names the policy covers (e.g., db_*)",
				},
				&cli.StringFlag{
					Name:     "operations",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Comma-separated operations (read, create, update, delete, rotate, revoke)",
				},
				&cli.StringFlag{
					Name:  "users",
					Usage: "Comma-separated allowed user ids",
				},
				&cli.StringFlag{
					Name:  "roles",
					Usage: "Comma-separated allowed roles",
				},
				&cli.StringFlag{
					Name:  "services",
					Usage: "Comma-separated allowed service names",
				},
				&cli.IntFlag{
					Name:  "priority",
					Value: 0,
					Usage: "Evaluation priority (higher wins)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				accessUseCase, err := container.AccessUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreatePolicy(
					ctx,
					accessUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.PolicyInput{
						Name:       cmd.String("name"),
						Pattern:    cmd.String("pattern"),
						Operations: cmd.String("operations"),
						Users:      cmd.String("users"),
						Roles:      cmd.String("roles"),
						Services:   cmd.String("services"),
						Priority:   int(cmd.Int("priority")),
					},
					cmd.String("format"),
				)
			},
		},
	}
}
