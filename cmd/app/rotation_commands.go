package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keywell/vault/cmd/app/commands"
	"github.com/keywell/vault/internal/app"
	"github.com/keywell/vault/internal/config"
)

func getRotationCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "rotate-due",
			Usage: "Process all rotation schedules that are due now",
			Flags: []cli.Flag{
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

				schedulerUseCase, err := container.SchedulerUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateDue(
					ctx,
					schedulerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "emergency-rotate",
			Usage: "Immediately rotate all active secrets matching a pattern",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "pattern",
					Aliases: []string{"p"},
					Value:   "",
					Usage:   "Glob pattern of secret names (empty matches every active secret)",
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

				schedulerUseCase, err := container.SchedulerUseCase()
				if err != nil {
					return err
				}

				return commands.RunEmergencyRotate(
					ctx,
					schedulerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("pattern"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotation-metrics",
			Usage: "Show rotation coverage and 30-day success rate",
			Flags: []cli.Flag{
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

				schedulerUseCase, err := container.SchedulerUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotationMetrics(
					ctx,
					schedulerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
