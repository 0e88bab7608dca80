package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keeplegacy/docvault/cmd/app/commands"
	"github.com/keeplegacy/docvault/internal/app"
	"github.com/keeplegacy/docvault/internal/config"
)

func getDocumentCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "rewrap-documents",
			Usage: "Re-encrypt documents on superseded keys with the active key",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Number of documents to process per batch",
				},
				&cli.IntFlag{
					Name:    "workers",
					Aliases: []string{"w"},
					Value:   4,
					Usage:   "Number of concurrent workers per batch",
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

				documentUseCase, err := container.DocumentUseCase()
				if err != nil {
					return err
				}

				return commands.RunRewrapDocuments(
					ctx,
					documentUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("batch-size")),
					int(cmd.Int("workers")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "retention-sweep",
			Usage: "Archive documents whose retention window has passed",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many documents would be archived without archiving",
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

				documentUseCase, err := container.DocumentUseCase()
				if err != nil {
					return err
				}

				return commands.RunRetentionSweep(
					ctx,
					documentUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
