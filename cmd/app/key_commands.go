package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keeplegacy/docvault/cmd/app/commands"
	"github.com/keeplegacy/docvault/internal/app"
	"github.com/keeplegacy/docvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-master-key",
			Usage: "Generate a new master key for envelope encryption",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Value:   "",
					Usage:   "Master key ID (e.g., prod-master-key-2026)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateMasterKey(commands.DefaultIO().Writer, cmd.String("id"))
			},
		},
		{
			Name:  "create-key",
			Usage: "Create the initial document encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "origin",
					Aliases: []string{"o"},
					Value:   "",
					Usage:   "Key origin: 'local' or 'managed' (defaults to KEY_ORIGIN)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				origin := cmd.String("origin")
				if origin == "" {
					origin = cfg.KeyOrigin
				}

				return commands.RunCreateKey(ctx, keyUseCase, container.Logger(), origin)
			},
		},
		{
			Name:  "rotate-key",
			Usage: "Rotate the active document encryption key",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateKey(ctx, keyUseCase, container.Logger())
			},
		},
	}
}
