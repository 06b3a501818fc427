/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "resolve",
		EnableShellCompletion: true,
		Usage:                 "Resolve a feature model and print the resulting configuration",
		Description: `Parses the model, applies each overlay in order and prints every
symbol that has a value, in model order.

With --with-metadata the values are wrapped in a ResolvedConfig document that
also lists, per overlay, which assignments were applied, unknown, duplicated
or ill-typed.`,
		Flags: append(modelFlags(),
			&cli.BoolFlag{
				Name:  "with-metadata",
				Usage: "Wrap the values in a ResolvedConfig document with overlay reports",
			},
			outputFlag(),
			formatFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			t, err := newTool(ctx, cmd)
			if err != nil {
				return err
			}

			if cmd.Bool("with-metadata") {
				report, err := t.Report(version)
				if err != nil {
					return err
				}
				return serialize(ctx, cmd, outFormat, report)
			}

			values, err := t.Resolve()
			if err != nil {
				return err
			}
			return serialize(ctx, cmd, outFormat, values)
		},
	}
}
