/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/yafct/pkg/yafct"
)

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:                  "diff",
		EnableShellCompletion: true,
		Usage:                 "Compare the configurations two overlay sets resolve to",
		Description: `Resolves the model once with the --from overlays and once with the --to
overlays and lists every symbol that was added, removed or changed.

  yafct diff --model Kconfig --from old.config --to new.config

--overlay values apply to both sides ahead of --from and --to.`,
		Flags: append(modelFlags(),
			&cli.StringSliceFlag{
				Name:  "from",
				Usage: "Overlay of the baseline configuration, can be repeated",
			},
			&cli.StringSliceFlag{
				Name:  "to",
				Usage: "Overlay of the compared configuration, can be repeated",
			},
			outputFlag(),
			formatFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			shared := cmd.StringSlice("overlay")
			from := append(append([]string(nil), shared...), cmd.StringSlice("from")...)
			to := append(append([]string(nil), shared...), cmd.StringSlice("to")...)

			model := cmd.String("model")
			changes, err := yafct.Compare(ctx, model, from, to,
				yafct.WithBaseDir(cmd.String("base-dir")),
				yafct.WithConfigPrefix(cmd.String("config-prefix")))
			if err != nil {
				return fmt.Errorf("failed to compare configurations of %q: %w", model, err)
			}
			return serialize(ctx, cmd, outFormat, changes)
		},
	}
}
