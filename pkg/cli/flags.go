/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/serializer"
	"github.com/NVIDIA/yafct/pkg/yafct"
)

var flagFolder = cases.Fold()

// modelFlags returns the flags shared by every command that loads a model.
func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "model",
			Aliases:  []string{"m"},
			Usage:    "Path/URI of the top-level model file (file path, HTTP/HTTPS URL or cm://namespace/name)",
			Sources:  cli.EnvVars("YAFCT_MODEL"),
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:    "overlay",
			Aliases: []string{"c"},
			Usage: `Overlay to apply, can be repeated. The first assignment of a symbol wins.
	Supports: file paths, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).
	Files ending in .yaml/.yml or .json are read as mappings, anything else as .config lines.`,
			Sources: cli.EnvVars("YAFCT_OVERLAY"),
		},
		&cli.StringFlag{
			Name:    "base-dir",
			Usage:   "Directory source directives resolve against (default: the model's directory)",
			Sources: cli.EnvVars("YAFCT_BASE_DIR"),
		},
		&cli.StringFlag{
			Name:  "config-prefix",
			Usage: "Symbol prefix used in overlays and generated files",
			Value: defaults.ConfigPrefix,
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path or ConfigMap URI (cm://namespace/name). Default: stdout",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   fmt.Sprintf("Output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

// parseOutputFormat reads --format, folding case.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	raw := strings.TrimSpace(cmd.String("format"))
	f := serializer.Format(flagFolder.String(raw))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, supported values: %v", raw, serializer.SupportedFormats())
	}
	return f, nil
}

// newTool loads the model and overlays named by the command's flags.
func newTool(ctx context.Context, cmd *cli.Command) (*yafct.Tool, error) {
	opts := []yafct.Option{
		yafct.WithBaseDir(cmd.String("base-dir")),
		yafct.WithConfigPrefix(cmd.String("config-prefix")),
	}
	for _, o := range cmd.StringSlice("overlay") {
		opts = append(opts, yafct.WithOverlay(strings.TrimSpace(o)))
	}

	model := cmd.String("model")
	t, err := yafct.New(ctx, model, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %q: %w", model, err)
	}
	return t, nil
}

// serialize writes data to --output in format, closing file writers.
func serialize(ctx context.Context, cmd *cli.Command, format serializer.Format, data any) (err error) {
	ser, err := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if cerr := closer.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()
	return ser.Serialize(ctx, data)
}
