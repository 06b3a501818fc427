/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/oci"
	"github.com/NVIDIA/yafct/pkg/yafct"
)

// defaultOCITag is used when --push names no tag.
const defaultOCITag = "latest"

// generateCmdOptions holds parsed options for the generate command.
type generateCmdOptions struct {
	dir         string
	headerName  string
	configName  string
	push        *oci.Reference
	plainHTTP   bool
	insecureTLS bool
}

// parseGenerateCmdOptions parses and validates command options.
func parseGenerateCmdOptions(cmd *cli.Command) (*generateCmdOptions, error) {
	opts := &generateCmdOptions{
		dir:         cmd.String("dir"),
		headerName:  cmd.String("header-name"),
		configName:  cmd.String("config-name"),
		plainHTTP:   cmd.Bool("plain-http"),
		insecureTLS: cmd.Bool("insecure-tls"),
	}
	if opts.dir == "" {
		return nil, fmt.Errorf("--dir is required")
	}
	if opts.headerName == opts.configName {
		return nil, fmt.Errorf("--header-name and --config-name must differ, both are %q", opts.headerName)
	}

	if target := cmd.String("push"); target != "" {
		ref, err := oci.ParseReference(target)
		if err != nil {
			return nil, fmt.Errorf("invalid --push value: %w", err)
		}
		if ref.Tag == "" {
			ref = ref.WithTag(defaultOCITag)
		}
		opts.push = ref
	}
	return opts, nil
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "generate",
		EnableShellCompletion: true,
		Usage:                 "Resolve a feature model and write build artifacts",
		Description: fmt.Sprintf(`Writes the resolved configuration into --dir as:
  - %s    C preprocessor definitions
  - %s       the persisted configuration, loadable as an overlay
  - %s   the resolved values as JSON
  - checksums.txt SHA256 digests of the files above

With --push oci://registry/repository[:tag] the directory is packaged as an
OCI artifact and pushed. The tag defaults to %q.`,
			defaults.HeaderFileName, defaults.ConfigFileName, defaults.ValuesFileName, defaultOCITag),
		Flags: append(modelFlags(),
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "Output directory for generated files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "header-name",
				Usage: "File name of the generated C header",
				Value: defaults.HeaderFileName,
			},
			&cli.StringFlag{
				Name:  "config-name",
				Usage: "File name of the persisted configuration",
				Value: defaults.ConfigFileName,
			},
			&cli.StringFlag{
				Name:  "push",
				Usage: "Push the generated directory to an OCI registry (oci://registry/repository[:tag])",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the OCI registry",
			},
			formatFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			opts, err := parseGenerateCmdOptions(cmd)
			if err != nil {
				return err
			}

			t, err := newTool(ctx, cmd)
			if err != nil {
				return err
			}

			artifacts, err := t.Generate(ctx, opts.dir, yafct.GenerateOptions{
				HeaderName: opts.headerName,
				ConfigName: opts.configName,
			}, version)
			if err != nil {
				return err
			}

			if opts.push != nil {
				if err := pushArtifacts(ctx, opts, artifacts); err != nil {
					return err
				}
			}

			return serialize(ctx, cmd, outFormat, artifacts)
		},
	}
}

// pushArtifacts packages the generated directory into a temporary OCI
// layout and pushes it, recording the result in the artifact metadata.
func pushArtifacts(ctx context.Context, opts *generateCmdOptions, artifacts *yafct.Artifacts) error {
	storeDir, err := os.MkdirTemp("", "yafct-oci-")
	if err != nil {
		return fmt.Errorf("failed to create OCI staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(storeDir); err != nil {
			slog.Warn("failed to remove OCI staging directory", "dir", storeDir, "error", err)
		}
	}()

	pushCtx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
	defer cancel()

	res, err := oci.PackageAndPush(pushCtx, oci.OutputConfig{
		SourceDir:   opts.dir,
		OutputDir:   storeDir,
		Reference:   opts.push,
		Version:     version,
		PlainHTTP:   opts.plainHTTP,
		InsecureTLS: opts.insecureTLS,
	})
	if err != nil {
		return fmt.Errorf("failed to push %s: %w", opts.push, err)
	}

	artifacts.Metadata["reference"] = res.Reference
	artifacts.Metadata["digest"] = res.Digest
	return nil
}
