/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package checksum writes SHA256 checksums for generated configuration
// artifacts.
//
// The generate command records every file it emits (autoconf.h, .config,
// config.json) so that builds consuming the directory can verify it:
//
//	err := checksum.GenerateChecksums(ctx, "/path/to/out", fileList)
//
// The checksums.txt file format is compatible with sha256sum:
//
//	sha256sum -c checksums.txt
package checksum
