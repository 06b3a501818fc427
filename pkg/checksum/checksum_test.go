// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package checksum

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/yafct/pkg/errors"
)

func writeArtifacts(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, ".config")
	header := filepath.Join(dir, "include", "autoconf.h")

	if err := os.MkdirAll(filepath.Dir(header), 0o755); err != nil {
		t.Fatalf("failed to create include dir: %v", err)
	}
	if err := os.WriteFile(config, []byte("CONFIG_A=y\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := os.WriteFile(header, []byte("#define CONFIG_A 1\n"), 0o644); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	return dir, []string{header, config}
}

func TestGenerateChecksums(t *testing.T) {
	t.Parallel()

	dir, files := writeArtifacts(t)
	if err := GenerateChecksums(context.Background(), dir, files); err != nil {
		t.Fatalf("GenerateChecksums() error = %v", err)
	}

	data, err := os.ReadFile(GetChecksumFilePath(dir))
	if err != nil {
		t.Fatalf("failed to read checksums.txt: %v", err)
	}

	want := "e7e1b2c0a9031fbc9e999438d6d65847f80ddd76244dfc5a1efac71731d40f85  .config\n" +
		"1ffc48c743714fc6565b1c7a6d906ee7d9bcced6319f18bafcc23c071b79aa20  include/autoconf.h\n"
	if string(data) != want {
		t.Errorf("checksums.txt = %q, want %q", data, want)
	}
}

func TestGenerateChecksumsErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		err := GenerateChecksums(context.Background(), dir, []string{filepath.Join(dir, "nope")})
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := GenerateChecksums(ctx, t.TempDir(), nil)
		if !errors.IsCode(err, errors.ErrCodeTimeout) {
			t.Errorf("expected TIMEOUT code, got %v", err)
		}
	})
}

func TestVerifyChecksums(t *testing.T) {
	t.Parallel()

	dir, files := writeArtifacts(t)
	if err := GenerateChecksums(context.Background(), dir, files); err != nil {
		t.Fatalf("GenerateChecksums() error = %v", err)
	}

	mismatched, err := VerifyChecksums(context.Background(), dir)
	if err != nil {
		t.Fatalf("VerifyChecksums() error = %v", err)
	}
	if len(mismatched) != 0 {
		t.Errorf("expected no mismatches, got %v", mismatched)
	}

	if err := os.WriteFile(files[1], []byte("CONFIG_A=n\n"), 0o644); err != nil {
		t.Fatalf("failed to modify config: %v", err)
	}
	mismatched, err = VerifyChecksums(context.Background(), dir)
	if err != nil {
		t.Fatalf("VerifyChecksums() error = %v", err)
	}
	if len(mismatched) != 1 || mismatched[0] != ".config" {
		t.Errorf("expected [.config], got %v", mismatched)
	}
}

func TestVerifyChecksumsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := VerifyChecksums(context.Background(), t.TempDir())
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND code, got %v", err)
	}
}
