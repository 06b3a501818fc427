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

package yafct

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/yafct/pkg/checksum"
	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/header"
)

const model = `
mainmenu "Test"
config FLAG
	bool "flag"
	default y
config NAME
	string "name"
	default "base"
config COUNT
	int "count"
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func newTool(t *testing.T) *Tool {
	t.Helper()
	dir := t.TempDir()
	tool, err := New(context.Background(), writeFile(t, dir, "Kconfig", model),
		WithOverlay(writeFile(t, dir, "defconfig", "CONFIG_NAME=\"a\"\n")),
		WithOverlay(writeFile(t, dir, "board.yaml", "NAME: b\nCOUNT: 3\n")))
	require.NoError(t, err)
	return tool
}

func TestNewAppliesOverlaysInOrder(t *testing.T) {
	tool := newTool(t)

	values, err := tool.Resolve()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"FLAG": true, "NAME": "a", "COUNT": int64(3)}, values.Map())

	reports := tool.Overlays()
	require.Len(t, reports, 2)
	assert.Equal(t, []string{"NAME"}, reports[0].Applied)
	assert.Equal(t, []string{"COUNT"}, reports[1].Applied)
	assert.Equal(t, []string{"NAME"}, reports[1].Duplicate)
	assert.Equal(t, "Test", tool.Engine().MainMenu())
}

func TestNewMissingInputs(t *testing.T) {
	dir := t.TempDir()

	_, err := New(context.Background(), filepath.Join(dir, "Kconfig"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	modelPath := writeFile(t, dir, "Kconfig", model)
	_, err = New(context.Background(), modelPath, WithOverlay(filepath.Join(dir, "missing.config")))
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = New(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestNewParseError(t *testing.T) {
	dir := t.TempDir()
	_, err := New(context.Background(), writeFile(t, dir, "Kconfig", "config A\n\tbool\n\tdepends on NOPE\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeParse))
}

func TestNewResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "arch/arm64/Kconfig", "config ARM64\n\tbool \"arm64\"\n\tdefault y\n")
	root := writeFile(t, t.TempDir(), "Kconfig", "source \"arch/$(ARCH)/Kconfig\"\n")

	env := func(key string) (string, bool) {
		if key == "ARCH" {
			return "arm64", true
		}
		return "", false
	}
	tool, err := New(context.Background(), root, WithBaseDir(dir), WithEnv(env))
	require.NoError(t, err)

	values, err := tool.Resolve()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ARM64": true}, values.Map())
}

func TestApplyOverlay(t *testing.T) {
	tool := newTool(t)
	dir := t.TempDir()

	rep, err := tool.ApplyOverlay(context.Background(), writeFile(t, dir, "extra.json", `{"FLAG": false, "COUNT": 9}`), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"FLAG"}, rep.Applied)
	assert.Equal(t, []string{"COUNT"}, rep.Duplicate)
	assert.Len(t, tool.Overlays(), 3)

	values, err := tool.Resolve()
	require.NoError(t, err)
	got, _ := values.Get("FLAG")
	assert.Equal(t, false, got)
}

func TestEmit(t *testing.T) {
	tool := newTool(t)
	path := filepath.Join(t.TempDir(), "include", "autoconf.h")
	require.NoError(t, tool.Emit(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/* Generated by yafct */\n"+
		"#define CONFIG_FLAG 1\n"+
		"#define CONFIG_NAME \"a\"\n"+
		"#define CONFIG_COUNT 3\n", string(data))
}

func TestEmitConfigRoundTrip(t *testing.T) {
	tool := newTool(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".config")
	require.NoError(t, tool.EmitConfig(path))

	want, err := tool.Resolve()
	require.NoError(t, err)

	reloaded, err := New(context.Background(), writeFile(t, dir, "Kconfig", model), WithOverlay(path))
	require.NoError(t, err)
	got, err := reloaded.Resolve()
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestReport(t *testing.T) {
	tool := newTool(t)
	r, err := tool.Report("v1.0.0")
	require.NoError(t, err)

	assert.Equal(t, header.KindResolvedConfig, r.Kind)
	assert.Equal(t, header.APIVersion, r.APIVersion)
	assert.Equal(t, "v1.0.0", r.Metadata["version"])
	assert.NotEmpty(t, r.Metadata["timestamp"])
	assert.Len(t, r.Overlays, 2)
	assert.Equal(t, [][2]string{{"FLAG", "true"}, {"NAME", `"a"`}, {"COUNT", "3"}}, r.TableRows())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ResolvedConfig", decoded["kind"])
	assert.Equal(t, map[string]any{"FLAG": true, "NAME": "a", "COUNT": float64(3)}, decoded["values"])
}

func TestGenerate(t *testing.T) {
	tool := newTool(t)
	dir := filepath.Join(t.TempDir(), "out")

	a, err := tool.Generate(context.Background(), dir, GenerateOptions{}, "v1")
	require.NoError(t, err)
	assert.Equal(t, header.KindGeneratedArtifacts, a.Kind)
	assert.Equal(t, []string{"autoconf.h", ".config", "config.json", "checksums.txt"}, a.Files)

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"FLAG\": true,\n  \"NAME\": \"a\",\n  \"COUNT\": 3\n}\n", string(data))

	mismatched, err := checksum.VerifyChecksums(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, mismatched)
}

func TestGenerateCustomNames(t *testing.T) {
	tool := newTool(t)
	dir := t.TempDir()

	a, err := tool.Generate(context.Background(), dir, GenerateOptions{
		HeaderName: "include/generated/autoconf.h",
		ConfigName: "board.config",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"include/generated/autoconf.h", "board.config", "config.json", "checksums.txt"}, a.Files)
	assert.FileExists(t, filepath.Join(dir, "include", "generated", "autoconf.h"))
	_, hasVersion := a.Metadata["version"]
	assert.False(t, hasVersion)
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "Kconfig", model)
	base := writeFile(t, dir, "base.config", "CONFIG_NAME=\"a\"\n")
	next := writeFile(t, dir, "next.config", "# CONFIG_FLAG is not set\nCONFIG_COUNT=4\n")

	changes, err := Compare(context.Background(), modelPath, []string{base}, []string{base, next})
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "FLAG", changes[0].Name)
	assert.Equal(t, true, changes[0].Old)
	assert.Equal(t, false, changes[0].New)
	assert.Equal(t, "COUNT", changes[1].Name)
	assert.Nil(t, changes[1].Old)

	_, err = Compare(context.Background(), modelPath, nil, []string{filepath.Join(dir, "missing")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}
