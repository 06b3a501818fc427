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

package autoconf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/yafct/pkg/kconfig"
)

const model = `
config FEATURE
	bool "feature"
	default y
config DISABLED
	bool "disabled"
config NAME
	string "name"
	default "say \"hi\""
config COUNT
	int "count"
	default 10
config ADDR
	hex "address"
	default 0x1000
`

func resolve(t *testing.T, overlay string) *kconfig.Values {
	t.Helper()
	eng, err := kconfig.Parse("Kconfig", []byte(model))
	require.NoError(t, err)
	if overlay != "" {
		_, err = eng.LoadOverlay("overlay", bytes.NewBufferString(overlay))
		require.NoError(t, err)
	}
	values, err := eng.Resolve()
	require.NoError(t, err)
	return values
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, resolve(t, "")))

	want := "/* Generated by yafct */\n" +
		"#define CONFIG_FEATURE 1\n" +
		"#define CONFIG_NAME \"say \\\"hi\\\"\"\n" +
		"#define CONFIG_COUNT 10\n" +
		"#define CONFIG_ADDR 0x1000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteHeaderOptions(t *testing.T) {
	values := kconfig.NewValues()
	values.Set("ON", kconfig.TypeBool, true)

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, values, WithPrefix("APP_"), WithBanner("")))
	assert.Equal(t, "#define APP_ON 1\n", buf.String())
}

func TestWriteConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, resolve(t, "CONFIG_COUNT=-4\n")))

	want := "# Generated by yafct\n" +
		"CONFIG_FEATURE=y\n" +
		"# CONFIG_DISABLED is not set\n" +
		"CONFIG_NAME=\"say \\\"hi\\\"\"\n" +
		"CONFIG_COUNT=-4\n" +
		"CONFIG_ADDR=0x1000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteConfigRoundTrip(t *testing.T) {
	original := resolve(t, "CONFIG_FEATURE=n\nCONFIG_DISABLED=y\nCONFIG_NAME=\"back\\\\slash\"\nCONFIG_ADDR=ff\n")

	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, original))

	reloaded := resolve(t, buf.String())
	assert.True(t, original.Equal(reloaded), "got %v, want %v", reloaded.Map(), original.Map())
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "include")
	values := resolve(t, "")

	headerPath := filepath.Join(dir, "autoconf.h")
	configPath := filepath.Join(dir, ".config")
	require.NoError(t, WriteHeaderFile(headerPath, values))
	require.NoError(t, WriteConfigFile(configPath, values))

	header, err := os.ReadFile(headerPath)
	require.NoError(t, err)
	assert.Contains(t, string(header), "#define CONFIG_COUNT 10\n")

	config, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(config), "CONFIG_FEATURE=y\n")
}

func TestSkipsUnsupportedValues(t *testing.T) {
	values := kconfig.NewValues()
	values.Set("ODD", kconfig.TypeInt, 3.5)
	values.Set("OK", kconfig.TypeInt, int64(3))

	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, values, WithBanner("")))
	assert.Equal(t, "CONFIG_OK=3\n", buf.String())
}
