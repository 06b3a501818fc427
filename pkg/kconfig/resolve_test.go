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

package kconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/yafct/pkg/errors"
)

const versionChoice = `
choice APP_VERSION
	prompt "Application version"
	default APP_VERSION_1
config APP_VERSION_1
	bool "Version 1"
config APP_VERSION_2
	bool "Version 2"
endchoice
`

func TestChoiceDefaultSelection(t *testing.T) {
	eng := mustParse(t, versionChoice)
	assert.Equal(t, map[string]any{"APP_VERSION_1": true, "APP_VERSION_2": false}, mustResolve(t, eng))

	c := eng.Choices()[0]
	assert.Equal(t, "APP_VERSION", c.Name())
	assert.Equal(t, TypeBool, c.Type())
	assert.Equal(t, Yes, c.Mode())
	assert.Equal(t, "APP_VERSION_1", eng.SymbolByID(c.Selection()).Name())
}

func TestChoiceSelectionRules(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		overlay string
		want    map[string]any
	}{
		{
			name: "first visible member without default",
			src: `
choice
	prompt "pick"
config FIRST
	bool "first"
config SECOND
	bool "second"
endchoice
`,
			want: map[string]any{"FIRST": true, "SECOND": false},
		},
		{
			name: "invisible default falls back to first visible member",
			src: `
choice
	prompt "pick"
	default LATE
config EARLY
	bool "early"
config LATE
	bool "late"
	depends on n
endchoice
`,
			want: map[string]any{"EARLY": true},
		},
		{
			name: "conditional default",
			src: `
config FAST
	bool "fast"
	default y
choice
	prompt "mode"
	default TURBO if FAST
	default NORMAL
config NORMAL
	bool "normal"
config TURBO
	bool "turbo"
endchoice
`,
			want: map[string]any{"FAST": true, "NORMAL": false, "TURBO": true},
		},
		{
			name: "member without prompt is never a candidate",
			src: `
choice
	prompt "pick"
config HIDDEN
	bool
config SHOWN
	bool "shown"
endchoice
`,
			want: map[string]any{"SHOWN": true},
		},
		{
			name: "member defaults are ignored",
			src: `
choice
	prompt "pick"
config ONE
	bool "one"
config TWO
	bool "two"
	default y
endchoice
`,
			want: map[string]any{"ONE": true, "TWO": false},
		},
		{
			name: "optional choice selects nothing",
			src: `
choice
	prompt "pick"
	optional
config ONE
	bool "one"
config TWO
	bool "two"
endchoice
`,
			want: map[string]any{},
		},
		{
			name: "optional choice activated by a visible member",
			src: `
choice
	prompt "pick"
	optional
config ONE
	bool "one"
config TWO
	bool "two"
endchoice
`,
			overlay: "CONFIG_TWO=y\n",
			want:    map[string]any{"ONE": false, "TWO": true},
		},
		{
			name: "optional choice ignores an invisible member",
			src: `
config FOO
	bool "foo"
choice
	prompt "pick"
	optional
config ONE
	bool "one"
	depends on FOO
config TWO
	bool "two"
endchoice
`,
			overlay: "CONFIG_ONE=y\n",
			want:    map[string]any{"FOO": false},
		},
		{
			name: "optional choice ignores a member without prompt",
			src: `
choice
	prompt "pick"
	optional
config HIDDEN
	bool
config SHOWN
	bool "shown"
endchoice
`,
			overlay: "CONFIG_HIDDEN=y\n",
			want:    map[string]any{},
		},
		{
			name: "choice without prompt selects nothing",
			src: `
choice
config ONE
	bool "one"
endchoice
`,
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := mustParse(t, tt.src)
			if tt.overlay != "" {
				mustOverlay(t, eng, tt.overlay)
			}
			assert.Equal(t, tt.want, mustResolve(t, eng))
		})
	}
}

func TestDependencies(t *testing.T) {
	src := `
config A
	bool "a"
config B
	bool "b"
	depends on A
	default y
`
	eng := mustParse(t, src)
	assert.Equal(t, map[string]any{"A": false}, mustResolve(t, eng))

	eng = mustParse(t, src)
	mustOverlay(t, eng, "CONFIG_A=y\n")
	assert.Equal(t, map[string]any{"A": true, "B": true}, mustResolve(t, eng))
}

func TestMenuConditions(t *testing.T) {
	eng := mustParse(t, `
config NET
	bool "networking"
menu "Network drivers"
	depends on NET
config WIFI
	bool "wifi"
	default y
endmenu
menu "Internal"
	visible if n
config SECRET
	bool "secret"
	default y
endmenu
`)
	mustOverlay(t, eng, "CONFIG_SECRET=n\n")
	assert.Equal(t, map[string]any{"NET": false, "SECRET": true}, mustResolve(t, eng))

	secret, ok := eng.Symbol("SECRET")
	require.True(t, ok)
	assert.Equal(t, No, secret.Visibility())
	assert.False(t, secret.UserAssigned())
}

func TestSelectAndImply(t *testing.T) {
	src := `
config FEATURE
	bool "feature"
	select HELPER
	imply EXTRA
config HELPER
	bool
config EXTRA
	bool "extra"
`
	eng := mustParse(t, src)
	assert.Equal(t, map[string]any{"FEATURE": false, "EXTRA": false}, mustResolve(t, eng))

	eng = mustParse(t, src)
	mustOverlay(t, eng, "CONFIG_FEATURE=y\n")
	assert.Equal(t, map[string]any{"FEATURE": true, "HELPER": true, "EXTRA": true}, mustResolve(t, eng))

	eng = mustParse(t, src)
	mustOverlay(t, eng, "CONFIG_FEATURE=y\nCONFIG_EXTRA=n\nCONFIG_HELPER=n\n")
	assert.Equal(t, map[string]any{"FEATURE": true, "HELPER": true, "EXTRA": false}, mustResolve(t, eng))
}

func TestStringComparedAsDecimal(t *testing.T) {
	eng := mustParse(t, `
config S
	string "s"
	default "010"
config OCTAL
	bool "octal"
	default y if S = 8
config DECIMAL
	bool "decimal"
	default y if S = 10
`)
	assert.Equal(t, map[string]any{"S": "010", "OCTAL": false, "DECIMAL": true}, mustResolve(t, eng))
}

func TestNumericValues(t *testing.T) {
	src := `
config COUNT
	int "count"
	range 1 10
	default 20
config ADDR
	hex "address"
	default 0x1000
config EMPTY
	int "empty"
config SIZE
	int
	default COUNT
`
	eng := mustParse(t, src)
	assert.Equal(t, map[string]any{"COUNT": int64(10), "ADDR": int64(4096), "SIZE": int64(10)}, mustResolve(t, eng))

	eng = mustParse(t, src)
	mustOverlay(t, eng, "CONFIG_COUNT=5\nCONFIG_ADDR=ff\nCONFIG_EMPTY=-3\n")
	assert.Equal(t, map[string]any{"COUNT": int64(5), "ADDR": int64(255), "EMPTY": int64(-3), "SIZE": int64(5)}, mustResolve(t, eng))

	eng = mustParse(t, src)
	mustOverlay(t, eng, "CONFIG_COUNT=50\n")
	assert.Equal(t, int64(10), mustResolve(t, eng)["COUNT"])
}

func TestModulesSymbol(t *testing.T) {
	src := `
config MODULES
	bool "modules"
	option modules
config DRV
	tristate "driver"
	default m
`
	eng := mustParse(t, src)
	assert.Equal(t, map[string]any{"MODULES": false, "DRV": true}, mustResolve(t, eng))
	drv, _ := eng.Symbol("DRV")
	assert.Equal(t, Yes, drv.Value().Tri)

	eng = mustParse(t, src)
	mustOverlay(t, eng, "CONFIG_MODULES=y\n")
	assert.Equal(t, map[string]any{"MODULES": true, "DRV": true}, mustResolve(t, eng))
	drv, _ = eng.Symbol("DRV")
	assert.Equal(t, Mod, drv.Value().Tri)
}

func TestPromptlessDefaults(t *testing.T) {
	eng := mustParse(t, `
config ON
	bool
	default y
config OFF
	bool
	default n
config LABEL
	string
	default "build"
`)
	assert.Equal(t, map[string]any{"ON": true, "LABEL": "build"}, mustResolve(t, eng))
}

func TestFirstMatchingDefaultWins(t *testing.T) {
	eng := mustParse(t, `
config LEVEL
	string "level"
	default "debug" if n
	default "info"
	default "warn"
`)
	assert.Equal(t, map[string]any{"LEVEL": "info"}, mustResolve(t, eng))
}

func TestCyclicDependency(t *testing.T) {
	eng := mustParse(t, `
config FLIP
	bool
	default !FLIP
`)
	values, err := eng.Resolve()
	require.Error(t, err)
	assert.Nil(t, values)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCyclicDependency))
	assert.Contains(t, err.Error(), "FLIP")
}

func TestMaxPassesOption(t *testing.T) {
	src := `
config A
	bool "a"
	default y if B
config B
	bool "b"
	default y if C
config C
	bool
	default y
`
	_, err := mustParse(t, src, WithMaxPasses(1)).Resolve()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCyclicDependency))

	eng := mustParse(t, src)
	assert.Equal(t, map[string]any{"A": true, "B": true, "C": true}, mustResolve(t, eng))
	assert.LessOrEqual(t, eng.Passes(), 4)
}

func TestResolveIsIdempotent(t *testing.T) {
	eng := mustParse(t, versionChoice+`
config NAME
	string "name"
	default "x"
`)
	mustOverlay(t, eng, "CONFIG_APP_VERSION_2=y\n")

	first, err := eng.Resolve()
	require.NoError(t, err)
	second, err := eng.Resolve()
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	a, err := first.MarshalJSON()
	require.NoError(t, err)
	b, err := second.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
