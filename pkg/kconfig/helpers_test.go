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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string, opts ...Option) *Engine {
	t.Helper()
	eng, err := Parse("Kconfig", []byte(src), opts...)
	require.NoError(t, err)
	return eng
}

func mustResolve(t *testing.T, eng *Engine) map[string]any {
	t.Helper()
	values, err := eng.Resolve()
	require.NoError(t, err)
	return values.Map()
}

func mustOverlay(t *testing.T, eng *Engine, text string) *OverlayReport {
	t.Helper()
	rep, err := eng.LoadOverlay(".config", strings.NewReader(text))
	require.NoError(t, err)
	return rep
}
