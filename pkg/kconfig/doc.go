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

// Package kconfig resolves Kconfig-style feature models into typed values.
//
// # Overview
//
// A model declares typed symbols (bool, tristate, string, int, hex) inside a
// tree of menus, choices, if blocks and comments. Each symbol may carry
// prompts, conditional defaults, dependencies, select/imply reverse
// dependencies and ranges. The engine parses the model once, optionally
// applies user overlays, and settles every symbol's visibility and value by
// repeated passes over the tree until nothing changes.
//
// # Usage
//
//	eng, err := kconfig.ParseFile("Kconfig", kconfig.WithBaseDir("src"))
//	if err != nil {
//	    return err
//	}
//	f, _ := os.Open(".config")
//	defer f.Close()
//	if _, err := eng.LoadOverlay(".config", f); err != nil {
//	    return err
//	}
//	values, err := eng.Resolve()
//
// # Semantics
//
// Expressions use three-valued logic: n=0, m=1, y=2, AND is the minimum,
// OR the maximum and NOT is 2-v. Comparisons are numeric when both sides
// parse as numbers and lexicographic otherwise.
//
// A symbol is visible when one of its prompts is, taking enclosing menus,
// if blocks and choices into account. A visible symbol with an overlay
// value takes that value; otherwise the first default whose condition holds
// applies. Invisible symbols keep overlay values pending until they become
// visible. Choices select the visible user selection, else the first
// applicable default, else the first visible member.
//
// Overlays use "CONFIG_NAME=value" lines. Lines starting with whitespace
// are ignored, unknown names are ignored, ill-typed literals are rejected
// without aborting the load, and the first accepted assignment for a name
// wins over every later one.
//
// # Errors
//
// Parse failures carry errors.ErrCodeParse with file and line context.
// A model whose values never settle fails Resolve with
// errors.ErrCodeCyclicDependency.
package kconfig
