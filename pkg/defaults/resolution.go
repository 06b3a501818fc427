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

package defaults

// Resolution bounds for the fixpoint loop.
const (
	// MinFixpointPasses is the floor on resolution passes, so that tiny
	// models still get room for a select to unlock a dependent entry.
	MinFixpointPasses = 8

	// FixpointPassesPerItem is the pass allowance per symbol or choice.
	// Every pass that changes something settles at least one more item,
	// so a converging model never needs more than two passes per item.
	FixpointPassesPerItem = 2

	// ConfigPrefix is the default prefix of symbol names in overlays and output.
	ConfigPrefix = "CONFIG_"

	// HeaderFileName is the default name of the generated C header.
	HeaderFileName = "autoconf.h"

	// ConfigFileName is the default name of the persisted configuration.
	ConfigFileName = ".config"

	// ValuesFileName is the default name of the resolved JSON mapping.
	ValuesFileName = "config.json"
)

// FixpointPasses returns the pass bound for a model with the given number
// of symbols and choices.
func FixpointPasses(symbols, choices int) int {
	n := (symbols + choices + 1) * FixpointPassesPerItem
	if n < MinFixpointPasses {
		return MinFixpointPasses
	}
	return n
}
