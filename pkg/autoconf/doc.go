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

// Package autoconf writes resolved configurations as a C header or as a
// persisted overlay file.
//
// Both writers work purely from a kconfig.Values mapping, so a header can be
// produced from a mapping loaded from JSON as well as from a live engine.
//
//	values, _ := eng.Resolve()
//	if err := autoconf.WriteHeaderFile("build/autoconf.h", values); err != nil {
//	    return err
//	}
//	if err := autoconf.WriteConfigFile("build/.config", values); err != nil {
//	    return err
//	}
//
// Header output:
//
//	#define CONFIG_FEATURE 1
//	#define CONFIG_NAME "demo"
//	#define CONFIG_COUNT 10
//	#define CONFIG_ADDR 0x1000
//
// False Bool and Tristate values are omitted from headers and written as
// "# CONFIG_X is not set" lines in persisted configurations, which load back
// through kconfig.Engine.LoadOverlay unchanged.
package autoconf
