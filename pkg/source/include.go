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

package source

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/kconfig"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

var macroRef = regexp.MustCompile(`\$\(([^()]*)\)`)

// ExpandVars expands $VAR, ${VAR} and $(VAR) references. Undefined
// variables expand to the empty string. Macro calls with arguments,
// written $(fn,arg), are not supported.
func ExpandVars(s string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var bad string
	s = macroRef.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-1])
		if strings.Contains(name, ",") {
			bad = m
			return ""
		}
		v, _ := lookup(name)
		return v
	})
	if bad != "" {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported macro call %s", bad), map[string]any{"macro": bad})
	}
	return os.Expand(s, func(name string) string {
		v, _ := lookup(name)
		return v
	}), nil
}

// IncludeResolver returns a kconfig.IncludeResolver that expands variables
// in the include path, joins relative paths to the base directory and
// expands glob patterns. Glob matches are returned sorted. A path without
// glob metacharacters is returned as is so that a missing file surfaces
// as a read error.
func IncludeResolver(lookup LookupFunc) kconfig.IncludeResolver {
	return func(baseDir, spec string) ([]string, error) {
		expanded, err := ExpandVars(spec, lookup)
		if err != nil {
			return nil, err
		}
		path := expanded
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		if !strings.ContainsAny(expanded, "*?[") {
			return []string{path}, nil
		}
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid include pattern", err,
				map[string]any{"pattern": path})
		}
		sort.Strings(matches)
		return matches, nil
	}
}
