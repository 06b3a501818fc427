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
	"bytes"
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/kconfig"
)

// Format identifies how overlay data is encoded.
type Format string

const (
	// FormatLines is the .config line format (CONFIG_X=y).
	FormatLines Format = "lines"
	// FormatYAML is a YAML mapping of symbol names to values.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON object of symbol names to values.
	FormatJSON Format = "json"
)

// FormatFromLocation infers the format from a location's extension.
// URLs are judged by their path. Anything not YAML or JSON is FormatLines.
func FormatFromLocation(location string) Format {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatLines
	}
}

// Document is raw model or overlay content together with where it came
// from.
type Document struct {
	Location string
	Data     []byte
	Format   Format
}

// ApplyTo loads the document into eng as an overlay.
func (d *Document) ApplyTo(eng *kconfig.Engine) (*kconfig.OverlayReport, error) {
	switch d.Format {
	case FormatYAML:
		values := map[string]any{}
		if err := yaml.Unmarshal(d.Data, &values); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeParse, "invalid YAML overlay", err,
				map[string]any{"file": d.Location})
		}
		return eng.LoadOverlayValues(d.Location, values), nil
	case FormatJSON:
		values := map[string]any{}
		if err := json.Unmarshal(d.Data, &values); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeParse, "invalid JSON overlay", err,
				map[string]any{"file": d.Location})
		}
		return eng.LoadOverlayValues(d.Location, values), nil
	case FormatLines:
	}
	return eng.LoadOverlay(d.Location, bytes.NewReader(d.Data))
}
