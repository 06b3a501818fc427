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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/kconfig"
)

// DefaultBanner is the first line of every generated file.
const DefaultBanner = "Generated by yafct"

type options struct {
	prefix string
	banner string
}

// Option configures a writer.
type Option func(*options)

// WithPrefix sets the macro and assignment prefix. Defaults to CONFIG_.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithBanner replaces the generated-by comment. An empty banner omits it.
func WithBanner(banner string) Option {
	return func(o *options) {
		o.banner = banner
	}
}

func newOptions(opts []Option) options {
	o := options{prefix: defaults.ConfigPrefix, banner: DefaultBanner}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WriteHeader writes values as C preprocessor definitions.
func WriteHeader(w io.Writer, values *kconfig.Values, opts ...Option) error {
	o := newOptions(opts)
	bw := bufio.NewWriter(w)
	if o.banner != "" {
		fmt.Fprintf(bw, "/* %s */\n", o.banner)
	}
	for _, e := range values.Entries() {
		lit, ok := headerLiteral(e)
		if !ok {
			continue
		}
		fmt.Fprintf(bw, "#define %s%s %s\n", o.prefix, e.Name, lit)
	}
	return bw.Flush()
}

// WriteConfig writes values as a persisted overlay.
func WriteConfig(w io.Writer, values *kconfig.Values, opts ...Option) error {
	o := newOptions(opts)
	bw := bufio.NewWriter(w)
	if o.banner != "" {
		fmt.Fprintf(bw, "# %s\n", o.banner)
	}
	for _, e := range values.Entries() {
		if b, ok := e.Value.(bool); ok && !b {
			fmt.Fprintf(bw, "# %s%s is not set\n", o.prefix, e.Name)
			continue
		}
		lit, ok := configLiteral(e)
		if !ok {
			continue
		}
		fmt.Fprintf(bw, "%s%s=%s\n", o.prefix, e.Name, lit)
	}
	return bw.Flush()
}

// WriteHeaderFile writes the header to path, creating parent directories.
func WriteHeaderFile(path string, values *kconfig.Values, opts ...Option) error {
	return writeFile(path, values, opts, WriteHeader)
}

// WriteConfigFile writes the persisted overlay to path, creating parent
// directories.
func WriteConfigFile(path string, values *kconfig.Values, opts ...Option) error {
	return writeFile(path, values, opts, WriteConfig)
}

func writeFile(path string, values *kconfig.Values, opts []Option,
	write func(io.Writer, *kconfig.Values, ...Option) error) error {

	var buf bytes.Buffer
	if err := write(&buf, values, opts...); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to render "+path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create output directory", err,
			map[string]any{"file": path})
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // generated sources are world-readable
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write output file", err,
			map[string]any{"file": path})
	}
	slog.Debug("configuration written", "path", path, "entries", values.Len())
	return nil
}

func headerLiteral(e kconfig.Entry) (string, bool) {
	if b, ok := e.Value.(bool); ok {
		return "1", b
	}
	return configLiteral(e)
}

func configLiteral(e kconfig.Entry) (string, bool) {
	switch v := e.Value.(type) {
	case bool:
		if v {
			return "y", true
		}
		return "n", true
	case string:
		return `"` + kconfig.Escape(v) + `"`, true
	case int64:
		if e.Type == kconfig.TypeHex {
			return fmt.Sprintf("%#x", v), true
		}
		return fmt.Sprintf("%d", v), true
	default:
		slog.Warn("skipping entry with unsupported value", "symbol", e.Name, "type", fmt.Sprintf("%T", v))
		return "", false
	}
}
