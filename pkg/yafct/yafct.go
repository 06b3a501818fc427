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
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/yafct/pkg/autoconf"
	"github.com/NVIDIA/yafct/pkg/checksum"
	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/errors"
	"github.com/NVIDIA/yafct/pkg/header"
	"github.com/NVIDIA/yafct/pkg/kconfig"
	"github.com/NVIDIA/yafct/pkg/source"
)

type options struct {
	overlays []string
	baseDir  string
	prefix   string
	loader   *source.Loader
	lookup   source.LookupFunc
}

// Option configures a Tool.
type Option func(*options)

// WithOverlay adds an overlay location. Overlays apply in the order given
// and the first assignment of a symbol wins.
func WithOverlay(location string) Option {
	return func(o *options) {
		if location != "" {
			o.overlays = append(o.overlays, location)
		}
	}
}

// WithBaseDir sets the directory "source" includes resolve against.
// Defaults to the model's directory, or the working directory for remote
// models.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithConfigPrefix sets the symbol prefix used by overlays and emitters.
func WithConfigPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLoader replaces the default source loader.
func WithLoader(l *source.Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithEnv replaces os.LookupEnv for include path expansion.
func WithEnv(lookup source.LookupFunc) Option {
	return func(o *options) {
		o.lookup = lookup
	}
}

// Tool is a parsed model with its overlays applied.
type Tool struct {
	model   string
	prefix  string
	engine  *kconfig.Engine
	reports []*kconfig.OverlayReport
}

// New reads the model and every overlay concurrently, parses the model and
// applies the overlays in order. A missing model or overlay is NOT_FOUND;
// model syntax errors are PARSE_ERROR.
func New(ctx context.Context, model string, opts ...Option) (*Tool, error) {
	o := options{prefix: defaults.ConfigPrefix, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loader == nil {
		o.loader = source.NewLoader()
	}
	if model == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "model location is required")
	}

	docs := make([]*source.Document, len(o.overlays)+1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := o.loader.Load(gctx, model, source.KindModel)
		docs[0] = doc
		return err
	})
	for i, loc := range o.overlays {
		g.Go(func() error {
			doc, err := o.loader.Load(gctx, loc, source.KindOverlay)
			docs[i+1] = doc
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	baseDir := o.baseDir
	if baseDir == "" {
		baseDir = "."
		if !source.IsRemote(model) {
			baseDir = filepath.Dir(model)
		}
	}

	eng, err := kconfig.Parse(docs[0].Location, docs[0].Data,
		kconfig.WithBaseDir(baseDir),
		kconfig.WithIncludeResolver(source.IncludeResolver(o.lookup)),
		kconfig.WithConfigPrefix(o.prefix))
	if err != nil {
		return nil, err
	}

	t := &Tool{model: model, prefix: o.prefix, engine: eng}
	for _, doc := range docs[1:] {
		if _, err := t.apply(doc); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ApplyOverlay loads one more overlay. Symbols already assigned by an
// earlier overlay keep their value.
func (t *Tool) ApplyOverlay(ctx context.Context, location string, loader *source.Loader) (*kconfig.OverlayReport, error) {
	if loader == nil {
		loader = source.NewLoader()
	}
	doc, err := loader.Load(ctx, location, source.KindOverlay)
	if err != nil {
		return nil, err
	}
	return t.apply(doc)
}

func (t *Tool) apply(doc *source.Document) (*kconfig.OverlayReport, error) {
	rep, err := doc.ApplyTo(t.engine)
	if err != nil {
		return nil, err
	}
	t.reports = append(t.reports, rep)
	slog.Info("overlay applied", "source", rep.Source, "applied", len(rep.Applied),
		"unknown", len(rep.Unknown), "duplicate", len(rep.Duplicate), "mismatched", len(rep.Mismatched))
	return rep, nil
}

// Compare resolves model twice, once with the from overlays and once with
// the to overlays, and returns how the second configuration differs from
// the first. opts apply to both resolutions.
func Compare(ctx context.Context, model string, from, to []string, opts ...Option) (kconfig.Changes, error) {
	resolveWith := func(ctx context.Context, overlays []string) (*kconfig.Values, error) {
		all := append([]Option(nil), opts...)
		for _, o := range overlays {
			all = append(all, WithOverlay(o))
		}
		t, err := New(ctx, model, all...)
		if err != nil {
			return nil, err
		}
		return t.Resolve()
	}

	var before, after *kconfig.Values
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := resolveWith(gctx, from)
		before = v
		return err
	})
	g.Go(func() error {
		v, err := resolveWith(gctx, to)
		after = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	changes := kconfig.Compare(before, after)
	slog.Debug("configurations compared", "model", model, "changes", len(changes))
	return changes, nil
}

// Engine returns the underlying engine.
func (t *Tool) Engine() *kconfig.Engine { return t.engine }

// Overlays returns the reports of every applied overlay, in order.
func (t *Tool) Overlays() []*kconfig.OverlayReport { return t.reports }

// Resolve returns the materialized configuration.
func (t *Tool) Resolve() (*kconfig.Values, error) {
	return t.engine.Resolve()
}

// Emit writes the C header for the resolved configuration to path.
func (t *Tool) Emit(path string) error {
	values, err := t.Resolve()
	if err != nil {
		return err
	}
	return autoconf.WriteHeaderFile(path, values, autoconf.WithPrefix(t.prefix))
}

// EmitConfig writes the resolved configuration to path in .config form.
func (t *Tool) EmitConfig(path string) error {
	values, err := t.Resolve()
	if err != nil {
		return err
	}
	return autoconf.WriteConfigFile(path, values, autoconf.WithPrefix(t.prefix))
}

// Report is a resolved configuration wrapped in a document header.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Overlays []*kconfig.OverlayReport `json:"overlays,omitempty" yaml:"overlays,omitempty"`
	Values   *kconfig.Values          `json:"values" yaml:"values"`
}

// TableRows lists the values as name/value pairs.
func (r *Report) TableRows() [][2]string {
	return r.Values.TableRows()
}

// Report resolves and returns the configuration with a ResolvedConfig
// header.
func (t *Tool) Report(version string) (*Report, error) {
	values, err := t.Resolve()
	if err != nil {
		return nil, err
	}
	r := &Report{Overlays: t.reports, Values: values}
	r.Init(header.KindResolvedConfig, version)
	r.Metadata["model"] = t.model
	return r, nil
}

// GenerateOptions names the files Generate writes.
type GenerateOptions struct {
	HeaderName string
	ConfigName string
	ValuesName string
}

// Artifacts describes a generated output directory.
type Artifacts struct {
	header.Header `json:",inline" yaml:",inline"`

	Dir   string   `json:"dir" yaml:"dir"`
	Files []string `json:"files" yaml:"files"`
}

// Generate writes the header, the .config and the JSON mapping into dir,
// followed by checksums.txt covering all three.
func (t *Tool) Generate(ctx context.Context, dir string, opts GenerateOptions, version string) (*Artifacts, error) {
	if opts.HeaderName == "" {
		opts.HeaderName = defaults.HeaderFileName
	}
	if opts.ConfigName == "" {
		opts.ConfigName = defaults.ConfigFileName
	}
	if opts.ValuesName == "" {
		opts.ValuesName = defaults.ValuesFileName
	}

	values, err := t.Resolve()
	if err != nil {
		return nil, err
	}

	headerPath := filepath.Join(dir, opts.HeaderName)
	configPath := filepath.Join(dir, opts.ConfigName)
	valuesPath := filepath.Join(dir, opts.ValuesName)

	if err := autoconf.WriteHeaderFile(headerPath, values, autoconf.WithPrefix(t.prefix)); err != nil {
		return nil, err
	}
	if err := autoconf.WriteConfigFile(configPath, values, autoconf.WithPrefix(t.prefix)); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode values", err)
	}
	if err := os.MkdirAll(filepath.Dir(valuesPath), 0o755); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to create output directory", err,
			map[string]any{"dir": filepath.Dir(valuesPath)})
	}
	if err := os.WriteFile(valuesPath, append(data, '\n'), 0o644); err != nil { //nolint:gosec
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to write values", err,
			map[string]any{"file": valuesPath})
	}

	files := []string{headerPath, configPath, valuesPath}
	if err := checksum.GenerateChecksums(ctx, dir, files); err != nil {
		return nil, err
	}

	a := &Artifacts{Dir: dir}
	a.Init(header.KindGeneratedArtifacts, version)
	a.Metadata["model"] = t.model
	for _, f := range append(files, checksum.GetChecksumFilePath(dir)) {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			rel = f
		}
		a.Files = append(a.Files, filepath.ToSlash(rel))
	}
	slog.Info("artifacts generated", "dir", dir, "files", len(a.Files))
	return a, nil
}
