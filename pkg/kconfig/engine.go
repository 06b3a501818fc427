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
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/errors"
)

// IncludeResolver maps an include directive to the files it names.
// baseDir is the caller-supplied base directory for "source" and the
// including file's directory for "rsource".
type IncludeResolver func(baseDir, spec string) ([]string, error)

// ReadFunc reads an included model file.
type ReadFunc func(path string) ([]byte, error)

// JoinInclude is the default IncludeResolver: relative specs are joined
// to baseDir, absolute ones are used as is.
func JoinInclude(baseDir, spec string) ([]string, error) {
	if filepath.IsAbs(spec) || baseDir == "" {
		return []string{spec}, nil
	}
	return []string{filepath.Join(baseDir, spec)}, nil
}

type options struct {
	baseDir        string
	resolveInclude IncludeResolver
	read           ReadFunc
	prefix         string
	maxPasses      int
}

// Option configures an Engine.
type Option func(*options)

// WithBaseDir sets the directory "source" includes resolve against.
// Defaults to the directory of the model file.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithIncludeResolver replaces JoinInclude.
func WithIncludeResolver(r IncludeResolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolveInclude = r
		}
	}
}

// WithReader replaces os.ReadFile for included files.
func WithReader(r ReadFunc) Option {
	return func(o *options) {
		if r != nil {
			o.read = r
		}
	}
}

// WithConfigPrefix sets the symbol name prefix used by overlays.
func WithConfigPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithMaxPasses overrides the fixpoint pass bound.
func WithMaxPasses(n int) Option {
	return func(o *options) {
		o.maxPasses = n
	}
}

// Engine owns one parsed model and its resolution state. It is not safe
// for concurrent use.
type Engine struct {
	name    string
	t       *Table
	opts    options
	matcher overlayMatcher

	modules  SymbolID
	mainmenu string

	dirty  bool
	passes int
}

// Parse builds an engine from model source. name labels errors and is the
// default base for includes. No partial engine is returned on error.
func Parse(name string, src []byte, opts ...Option) (*Engine, error) {
	o := options{
		baseDir:        filepath.Dir(name),
		resolveInclude: JoinInclude,
		read:           os.ReadFile,
		prefix:         defaults.ConfigPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	t := newTable()
	p := newParser(t, &o)
	err := p.parseFile(name, src, block{parent: t.Root(), choice: NoChoice})
	if err == nil {
		err = p.finalize()
	}
	parseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		parseErrors.Inc()
		return nil, err
	}

	e := &Engine{
		name:     name,
		t:        t,
		opts:     o,
		matcher:  newOverlayMatcher(o.prefix),
		modules:  p.modules,
		mainmenu: p.mainmenu,
		dirty:    true,
	}
	slog.Debug("model parsed", "model", name,
		"symbols", len(t.symbols), "choices", len(t.choices), "nodes", len(t.nodes)-1)
	return e, nil
}

// ParseFile reads and parses a model file. A missing file is reported as
// NOT_FOUND.
func ParseFile(path string, opts ...Option) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "model file not found", err,
				map[string]any{"file": path})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read model file", err,
			map[string]any{"file": path})
	}
	return Parse(path, data, opts...)
}

// Resolve settles visibility, defaults and choices and returns the typed
// mapping. Calling it again without new overlays returns an equal mapping.
func (e *Engine) Resolve() (*Values, error) {
	start := time.Now()
	defer func() { resolveDuration.Observe(time.Since(start).Seconds()) }()

	if e.dirty {
		if err := e.settle(); err != nil {
			resolveCycles.Inc()
			return nil, err
		}
		e.dirty = false
	}
	return e.materialize(), nil
}

// Name returns the model name given to Parse.
func (e *Engine) Name() string { return e.name }

// MainMenu returns the mainmenu title, if any.
func (e *Engine) MainMenu() string { return e.mainmenu }

// ConfigPrefix returns the symbol name prefix for overlays and output.
func (e *Engine) ConfigPrefix() string { return e.opts.prefix }

// Passes returns the number of passes the last settled resolution took.
func (e *Engine) Passes() int { return e.passes }

// Symbol returns a declared symbol by name.
func (e *Engine) Symbol(name string) (*Symbol, bool) { return e.t.Lookup(name) }

// Symbols returns the declared symbols in first-reference order.
func (e *Engine) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(e.t.symbols))
	for _, s := range e.t.symbols {
		if s.declared {
			out = append(out, s)
		}
	}
	return out
}

// Choices returns the choices in declaration order.
func (e *Engine) Choices() []*Choice {
	return append([]*Choice(nil), e.t.choices...)
}

// Choice returns the choice with the given id.
func (e *Engine) Choice(id ChoiceID) *Choice { return e.t.choices[id] }

// SymbolByID returns the symbol with the given id.
func (e *Engine) SymbolByID(id SymbolID) *Symbol { return e.t.symbols[id] }

// Walk visits the menu tree in pre-order.
func (e *Engine) Walk(fn func(*MenuNode) bool) { e.t.Walk(fn) }
