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
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/NVIDIA/yafct/pkg/errors"
)

// Overlay assignment outcomes, also used as metric label values.
const (
	ResultApplied   = "applied"
	ResultUnknown   = "unknown"
	ResultDuplicate = "duplicate"
	ResultMismatch  = "mismatch"
)

const maxOverlayLine = 1024 * 1024

var quotedValue = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"$`)

// OverlayReport summarizes one overlay load.
type OverlayReport struct {
	Source string `json:"source" yaml:"source"`
	// Applied lists names whose assignment was accepted.
	Applied []string `json:"applied,omitempty" yaml:"applied,omitempty"`
	// Unknown lists names not declared by the model.
	Unknown []string `json:"unknown,omitempty" yaml:"unknown,omitempty"`
	// Duplicate lists names that already had an accepted assignment.
	Duplicate []string `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
	// Mismatched lists names whose literal did not fit the declared type.
	Mismatched []string `json:"mismatched,omitempty" yaml:"mismatched,omitempty"`
	// Skipped counts lines that carry no assignment.
	Skipped int `json:"skipped" yaml:"skipped"`
}

type overlayMatcher struct {
	assign *regexp.Regexp
	unset  *regexp.Regexp
}

func newOverlayMatcher(prefix string) overlayMatcher {
	p := regexp.QuoteMeta(prefix)
	return overlayMatcher{
		assign: regexp.MustCompile(`^` + p + `([A-Za-z0-9_]+)=(.*)$`),
		unset:  regexp.MustCompile(`^# ` + p + `([A-Za-z0-9_]+) is not set\s*$`),
	}
}

// LoadOverlay applies "PREFIX<NAME>=<value>" lines from r. The first
// accepted assignment for a name wins across all loads. Unknown names and
// ill-typed literals are reported and skipped; only read failures return
// an error.
func (e *Engine) LoadOverlay(name string, r io.Reader) (*OverlayReport, error) {
	rep := &OverlayReport{Source: name}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxOverlayLine)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || unicode.IsSpace(rune(line[0])) {
			rep.Skipped++
			continue
		}
		if m := e.matcher.assign.FindStringSubmatch(line); m != nil {
			lit := strings.TrimRight(m[2], " \t")
			e.assign(rep, lineNo, m[1], func(t Type) (Value, bool) { return parseLiteral(t, lit) }, lit)
			continue
		}
		if m := e.matcher.unset.FindStringSubmatch(line); m != nil {
			e.assign(rep, lineNo, m[1], func(t Type) (Value, bool) {
				if !t.IsBoolean() {
					return Value{}, false
				}
				return triValue(t, No), true
			}, "n")
			continue
		}
		rep.Skipped++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read overlay %s", name), err)
	}

	e.dirty = true
	slog.Debug("overlay loaded", "source", name,
		"applied", len(rep.Applied), "unknown", len(rep.Unknown),
		"duplicate", len(rep.Duplicate), "mismatched", len(rep.Mismatched))
	return rep, nil
}

// LoadOverlayValues applies a structured overlay such as a decoded YAML or
// JSON mapping. Keys may carry the config prefix. Booleans set Bool and
// Tristate symbols, numbers set Int and Hex symbols, strings set String
// symbols verbatim and are parsed as literals for every other type.
// Keys are applied in sorted order.
func (e *Engine) LoadOverlayValues(name string, values map[string]any) *OverlayReport {
	rep := &OverlayReport{Source: name}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		raw := values[k]
		e.assign(rep, i+1, strings.TrimPrefix(k, e.opts.prefix), func(t Type) (Value, bool) {
			return coerce(t, raw)
		}, fmt.Sprint(raw))
	}
	e.dirty = true
	return rep
}

func (e *Engine) assign(rep *OverlayReport, line int, name string, convert func(Type) (Value, bool), literal string) {
	sym, ok := e.t.Lookup(name)
	if !ok {
		rep.Unknown = append(rep.Unknown, name)
		overlayAssignments.WithLabelValues(ResultUnknown).Inc()
		return
	}
	if sym.userSet {
		rep.Duplicate = append(rep.Duplicate, name)
		overlayAssignments.WithLabelValues(ResultDuplicate).Inc()
		return
	}

	v, ok := convert(sym.typ)
	if !ok {
		err := errors.NewWithContext(errors.ErrCodeTypeMismatch,
			fmt.Sprintf("%s:%d: %q is not a valid %s value for %s", rep.Source, line, literal, sym.typ, name),
			map[string]any{"file": rep.Source, "line": line, "symbol": name})
		slog.Warn("ignoring overlay assignment", "error", err)
		rep.Mismatched = append(rep.Mismatched, name)
		overlayAssignments.WithLabelValues(ResultMismatch).Inc()
		return
	}

	sym.user = &v
	sym.userSet = true
	if sym.choice != NoChoice && sym.typ.IsBoolean() {
		c := e.t.choices[sym.choice]
		switch v.Tri {
		case Yes:
			c.userSelections = append(c.userSelections, sym.id)
		case Mod:
			c.userModules = append(c.userModules, sym.id)
		case No:
		}
	}
	rep.Applied = append(rep.Applied, name)
	overlayAssignments.WithLabelValues(ResultApplied).Inc()
}

// parseLiteral converts an overlay literal for a symbol of type t.
func parseLiteral(t Type, lit string) (Value, bool) {
	switch t {
	case TypeBool, TypeTristate:
		if !validLiteral(t, lit) {
			return Value{}, false
		}
		tri, _ := ParseTristate(lit)
		return triValue(t, tri), true
	case TypeString:
		m := quotedValue.FindStringSubmatch(lit)
		if m == nil {
			return Value{}, false
		}
		return Value{Type: t, Str: unescape(m[1])}, true
	case TypeInt, TypeHex:
		if !validLiteral(t, lit) {
			return Value{}, false
		}
		return Value{Type: t, Str: lit}, true
	case TypeUnknown:
	}
	return Value{}, false
}

func coerce(t Type, raw any) (Value, bool) {
	switch x := raw.(type) {
	case bool:
		if !t.IsBoolean() {
			return Value{}, false
		}
		if x {
			return triValue(t, Yes), true
		}
		return triValue(t, No), true
	case string:
		if t == TypeString {
			return Value{Type: t, Str: x}, true
		}
		if t.IsNumeric() || t.IsBoolean() {
			return parseLiteral(t, x)
		}
	case int:
		return coerceInt(t, int64(x))
	case int64:
		return coerceInt(t, x)
	case uint64:
		if x <= math.MaxInt64 {
			return coerceInt(t, int64(x))
		}
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return coerceInt(t, int64(x))
		}
	}
	return Value{}, false
}

func coerceInt(t Type, n int64) (Value, bool) {
	switch t {
	case TypeInt:
		return Value{Type: t, Str: strconv.FormatInt(n, 10)}, true
	case TypeHex:
		return Value{Type: t, Str: formatHex(n)}, true
	default:
		return Value{}, false
	}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Escape quotes a string value for persisted configurations and headers.
func Escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
