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
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/NVIDIA/yafct/pkg/defaults"
	"github.com/NVIDIA/yafct/pkg/errors"
)

// maxReportedCycle caps the symbol names listed in a cyclic dependency error.
const maxReportedCycle = 10

// tableLookup reads the current resolution state of a table.
type tableLookup struct {
	t *Table
}

func (l tableLookup) Value(id SymbolID) Value { return l.t.symbols[id].value }

func (l tableLookup) ChoiceMode(id ChoiceID) Tristate { return l.t.choices[id].mode }

// settle repeats in-place pre-order passes over the menu tree until one
// pass changes nothing. Values computed earlier in a pass are visible to
// later nodes of the same pass.
func (e *Engine) settle() error {
	limit := e.opts.maxPasses
	if limit <= 0 {
		limit = defaults.FixpointPasses(len(e.t.symbols), len(e.t.choices))
	}

	var changed []string
	for pass := 1; pass <= limit; pass++ {
		changed = e.pass()
		if len(changed) == 0 {
			e.passes = pass
			resolvePasses.Observe(float64(pass))
			slog.Debug("resolution settled", "model", e.name, "passes", pass)
			return nil
		}
	}

	if len(changed) > maxReportedCycle {
		changed = changed[:maxReportedCycle]
	}
	return errors.NewWithContext(errors.ErrCodeCyclicDependency,
		fmt.Sprintf("%s: values did not settle after %d passes (still changing: %s)",
			e.name, limit, strings.Join(changed, ", ")),
		map[string]any{"file": e.name, "passes": limit, "symbols": changed})
}

// pass runs one resolution walk and returns the names of symbols or
// choices whose state changed.
func (e *Engine) pass() []string {
	var changed []string
	e.t.Walk(func(n *MenuNode) bool {
		switch n.Kind {
		case NodeSymbol:
			if e.updateSymbol(e.t.symbols[n.Symbol]) {
				changed = append(changed, e.t.symbols[n.Symbol].name)
			}
		case NodeChoice:
			if e.updateChoice(e.t.choices[n.Choice]) {
				changed = append(changed, e.choiceLabel(e.t.choices[n.Choice]))
			}
		case NodeRoot, NodeMenu, NodeComment:
		}
		return true
	})
	return changed
}

func (e *Engine) choiceLabel(c *Choice) string {
	if c.name != "" {
		return "choice " + c.name
	}
	return fmt.Sprintf("choice #%d", c.id)
}

func (e *Engine) modulesEnabled() bool {
	return e.modules != NoSymbol && e.t.symbols[e.modules].value.Tri == Yes
}

// effectiveType demotes tristate to bool while modules are disabled.
func (e *Engine) effectiveType(t Type) Type {
	if t == TypeTristate && !e.modulesEnabled() {
		return TypeBool
	}
	return t
}

func (e *Engine) nodesVisibility(nodes []NodeID) Tristate {
	l := tableLookup{e.t}
	vis := No
	for _, id := range nodes {
		vis = maxTri(vis, Eval(e.t.nodes[id].promptVisibility(), l))
	}
	return vis
}

func (e *Engine) symbolVisibility(s *Symbol) Tristate {
	vis := e.nodesVisibility(s.nodes)
	if s.choice != NoChoice {
		c := e.t.choices[s.choice]
		if c.typ == TypeTristate && s.typ != TypeTristate && c.mode != Yes {
			return No
		}
		if s.typ == TypeTristate && vis == Mod && c.mode == Yes {
			return No
		}
	}
	if vis == Mod && e.effectiveType(s.typ) != TypeTristate {
		vis = Yes
	}
	return vis
}

// updateSymbol recomputes visibility and value and reports any change.
func (e *Engine) updateSymbol(s *Symbol) bool {
	vis := e.symbolVisibility(s)
	var (
		val   Value
		write bool
	)
	switch s.typ {
	case TypeBool, TypeTristate:
		val, write = e.boolValue(s, vis)
	case TypeString, TypeInt, TypeHex:
		val, write = e.stringValue(s, vis)
	case TypeUnknown:
		val = zeroValue(s.typ)
	}

	changed := vis != s.visibility || val != s.value || write != s.write
	s.visibility, s.value, s.write = vis, val, write
	return changed
}

func (e *Engine) boolValue(s *Symbol, vis Tristate) (Value, bool) {
	l := tableLookup{e.t}
	write := vis != No
	val := No

	if s.choice == NoChoice {
		if vis != No && s.user != nil {
			val = minTri(s.user.Tri, vis)
		} else {
			for _, d := range s.defaults {
				if cond := Eval(d.Cond, l); cond != No {
					val = minTri(Eval(d.Expr, l), cond)
					if val != No {
						write = true
					}
					break
				}
			}
			if weak := evalOr(s.weakRevDep, l); weak != No && Eval(s.directDep, l) != No {
				val = maxTri(val, weak)
				write = true
			}
		}

		if rev := evalOr(s.revDep, l); rev != No {
			if Eval(s.directDep, l) < rev {
				slog.Debug("symbol selected despite unmet dependencies", "symbol", s.name)
			}
			val = maxTri(val, rev)
			write = true
		}

		if val == Mod && (e.effectiveType(s.typ) == TypeBool || evalOr(s.weakRevDep, l) == Yes) {
			val = Yes
		}
		return triValue(s.typ, val), write
	}

	c := e.t.choices[s.choice]
	switch {
	case vis == Yes:
		if c.selection == s.id {
			val = Yes
		}
	case vis != No && s.user != nil && s.user.Tri != No:
		val = Mod
	}
	return triValue(s.typ, val), write
}

func (e *Engine) stringValue(s *Symbol, vis Tristate) (Value, bool) {
	l := tableLookup{e.t}
	write := vis != No
	low, high, hasRange := e.activeRange(s)

	val := ""
	useDefaults := true
	if vis != No && s.user != nil {
		val = s.user.Str
		useDefaults = false
		if hasRange {
			if n, ok := parseNumber(s.typ, val); ok && (n < low || n > high) {
				slog.Debug("user value out of range, using defaults",
					"symbol", s.name, "value", val, "low", low, "high", high)
				useDefaults = true
			}
		}
	}

	if useDefaults {
		val = ""
		for _, d := range s.defaults {
			if Eval(d.Cond, l) != No {
				write = true
				val = StringValue(d.Expr, l)
				break
			}
		}
		if hasRange {
			val = clamp(s.typ, val, low, high)
		}
	}
	return Value{Type: s.typ, Str: val}, write
}

// activeRange returns the bounds of the first range whose condition holds.
func (e *Engine) activeRange(s *Symbol) (int64, int64, bool) {
	if !s.typ.IsNumeric() {
		return 0, 0, false
	}
	l := tableLookup{e.t}
	for _, r := range s.ranges {
		if Eval(r.Cond, l) == No {
			continue
		}
		low, lok := parseNumber(s.typ, StringValue(r.Low, l))
		high, hok := parseNumber(s.typ, StringValue(r.High, l))
		if !lok || !hok {
			return 0, 0, false
		}
		return low, high, true
	}
	return 0, 0, false
}

func parseNumber(t Type, s string) (int64, bool) {
	if t == TypeHex {
		n, err := parseHex(s)
		return n, err == nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func formatNumber(t Type, n int64) string {
	if t == TypeHex {
		return formatHex(n)
	}
	return strconv.FormatInt(n, 10)
}

// clamp forces a numeric default into [low, high]. An empty value counts
// as zero but stays empty when zero is in range.
func clamp(t Type, val string, low, high int64) string {
	n := int64(0)
	if val != "" {
		var ok bool
		if n, ok = parseNumber(t, val); !ok {
			return val
		}
	}
	switch {
	case n < low:
		return formatNumber(t, low)
	case n > high:
		return formatNumber(t, high)
	default:
		return val
	}
}

// updateChoice recomputes visibility, mode and selection.
func (e *Engine) updateChoice(c *Choice) bool {
	vis := e.nodesVisibility(c.nodes)
	if vis == Mod && e.effectiveType(c.typ) != TypeTristate {
		vis = Yes
	}

	base := Mod
	if c.optional {
		base = No
	}
	base = maxTri(base, e.userMode(c))
	mode := minTri(base, vis)
	if mode == Mod && e.effectiveType(c.typ) != TypeTristate {
		mode = Yes
	}

	sel := NoSymbol
	if mode == Yes {
		sel = e.selectMember(c)
	}

	changed := vis != c.visibility || mode != c.mode || sel != c.selection
	c.visibility, c.mode, c.selection = vis, mode, sel
	return changed
}

// activeChoiceLookup reports one choice as fully active so that a
// member's own conditions can be read independently of the mode the
// member would request.
type activeChoiceLookup struct {
	tableLookup
	choice ChoiceID
}

func (l activeChoiceLookup) ChoiceMode(id ChoiceID) Tristate {
	if id == l.choice {
		return Yes
	}
	return l.tableLookup.ChoiceMode(id)
}

// userMode is the strongest mode requested by overlay assignments to
// members whose prompts are currently visible.
func (e *Engine) userMode(c *Choice) Tristate {
	l := activeChoiceLookup{tableLookup{e.t}, c.id}
	prompted := func(id SymbolID) bool {
		for _, n := range e.t.symbols[id].nodes {
			if Eval(e.t.nodes[n].promptVisibility(), l) != No {
				return true
			}
		}
		return false
	}
	for _, id := range c.userSelections {
		if prompted(id) {
			return Yes
		}
	}
	for _, id := range c.userModules {
		if prompted(id) {
			return Mod
		}
	}
	return No
}

// selectMember picks the first visible user selection, else the first
// default whose condition holds and whose member is visible, else the
// first visible member.
func (e *Engine) selectMember(c *Choice) SymbolID {
	for _, id := range c.userSelections {
		if e.t.symbols[id].visibility != No {
			return id
		}
	}
	l := tableLookup{e.t}
	for _, d := range c.defaults {
		if Eval(d.cond, l) != No && e.t.symbols[d.member].visibility != No {
			return d.member
		}
	}
	for _, m := range c.members {
		if e.t.symbols[m].visibility != No {
			return m
		}
	}
	return NoSymbol
}
