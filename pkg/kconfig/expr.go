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
	"strconv"
	"strings"
)

// Lookup supplies symbol values to the evaluator.
type Lookup interface {
	// Value returns the current value of the symbol.
	Value(id SymbolID) Value
	// ChoiceMode returns the current mode of the choice.
	ChoiceMode(id ChoiceID) Tristate
}

// Expr is an immutable node of a dependency or default expression.
// The set of implementations is closed: *SymbolRef, *Const, *ChoiceRef,
// *Not, *And, *Or and *Comparison.
type Expr interface {
	fmt.Stringer
	eval(l Lookup) Tristate
	value(l Lookup) Value
}

// SymbolRef refers to a symbol by arena index.
type SymbolRef struct {
	ID   SymbolID
	Name string
}

// Const is a literal: y, m, n, a number, or a quoted string.
type Const struct {
	Text   string
	Quoted bool
}

// ChoiceRef evaluates to the mode of a choice. It only appears in the
// dependencies the parser derives for choice members.
type ChoiceRef struct {
	ID ChoiceID
}

// Not is logical negation: 2 - v.
type Not struct {
	X Expr
}

// And is the minimum of both operands.
type And struct {
	X, Y Expr
}

// Or is the maximum of both operands.
type Or struct {
	X, Y Expr
}

// CompareOp is a relational operator.
type CompareOp uint8

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

var compareOps = map[string]CompareOp{
	"=":  OpEqual,
	"!=": OpNotEqual,
	"<":  OpLess,
	"<=": OpLessEqual,
	">":  OpGreater,
	">=": OpGreaterEqual,
}

func (op CompareOp) String() string {
	for s, o := range compareOps {
		if o == op {
			return s
		}
	}
	return "?"
}

// Comparison relates the values of two operands.
type Comparison struct {
	Op   CompareOp
	X, Y Expr
}

// Eval evaluates e against l. A nil expression is an absent condition and
// evaluates to y.
func Eval(e Expr, l Lookup) Tristate {
	if e == nil {
		return Yes
	}
	return e.eval(l)
}

// StringValue returns the textual value an expression contributes as a
// default for String, Int or Hex symbols.
func StringValue(e Expr, l Lookup) string {
	if e == nil {
		return ""
	}
	return e.value(l).Str
}

func (r *SymbolRef) eval(l Lookup) Tristate {
	v := l.Value(r.ID)
	if v.Type.IsBoolean() {
		return v.Tri
	}
	return No
}

func (r *SymbolRef) value(l Lookup) Value { return l.Value(r.ID) }

func (r *SymbolRef) String() string { return r.Name }

func (c *Const) eval(Lookup) Tristate {
	if t, ok := ParseTristate(c.Text); ok {
		return t
	}
	return No
}

func (c *Const) value(Lookup) Value {
	if t, ok := ParseTristate(c.Text); ok {
		return triValue(TypeTristate, t)
	}
	return Value{Type: TypeUnknown, Str: c.Text}
}

func (c *Const) String() string {
	if c.Quoted {
		return strconv.Quote(c.Text)
	}
	return c.Text
}

func (c *ChoiceRef) eval(l Lookup) Tristate { return l.ChoiceMode(c.ID) }

func (c *ChoiceRef) value(l Lookup) Value { return triValue(TypeTristate, c.eval(l)) }

func (c *ChoiceRef) String() string { return fmt.Sprintf("<choice %d>", c.ID) }

func (n *Not) eval(l Lookup) Tristate { return Yes - n.X.eval(l) }

func (n *Not) value(l Lookup) Value { return triValue(TypeTristate, n.eval(l)) }

func (n *Not) String() string { return "!" + wrap(n.X) }

func (a *And) eval(l Lookup) Tristate {
	x := a.X.eval(l)
	if x == No {
		return No
	}
	return minTri(x, a.Y.eval(l))
}

func (a *And) value(l Lookup) Value { return triValue(TypeTristate, a.eval(l)) }

func (a *And) String() string { return wrap(a.X) + " && " + wrap(a.Y) }

func (o *Or) eval(l Lookup) Tristate {
	x := o.X.eval(l)
	if x == Yes {
		return Yes
	}
	return maxTri(x, o.Y.eval(l))
}

func (o *Or) value(l Lookup) Value { return triValue(TypeTristate, o.eval(l)) }

func (o *Or) String() string { return wrap(o.X) + " || " + wrap(o.Y) }

func (c *Comparison) eval(l Lookup) Tristate {
	x, y := c.X.value(l), c.Y.value(l)

	var cmp int
	xn, xok := numericValue(x)
	yn, yok := numericValue(y)
	if xok && yok {
		switch {
		case xn < yn:
			cmp = -1
		case xn > yn:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(x.Str, y.Str)
	}

	var ok bool
	switch c.Op {
	case OpEqual:
		ok = cmp == 0
	case OpNotEqual:
		ok = cmp != 0
	case OpLess:
		ok = cmp < 0
	case OpLessEqual:
		ok = cmp <= 0
	case OpGreater:
		ok = cmp > 0
	case OpGreaterEqual:
		ok = cmp >= 0
	}
	if ok {
		return Yes
	}
	return No
}

func (c *Comparison) value(l Lookup) Value { return triValue(TypeTristate, c.eval(l)) }

func (c *Comparison) String() string {
	return c.X.String() + " " + c.Op.String() + " " + c.Y.String()
}

func wrap(e Expr) string {
	switch e.(type) {
	case *And, *Or:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}

// andExpr joins two conditions, treating nil as y.
func andExpr(x, y Expr) Expr {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	default:
		return &And{X: x, Y: y}
	}
}

// orExpr joins two conditions, treating nil as n.
func orExpr(x, y Expr) Expr {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	default:
		return &Or{X: x, Y: y}
	}
}

// evalOr evaluates an OR accumulator where nil means n.
func evalOr(e Expr, l Lookup) Tristate {
	if e == nil {
		return No
	}
	return e.eval(l)
}

// Symbols calls fn for every symbol referenced by e.
func Symbols(e Expr, fn func(*SymbolRef)) {
	switch x := e.(type) {
	case *SymbolRef:
		fn(x)
	case *Not:
		Symbols(x.X, fn)
	case *And:
		Symbols(x.X, fn)
		Symbols(x.Y, fn)
	case *Or:
		Symbols(x.X, fn)
		Symbols(x.Y, fn)
	case *Comparison:
		Symbols(x.X, fn)
		Symbols(x.Y, fn)
	case *Const, *ChoiceRef, nil:
	}
}
