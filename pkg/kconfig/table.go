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

// SymbolID indexes the symbol arena of a Table.
type SymbolID int32

// ChoiceID indexes the choice arena of a Table.
type ChoiceID int32

// NodeID indexes the menu node arena of a Table.
type NodeID int32

const (
	NoSymbol SymbolID = -1
	NoChoice ChoiceID = -1
	NoNode   NodeID   = -1
)

// Conditional pairs an expression with the condition under which it applies.
// Cond already includes the dependencies of the declaring node.
type Conditional struct {
	Expr Expr
	Cond Expr
}

// Range bounds an Int or Hex symbol while Cond holds.
type Range struct {
	Low, High Expr
	Cond      Expr
}

// Symbol is a named configuration item. Declarations are fixed after
// parsing; the resolution state is owned by the Engine.
type Symbol struct {
	id       SymbolID
	name     string
	typ      Type
	declared bool
	modules  bool
	help     string

	defaults []Conditional
	ranges   []Range
	nodes    []NodeID
	choice   ChoiceID

	// directDep is the OR of the dependencies of every declaring node.
	directDep Expr
	// revDep collects "selector && cond" for every select of this symbol.
	revDep Expr
	// weakRevDep collects the same for imply.
	weakRevDep Expr

	// resolution state
	visibility Tristate
	value      Value
	write      bool

	user    *Value
	userSet bool
}

// ID returns the arena index of the symbol.
func (s *Symbol) ID() SymbolID { return s.id }

// Name returns the symbol name without any config prefix.
func (s *Symbol) Name() string { return s.name }

// Type returns the declared type.
func (s *Symbol) Type() Type { return s.typ }

// Help returns the help text of the first node that declares one.
func (s *Symbol) Help() string { return s.help }

// Choice returns the choice the symbol belongs to, or NoChoice.
func (s *Symbol) Choice() ChoiceID { return s.choice }

// Nodes returns the menu nodes declaring the symbol.
func (s *Symbol) Nodes() []NodeID { return append([]NodeID(nil), s.nodes...) }

// Visibility returns the resolved visibility.
func (s *Symbol) Visibility() Tristate { return s.visibility }

// Value returns the resolved value.
func (s *Symbol) Value() Value { return s.value }

// HasConfigString reports whether the symbol would appear in a persisted
// configuration.
func (s *Symbol) HasConfigString() bool { return s.write }

// UserAssigned reports whether an override currently determines the value.
func (s *Symbol) UserAssigned() bool {
	return s.userSet && s.visibility != No
}

// Choice is a group of mutually exclusive symbols.
type Choice struct {
	id       ChoiceID
	name     string
	typ      Type
	optional bool
	defaults []choiceDefault
	members  []SymbolID
	nodes    []NodeID

	// userSelections and userModules hold members assigned y and m by
	// overlays, in assignment order.
	userSelections []SymbolID
	userModules    []SymbolID

	visibility Tristate
	mode       Tristate
	selection  SymbolID
}

type choiceDefault struct {
	member SymbolID
	cond   Expr
}

// ID returns the arena index of the choice.
func (c *Choice) ID() ChoiceID { return c.id }

// Name returns the optional choice name.
func (c *Choice) Name() string { return c.name }

// Type returns the choice type, taken from its first typed member when
// not declared.
func (c *Choice) Type() Type { return c.typ }

// Optional reports whether the choice may have no selection.
func (c *Choice) Optional() bool { return c.optional }

// Members returns the member symbols in declaration order.
func (c *Choice) Members() []SymbolID { return append([]SymbolID(nil), c.members...) }

// Visibility returns the resolved visibility.
func (c *Choice) Visibility() Tristate { return c.visibility }

// Mode returns the resolved mode: y for an exclusive selection, m when
// several tristate members may be modules, n when inactive.
func (c *Choice) Mode() Tristate { return c.mode }

// Selection returns the selected member, or NoSymbol.
func (c *Choice) Selection() SymbolID { return c.selection }

// NodeKind classifies a menu node.
type NodeKind uint8

const (
	NodeRoot NodeKind = iota
	NodeSymbol
	NodeChoice
	NodeMenu
	NodeComment
)

// MenuNode is one entry of the menu tree.
type MenuNode struct {
	ID     NodeID
	Kind   NodeKind
	Symbol SymbolID
	Choice ChoiceID

	Prompt     string
	PromptCond Expr
	prompted   bool
	// Dep is the aggregate dependency: own "depends on" plus enclosing
	// menus, if blocks and choices.
	Dep Expr
	// Visible is the aggregate "visible if" of enclosing menus.
	Visible Expr
	Help    string

	Parent, FirstChild, Next NodeID
	lastChild                NodeID

	File string
	Line int
}

// HasPrompt reports whether the node carries a prompt.
func (n *MenuNode) HasPrompt() bool { return n.prompted }

// promptVisibility is the expression whose value is the node's
// visibility. Nodes without a prompt are never visible.
func (n *MenuNode) promptVisibility() Expr {
	if !n.prompted {
		return &Const{Text: "n"}
	}
	return andExpr(andExpr(n.PromptCond, n.Dep), n.Visible)
}

// Table is the arena holding all declarations of one model.
type Table struct {
	symbols []*Symbol
	byName  map[string]SymbolID
	choices []*Choice
	nodes   []*MenuNode
}

func newTable() *Table {
	t := &Table{byName: make(map[string]SymbolID)}
	t.newNode(NodeRoot, NoNode, "", 0)
	return t
}

// Root returns the root node id.
func (t *Table) Root() NodeID { return 0 }

// Node returns the node with the given id.
func (t *Table) Node(id NodeID) *MenuNode { return t.nodes[id] }

// Symbol returns the symbol with the given id.
func (t *Table) Symbol(id SymbolID) *Symbol { return t.symbols[id] }

// Choice returns the choice with the given id.
func (t *Table) Choice(id ChoiceID) *Choice { return t.choices[id] }

// Lookup finds a declared symbol by name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	id, ok := t.byName[name]
	if !ok || !t.symbols[id].declared {
		return nil, false
	}
	return t.symbols[id], true
}

// intern returns the symbol for name, creating an undeclared entry on first use.
func (t *Table) intern(name string) *Symbol {
	if id, ok := t.byName[name]; ok {
		return t.symbols[id]
	}
	s := &Symbol{
		id:     SymbolID(len(t.symbols)),
		name:   name,
		choice: NoChoice,
	}
	t.symbols = append(t.symbols, s)
	t.byName[name] = s.id
	return s
}

func (t *Table) newChoice(name string) *Choice {
	c := &Choice{
		id:        ChoiceID(len(t.choices)),
		name:      name,
		selection: NoSymbol,
	}
	t.choices = append(t.choices, c)
	return c
}

// newNode appends a node as the last child of parent.
func (t *Table) newNode(kind NodeKind, parent NodeID, file string, line int) *MenuNode {
	n := &MenuNode{
		ID:         NodeID(len(t.nodes)),
		Kind:       kind,
		Symbol:     NoSymbol,
		Choice:     NoChoice,
		Parent:     parent,
		FirstChild: NoNode,
		Next:       NoNode,
		lastChild:  NoNode,
		File:       file,
		Line:       line,
	}
	t.nodes = append(t.nodes, n)
	if parent != NoNode {
		p := t.nodes[parent]
		if p.lastChild == NoNode {
			p.FirstChild = n.ID
		} else {
			t.nodes[p.lastChild].Next = n.ID
		}
		p.lastChild = n.ID
	}
	return n
}

// Walk visits nodes in pre-order, skipping the root. Returning false from
// fn stops the walk.
func (t *Table) Walk(fn func(*MenuNode) bool) {
	id := t.nodes[0].FirstChild
	for id != NoNode {
		n := t.nodes[id]
		if !fn(n) {
			return
		}
		if n.FirstChild != NoNode {
			id = n.FirstChild
			continue
		}
		for id != NoNode && t.nodes[id].Next == NoNode {
			id = t.nodes[id].Parent
			if id == 0 {
				return
			}
		}
		if id != NoNode {
			id = t.nodes[id].Next
		}
	}
}
