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
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/NVIDIA/yafct/pkg/errors"
)

var numberLiteral = regexp.MustCompile(`^-?(0[xX][0-9a-fA-F]+|[0-9]+)$`)

func parseError(file string, line int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return errors.NewWithContext(errors.ErrCodeParse,
		fmt.Sprintf("%s:%d: %s", file, line, msg),
		map[string]any{"file": file, "line": line})
}

// reference records where a symbol name was used, for the undeclared check.
type reference struct {
	sym  SymbolID
	file string
	line int
}

// reverseDep is a pending select or imply, applied once all types are known.
type reverseDep struct {
	target   SymbolID
	selector SymbolID
	cond     Expr
	weak     bool
	file     string
	line     int
}

// block is the context entries inherit from their enclosing constructs.
type block struct {
	parent  NodeID
	dep     Expr
	visible Expr
	choice  ChoiceID
}

type parser struct {
	t    *Table
	opts *options

	refs          []reference
	reverse       []reverseDep
	typeLines     map[SymbolID]reference
	choicesByName map[string]*Choice
	stack         []string

	modules  SymbolID
	mainmenu string
}

func newParser(t *Table, o *options) *parser {
	return &parser{
		t:             t,
		opts:          o,
		typeLines:     make(map[SymbolID]reference),
		choicesByName: make(map[string]*Choice),
		modules:       NoSymbol,
	}
}

func (p *parser) parseFile(name string, src []byte, b block) error {
	for _, f := range p.stack {
		if f == name {
			return parseError(name, 1, "recursive inclusion: %s", strings.Join(append(p.stack, name), " -> "))
		}
	}
	p.stack = append(p.stack, name)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	fp := &fileParser{
		parser: p,
		file:   name,
		dir:    filepath.Dir(name),
		lines:  splitLines(src),
	}
	return fp.parseBlock(b, "", 0)
}

// fileParser reads the logical lines of one model file.
type fileParser struct {
	*parser
	file  string
	dir   string
	lines []srcLine
	pos   int
	prev  int
}

// next returns the tokens of the next non-empty line.
func (fp *fileParser) next() (srcLine, []token, bool, error) {
	fp.prev = fp.pos
	for fp.pos < len(fp.lines) {
		ln := fp.lines[fp.pos]
		fp.pos++
		toks, err := tokenize(ln.text)
		if err != nil {
			return ln, nil, false, parseError(fp.file, ln.num, "%v", err)
		}
		if len(toks) > 0 {
			return ln, toks, true, nil
		}
	}
	return srcLine{}, nil, false, nil
}

func (fp *fileParser) backup() { fp.pos = fp.prev }

func (fp *fileParser) errorf(ln srcLine, format string, args ...any) error {
	return parseError(fp.file, ln.num, format, args...)
}

func (fp *fileParser) parseBlock(b block, end string, openLine int) error {
	for {
		ln, toks, ok, err := fp.next()
		if err != nil {
			return err
		}
		if !ok {
			if end != "" {
				return parseError(fp.file, openLine, "missing %s", end)
			}
			return nil
		}
		kw := toks[0]
		if kw.kind != tokWord {
			return fp.errorf(ln, "expected a directive, got %q", kw.text)
		}

		switch kw.text {
		case end:
			if len(toks) != 1 {
				return fp.errorf(ln, "unexpected tokens after %s", end)
			}
			return nil
		case "endmenu", "endchoice", "endif":
			return fp.errorf(ln, "unexpected %s", kw.text)
		case "config", "menuconfig":
			err = fp.parseConfig(b, ln, toks)
		case "choice":
			err = fp.parseChoice(b, ln, toks)
		case "menu":
			err = fp.parseMenu(b, ln, toks)
		case "comment":
			err = fp.parseComment(b, ln, toks)
		case "if":
			var cond Expr
			if cond, err = fp.exprOnly(ln, toks[1:]); err == nil {
				inner := b
				inner.dep = andExpr(b.dep, cond)
				err = fp.parseBlock(inner, "endif", ln.num)
			}
		case "mainmenu":
			err = fp.parseMainmenu(ln, toks)
		case "source", "rsource", "osource", "orsource":
			err = fp.parseSource(b, ln, toks)
		default:
			err = fp.errorf(ln, "unknown directive %q", kw.text)
		}
		if err != nil {
			return err
		}
	}
}

// entry accumulates the properties of one config, choice, menu or comment
// until the declaring node's dependencies are known.
type entry struct {
	node   *MenuNode
	sym    *Symbol
	choice *Choice

	dep       Expr
	visibleIf Expr
	defaults  []Conditional
	ranges    []Range
	reverse   []reverseDep
	choiceDef []choiceDefault
}

func (fp *fileParser) parseConfig(b block, ln srcLine, toks []token) error {
	if len(toks) != 2 || toks[1].kind != tokWord {
		return fp.errorf(ln, "expected a symbol name after %s", toks[0].text)
	}
	name := toks[1].text
	if _, isConst := ParseTristate(name); isConst || numberLiteral.MatchString(name) {
		return fp.errorf(ln, "%q is not a valid symbol name", name)
	}

	sym := fp.t.intern(name)
	node := fp.t.newNode(NodeSymbol, b.parent, fp.file, ln.num)
	node.Symbol = sym.id
	sym.declared = true
	sym.nodes = append(sym.nodes, node.ID)

	if b.choice != NoChoice {
		if sym.choice != NoChoice && sym.choice != b.choice {
			return fp.errorf(ln, "symbol %s already belongs to another choice", name)
		}
		if sym.choice == NoChoice {
			sym.choice = b.choice
			c := fp.t.choices[b.choice]
			c.members = append(c.members, sym.id)
		}
	}

	e := &entry{node: node, sym: sym}
	if err := fp.parseProperties(e); err != nil {
		return err
	}

	node.Dep = andExpr(b.dep, e.dep)
	node.Visible = b.visible
	sym.directDep = orExpr(sym.directDep, node.Dep)
	for _, d := range e.defaults {
		sym.defaults = append(sym.defaults, Conditional{Expr: d.Expr, Cond: andExpr(d.Cond, node.Dep)})
	}
	for _, r := range e.ranges {
		sym.ranges = append(sym.ranges, Range{Low: r.Low, High: r.High, Cond: andExpr(r.Cond, node.Dep)})
	}
	for _, r := range e.reverse {
		r.cond = andExpr(r.cond, node.Dep)
		fp.reverse = append(fp.reverse, r)
	}
	if sym.help == "" {
		sym.help = node.Help
	}
	return nil
}

func (fp *fileParser) parseChoice(b block, ln srcLine, toks []token) error {
	name := ""
	switch {
	case len(toks) == 2 && toks[1].kind == tokWord:
		name = toks[1].text
	case len(toks) != 1:
		return fp.errorf(ln, "malformed choice")
	}

	c, ok := fp.choicesByName[name]
	if !ok || name == "" {
		c = fp.t.newChoice(name)
		if name != "" {
			fp.choicesByName[name] = c
		}
	}
	node := fp.t.newNode(NodeChoice, b.parent, fp.file, ln.num)
	node.Choice = c.id
	c.nodes = append(c.nodes, node.ID)

	e := &entry{node: node, choice: c}
	if err := fp.parseProperties(e); err != nil {
		return err
	}
	node.Dep = andExpr(b.dep, e.dep)
	node.Visible = b.visible
	for _, d := range e.choiceDef {
		c.defaults = append(c.defaults, choiceDefault{member: d.member, cond: andExpr(d.cond, node.Dep)})
	}

	inner := block{
		parent:  node.ID,
		dep:     andExpr(node.Dep, &ChoiceRef{ID: c.id}),
		visible: b.visible,
		choice:  c.id,
	}
	return fp.parseBlock(inner, "endchoice", ln.num)
}

func (fp *fileParser) parseMenu(b block, ln srcLine, toks []token) error {
	if len(toks) != 2 || toks[1].kind != tokString {
		return fp.errorf(ln, "expected a quoted title after menu")
	}
	node := fp.t.newNode(NodeMenu, b.parent, fp.file, ln.num)
	node.Prompt = toks[1].text
	node.prompted = true

	e := &entry{node: node}
	if err := fp.parseProperties(e); err != nil {
		return err
	}
	node.Dep = andExpr(b.dep, e.dep)
	node.Visible = b.visible

	inner := block{
		parent:  node.ID,
		dep:     node.Dep,
		visible: andExpr(b.visible, e.visibleIf),
		choice:  b.choice,
	}
	return fp.parseBlock(inner, "endmenu", ln.num)
}

func (fp *fileParser) parseComment(b block, ln srcLine, toks []token) error {
	if len(toks) != 2 || toks[1].kind != tokString {
		return fp.errorf(ln, "expected a quoted text after comment")
	}
	node := fp.t.newNode(NodeComment, b.parent, fp.file, ln.num)
	node.Prompt = toks[1].text
	node.prompted = true

	e := &entry{node: node}
	if err := fp.parseProperties(e); err != nil {
		return err
	}
	node.Dep = andExpr(b.dep, e.dep)
	node.Visible = b.visible
	return nil
}

func (fp *fileParser) parseMainmenu(ln srcLine, toks []token) error {
	if len(toks) != 2 || toks[1].kind != tokString {
		return fp.errorf(ln, "expected a quoted title after mainmenu")
	}
	fp.mainmenu = toks[1].text
	root := fp.t.nodes[fp.t.Root()]
	root.Prompt = toks[1].text
	root.prompted = true
	return nil
}

func (fp *fileParser) parseSource(b block, ln srcLine, toks []token) error {
	kind := toks[0].text
	if len(toks) != 2 || toks[1].kind != tokString {
		return fp.errorf(ln, "expected a quoted path after %s", kind)
	}
	optional := strings.HasPrefix(kind, "o")
	base := fp.opts.baseDir
	if strings.HasPrefix(strings.TrimPrefix(kind, "o"), "r") {
		base = fp.dir
	}

	paths, err := fp.opts.resolveInclude(base, toks[1].text)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeParse,
			fmt.Sprintf("%s:%d: cannot resolve %q", fp.file, ln.num, toks[1].text), err,
			map[string]any{"file": fp.file, "line": ln.num})
	}
	if len(paths) == 0 && !optional {
		return fp.errorf(ln, "%s %q matched no files", kind, toks[1].text)
	}

	for _, path := range paths {
		data, rerr := fp.opts.read(path)
		if rerr != nil {
			if optional && stderrors.Is(rerr, fs.ErrNotExist) {
				continue
			}
			return errors.WrapWithContext(errors.ErrCodeParse,
				fmt.Sprintf("%s:%d: cannot read %s", fp.file, ln.num, path), rerr,
				map[string]any{"file": fp.file, "line": ln.num})
		}
		slog.Debug("including model file", "from", fp.file, "path", path)
		if err := fp.parseFile(path, data, b); err != nil {
			return err
		}
	}
	return nil
}

// parseProperties consumes the option lines following an entry header.
// It stops, without consuming, at the first line that is not an option.
func (fp *fileParser) parseProperties(e *entry) error {
	for {
		ln, toks, ok, err := fp.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if toks[0].kind != tokWord {
			return fp.errorf(ln, "expected an option, got %q", toks[0].text)
		}
		handled, err := fp.parseProperty(e, ln, toks)
		if err != nil {
			return err
		}
		if !handled {
			fp.backup()
			return nil
		}
	}
}

func (fp *fileParser) parseProperty(e *entry, ln srcLine, toks []token) (bool, error) {
	kw := toks[0].text
	isSym := e.sym != nil
	isChoice := e.choice != nil

	if typ, ok := typeKeywords[kw]; ok && (isSym || isChoice) {
		if err := fp.setType(e, ln, typ); err != nil {
			return true, err
		}
		if len(toks) > 1 {
			return true, fp.parsePrompt(e, ln, toks[1:])
		}
		return true, nil
	}

	switch kw {
	case "def_bool", "def_tristate", "def_int", "def_hex", "def_string":
		if !isSym {
			return true, fp.errorf(ln, "%s is only valid for config entries", kw)
		}
		if err := fp.setType(e, ln, typeKeywords[strings.TrimPrefix(kw, "def_")]); err != nil {
			return true, err
		}
		value, cond, err := fp.exprAndCond(ln, toks[1:])
		if err != nil {
			return true, err
		}
		e.defaults = append(e.defaults, Conditional{Expr: value, Cond: cond})

	case "prompt":
		if e.node.Kind == NodeMenu || e.node.Kind == NodeComment {
			return false, nil
		}
		return true, fp.parsePrompt(e, ln, toks[1:])

	case "default":
		if isChoice {
			if len(toks) < 2 || toks[1].kind != tokWord {
				return true, fp.errorf(ln, "expected a symbol after default")
			}
			member := fp.ref(toks[1].text, ln)
			cond, err := fp.condTail(ln, toks[2:])
			if err != nil {
				return true, err
			}
			e.choiceDef = append(e.choiceDef, choiceDefault{member: member.id, cond: cond})
			return true, nil
		}
		if !isSym {
			return false, nil
		}
		value, cond, err := fp.exprAndCond(ln, toks[1:])
		if err != nil {
			return true, err
		}
		e.defaults = append(e.defaults, Conditional{Expr: value, Cond: cond})

	case "depends":
		if len(toks) < 3 || !toks[1].is(tokWord, "on") {
			return true, fp.errorf(ln, "expected 'depends on <expr>'")
		}
		dep, err := fp.exprOnly(ln, toks[2:])
		if err != nil {
			return true, err
		}
		e.dep = andExpr(e.dep, dep)

	case "visible":
		if e.node.Kind != NodeMenu {
			return true, fp.errorf(ln, "visible if is only valid for menus")
		}
		if len(toks) < 3 || !toks[1].is(tokWord, "if") {
			return true, fp.errorf(ln, "expected 'visible if <expr>'")
		}
		cond, err := fp.exprOnly(ln, toks[2:])
		if err != nil {
			return true, err
		}
		e.visibleIf = andExpr(e.visibleIf, cond)

	case "select", "imply":
		if !isSym {
			return true, fp.errorf(ln, "%s is only valid for config entries", kw)
		}
		if len(toks) < 2 || toks[1].kind != tokWord {
			return true, fp.errorf(ln, "expected a symbol after %s", kw)
		}
		target := fp.ref(toks[1].text, ln)
		cond, err := fp.condTail(ln, toks[2:])
		if err != nil {
			return true, err
		}
		e.reverse = append(e.reverse, reverseDep{
			target:   target.id,
			selector: e.sym.id,
			cond:     cond,
			weak:     kw == "imply",
			file:     fp.file,
			line:     ln.num,
		})

	case "range":
		if !isSym {
			return true, fp.errorf(ln, "range is only valid for config entries")
		}
		x := &exprParser{fp: fp, ln: ln, toks: toks[1:]}
		low, err := x.operand()
		if err != nil {
			return true, err
		}
		high, err := x.operand()
		if err != nil {
			return true, err
		}
		cond, err := fp.condTail(ln, x.toks[x.pos:])
		if err != nil {
			return true, err
		}
		e.ranges = append(e.ranges, Range{Low: low, High: high, Cond: cond})

	case "help", "---help---":
		if len(toks) != 1 {
			return true, fp.errorf(ln, "unexpected tokens after %s", kw)
		}
		e.node.Help = fp.readHelp()

	case "optional":
		if !isChoice {
			return true, fp.errorf(ln, "optional is only valid for choices")
		}
		e.choice.optional = true

	case "modules":
		if !isSym {
			return true, fp.errorf(ln, "modules is only valid for config entries")
		}
		fp.markModules(e.sym)

	case "option":
		if len(toks) < 2 || toks[1].kind != tokWord {
			return true, fp.errorf(ln, "expected an option name")
		}
		switch toks[1].text {
		case "modules":
			if isSym {
				fp.markModules(e.sym)
			}
		case "env", "defconfig_list", "allnoconfig_y":
			slog.Debug("ignoring option", "option", toks[1].text, "file", fp.file, "line", ln.num)
		default:
			return true, fp.errorf(ln, "unknown option %q", toks[1].text)
		}

	default:
		return false, nil
	}
	return true, nil
}

func (fp *fileParser) markModules(sym *Symbol) {
	sym.modules = true
	fp.modules = sym.id
}

func (fp *fileParser) setType(e *entry, ln srcLine, typ Type) error {
	if e.choice != nil {
		if e.choice.typ != TypeUnknown && e.choice.typ != typ {
			return fp.errorf(ln, "choice redeclared as %s (was %s)", typ, e.choice.typ)
		}
		e.choice.typ = typ
		return nil
	}
	sym := e.sym
	if sym.typ != TypeUnknown && sym.typ != typ {
		first := fp.typeLines[sym.id]
		return fp.errorf(ln, "symbol %s redeclared as %s (declared %s at %s:%d)",
			sym.name, typ, sym.typ, first.file, first.line)
	}
	if sym.typ == TypeUnknown {
		fp.typeLines[sym.id] = reference{sym: sym.id, file: fp.file, line: ln.num}
	}
	sym.typ = typ
	return nil
}

func (fp *fileParser) parsePrompt(e *entry, ln srcLine, toks []token) error {
	if len(toks) == 0 || toks[0].kind != tokString {
		return fp.errorf(ln, "expected a quoted prompt")
	}
	cond, err := fp.condTail(ln, toks[1:])
	if err != nil {
		return err
	}
	e.node.Prompt = toks[0].text
	e.node.PromptCond = cond
	e.node.prompted = true
	return nil
}

// readHelp consumes an indentation-delimited help block.
func (fp *fileParser) readHelp() string {
	var out []string
	indent := -1
	for fp.pos < len(fp.lines) {
		text := fp.lines[fp.pos].text
		if strings.TrimSpace(text) == "" {
			out = append(out, "")
			fp.pos++
			continue
		}
		ind := indentation(text)
		if indent < 0 {
			if ind == 0 {
				break
			}
			indent = ind
		}
		if ind < indent {
			break
		}
		out = append(out, strings.TrimRight(dedent(text, indent), " \t"))
		fp.pos++
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// ref interns a referenced symbol and records the use site.
func (fp *fileParser) ref(name string, ln srcLine) *Symbol {
	sym := fp.t.intern(name)
	fp.refs = append(fp.refs, reference{sym: sym.id, file: fp.file, line: ln.num})
	return sym
}

// exprOnly parses toks as a single expression with nothing trailing.
func (fp *fileParser) exprOnly(ln srcLine, toks []token) (Expr, error) {
	x := &exprParser{fp: fp, ln: ln, toks: toks}
	e, err := x.parse()
	if err != nil {
		return nil, err
	}
	if x.pos != len(toks) {
		return nil, fp.errorf(ln, "unexpected %q in expression", toks[x.pos].text)
	}
	return e, nil
}

// exprAndCond parses "<expr> [if <expr>]".
func (fp *fileParser) exprAndCond(ln srcLine, toks []token) (Expr, Expr, error) {
	x := &exprParser{fp: fp, ln: ln, toks: toks}
	e, err := x.parse()
	if err != nil {
		return nil, nil, err
	}
	cond, err := fp.condTail(ln, toks[x.pos:])
	return e, cond, err
}

// condTail parses an optional trailing "if <expr>".
func (fp *fileParser) condTail(ln srcLine, toks []token) (Expr, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	if !toks[0].is(tokWord, "if") {
		return nil, fp.errorf(ln, "unexpected %q", toks[0].text)
	}
	if len(toks) == 1 {
		return nil, fp.errorf(ln, "missing condition after if")
	}
	return fp.exprOnly(ln, toks[1:])
}

// exprParser is a recursive descent parser over one line's tokens.
// Precedence, loosest first: ||, &&, !, comparison.
type exprParser struct {
	fp   *fileParser
	ln   srcLine
	toks []token
	pos  int
}

func (x *exprParser) peek() (token, bool) {
	if x.pos >= len(x.toks) {
		return token{}, false
	}
	return x.toks[x.pos], true
}

func (x *exprParser) parse() (Expr, error) {
	left, err := x.and()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := x.peek()
		if !ok || !t.is(tokOp, "||") {
			return left, nil
		}
		x.pos++
		right, err := x.and()
		if err != nil {
			return nil, err
		}
		left = &Or{X: left, Y: right}
	}
}

func (x *exprParser) and() (Expr, error) {
	left, err := x.factor()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := x.peek()
		if !ok || !t.is(tokOp, "&&") {
			return left, nil
		}
		x.pos++
		right, err := x.factor()
		if err != nil {
			return nil, err
		}
		left = &And{X: left, Y: right}
	}
}

func (x *exprParser) factor() (Expr, error) {
	t, ok := x.peek()
	if !ok {
		return nil, x.fp.errorf(x.ln, "unexpected end of expression")
	}
	switch {
	case t.is(tokOp, "!"):
		x.pos++
		inner, err := x.factor()
		if err != nil {
			return nil, err
		}
		return &Not{X: inner}, nil
	case t.is(tokOp, "("):
		x.pos++
		inner, err := x.parse()
		if err != nil {
			return nil, err
		}
		closing, ok := x.peek()
		if !ok || !closing.is(tokOp, ")") {
			return nil, x.fp.errorf(x.ln, "missing ')'")
		}
		x.pos++
		return inner, nil
	}

	left, err := x.operand()
	if err != nil {
		return nil, err
	}
	if t, ok := x.peek(); ok && t.kind == tokOp {
		if op, isCmp := compareOps[t.text]; isCmp {
			x.pos++
			right, err := x.operand()
			if err != nil {
				return nil, err
			}
			return &Comparison{Op: op, X: left, Y: right}, nil
		}
	}
	return left, nil
}

func (x *exprParser) operand() (Expr, error) {
	t, ok := x.peek()
	if !ok {
		return nil, x.fp.errorf(x.ln, "unexpected end of expression")
	}
	x.pos++
	switch t.kind {
	case tokString:
		return &Const{Text: t.text, Quoted: true}, nil
	case tokWord:
		if _, isTri := ParseTristate(t.text); isTri || numberLiteral.MatchString(t.text) {
			return &Const{Text: t.text}, nil
		}
		sym := x.fp.ref(t.text, x.ln)
		return &SymbolRef{ID: sym.id, Name: sym.name}, nil
	default:
		return nil, x.fp.errorf(x.ln, "unexpected %q in expression", t.text)
	}
}

// finalize validates the complete model and derives the cross-entry
// dependencies that need every declaration.
func (p *parser) finalize() error {
	for _, r := range p.refs {
		if !p.t.symbols[r.sym].declared {
			return parseError(r.file, r.line, "reference to undeclared symbol %s", p.t.symbols[r.sym].name)
		}
	}

	for _, c := range p.t.choices {
		for _, m := range c.members {
			if c.typ == TypeUnknown && p.t.symbols[m].typ != TypeUnknown {
				c.typ = p.t.symbols[m].typ
			}
		}
		for _, m := range c.members {
			if p.t.symbols[m].typ == TypeUnknown {
				p.t.symbols[m].typ = c.typ
			}
		}
		for _, d := range c.defaults {
			if p.t.symbols[d.member].choice != c.id {
				n := p.t.nodes[c.nodes[0]]
				return parseError(n.File, n.Line, "default %s is not a member of the choice", p.t.symbols[d.member].name)
			}
		}
	}

	for _, s := range p.t.symbols {
		if s.declared && s.typ == TypeUnknown {
			n := p.t.nodes[s.nodes[0]]
			return parseError(n.File, n.Line, "symbol %s has no type", s.name)
		}
		s.value = zeroValue(s.typ)
	}

	for _, r := range p.reverse {
		target, selector := p.t.symbols[r.target], p.t.symbols[r.selector]
		if !target.typ.IsBoolean() || !selector.typ.IsBoolean() {
			slog.Warn("ignoring select/imply between non-boolean symbols",
				"selector", selector.name, "target", target.name, "file", r.file, "line", r.line)
			continue
		}
		term := andExpr(&SymbolRef{ID: selector.id, Name: selector.name}, r.cond)
		if r.weak {
			target.weakRevDep = orExpr(target.weakRevDep, term)
		} else {
			target.revDep = orExpr(target.revDep, term)
		}
	}

	if p.modules == NoSymbol {
		if s, ok := p.t.Lookup("MODULES"); ok && s.typ.IsBoolean() {
			p.modules = s.id
		}
	}
	return nil
}
