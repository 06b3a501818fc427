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
	"strings"
)

type tokenKind uint8

const (
	tokWord tokenKind = iota
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// srcLine is a logical line: physical lines joined on trailing backslashes.
// num is the number of the first physical line.
type srcLine struct {
	num  int
	text string
}

func splitLines(src []byte) []srcLine {
	physical := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	lines := make([]srcLine, 0, len(physical))
	for i := 0; i < len(physical); i++ {
		start := i
		text := physical[i]
		for strings.HasSuffix(text, "\\") && i+1 < len(physical) {
			i++
			text = strings.TrimSuffix(text, "\\") + physical[i]
		}
		lines = append(lines, srcLine{num: start + 1, text: text})
	}
	return lines
}

func isWordByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '-', c == '.', c == '/', c == '$':
		return true
	}
	return false
}

var twoCharOps = []string{"&&", "||", "!=", "<=", ">="}

// tokenize splits a logical line into tokens, dropping a trailing comment.
func tokenize(text string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			return toks, nil
		case c == '"' || c == '\'':
			s, n, err := scanQuoted(text[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s})
			i += n
		case isWordByte(c):
			j := i
			for j < len(text) && isWordByte(text[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: text[i:j]})
			i = j
		default:
			op := ""
			for _, o := range twoCharOps {
				if strings.HasPrefix(text[i:], o) {
					op = o
					break
				}
			}
			if op == "" {
				switch c {
				case '!', '=', '<', '>', '(', ')':
					op = string(c)
				default:
					return nil, fmt.Errorf("unexpected character %q", c)
				}
			}
			toks = append(toks, token{kind: tokOp, text: op})
			i += len(op)
		}
	}
	return toks, nil
}

// scanQuoted reads a quoted string starting at s[0], returning the
// unescaped contents and the number of bytes consumed.
func scanQuoted(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

// indentation returns the width of the leading whitespace of s, with tabs
// advancing to the next multiple of eight.
func indentation(s string) int {
	col := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			col++
		case '\t':
			col = (col/8 + 1) * 8
		default:
			return col
		}
	}
	return col
}

// dedent removes up to width columns of leading whitespace.
func dedent(s string, width int) string {
	col := 0
	i := 0
	for i < len(s) && col < width {
		switch s[i] {
		case ' ':
			col++
		case '\t':
			next := (col/8 + 1) * 8
			if next > width {
				return strings.Repeat(" ", next-width) + s[i+1:]
			}
			col = next
		default:
			return s[i:]
		}
		i++
	}
	return s[i:]
}
