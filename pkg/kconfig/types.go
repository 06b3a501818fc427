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

// Type is the declared type of a symbol or choice.
type Type uint8

const (
	// TypeUnknown marks a symbol that was referenced but not yet given a type.
	TypeUnknown Type = iota
	TypeBool
	TypeTristate
	TypeString
	TypeInt
	TypeHex
)

var typeNames = map[Type]string{
	TypeUnknown:  "unknown",
	TypeBool:     "bool",
	TypeTristate: "tristate",
	TypeString:   "string",
	TypeInt:      "int",
	TypeHex:      "hex",
}

// String returns the model keyword for the type.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// IsBoolean reports whether values of the type are tristate-valued.
func (t Type) IsBoolean() bool {
	return t == TypeBool || t == TypeTristate
}

// IsNumeric reports whether the type is Int or Hex.
func (t Type) IsNumeric() bool {
	return t == TypeInt || t == TypeHex
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// typeKeywords maps declaration keywords to types. "boolean" is a legacy
// spelling still found in older models.
var typeKeywords = map[string]Type{
	"bool":     TypeBool,
	"boolean":  TypeBool,
	"tristate": TypeTristate,
	"string":   TypeString,
	"int":      TypeInt,
	"hex":      TypeHex,
}

// Tristate is the three-valued logic domain of the expression language.
type Tristate uint8

const (
	No  Tristate = 0
	Mod Tristate = 1
	Yes Tristate = 2
)

// String returns "n", "m" or "y".
func (t Tristate) String() string {
	switch t {
	case No:
		return "n"
	case Mod:
		return "m"
	default:
		return "y"
	}
}

// ParseTristate parses "n", "m" or "y".
func ParseTristate(s string) (Tristate, bool) {
	switch s {
	case "n":
		return No, true
	case "m":
		return Mod, true
	case "y":
		return Yes, true
	default:
		return No, false
	}
}

func minTri(a, b Tristate) Tristate {
	if a < b {
		return a
	}
	return b
}

func maxTri(a, b Tristate) Tristate {
	if a > b {
		return a
	}
	return b
}

// Value is the current value of a symbol. Tri is meaningful for Bool and
// Tristate, Str holds the textual form for every type.
type Value struct {
	Type Type
	Tri  Tristate
	Str  string
}

func zeroValue(t Type) Value {
	if t.IsBoolean() {
		return Value{Type: t, Tri: No, Str: No.String()}
	}
	return Value{Type: t}
}

func triValue(t Type, v Tristate) Value {
	return Value{Type: t, Tri: v, Str: v.String()}
}

// Typed converts the value to its JSON-compatible form: bool for Bool and
// Tristate, int64 for Int and Hex, string for String. ok is false when a
// numeric value is empty or malformed.
func (v Value) Typed() (any, bool) {
	switch v.Type {
	case TypeBool, TypeTristate:
		return v.Tri != No, true
	case TypeInt:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		return n, err == nil
	case TypeHex:
		n, err := parseHex(v.Str)
		return n, err == nil
	case TypeString:
		return v.Str, true
	case TypeUnknown:
		return nil, false
	}
	return nil, false
}

func parseHex(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseInt(s, 16, 64)
	if neg {
		n = -n
	}
	return n, err
}

func formatHex(n int64) string {
	if n < 0 {
		return "-0x" + strconv.FormatInt(-n, 16)
	}
	return "0x" + strconv.FormatInt(n, 16)
}

// validLiteral reports whether s is an acceptable textual value for t.
func validLiteral(t Type, s string) bool {
	switch t {
	case TypeBool:
		return s == "y" || s == "n"
	case TypeTristate:
		_, ok := ParseTristate(s)
		return ok
	case TypeInt:
		_, err := strconv.ParseInt(s, 10, 64)
		return err == nil
	case TypeHex:
		_, err := parseHex(s)
		return err == nil
	case TypeString:
		return true
	case TypeUnknown:
		return false
	}
	return false
}

// numericValue interprets a symbol value as a number for comparisons.
// Bool and Tristate compare by their tristate value, Int and Hex in their
// own base, everything else as decimal or, with an explicit 0x prefix,
// hexadecimal.
func numericValue(v Value) (int64, bool) {
	switch v.Type {
	case TypeBool, TypeTristate:
		return int64(v.Tri), true
	case TypeInt:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		return n, err == nil
	case TypeHex:
		n, err := parseHex(v.Str)
		return n, err == nil
	case TypeString, TypeUnknown:
		digits := strings.TrimPrefix(v.Str, "-")
		if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
			n, err := parseHex(v.Str)
			return n, err == nil
		}
		n, err := strconv.ParseInt(v.Str, 10, 64)
		return n, err == nil
	}
	return 0, false
}
