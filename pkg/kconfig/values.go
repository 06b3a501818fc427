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
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Entry is one resolved name with its typed value.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Type  Type   `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// Values is the resolved mapping from symbol name to typed value. Entries
// keep declaration order; encoders preserve it.
type Values struct {
	entries []Entry
	index   map[string]int
}

// NewValues returns an empty mapping.
func NewValues() *Values {
	return &Values{index: make(map[string]int)}
}

// Set adds or replaces an entry. New names are appended.
func (v *Values) Set(name string, typ Type, value any) {
	if v.index == nil {
		v.index = make(map[string]int)
	}
	if i, ok := v.index[name]; ok {
		v.entries[i] = Entry{Name: name, Type: typ, Value: value}
		return
	}
	v.index[name] = len(v.entries)
	v.entries = append(v.entries, Entry{Name: name, Type: typ, Value: value})
}

// Get returns the typed value for name.
func (v *Values) Get(name string) (any, bool) {
	i, ok := v.index[name]
	if !ok {
		return nil, false
	}
	return v.entries[i].Value, true
}

// Lookup returns the full entry for name.
func (v *Values) Lookup(name string) (Entry, bool) {
	i, ok := v.index[name]
	if !ok {
		return Entry{}, false
	}
	return v.entries[i], true
}

// Len returns the number of entries.
func (v *Values) Len() int { return len(v.entries) }

// Keys returns the names in order.
func (v *Values) Keys() []string {
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.Name
	}
	return keys
}

// Entries returns a copy of the entries in order.
func (v *Values) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

// Map returns the entries as an unordered map.
func (v *Values) Map() map[string]any {
	m := make(map[string]any, len(v.entries))
	for _, e := range v.entries {
		m[e.Name] = e.Value
	}
	return m
}

// MarshalJSON encodes the mapping as a JSON object in entry order.
func (v *Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range v.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", e.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the mapping as a YAML mapping in entry order.
func (v *Values) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range v.entries {
		val := &yaml.Node{}
		if err := val.Encode(e.Value); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", e.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			val)
	}
	return node, nil
}

// Equal reports whether both mappings hold the same entries in the same order.
func (v *Values) Equal(o *Values) bool {
	if v.Len() != o.Len() {
		return false
	}
	for i, e := range v.entries {
		f := o.entries[i]
		if e.Name != f.Name || e.Type != f.Type || e.Value != f.Value {
			return false
		}
	}
	return true
}

// TableRows returns name/value pairs for tabular output.
func (v *Values) TableRows() [][2]string {
	rows := make([][2]string, len(v.entries))
	for i, e := range v.entries {
		rows[i] = [2]string{e.Name, e.display()}
	}
	return rows
}

// display renders the value the way a .config would spell it, except that
// booleans print as true/false.
func (e Entry) display() string {
	switch x := e.Value.(type) {
	case nil:
		return "-"
	case string:
		return strconv.Quote(x)
	case int64:
		if e.Type == TypeHex {
			return formatHex(x)
		}
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

// materialize walks symbol nodes in pre-order and emits every symbol that
// has a config string, once, at its first node.
func (e *Engine) materialize() *Values {
	out := NewValues()
	seen := make(map[SymbolID]bool)
	e.t.Walk(func(n *MenuNode) bool {
		if n.Kind != NodeSymbol || seen[n.Symbol] {
			return true
		}
		seen[n.Symbol] = true
		s := e.t.symbols[n.Symbol]
		if !s.write {
			return true
		}
		if s.typ.IsNumeric() && s.value.Str == "" {
			return true
		}
		typed, ok := s.value.Typed()
		if !ok {
			slog.Warn("skipping symbol with malformed value",
				"symbol", s.name, "type", s.typ.String(), "value", s.value.Str)
			return true
		}
		out.Set(s.name, s.typ, typed)
		return true
	})
	return out
}
