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

// ChangeKind classifies one difference between two resolved configurations.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "changed"
)

// Change is a symbol whose presence or value differs. Old is nil for added
// symbols and New is nil for removed ones.
type Change struct {
	Name string     `json:"name" yaml:"name"`
	Kind ChangeKind `json:"kind" yaml:"kind"`
	Old  any        `json:"old" yaml:"old"`
	New  any        `json:"new" yaml:"new"`

	oldEntry, newEntry Entry
}

// Changes is an ordered list of differences.
type Changes []Change

// Compare returns the entries of to that are new or differ from from, in
// to's order, followed by the entries of from that to no longer has, in
// from's order. A type change counts as a modification.
func Compare(from, to *Values) Changes {
	var out Changes
	for _, n := range to.entries {
		o, ok := from.Lookup(n.Name)
		switch {
		case !ok:
			out = append(out, Change{Name: n.Name, Kind: ChangeAdded, New: n.Value, newEntry: n})
		case o.Type != n.Type || o.Value != n.Value:
			out = append(out, Change{Name: n.Name, Kind: ChangeModified,
				Old: o.Value, New: n.Value, oldEntry: o, newEntry: n})
		}
	}
	for _, o := range from.entries {
		if _, ok := to.Lookup(o.Name); !ok {
			out = append(out, Change{Name: o.Name, Kind: ChangeRemoved, Old: o.Value, oldEntry: o})
		}
	}
	return out
}

// TableRows renders each change as "old -> new".
func (c Changes) TableRows() [][2]string {
	rows := make([][2]string, len(c))
	for i, ch := range c {
		rows[i] = [2]string{ch.Name, ch.oldEntry.display() + " -> " + ch.newEntry.display()}
	}
	return rows
}
