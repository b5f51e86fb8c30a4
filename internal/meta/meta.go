// Package meta holds everything a scan found in one translation unit.
package meta

import "github.com/Alia5/cscan/internal/scanner"

// EntryKind names the reporting channel an Entry came through.
type EntryKind string

const (
	EntryMacro    EntryKind = "macro"
	EntryTypedef  EntryKind = "typedef"
	EntryFunction EntryKind = "function"
	EntryVariable EntryKind = "variable"
	EntryEnum     EntryKind = "enum"
	EntryStruct   EntryKind = "struct"
	EntryUnion    EntryKind = "union"
	EntryForward  EntryKind = "forward"
)

// Entry is one exported entity. Only the fields of its Kind are set.
type Entry struct {
	Kind EntryKind `json:"kind"`
	Name string    `json:"name"`

	Value string              `json:"value,omitempty"` // macro
	Type  *scanner.Descriptor `json:"type,omitempty"`  // typedef target, variable type

	Return     *scanner.Descriptor   `json:"return,omitempty"`
	Params     []*scanner.Descriptor `json:"params,omitempty"`
	Prototyped bool                  `json:"prototyped,omitempty"`
	Variadic   bool                  `json:"variadic,omitempty"`

	Enumerators []scanner.Enumerator `json:"enumerators,omitempty"`
	Members     []scanner.Member     `json:"members,omitempty"`
	Anonymous   bool                 `json:"anonymous,omitempty"`

	Tag scanner.Kind `json:"tag,omitempty"` // forward: struct or union
}

// Unit is the ordered result of scanning one file.
type Unit struct {
	File    string  `json:"file"`
	Entries []Entry `json:"entries"`
}

// Filter returns the entries of the given kind, in order.
func (u *Unit) Filter(kind EntryKind) []Entry {
	var out []Entry
	for _, e := range u.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Counts tallies entries per kind.
func (u *Unit) Counts() map[EntryKind]int {
	out := make(map[EntryKind]int)
	for _, e := range u.Entries {
		out[e.Kind]++
	}
	return out
}

// Collector is a scanner.Reporter that appends every report to a Unit.
type Collector struct {
	Unit *Unit
}

var _ scanner.Reporter = (*Collector)(nil)

func NewCollector(file string) *Collector {
	return &Collector{Unit: &Unit{File: file, Entries: []Entry{}}}
}

func (c *Collector) add(e Entry) error {
	c.Unit.Entries = append(c.Unit.Entries, e)
	return nil
}

func (c *Collector) Macro(name, value string) error {
	return c.add(Entry{Kind: EntryMacro, Name: name, Value: value})
}

func (c *Collector) Typedef(name string, target *scanner.Descriptor) error {
	return c.add(Entry{Kind: EntryTypedef, Name: name, Type: target})
}

func (c *Collector) Function(name string, ret *scanner.Descriptor, params []*scanner.Descriptor, variadic bool) error {
	return c.add(Entry{
		Kind:       EntryFunction,
		Name:       name,
		Return:     ret,
		Params:     params,
		Prototyped: params != nil,
		Variadic:   variadic,
	})
}

func (c *Collector) Variable(name string, typ *scanner.Descriptor) error {
	return c.add(Entry{Kind: EntryVariable, Name: name, Type: typ})
}

func (c *Collector) Enum(name string, members []scanner.Enumerator) error {
	return c.add(Entry{Kind: EntryEnum, Name: name, Enumerators: members})
}

func (c *Collector) Struct(name string, members []scanner.Member, anonymous bool) error {
	return c.add(Entry{Kind: EntryStruct, Name: name, Members: members, Anonymous: anonymous})
}

func (c *Collector) Union(name string, members []scanner.Member, anonymous bool) error {
	return c.add(Entry{Kind: EntryUnion, Name: name, Members: members, Anonymous: anonymous})
}

func (c *Collector) Forward(name string, kind scanner.Kind) error {
	return c.add(Entry{Kind: EntryForward, Name: name, Tag: kind})
}
