package scanner

import (
	"fmt"
	"path/filepath"
)

// DeclKind is the kind of a top-level declaration event.
type DeclKind int

const (
	DeclFunction DeclKind = iota
	DeclVariable
	DeclTypedef
	DeclRecord
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclVariable:
		return "variable"
	case DeclTypedef:
		return "typedef"
	case DeclRecord:
		return "record"
	case DeclEnum:
		return "enum"
	default:
		return fmt.Sprintf("decl(%d)", int(k))
	}
}

// Linkage of a declared name.
type Linkage int

const (
	LinkageNone Linkage = iota
	LinkageInternal
	LinkageExternal
)

// Decl is one declaration visited by the front end.
type Decl struct {
	Kind DeclKind
	// Name is the declared identifier, or the tag for records and enums.
	// It is empty for an untagged record or enum.
	Name string
	Pos  Position

	Linkage  Linkage
	Defining bool
	Union    bool

	// TypedefName is the alias an untagged record or enum was introduced
	// through, if any.
	TypedefName string

	// Type is the declared type. For a typedef it is the aliased type.
	Type        Type
	Enumerators []Enumerator
}

// Scope is the set of source files whose declarations are exported.
type Scope struct {
	files map[string]int
}

// NewScope builds a scope from paths. Paths are compared after being made
// absolute and cleaned.
func NewScope(paths ...string) Scope {
	s := Scope{files: make(map[string]int, len(paths))}
	for _, p := range paths {
		k := canonicalPath(p)
		if _, ok := s.files[k]; !ok {
			s.files[k] = len(s.files)
		}
	}
	return s
}

// Contains reports whether file is one of the scope's paths.
func (s Scope) Contains(file string) bool {
	_, ok := s.files[canonicalPath(file)]
	return ok
}

// Len returns the number of distinct paths in scope.
func (s Scope) Len() int { return len(s.files) }

func canonicalPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

type tagKey struct {
	kind Kind
	name string
}

// Filter decides which declarations are exported and reports them.
type Filter struct {
	Scope    Scope
	Reporter Reporter

	defined   map[tagKey]bool
	forwarded map[tagKey]bool
}

func NewFilter(scope Scope, r Reporter) *Filter {
	return &Filter{
		Scope:     scope,
		Reporter:  r,
		defined:   make(map[tagKey]bool),
		forwarded: make(map[tagKey]bool),
	}
}

// Visit handles one declaration. Declarations out of scope or without the
// required linkage are skipped silently.
func (f *Filter) Visit(d Decl) error {
	if !f.Scope.Contains(d.Pos.Filename) {
		return nil
	}
	switch d.Kind {
	case DeclFunction:
		return f.function(d)
	case DeclVariable:
		if d.Linkage != LinkageExternal {
			return nil
		}
		td, err := Resolve(d.Type)
		if err != nil {
			return fmt.Errorf("%s: variable %s: %w", d.Pos, d.Name, err)
		}
		return f.Reporter.Variable(d.Name, td)
	case DeclTypedef:
		td, err := Resolve(d.Type)
		if err != nil {
			return fmt.Errorf("%s: typedef %s: %w", d.Pos, d.Name, err)
		}
		return f.Reporter.Typedef(d.Name, td)
	case DeclRecord:
		return f.record(d)
	case DeclEnum:
		return f.enum(d)
	default:
		return fmt.Errorf("%s: %w: %s", d.Pos, ErrUnsupportedType, d.Kind)
	}
}

func (f *Filter) function(d Decl) error {
	if d.Type == nil || d.Type.Class() != ClassFunction {
		return fmt.Errorf("%s: function %s: %w: not a function type", d.Pos, d.Name, ErrUnsupportedType)
	}
	fd, err := Resolve(d.Type)
	if err != nil {
		return fmt.Errorf("%s: function %s: %w", d.Pos, d.Name, err)
	}
	return f.Reporter.Function(d.Name, fd.Return, fd.Params, fd.Variadic)
}

func (f *Filter) record(d Decl) error {
	kind := KindStruct
	if d.Union {
		kind = KindUnion
	}
	if !d.Defining {
		if d.Name == "" {
			return nil
		}
		key := tagKey{kind, d.Name}
		if f.defined[key] || f.forwarded[key] {
			return nil
		}
		f.forwarded[key] = true
		return f.Reporter.Forward(d.Name, kind)
	}

	name, anonymous := d.Name, d.Name == ""
	if anonymous {
		name = d.TypedefName
	}
	if name == "" {
		return nil
	}
	key := tagKey{kind, name}
	if f.defined[key] {
		return nil
	}
	f.defined[key] = true

	members, err := ResolveFields(d.Type.Fields())
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", d.Pos, kind, name, err)
	}
	if kind == KindUnion {
		return f.Reporter.Union(name, members, anonymous)
	}
	return f.Reporter.Struct(name, members, anonymous)
}

func (f *Filter) enum(d Decl) error {
	if !d.Defining {
		return nil
	}
	name := d.Name
	if name == "" {
		name = d.TypedefName
	}
	if name == "" {
		return nil
	}
	key := tagKey{KindEnum, name}
	if f.defined[key] {
		return nil
	}
	f.defined[key] = true
	return f.Reporter.Enum(name, d.Enumerators)
}
