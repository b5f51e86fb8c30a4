package scanner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultFoldDepth bounds how many levels of object-like macros are inlined.
const DefaultFoldDepth = 5

// ErrRejected is returned by Fold when a macro refers, at any depth, to a
// function-like macro.
var ErrRejected = errors.New("macro references a function-like macro")

// Position is a location in a source file.
type Position struct {
	Filename string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column,omitempty"`
}

func (p Position) String() string {
	if p.Filename == "" {
		return "-"
	}
	if p.Column == 0 {
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Token is one preprocessing token of a macro body.
type Token struct {
	Ident bool
	Text  string
}

// Ident returns an identifier token.
func Ident(name string) Token { return Token{Ident: true, Text: name} }

// Punct returns a non-identifier token.
func Punct(text string) Token { return Token{Text: text} }

// MacroDef is the current definition of a macro.
type MacroDef struct {
	Name     string
	Tokens   []Token
	FuncLike bool
	Pos      Position

	seq int
}

// MacroTable maps macro names to their current definition. It lives for
// the macro pass of a single file.
type MacroTable struct {
	defs map[string]*MacroDef
	seq  int
}

func NewMacroTable() *MacroTable {
	return &MacroTable{defs: make(map[string]*MacroDef)}
}

// Define records an object-like macro, replacing any previous definition.
func (m *MacroTable) Define(name string, tokens []Token, pos Position) {
	m.seq++
	m.defs[name] = &MacroDef{Name: name, Tokens: tokens, Pos: pos, seq: m.seq}
}

// DefineFunction records a function-like macro. Its body never matters:
// any reference to it rejects the fold.
func (m *MacroTable) DefineFunction(name string, pos Position) {
	m.seq++
	m.defs[name] = &MacroDef{Name: name, FuncLike: true, Pos: pos, seq: m.seq}
}

// Undefine removes name. A later Define starts a fresh entry.
func (m *MacroTable) Undefine(name string) {
	delete(m.defs, name)
}

func (m *MacroTable) Lookup(name string) (*MacroDef, bool) {
	d, ok := m.defs[name]
	return d, ok
}

func (m *MacroTable) Len() int { return len(m.defs) }

// Defined returns the live definitions in the order they were defined.
func (m *MacroTable) Defined() []*MacroDef {
	out := make([]*MacroDef, 0, len(m.defs))
	for _, d := range m.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Fold inlines every object-like macro referenced by tokens, recursively up
// to maxDepth levels. At the bound an identifier is emitted as is.
func (m *MacroTable) Fold(tokens []Token, maxDepth int) ([]Token, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultFoldDepth
	}
	var out []Token
	if err := m.fold(tokens, 0, maxDepth, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MacroTable) fold(tokens []Token, depth, maxDepth int, out *[]Token) error {
	for _, t := range tokens {
		if !t.Ident {
			*out = append(*out, t)
			continue
		}
		def, ok := m.defs[t.Text]
		if !ok {
			*out = append(*out, t)
			continue
		}
		if def.FuncLike {
			return fmt.Errorf("%w: %s", ErrRejected, t.Text)
		}
		if depth >= maxDepth {
			*out = append(*out, t)
			continue
		}
		if err := m.fold(def.Tokens, depth+1, maxDepth, out); err != nil {
			return err
		}
	}
	return nil
}

// MacroConstant is a macro folded down to its replacement text.
type MacroConstant struct {
	Name  string
	Value string
	Pos   Position
	Raw   []Token
}

// Resolve folds each named macro in the order given. Undefined,
// function-like and empty macros are skipped. A macro Fold rejects is
// skipped as well and handed to reject when it is non nil.
func (m *MacroTable) Resolve(names []string, maxDepth int, reject func(def *MacroDef, err error)) []MacroConstant {
	out := make([]MacroConstant, 0, len(names))
	for _, name := range names {
		def, ok := m.defs[name]
		if !ok || def.FuncLike || len(def.Tokens) == 0 {
			continue
		}
		folded, err := m.Fold(def.Tokens, maxDepth)
		if err != nil {
			if reject != nil {
				reject(def, err)
			}
			continue
		}
		out = append(out, MacroConstant{
			Name:  def.Name,
			Value: JoinTokens(folded),
			Pos:   def.Pos,
			Raw:   def.Tokens,
		})
	}
	return out
}

// JoinTokens spells tokens separated by single spaces.
func JoinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

