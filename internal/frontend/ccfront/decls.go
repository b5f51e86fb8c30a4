package ccfront

import (
	"github.com/Alia5/cscan/internal/scanner"
	"modernc.org/cc/v3"
	"modernc.org/token"
)

type tagKey struct {
	union bool
	name  string
}

// declWalker flattens a translation unit into scanner.Decls in source order.
type declWalker struct {
	decls []scanner.Decl
	seen  map[tagKey]bool
}

func walkDecls(ast *cc.AST) []scanner.Decl {
	w := &declWalker{seen: make(map[tagKey]bool)}
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		ed := tu.ExternalDeclaration
		if ed == nil {
			continue
		}
		switch ed.Case {
		case cc.ExternalDeclarationDecl:
			w.declaration(ed.Declaration)
		case cc.ExternalDeclarationFuncDef:
			fd := ed.FunctionDefinition
			w.specifiers(fd.DeclarationSpecifiers, false, "")
			w.declarator(fd.Declarator, true)
		}
	}
	return w.decls
}

func (w *declWalker) declaration(d *cc.Declaration) {
	if d == nil {
		return
	}
	w.specifiers(d.DeclarationSpecifiers, d.InitDeclaratorList == nil, typedefName(d.InitDeclaratorList))
	for l := d.InitDeclaratorList; l != nil; l = l.InitDeclaratorList {
		if l.InitDeclarator != nil {
			w.declarator(l.InitDeclarator.Declarator, l.InitDeclarator.Case == cc.InitDeclaratorInit)
		}
	}
}

// typedefName returns the name of the first plain typedef declarator, the
// one an untagged struct, union or enum in the same declaration is known by.
func typedefName(l *cc.InitDeclaratorList) string {
	for ; l != nil; l = l.InitDeclaratorList {
		if l.InitDeclarator == nil {
			continue
		}
		d := l.InitDeclarator.Declarator
		if d == nil || !d.IsTypedefName || d.Pointer != nil {
			continue
		}
		if dd := d.DirectDeclarator; dd != nil && dd.Case == cc.DirectDeclaratorIdent {
			return d.Name().String()
		}
	}
	return ""
}

func (w *declWalker) specifiers(ds *cc.DeclarationSpecifiers, bare bool, alias string) {
	for ; ds != nil; ds = ds.DeclarationSpecifiers {
		if ds.Case == cc.DeclarationSpecifiersTypeSpec {
			w.typeSpecifier(ds.TypeSpecifier, bare, alias)
		}
	}
}

func (w *declWalker) typeSpecifier(ts *cc.TypeSpecifier, bare bool, alias string) {
	if ts == nil {
		return
	}
	switch ts.Case {
	case cc.TypeSpecifierStructOrUnion:
		w.record(ts.StructOrUnionSpecifier, bare, alias)
	case cc.TypeSpecifierEnum:
		w.enum(ts.EnumSpecifier, alias)
	}
}

// record emits a record definition, or a forward declaration for `struct X;`
// and for the first mention of a tag not seen before.
func (w *declWalker) record(s *cc.StructOrUnionSpecifier, bare bool, alias string) {
	if s == nil {
		return
	}
	union := s.StructOrUnion != nil && s.StructOrUnion.Case == cc.StructOrUnionUnion
	name := s.Token.Value.String()
	key := tagKey{union: union, name: name}

	d := scanner.Decl{
		Kind:  scanner.DeclRecord,
		Name:  name,
		Pos:   position(s.Token.Position()),
		Union: union,
	}
	if s.Type() != nil {
		d.Type = wrap(s.Type())
	}

	if s.Case != cc.StructOrUnionSpecifierDef {
		if name == "" || (w.seen[key] && !bare) {
			return
		}
		w.seen[key] = true
		w.decls = append(w.decls, d)
		return
	}

	if name != "" {
		w.seen[key] = true
	} else {
		d.Pos = position(s.Position())
		d.TypedefName = alias
	}
	d.Defining = true
	w.decls = append(w.decls, d)

	// Tagged definitions nested in the body are file scope in C.
	for l := s.StructDeclarationList; l != nil; l = l.StructDeclarationList {
		sd := l.StructDeclaration
		if sd == nil || sd.Empty {
			continue
		}
		for sq := sd.SpecifierQualifierList; sq != nil; sq = sq.SpecifierQualifierList {
			if sq.Case != cc.SpecifierQualifierListTypeSpec || sq.TypeSpecifier == nil {
				continue
			}
			switch sq.TypeSpecifier.Case {
			case cc.TypeSpecifierStructOrUnion:
				if inner := sq.TypeSpecifier.StructOrUnionSpecifier; inner != nil && inner.Token.Value != 0 {
					w.record(inner, false, "")
				}
			case cc.TypeSpecifierEnum:
				if inner := sq.TypeSpecifier.EnumSpecifier; inner != nil && inner.Token2.Value != 0 {
					w.enum(inner, "")
				}
			}
		}
	}
}

func (w *declWalker) enum(e *cc.EnumSpecifier, alias string) {
	if e == nil || e.Case != cc.EnumSpecifierDef {
		return
	}
	d := scanner.Decl{
		Kind:     scanner.DeclEnum,
		Name:     e.Token2.Value.String(),
		Pos:      position(e.Position()),
		Defining: true,
	}
	if d.Name == "" {
		d.TypedefName = alias
	}
	for l := e.EnumeratorList; l != nil; l = l.EnumeratorList {
		if l.Enumerator == nil {
			continue
		}
		d.Enumerators = append(d.Enumerators, scanner.Enumerator{
			Name:  l.Enumerator.Token.Value.String(),
			Value: enumValue(l.Enumerator.Operand),
		})
	}
	w.decls = append(w.decls, d)
}

func enumValue(op cc.Operand) int64 {
	if op == nil {
		return 0
	}
	switch v := op.Value().(type) {
	case cc.Int64Value:
		return int64(v)
	case cc.Uint64Value:
		return int64(v)
	}
	return 0
}

func (w *declWalker) declarator(d *cc.Declarator, defining bool) {
	if d == nil || d.Name() == 0 || d.Type() == nil {
		return
	}
	decl := scanner.Decl{
		Name:     d.Name().String(),
		Pos:      position(d.Position()),
		Type:     wrapSpec(d.Type(), enumSpecifier(d.DeclarationSpecifiers())),
		Defining: defining,
	}
	switch {
	case d.IsTypedefName:
		decl.Kind = scanner.DeclTypedef
	case d.Type().Kind() == cc.Function:
		decl.Kind = scanner.DeclFunction
		decl.Linkage = linkage(d.Linkage)
	default:
		decl.Kind = scanner.DeclVariable
		decl.Linkage = linkage(d.Linkage)
	}
	w.decls = append(w.decls, decl)
}

func linkage(l cc.Linkage) scanner.Linkage {
	switch l {
	case cc.External:
		return scanner.LinkageExternal
	case cc.Internal:
		return scanner.LinkageInternal
	default:
		return scanner.LinkageNone
	}
}

func position(p token.Position) scanner.Position {
	return scanner.Position{Filename: p.Filename, Line: p.Line, Column: p.Column}
}
