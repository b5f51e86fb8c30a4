package ccfront

import (
	"fmt"
	"strings"

	"github.com/Alia5/cscan/internal/scanner"
	"modernc.org/cc/v3"
)

// ccType adapts a cc.Type to scanner.Type.
//
// cc/v3 gives an enum definition its underlying integer type, so the enum
// specifier the type was declared with travels alongside it. It follows
// pointer, array and result derivations, which share the declaration's
// specifiers, and never parameters or fields, which have their own.
type ccType struct {
	t    cc.Type
	enum *cc.EnumSpecifier
}

var _ scanner.Type = ccType{}

func wrap(t cc.Type) scanner.Type {
	return wrapSpec(t, nil)
}

func wrapSpec(t cc.Type, enum *cc.EnumSpecifier) scanner.Type {
	if t == nil {
		return nil
	}
	if enum != nil && enum.Case != cc.EnumSpecifierDef {
		enum = nil
	}
	return ccType{t: t, enum: enum}
}

// declaredEnum reports whether c is the integer an enum definition in the
// specifiers stands for.
func (c ccType) declaredEnum() bool {
	return c.enum != nil && !c.t.IsAliasType() && c.t.Kind() != cc.Enum && c.t.IsIntegerType()
}

func (c ccType) Class() scanner.Class {
	switch c.t.Kind() {
	case cc.Void:
		return scanner.ClassVoid
	case cc.Ptr:
		return scanner.ClassPointer
	case cc.Array:
		if c.t.IsIncomplete() || c.t.Len() == 0 {
			return scanner.ClassIncompleteArray
		}
		return scanner.ClassArray
	case cc.Enum:
		return scanner.ClassEnum
	case cc.Struct, cc.Union:
		return scanner.ClassRecord
	case cc.Function:
		return scanner.ClassFunction
	case cc.Invalid:
		return scanner.ClassInvalid
	}
	if c.declaredEnum() {
		return scanner.ClassEnum
	}
	if _, ok := aliasedEnum(c.t); ok {
		return scanner.ClassEnum
	}
	return scanner.ClassScalar
}

func (c ccType) Spelling() string {
	if !c.declaredEnum() {
		return spell(c.t)
	}
	s := "enum (anonymous)"
	if tag := c.enum.Token2.Value; tag != 0 {
		s = "enum " + tag.String()
	}
	if q := qualifiers(c.t); q != "" {
		s = q + " " + s
	}
	return s
}

func (c ccType) Pointee() scanner.Type { return wrapSpec(c.t.Elem(), c.enum) }
func (c ccType) Elem() scanner.Type    { return wrapSpec(c.t.Elem(), c.enum) }
func (c ccType) Len() uint64           { return uint64(c.t.Len()) }
func (c ccType) Result() scanner.Type  { return wrapSpec(c.t.Result(), c.enum) }
func (c ccType) Variadic() bool        { return c.t.IsVariadic() }
func (c ccType) IsUnion() bool         { return c.t.Kind() == cc.Union }

func (c ccType) Params() ([]scanner.Type, bool) {
	ps := c.t.Parameters()
	if ps == nil {
		return nil, false
	}
	out := make([]scanner.Type, 0, len(ps))
	for _, p := range ps {
		// f(void) is reported as a single void parameter
		if len(ps) == 1 && p.Type().Kind() == cc.Void {
			break
		}
		var enum *cc.EnumSpecifier
		if d := p.Declarator(); d != nil {
			enum = enumSpecifier(d.DeclarationSpecifiers())
		}
		out = append(out, wrapSpec(p.Type(), enum))
	}
	return out, true
}

func (c ccType) Fields() []scanner.Field {
	n := c.t.NumField()
	out := make([]scanner.Field, 0, n)
	for i := 0; i < n; i++ {
		f := c.t.FieldByIndex([]int{i})
		if f == nil {
			continue
		}
		sf := scanner.Field{Name: f.Name().String(), Type: wrapSpec(f.Type(), fieldEnum(f))}
		if f.IsBitField() {
			sf.BitWidth = f.BitFieldWidth()
		}
		out = append(out, sf)
	}
	return out
}

func (c ccType) LinkageName() string {
	if c.declaredEnum() {
		return c.enum.Token2.Value.String()
	}
	switch c.t.Kind() {
	case cc.Struct, cc.Union:
		name, _ := recordName(c.t)
		return name
	case cc.Enum:
		if tag := c.t.Tag(); tag != 0 {
			return tag.String()
		}
		return aliasName(c.t)
	}
	if name, ok := aliasedEnum(c.t); ok {
		return name
	}
	return ""
}

func (c ccType) IsAnonymous() bool {
	switch c.t.Kind() {
	case cc.Struct, cc.Union:
		_, named := recordName(c.t)
		return !named
	}
	return c.LinkageName() == ""
}

func (c ccType) Scalar() scanner.Scalar {
	t := c.t
	s := scanner.Scalar{Name: t.String()}
	switch k := t.Kind(); k {
	case cc.Bool:
		s.Kind = scanner.ScalarBool
		s.Bits = 8
	case cc.Char:
		s.Kind = scanner.ScalarInt
		s.Bits = int(t.Size()) * 8
		s.Signed = t.IsSignedType()
	case cc.SChar, cc.Short, cc.Int, cc.Long, cc.LongLong,
		cc.Int8, cc.Int16, cc.Int32, cc.Int64, cc.Int128:
		s.Kind = scanner.ScalarInt
		s.Bits = int(t.Size()) * 8
		s.Signed = true
	case cc.UChar, cc.UShort, cc.UInt, cc.ULong, cc.ULongLong,
		cc.UInt8, cc.UInt16, cc.UInt32, cc.UInt64, cc.UInt128:
		s.Kind = scanner.ScalarInt
		s.Bits = int(t.Size()) * 8
	case cc.Float, cc.Float32, cc.Double, cc.Float64, cc.Float32x:
		s.Kind = scanner.ScalarFloat
		s.Bits = int(t.Size()) * 8
	case cc.LongDouble, cc.Float64x:
		s.Kind = scanner.ScalarExtended
		s.Bits = int(t.Size()) * 8
		if s.Bits == 64 {
			s.Kind = scanner.ScalarFloat
		}
	default:
		s.Kind = scanner.ScalarOther
	}
	return s
}

// aliasName returns the innermost typedef name t was spelled through.
func aliasName(t cc.Type) string {
	name := ""
	for t.IsAliasType() {
		name = t.Name().String()
		t = t.Alias()
	}
	return name
}

// recordName resolves the name a struct or union is exported under. The tag
// wins over a typedef name; named is false for a truly anonymous record.
func recordName(t cc.Type) (name string, named bool) {
	alias := aliasName(t)
	for t.IsAliasType() {
		t = t.Alias()
	}
	if tag := t.Tag(); tag != 0 {
		return tag.String(), true
	}
	if alias != "" {
		return alias, true
	}
	return "", false
}

// aliasedEnum reports whether an integer type t was spelled through a
// typedef of an enum. cc/v3 gives enum definitions their underlying integer
// type, so the enum is recovered from the typedef's declaration specifiers.
func aliasedEnum(t cc.Type) (string, bool) {
	for t.IsAliasType() {
		d := t.AliasDeclarator()
		if d == nil {
			return "", false
		}
		if es := enumSpecifier(d.DeclarationSpecifiers()); es != nil {
			if es.Token2.Value != 0 {
				return es.Token2.Value.String(), true
			}
			return t.Name().String(), true
		}
		t = t.Alias()
	}
	return "", false
}

func enumSpecifier(ds *cc.DeclarationSpecifiers) *cc.EnumSpecifier {
	for ; ds != nil; ds = ds.DeclarationSpecifiers {
		if ds.Case != cc.DeclarationSpecifiersTypeSpec || ds.TypeSpecifier == nil {
			continue
		}
		if ds.TypeSpecifier.Case == cc.TypeSpecifierEnum {
			return ds.TypeSpecifier.EnumSpecifier
		}
	}
	return nil
}

func memberEnumSpecifier(sq *cc.SpecifierQualifierList) *cc.EnumSpecifier {
	for ; sq != nil; sq = sq.SpecifierQualifierList {
		if sq.Case != cc.SpecifierQualifierListTypeSpec || sq.TypeSpecifier == nil {
			continue
		}
		if sq.TypeSpecifier.Case == cc.TypeSpecifierEnum {
			return sq.TypeSpecifier.EnumSpecifier
		}
	}
	return nil
}

// fieldEnum returns the enum specifier of the struct declaration f belongs
// to, if any.
func fieldEnum(f cc.Field) *cc.EnumSpecifier {
	sd := f.Declarator()
	if sd == nil {
		return nil
	}
	decl := sd.StructDeclaration()
	if decl == nil {
		return nil
	}
	return memberEnumSpecifier(decl.SpecifierQualifierList)
}

// spell renders t the way it would appear in a declaration, qualifiers
// included.
func spell(t cc.Type) string {
	q := qualifiers(t)
	if t.Kind() == cc.Ptr && !t.IsAliasType() {
		s := spell(t.Elem()) + " *"
		if q != "" {
			s += " " + q
		}
		return s
	}
	if q != "" {
		return q + " " + spellUnqualified(t)
	}
	return spellUnqualified(t)
}

// qualifiers returns the const and volatile qualifiers of t itself. cc/v3
// prints a type's own qualifiers ahead of everything else.
func qualifiers(t cc.Type) string {
	var out []string
	for _, w := range strings.Fields(t.String()) {
		switch w {
		case "const", "volatile":
			out = append(out, w)
		case "atomic", "inline", "_NoReturn", "restrict":
		default:
			return strings.Join(out, " ")
		}
	}
	return strings.Join(out, " ")
}

func spellUnqualified(t cc.Type) string {
	if t.IsAliasType() {
		return t.Name().String()
	}
	switch t.Kind() {
	case cc.Struct, cc.Union, cc.Enum:
		kw := "struct"
		switch t.Kind() {
		case cc.Union:
			kw = "union"
		case cc.Enum:
			kw = "enum"
		}
		if tag := t.Tag(); tag != 0 {
			return kw + " " + tag.String()
		}
		return kw + " (anonymous)"
	case cc.Array:
		if t.IsIncomplete() {
			return spell(t.Elem()) + "[]"
		}
		return fmt.Sprintf("%s[%d]", spell(t.Elem()), t.Len())
	case cc.Function:
		var params []string
		for _, p := range t.Parameters() {
			params = append(params, spell(p.Type()))
		}
		if t.IsVariadic() {
			params = append(params, "...")
		}
		return fmt.Sprintf("%s (%s)", spell(t.Result()), strings.Join(params, ", "))
	}
	if name, ok := scalarNames[t.Kind()]; ok {
		return name
	}
	return t.String()
}

var scalarNames = map[cc.Kind]string{
	cc.Void:       "void",
	cc.Bool:       "_Bool",
	cc.Char:       "char",
	cc.SChar:      "signed char",
	cc.UChar:      "unsigned char",
	cc.Short:      "short",
	cc.UShort:     "unsigned short",
	cc.Int:        "int",
	cc.UInt:       "unsigned int",
	cc.Long:       "long",
	cc.ULong:      "unsigned long",
	cc.LongLong:   "long long",
	cc.ULongLong:  "unsigned long long",
	cc.Int128:     "__int128",
	cc.UInt128:    "unsigned __int128",
	cc.Float:      "float",
	cc.Double:     "double",
	cc.LongDouble: "long double",
}
