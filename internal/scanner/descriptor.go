package scanner

import "fmt"

// Kind identifies the shape of a Descriptor.
type Kind string

const (
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindPointer  Kind = "pointer"
	KindEnum     Kind = "enum"
	KindStruct   Kind = "struct"
	KindUnion    Kind = "union"
	KindFunction Kind = "function"
	KindArray    Kind = "array"
	KindFlex     Kind = "flex"
	KindVoid     Kind = "void"
)

// IntClass is the platform independent rank of an integer type.
type IntClass string

const (
	Bool    IntClass = "bool"
	UInt8   IntClass = "u8"
	Int8    IntClass = "i8"
	UInt16  IntClass = "u16"
	Int16   IntClass = "i16"
	UInt32  IntClass = "u32"
	Int32   IntClass = "i32"
	UInt64  IntClass = "u64"
	Int64   IntClass = "i64"
	Int128  IntClass = "i128"
	UInt128 IntClass = "u128"
)

// FloatClass is the precision class of a floating point type.
type FloatClass string

const (
	FloatHalf     FloatClass = "half"
	FloatSingle   FloatClass = "single"
	FloatDouble   FloatClass = "double"
	FloatExtended FloatClass = "extended"
)

// Descriptor is the language agnostic description of a C type as it is
// written at one use site.
//
// Named aggregates are referenced by Name only and never carry Members, so a
// Descriptor graph is always finite even for self-referential records.
type Descriptor struct {
	Kind     Kind   `json:"kind"`
	Spelling string `json:"spelling,omitempty"` // diagnostic only

	Int   IntClass   `json:"int,omitempty"`
	Float FloatClass `json:"float,omitempty"`

	Pointee *Descriptor `json:"pointee,omitempty"`

	// enum, struct, union
	Name      string   `json:"name,omitempty"`
	Anonymous bool     `json:"anonymous,omitempty"`
	Members   []Member `json:"members,omitempty"`

	// function; Params is nil for an unprototyped function and empty for f(void)
	Return     *Descriptor   `json:"return,omitempty"`
	Params     []*Descriptor `json:"params,omitempty"`
	Prototyped bool          `json:"prototyped,omitempty"`
	Variadic   bool          `json:"variadic,omitempty"`

	// array, flex
	Elem *Descriptor `json:"elem,omitempty"`
	Len  uint64      `json:"len,omitempty"`
}

// Member is one field of a struct or union. Name is empty for anonymous
// members.
type Member struct {
	Name     string      `json:"name,omitempty"`
	Type     *Descriptor `json:"type"`
	BitWidth int         `json:"bitWidth,omitempty"`
}

// Enumerator is a single enum constant.
type Enumerator struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.Kind {
	case KindInteger:
		return string(d.Int)
	case KindFloat:
		return string(d.Float)
	case KindPointer:
		return "*" + d.Pointee.String()
	case KindEnum, KindStruct, KindUnion:
		if d.Anonymous {
			return fmt.Sprintf("%s{%d members}", d.Kind, len(d.Members))
		}
		return string(d.Kind) + " " + d.Name
	case KindFunction:
		if !d.Prototyped {
			return fmt.Sprintf("func() %s", d.Return)
		}
		return fmt.Sprintf("func(%d) %s", len(d.Params), d.Return)
	case KindArray:
		return fmt.Sprintf("[%d]%s", d.Len, d.Elem)
	case KindFlex:
		return "[]" + d.Elem.String()
	default:
		return string(d.Kind)
	}
}
