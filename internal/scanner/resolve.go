package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBuiltin is returned when the front end reports a scalar this
	// package cannot classify. It aborts the whole scan.
	ErrUnknownBuiltin = errors.New("unknown builtin type")
	// ErrUnsupportedType is returned for a type class outside the nine
	// structural cases.
	ErrUnsupportedType = errors.New("unsupported type class")
)

// Class is the structural case of a front-end type.
type Class int

const (
	ClassInvalid Class = iota
	ClassVoid
	ClassPointer
	ClassEnum
	ClassRecord
	ClassFunction
	ClassArray
	ClassIncompleteArray
	ClassScalar
)

func (c Class) String() string {
	switch c {
	case ClassVoid:
		return "void"
	case ClassPointer:
		return "pointer"
	case ClassEnum:
		return "enum"
	case ClassRecord:
		return "record"
	case ClassFunction:
		return "function"
	case ClassArray:
		return "array"
	case ClassIncompleteArray:
		return "incomplete array"
	case ClassScalar:
		return "scalar"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ScalarKind groups builtin scalars before they are sized.
type ScalarKind int

const (
	ScalarOther ScalarKind = iota
	ScalarBool
	ScalarInt // includes the character types
	ScalarFloat
	ScalarExtended // long double and friends
)

// Scalar describes a builtin arithmetic type.
type Scalar struct {
	Kind   ScalarKind
	Bits   int
	Signed bool
	Name   string // front-end spelling, used in errors
}

// Field is a struct or union member as seen by the front end.
type Field struct {
	Name     string
	Type     Type
	BitWidth int
}

// Type is the query capability a C front end provides for one type handle.
// Only the accessors matching Class are consulted.
type Type interface {
	Class() Class
	Spelling() string

	Pointee() Type
	Elem() Type
	Len() uint64

	Result() Type
	// Params returns the declared parameter types. prototyped is false for
	// an old style declaration without a parameter list.
	Params() (params []Type, prototyped bool)
	Variadic() bool

	Fields() []Field
	IsUnion() bool
	LinkageName() string
	IsAnonymous() bool

	Scalar() Scalar
}

// Resolve converts t into a Descriptor.
func Resolve(t Type) (*Descriptor, error) {
	d := &Descriptor{Spelling: t.Spelling()}
	switch c := t.Class(); c {
	case ClassVoid:
		d.Kind = KindVoid

	case ClassPointer:
		p, err := Resolve(t.Pointee())
		if err != nil {
			return nil, err
		}
		d.Kind = KindPointer
		d.Pointee = p

	case ClassEnum:
		d.Kind = KindEnum
		if name := t.LinkageName(); name != "" && !t.IsAnonymous() {
			d.Name = name
		} else {
			d.Anonymous = true
		}

	case ClassRecord:
		d.Kind = KindStruct
		if t.IsUnion() {
			d.Kind = KindUnion
		}
		if !t.IsAnonymous() {
			d.Name = t.LinkageName()
			break
		}
		members, err := ResolveFields(t.Fields())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Spelling, err)
		}
		d.Anonymous = true
		d.Members = members

	case ClassFunction:
		ret, err := Resolve(t.Result())
		if err != nil {
			return nil, err
		}
		d.Kind = KindFunction
		d.Return = ret
		params, prototyped := t.Params()
		if !prototyped {
			break
		}
		d.Prototyped = true
		d.Variadic = t.Variadic()
		d.Params = make([]*Descriptor, 0, len(params))
		for _, p := range params {
			pd, err := Resolve(p)
			if err != nil {
				return nil, err
			}
			d.Params = append(d.Params, pd)
		}

	case ClassArray, ClassIncompleteArray:
		elem, err := Resolve(t.Elem())
		if err != nil {
			return nil, err
		}
		d.Elem = elem
		d.Kind = KindFlex
		if c == ClassArray {
			d.Kind = KindArray
			d.Len = t.Len()
		}

	case ClassScalar:
		if err := classifyScalar(d, t.Scalar()); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, c, d.Spelling)
	}
	return d, nil
}

// ResolveFields resolves each member in declaration order.
func ResolveFields(fields []Field) ([]Member, error) {
	members := make([]Member, 0, len(fields))
	for _, f := range fields {
		fd, err := Resolve(f.Type)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", f.Name, err)
		}
		members = append(members, Member{Name: f.Name, Type: fd, BitWidth: f.BitWidth})
	}
	return members, nil
}

func classifyScalar(d *Descriptor, s Scalar) error {
	switch s.Kind {
	case ScalarBool:
		d.Kind = KindInteger
		d.Int = Bool
	case ScalarInt:
		c, err := ClassifyInt(s.Bits, s.Signed)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		d.Kind = KindInteger
		d.Int = c
	case ScalarFloat:
		c, err := ClassifyFloat(s.Bits)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		d.Kind = KindFloat
		d.Float = c
	case ScalarExtended:
		d.Kind = KindFloat
		d.Float = FloatExtended
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBuiltin, s.Name)
	}
	return nil
}

// ClassifyInt maps an integer width and signedness to its IntClass.
func ClassifyInt(bits int, signed bool) (IntClass, error) {
	var c IntClass
	switch bits {
	case 8:
		c = UInt8
		if signed {
			c = Int8
		}
	case 16:
		c = UInt16
		if signed {
			c = Int16
		}
	case 32:
		c = UInt32
		if signed {
			c = Int32
		}
	case 64:
		c = UInt64
		if signed {
			c = Int64
		}
	case 128:
		c = UInt128
		if signed {
			c = Int128
		}
	default:
		return "", fmt.Errorf("%w: %d-bit integer", ErrUnknownBuiltin, bits)
	}
	return c, nil
}

// ClassifyFloat maps a binary floating point width to its FloatClass.
func ClassifyFloat(bits int) (FloatClass, error) {
	switch bits {
	case 16:
		return FloatHalf, nil
	case 32:
		return FloatSingle, nil
	case 64:
		return FloatDouble, nil
	default:
		return "", fmt.Errorf("%w: %d-bit float", ErrUnknownBuiltin, bits)
	}
}
