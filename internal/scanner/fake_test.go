package scanner

import "context"

// fakeType is an in-memory Type used to drive the builder without a C front end.
type fakeType struct {
	class    Class
	spelling string

	pointee Type
	elem    Type
	n       uint64

	result     Type
	params     []Type
	prototyped bool
	variadic   bool

	fields    []Field
	union     bool
	name      string
	anonymous bool

	scalar Scalar
}

func (f *fakeType) Class() Class { return f.class }
func (f *fakeType) Spelling() string { return f.spelling }
func (f *fakeType) Pointee() Type { return f.pointee }
func (f *fakeType) Elem() Type { return f.elem }
func (f *fakeType) Len() uint64 { return f.n }
func (f *fakeType) Result() Type { return f.result }
func (f *fakeType) Params() ([]Type, bool) { return f.params, f.prototyped }
func (f *fakeType) Variadic() bool { return f.variadic }
func (f *fakeType) Fields() []Field { return f.fields }
func (f *fakeType) IsUnion() bool { return f.union }
func (f *fakeType) LinkageName() string { return f.name }
func (f *fakeType) IsAnonymous() bool { return f.anonymous }
func (f *fakeType) Scalar() Scalar { return f.scalar }

func voidT() *fakeType { return &fakeType{class: ClassVoid, spelling: "void"} }

func intT(spelling string, bits int, signed bool) *fakeType {
	return &fakeType{class: ClassScalar, spelling: spelling, scalar: Scalar{Kind: ScalarInt, Bits: bits, Signed: signed, Name: spelling}}
}

func floatT(spelling string, bits int) *fakeType {
	return &fakeType{class: ClassScalar, spelling: spelling, scalar: Scalar{Kind: ScalarFloat, Bits: bits, Name: spelling}}
}

func ptrT(to Type) *fakeType {
	return &fakeType{class: ClassPointer, spelling: to.Spelling() + " *", pointee: to}
}

func structT(name string, fields ...Field) *fakeType {
	t := &fakeType{class: ClassRecord, name: name, fields: fields}
	if name == "" {
		t.anonymous = true
		t.spelling = "struct (anonymous)"
	} else {
		t.spelling = "struct " + name
	}
	return t
}

func unionT(name string, fields ...Field) *fakeType {
	t := structT(name, fields...)
	t.union = true
	if name == "" {
		t.spelling = "union (anonymous)"
	} else {
		t.spelling = "union " + name
	}
	return t
}

func enumT(name string) *fakeType {
	t := &fakeType{class: ClassEnum, name: name, spelling: "enum " + name}
	if name == "" {
		t.anonymous = true
		t.spelling = "enum (anonymous)"
	}
	return t
}

func funcT(ret Type, prototyped bool, params ...Type) *fakeType {
	return &fakeType{class: ClassFunction, spelling: "fn", result: ret, params: params, prototyped: prototyped}
}

func arrayT(elem Type, n uint64) *fakeType {
	return &fakeType{class: ClassArray, spelling: "array", elem: elem, n: n}
}

func flexT(elem Type) *fakeType {
	return &fakeType{class: ClassIncompleteArray, spelling: "flex", elem: elem}
}

// fakeFrontEnd replays canned events.
type fakeFrontEnd struct {
	macros []MacroEvent
	decls  []Decl
	err    error
}

func (f *fakeFrontEnd) Macros(context.Context, string) ([]MacroEvent, error) {
	return f.macros, f.err
}

func (f *fakeFrontEnd) Decls(context.Context, string) ([]Decl, error) {
	return f.decls, f.err
}

// record captures reporter calls in order.
type record struct {
	channel   string
	name      string
	value     string
	desc      *Descriptor
	params    []*Descriptor
	members   []Member
	enums     []Enumerator
	anonymous bool
	kind      Kind
}

type recorder struct{ calls []record }

func (r *recorder) Macro(name, value string) error {
	r.calls = append(r.calls, record{channel: "macro", name: name, value: value})
	return nil
}

func (r *recorder) Typedef(name string, target *Descriptor) error {
	r.calls = append(r.calls, record{channel: "typedef", name: name, desc: target})
	return nil
}

func (r *recorder) Function(name string, ret *Descriptor, params []*Descriptor, _ bool) error {
	r.calls = append(r.calls, record{channel: "function", name: name, desc: ret, params: params})
	return nil
}

func (r *recorder) Variable(name string, typ *Descriptor) error {
	r.calls = append(r.calls, record{channel: "variable", name: name, desc: typ})
	return nil
}

func (r *recorder) Enum(name string, members []Enumerator) error {
	r.calls = append(r.calls, record{channel: "enum", name: name, enums: members})
	return nil
}

func (r *recorder) Struct(name string, members []Member, anonymous bool) error {
	r.calls = append(r.calls, record{channel: "struct", name: name, members: members, anonymous: anonymous})
	return nil
}

func (r *recorder) Union(name string, members []Member, anonymous bool) error {
	r.calls = append(r.calls, record{channel: "union", name: name, members: members, anonymous: anonymous})
	return nil
}

func (r *recorder) Forward(name string, kind Kind) error {
	r.calls = append(r.calls, record{channel: "forward", name: name, kind: kind})
	return nil
}

func (r *recorder) channels() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.channel + ":" + c.name
	}
	return out
}
