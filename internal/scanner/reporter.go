package scanner

// Reporter receives one call per exported entity, in source order. Any
// returned error stops the scan.
type Reporter interface {
	Macro(name, value string) error
	Typedef(name string, target *Descriptor) error
	Function(name string, ret *Descriptor, params []*Descriptor, variadic bool) error
	Variable(name string, typ *Descriptor) error
	Enum(name string, members []Enumerator) error
	Struct(name string, members []Member, anonymous bool) error
	Union(name string, members []Member, anonymous bool) error
	Forward(name string, kind Kind) error
}

// ReporterFuncs adapts a set of optional callbacks to Reporter. Nil
// callbacks drop their channel.
type ReporterFuncs struct {
	OnMacro    func(name, value string) error
	OnTypedef  func(name string, target *Descriptor) error
	OnFunction func(name string, ret *Descriptor, params []*Descriptor, variadic bool) error
	OnVariable func(name string, typ *Descriptor) error
	OnEnum     func(name string, members []Enumerator) error
	OnStruct   func(name string, members []Member, anonymous bool) error
	OnUnion    func(name string, members []Member, anonymous bool) error
	OnForward  func(name string, kind Kind) error
}

var _ Reporter = ReporterFuncs{}

func (r ReporterFuncs) Macro(name, value string) error {
	if r.OnMacro == nil {
		return nil
	}
	return r.OnMacro(name, value)
}

func (r ReporterFuncs) Typedef(name string, target *Descriptor) error {
	if r.OnTypedef == nil {
		return nil
	}
	return r.OnTypedef(name, target)
}

func (r ReporterFuncs) Function(name string, ret *Descriptor, params []*Descriptor, variadic bool) error {
	if r.OnFunction == nil {
		return nil
	}
	return r.OnFunction(name, ret, params, variadic)
}

func (r ReporterFuncs) Variable(name string, typ *Descriptor) error {
	if r.OnVariable == nil {
		return nil
	}
	return r.OnVariable(name, typ)
}

func (r ReporterFuncs) Enum(name string, members []Enumerator) error {
	if r.OnEnum == nil {
		return nil
	}
	return r.OnEnum(name, members)
}

func (r ReporterFuncs) Struct(name string, members []Member, anonymous bool) error {
	if r.OnStruct == nil {
		return nil
	}
	return r.OnStruct(name, members, anonymous)
}

func (r ReporterFuncs) Union(name string, members []Member, anonymous bool) error {
	if r.OnUnion == nil {
		return nil
	}
	return r.OnUnion(name, members, anonymous)
}

func (r ReporterFuncs) Forward(name string, kind Kind) error {
	if r.OnForward == nil {
		return nil
	}
	return r.OnForward(name, kind)
}
