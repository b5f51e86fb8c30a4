package ccfront

import (
	"fmt"
	"runtime"
	"strings"
)

// Options configures the C front end. Args holds raw compiler style flags
// and is folded into the other fields by ParseArgs.
type Options struct {
	IncludePaths    []string
	SysIncludePaths []string
	Defines         []string // NAME or NAME=VALUE
	Undefines       []string
	Includes        []string // files included before the scanned file
	Args            []string

	// HostCPP names the host preprocessor used to discover predefined macros
	// and system include paths. Empty uses the builtin prelude only.
	HostCPP string

	GOOS   string
	GOARCH string

	// macros keeps -D and -U in command line order.
	macros []macroArg
}

type macroArg struct {
	undef bool
	text  string
}

// ParseArgs folds -I, -isystem, -D, -U and -include flags from Args into o.
// Both "-Ifoo" and "-I foo" forms are accepted. Defines and Undefines are
// applied first; -D and -U from Args follow in the order given.
func (o *Options) ParseArgs() error {
	o.macros = o.macros[:0]
	for _, d := range o.Defines {
		o.macros = append(o.macros, macroArg{text: d})
	}
	for _, u := range o.Undefines {
		o.macros = append(o.macros, macroArg{undef: true, text: u})
	}

	args := o.Args
	for i := 0; i < len(args); i++ {
		a := args[i]
		value := func(flag string) (string, error) {
			if v := strings.TrimPrefix(a, flag); v != "" {
				return strings.TrimPrefix(v, "="), nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag %s needs an argument", flag)
			}
			i++
			return args[i], nil
		}

		var err error
		var v string
		switch {
		case strings.HasPrefix(a, "-isystem"):
			if v, err = value("-isystem"); err == nil {
				o.SysIncludePaths = append(o.SysIncludePaths, v)
			}
		case strings.HasPrefix(a, "-include"):
			if v, err = value("-include"); err == nil {
				o.Includes = append(o.Includes, v)
			}
		case strings.HasPrefix(a, "-I"):
			if v, err = value("-I"); err == nil {
				o.IncludePaths = append(o.IncludePaths, v)
			}
		case strings.HasPrefix(a, "-D"):
			if v, err = value("-D"); err == nil {
				o.Defines = append(o.Defines, v)
				o.macros = append(o.macros, macroArg{text: v})
			}
		case strings.HasPrefix(a, "-U"):
			if v, err = value("-U"); err == nil {
				o.Undefines = append(o.Undefines, v)
				o.macros = append(o.macros, macroArg{undef: true, text: v})
			}
		case strings.HasPrefix(a, "-std="), strings.HasPrefix(a, "-W"), a == "-x", strings.HasPrefix(a, "-f"):
			if a == "-x" {
				i++
			}
		default:
			return fmt.Errorf("unsupported front-end argument %q", a)
		}
		if err != nil {
			return err
		}
	}
	o.Args = nil
	return nil
}

func (o *Options) target() (goos, goarch string) {
	goos, goarch = o.GOOS, o.GOARCH
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	return goos, goarch
}

// defineLines renders -D and -U flags as preprocessor directives, in the
// order ParseArgs saw them.
func (o *Options) defineLines() string {
	var b strings.Builder
	for _, m := range o.macros {
		if m.undef {
			fmt.Fprintf(&b, "#undef %s\n", m.text)
			continue
		}
		name, value, ok := strings.Cut(m.text, "=")
		if !ok {
			value = "1"
		}
		fmt.Fprintf(&b, "#define %s %s\n", name, value)
	}
	return b.String()
}
