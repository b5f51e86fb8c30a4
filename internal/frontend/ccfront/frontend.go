// Package ccfront runs the scanner's two passes on top of modernc.org/cc/v3.
package ccfront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Alia5/cscan/internal/scanner"
	"modernc.org/cc/v3"
)

// ErrFrontEnd wraps every preprocessing or parse failure.
var ErrFrontEnd = errors.New("front end failed")

// FrontEnd implements scanner.FrontEnd with modernc.org/cc/v3.
type FrontEnd struct {
	opts       Options
	abi        cc.ABI
	predefined string
	inc        []string
	sysInc     []string
	logger     *slog.Logger
}

var _ scanner.FrontEnd = (*FrontEnd)(nil)

// New prepares a front end. With Options.HostCPP set, the host preprocessor
// is queried once for predefined macros and include paths.
func New(opts Options, logger *slog.Logger) (*FrontEnd, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := opts.ParseArgs(); err != nil {
		return nil, err
	}

	goos, goarch := opts.target()
	abi, err := cc.NewABI(goos, goarch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrontEnd, err)
	}

	fe := &FrontEnd{
		opts:       opts,
		abi:        abi,
		predefined: builtinPredefined(goos, goarch),
		logger:     logger,
	}
	if opts.HostCPP != "" {
		predefined, inc, sysInc, err := cc.HostConfig(opts.HostCPP)
		if err != nil {
			return nil, fmt.Errorf("%w: host config %s: %v", ErrFrontEnd, opts.HostCPP, err)
		}
		logger.Debug("Host preprocessor configured", "cpp", opts.HostCPP, "includes", len(inc), "sysIncludes", len(sysInc))
		fe.predefined = predefined
		fe.inc = inc
		fe.sysInc = sysInc
	}
	return fe, nil
}

func (fe *FrontEnd) config() *cc.Config {
	return &cc.Config{
		ABI:       fe.abi,
		MaxErrors: 10,
	}
}

func (fe *FrontEnd) includePaths() []string {
	// "@" stands for the directory of the including file.
	inc := []string{"@"}
	for _, p := range fe.opts.IncludePaths {
		inc = append(inc, absPath(p))
	}
	inc = append(inc, fe.inc...)
	return append(inc, fe.sysIncludePaths()...)
}

func (fe *FrontEnd) sysIncludePaths() []string {
	var sys []string
	for _, p := range fe.opts.SysIncludePaths {
		sys = append(sys, absPath(p))
	}
	return append(sys, fe.sysInc...)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (fe *FrontEnd) sources(file string) ([]cc.Source, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrontEnd, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrontEnd, err)
	}
	srcs := []cc.Source{
		{Name: "<predefined>", Value: fe.predefined + fe.opts.defineLines()},
		{Name: "<builtin>", Value: builtinPrelude},
	}
	for _, inc := range fe.opts.Includes {
		srcs = append(srcs, cc.Source{Name: absPath(inc)})
	}
	return append(srcs, cc.Source{Name: abs, Value: string(data), DoNotCache: true}), nil
}

// Macros preprocesses file and returns the macro table as it stands at the
// end of the translation unit, in the order the definitions are read.
func (fe *FrontEnd) Macros(ctx context.Context, file string) ([]scanner.MacroEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	srcs, err := fe.sources(file)
	if err != nil {
		return nil, err
	}
	ast, err := guard(func() (*cc.AST, error) {
		return cc.Parse(fe.config(), fe.includePaths(), fe.sysIncludePaths(), srcs)
	})
	if err != nil {
		return nil, err
	}
	if ast == nil {
		return nil, nil
	}

	events := make([]scanner.MacroEvent, 0, len(ast.Macros))
	for id, m := range ast.Macros {
		p := m.Position()
		ev := scanner.MacroEvent{
			Kind: scanner.MacroDefine,
			Name: id.String(),
			Pos:  position(p),
		}
		if m.IsFnLike() {
			ev.Kind = scanner.MacroDefineFunction
		} else {
			ev.Tokens = macroTokens(m)
		}
		events = append(events, ev)
	}
	order := inclusionOrder(srcs, fe.includePaths(), fe.sysIncludePaths())
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i].Pos, events[j].Pos
		if ra, rb := order.rank(a), order.rank(b); ra != rb {
			return ra < rb
		}
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return events[i].Name < events[j].Name
	})
	fe.logger.Debug("Macro pass done", "file", file, "macros", len(events))
	return events, nil
}

// guard turns a panic inside cc/v3 into an ErrFrontEnd error so one
// unsupported construct fails the file instead of the process.
func guard(run func() (*cc.AST, error)) (ast *cc.AST, err error) {
	defer func() {
		if r := recover(); r != nil {
			ast, err = nil, fmt.Errorf("%w: internal parser error: %v", ErrFrontEnd, r)
		}
	}()
	ast, err = run()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrontEnd, err)
	}
	return ast, nil
}

func macroTokens(m *cc.Macro) []scanner.Token {
	var out []scanner.Token
	for _, t := range m.ReplacementTokens() {
		if t.Rune == ' ' || t.Rune == '\n' {
			continue
		}
		text := t.Src.String()
		if text == "" {
			text = t.Value.String()
		}
		out = append(out, scanner.Token{Ident: t.Rune == cc.IDENTIFIER, Text: text})
	}
	return out
}

// Decls parses and type checks file and returns its top-level declarations.
func (fe *FrontEnd) Decls(ctx context.Context, file string) ([]scanner.Decl, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	srcs, err := fe.sources(file)
	if err != nil {
		return nil, err
	}
	ast, err := guard(func() (*cc.AST, error) {
		return cc.Translate(fe.config(), fe.includePaths(), fe.sysIncludePaths(), srcs)
	})
	if err != nil {
		return nil, err
	}
	if ast == nil {
		return nil, nil
	}
	decls := walkDecls(ast)
	fe.logger.Debug("Declaration pass done", "file", file, "decls", len(decls))
	return decls, nil
}
