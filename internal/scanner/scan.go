package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// MacroEventKind tells a macro table how to apply a MacroEvent.
type MacroEventKind int

const (
	MacroDefine MacroEventKind = iota
	MacroDefineFunction
	MacroUndefine
)

// MacroEvent is a #define or #undef seen by the preprocessor.
type MacroEvent struct {
	Kind   MacroEventKind
	Name   string
	Tokens []Token
	Pos    Position
}

// FrontEnd is a C front end able to run the two passes over one file.
type FrontEnd interface {
	// Macros preprocesses file and returns macro events in source order.
	Macros(ctx context.Context, file string) ([]MacroEvent, error)
	// Decls parses file and returns top-level declarations in source order.
	Decls(ctx context.Context, file string) ([]Decl, error)
}

// FoldTracer observes every macro fold attempt. value is empty when err is
// non nil.
type FoldTracer interface {
	TraceFold(name string, raw []Token, value string, err error)
}

// Scanner runs the macro pass and then the declaration pass over a file.
type Scanner struct {
	FrontEnd  FrontEnd
	Scope     Scope
	FoldDepth int
	Logger    *slog.Logger
	Tracer    FoldTracer
}

// Scan reports every exported macro and declaration of file to r. An empty
// scope restricts the scan to file itself.
func (s *Scanner) Scan(ctx context.Context, file string, r Reporter) error {
	scope := s.Scope
	if scope.Len() == 0 {
		scope = NewScope(file)
	}
	logger := s.logger().With("file", file)

	events, err := s.FrontEnd.Macros(ctx, file)
	if err != nil {
		return fmt.Errorf("macro pass: %w", err)
	}
	n, err := s.reportMacros(events, scope, r, logger)
	if err != nil {
		return err
	}
	logger.Debug("Macro pass complete", "events", len(events), "reported", n)

	if err := ctx.Err(); err != nil {
		return err
	}

	decls, err := s.FrontEnd.Decls(ctx, file)
	if err != nil {
		return fmt.Errorf("declaration pass: %w", err)
	}
	filter := NewFilter(scope, r)
	for _, d := range decls {
		if err := filter.Visit(d); err != nil {
			return err
		}
	}
	logger.Debug("Declaration pass complete", "decls", len(decls))
	return nil
}

func (s *Scanner) reportMacros(events []MacroEvent, scope Scope, r Reporter, logger *slog.Logger) (int, error) {
	table := NewMacroTable()
	for _, ev := range events {
		switch ev.Kind {
		case MacroDefine:
			table.Define(ev.Name, ev.Tokens, ev.Pos)
		case MacroDefineFunction:
			table.DefineFunction(ev.Name, ev.Pos)
		case MacroUndefine:
			table.Undefine(ev.Name)
		}
	}

	var names []string
	for _, def := range table.Defined() {
		if scope.Contains(def.Pos.Filename) {
			names = append(names, def.Name)
		}
	}
	constants := table.Resolve(names, s.FoldDepth, func(def *MacroDef, err error) {
		logger.Debug("Dropping macro", "name", def.Name, "pos", def.Pos, "error", err)
		s.trace(def.Name, def.Tokens, "", err)
	})

	for i, c := range constants {
		s.trace(c.Name, c.Raw, c.Value, nil)
		if err := r.Macro(c.Name, c.Value); err != nil {
			return i, err
		}
	}
	return len(constants), nil
}

func (s *Scanner) trace(name string, raw []Token, value string, err error) {
	if s.Tracer != nil {
		s.Tracer.TraceFold(name, raw, value, err)
	}
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
