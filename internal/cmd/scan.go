package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/cscan/internal/configpaths"
	"github.com/Alia5/cscan/internal/frontend/ccfront"
	"github.com/Alia5/cscan/internal/log"
	"github.com/Alia5/cscan/internal/manifest"
	"github.com/Alia5/cscan/internal/meta"
	"github.com/Alia5/cscan/internal/scanner"
	"golang.org/x/sync/errgroup"
)

// MacroConfig controls macro constant folding.
type MacroConfig struct {
	Depth int `help:"Maximum nested macro expansion depth" default:"5" env:"CSCAN_MACROS_DEPTH"`
}

// Scan reports the exported macros and declarations of each file.
type Scan struct {
	Files []string `arg:"" name:"file" help:"C headers or sources to scan" type:"existingfile"`

	Scope   []string    `help:"Additional files whose declarations are exported" env:"CSCAN_SCOPE"`
	Include []string    `short:"I" help:"Add an include search path" env:"CSCAN_INCLUDE"`
	Define  []string    `short:"D" sep:"none" help:"Predefine a macro as NAME or NAME=VALUE" env:"CSCAN_DEFINE"`
	ISystem []string    `name:"isystem" help:"Add a system include search path" env:"CSCAN_ISYSTEM"`
	Arg     []string    `sep:"none" help:"Raw front-end argument (-I, -isystem, -D, -U, -include); use --arg=-DX" env:"CSCAN_ARG"`
	HostCPP string      `name:"host-cpp" help:"Host preprocessor queried for predefined macros and include paths; empty uses the builtin prelude" env:"CSCAN_HOST_CPP"`
	Macros  MacroConfig `embed:"" prefix:"macros."`

	Format   string `help:"Output format" enum:"json,yaml,toml" default:"json" env:"CSCAN_FORMAT"`
	Output   string `short:"o" help:"Destination file (defaults to stdout)" env:"CSCAN_OUTPUT"`
	Compress string `help:"Output compression" enum:"none,zstd" default:"none" env:"CSCAN_COMPRESS"`
	Query    string `help:"jq program applied to each manifest" env:"CSCAN_QUERY"`
	Jobs     int    `short:"j" help:"Files scanned in parallel" default:"4" env:"CSCAN_JOBS"`
}

// Run is called by Kong when the scan command is executed.
func (s *Scan) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.Output == "" {
		return s.Execute(ctx, logger, rawLogger, os.Stdout)
	}
	if err := configpaths.EnsureDir(s.Output); err != nil {
		return err
	}
	f, err := os.Create(s.Output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := s.Execute(ctx, logger, rawLogger, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Execute scans every file and writes the manifests to w in input order.
func (s *Scan) Execute(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, w io.Writer) error {
	if manifest.NormalizeFormat(s.Format) == "" {
		return fmt.Errorf("unsupported format: %s", s.Format)
	}
	var query *manifest.Query
	if s.Query != "" {
		q, err := manifest.ParseQuery(s.Query)
		if err != nil {
			return err
		}
		query = q
	}

	fe, err := ccfront.New(ccfront.Options{
		IncludePaths:    s.Include,
		SysIncludePaths: s.ISystem,
		Defines:         s.Define,
		Args:            s.Arg,
		HostCPP:         s.HostCPP,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to set up front end: %w", err)
	}

	runID := manifest.NewRunID()
	logger.Info("Starting scan", "files", len(s.Files), "run", runID)

	manifests := make([]*manifest.Manifest, len(s.Files))
	g, gctx := errgroup.WithContext(ctx)
	if s.Jobs > 0 {
		g.SetLimit(s.Jobs)
	}
	for i, file := range s.Files {
		i, file := i, file
		g.Go(func() error {
			m, err := s.scanFile(gctx, fe, runID, file, logger, rawLogger)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			manifests[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := manifest.Write(w, manifest.WriteOptions{Format: s.Format, Compress: s.Compress, Query: query}, manifests...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (s *Scan) scanFile(ctx context.Context, fe scanner.FrontEnd, runID, file string, logger *slog.Logger, rawLogger log.RawLogger) (*manifest.Manifest, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	sc := &scanner.Scanner{
		FrontEnd:  fe,
		Scope:     scanner.NewScope(append([]string{file}, s.Scope...)...),
		FoldDepth: s.Macros.Depth,
		Logger:    logger,
	}
	if rawLogger != nil {
		sc.Tracer = rawLogger
	}

	c := meta.NewCollector(file)
	if err := sc.Scan(ctx, file, c); err != nil {
		return nil, err
	}
	counts := c.Unit.Counts()
	logger.Debug("Scanned file", "file", file,
		"macros", counts[meta.EntryMacro],
		"functions", counts[meta.EntryFunction],
		"records", counts[meta.EntryStruct]+counts[meta.EntryUnion])
	return manifest.New(runID, c.Unit, src), nil
}
