package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Alia5/cscan/internal/config"
	"github.com/Alia5/cscan/internal/configpaths"
	"github.com/Alia5/cscan/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// newParser builds the command line parser. Flags and environment variables
// override configuration files, which are read json first, then yaml, then
// toml.
func newParser(cli *config.CLI, args []string, options ...kong.Option) (*kong.Kong, error) {
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(findUserConfig(args))
	options = append([]kong.Option{
		kong.Name("cscan"),
		kong.Description("Exported surface scanner for C headers"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	}, options...)
	return kong.New(cli, options...)
}

func run(args []string) int {
	var cli config.CLI
	parser, err := newParser(&cli, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cscan:", err)
		return 2
	}
	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	logger, closers, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		return 2
	}
	rawLogger, rawCloser := openRawLogger(cli.Log, logger)
	if rawCloser != nil {
		closers = append(closers, rawCloser)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))
	if err := ctx.Run(); err != nil {
		logger.Error("cscan failed", "command", ctx.Command(), "error", err)
		return 1
	}
	return 0
}

// openRawLogger picks the destination of the macro fold trace: the raw log
// file when one is set, stderr at trace level, otherwise nowhere.
func openRawLogger(cfg config.LogConfig, logger *slog.Logger) (log.RawLogger, io.Closer) {
	switch {
	case cfg.RawFile != "":
		f, err := os.OpenFile(cfg.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cfg.RawFile, "error", err)
			return log.NewRaw(nil), nil
		}
		return log.NewRaw(f), f
	case cfg.Level == "trace":
		return log.NewRaw(os.Stderr), nil
	default:
		return log.NewRaw(nil), nil
	}
}

// findUserConfig returns the --config value from args, falling back to
// CSCAN_CONFIG.
func findUserConfig(args []string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" {
			if i+1 < len(args) {
				return args[i+1]
			}
			break
		}
	}
	return os.Getenv("CSCAN_CONFIG")
}
