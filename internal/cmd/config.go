package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/Alia5/cscan/internal/configpaths"
	"github.com/Alia5/cscan/internal/manifest"
	"github.com/alecthomas/kong"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit writes a configuration file listing every flag of a command
// with its default value.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"scan"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
	Global  bool   `help:"Write to the user configuration directory instead of the current directory"`
}

// Run is called by Kong when the config init command is executed.
func (c *ConfigInit) Run() error {
	format := manifest.NormalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	tmpl, err := commandTemplate(c.Command)
	if err != nil {
		return err
	}

	dest, err := c.destination(format)
	if err != nil {
		return err
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !c.Force {
		mode |= os.O_EXCL
	}
	f, err := os.OpenFile(dest, mode, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s exists; use --force to overwrite", dest)
	}
	if err != nil {
		return err
	}
	if err := manifest.Encode(f, format, map[string]any(tmpl)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (c *ConfigInit) destination(format string) (string, error) {
	switch {
	case c.Output != "":
		return c.Output, nil
	case c.Global:
		return configpaths.DefaultNamedConfigPath("cscan", format)
	default:
		return "cscan." + format, nil
	}
}

// template is a configuration document laid out the way kong's JSON
// resolver looks flags up: dashes become underscores and every dot in a
// flag name opens a nested table.
type template map[string]any

// commandTemplate builds the template of the named command from kong's
// model of it. Positional arguments are never read from configuration and
// are left out.
func commandTemplate(command string) (template, error) {
	var grammar struct {
		Scan Scan `cmd:""`
	}
	k, err := kong.New(&grammar, kong.Name("cscan"))
	if err != nil {
		return nil, err
	}
	for _, node := range k.Model.Children {
		if node.Name != command {
			continue
		}
		tmpl := template{}
		for _, f := range node.Flags {
			if err := tmpl.set(f.Name, f.Default, f.Target.Type()); err != nil {
				return nil, fmt.Errorf("--%s: %w", f.Name, err)
			}
		}
		return tmpl, nil
	}
	return nil, fmt.Errorf("unknown command %q; expected 'scan'", command)
}

func (t template) set(flag, def string, typ reflect.Type) error {
	v, err := templateValue(typ, def)
	if err != nil {
		return err
	}
	path := strings.Split(strings.ReplaceAll(flag, "-", "_"), ".")
	table := map[string]any(t)
	for _, key := range path[:len(path)-1] {
		sub, ok := table[key].(map[string]any)
		if !ok {
			sub = map[string]any{}
			table[key] = sub
		}
		table = sub
	}
	table[path[len(path)-1]] = v
	return nil
}

// templateValue converts a kong default tag to the value written for a
// flag of type typ. Lists always start out empty.
func templateValue(typ reflect.Type, def string) (any, error) {
	switch typ.Kind() {
	case reflect.String:
		return def, nil
	case reflect.Bool:
		if def == "" {
			return false, nil
		}
		return strconv.ParseBool(def)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if def == "" {
			return int64(0), nil
		}
		return strconv.ParseInt(def, 10, 64)
	case reflect.Slice:
		return []any{}, nil
	default:
		return nil, fmt.Errorf("no template value for %s", typ)
	}
}
