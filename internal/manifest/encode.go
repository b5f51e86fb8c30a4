package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Encoder serializes a plain document (maps, slices and scalars).
type Encoder func(w io.Writer, doc any) error

var encoders = map[string]Encoder{
	"json": func(w io.Writer, doc any) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
	"yaml": func(w io.Writer, doc any) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	},
	"toml": func(w io.Writer, doc any) error {
		m, ok := doc.(map[string]any)
		if !ok {
			return errors.New("toml output needs a table at the root")
		}
		// TreeFromMap turns lists of maps into arrays of tables.
		tree, err := toml.TreeFromMap(m)
		if err != nil {
			return err
		}
		_, err = tree.WriteTo(w)
		return err
	},
}

// NormalizeFormat maps format aliases onto an encoder name, or "".
func NormalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// Encode writes a plain document to w in the named format.
func Encode(w io.Writer, format string, doc any) error {
	enc, ok := encoders[NormalizeFormat(format)]
	if !ok {
		return fmt.Errorf("unsupported format: %s", format)
	}
	return enc(w, doc)
}

// WriteOptions controls Write.
type WriteOptions struct {
	Format   string // json, yaml or toml
	Compress string // none or zstd
	Query    *Query
}

// Write encodes manifests to w as a single document. One manifest is
// written as the root; several are wrapped in a "manifests" list. With a
// query, its results replace the manifests and are always wrapped in a
// "results" list, however many there are.
func Write(w io.Writer, opts WriteOptions, manifests ...*Manifest) (err error) {
	enc, ok := encoders[NormalizeFormat(opts.Format)]
	if !ok {
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}

	key := "manifests"
	if opts.Query != nil {
		key = "results"
	}
	docs := make([]any, 0, len(manifests))
	for _, m := range manifests {
		doc, err := Plain(m)
		if err != nil {
			return fmt.Errorf("%s: %w", m.File, err)
		}
		if opts.Query == nil {
			docs = append(docs, doc)
			continue
		}
		results, err := opts.Query.Run(doc)
		if err != nil {
			return fmt.Errorf("%s: %w", m.File, err)
		}
		docs = append(docs, results...)
	}

	var root any = map[string]any{key: docs}
	if len(manifests) == 1 && opts.Query == nil {
		root = docs[0]
	}

	switch strings.ToLower(opts.Compress) {
	case "", "none":
	case "zstd":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		w = zw
	default:
		return fmt.Errorf("unsupported compression: %s", opts.Compress)
	}
	return enc(w, root)
}

// Plain converts v to the generic maps, slices and scalars every encoder and
// jq understand, honoring v's json tags. Integral numbers stay int.
func Plain(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return numbers(out), nil
}

func numbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = numbers(e)
		}
	case []any:
		for i, e := range x {
			x[i] = numbers(e)
		}
	case json.Number:
		if i, err := x.Int64(); err == nil && int64(int(i)) == i {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	}
	return v
}
