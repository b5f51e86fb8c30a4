package ccfront

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/cscan/internal/scanner"
	"modernc.org/cc/v3"
)

// segment is a run of lines [from, to) of one file read without an
// intervening #include. to is 0 for the rest of the file.
type segment struct {
	file     string
	from, to int
}

// fileOrder is the translation unit linearised into segments in the order
// the preprocessor reads them.
type fileOrder []segment

// rank returns the index of the segment holding p, or len(o) when p lies
// outside every scanned file.
func (o fileOrder) rank(p scanner.Position) int {
	for i, s := range o {
		if s.file == p.Filename && p.Line >= s.from && (s.to == 0 || p.Line < s.to) {
			return i
		}
	}
	return len(o)
}

type includeWalker struct {
	quote   []string
	angle   []string
	visited map[string]bool
	order   fileOrder
}

// inclusionOrder follows the #include directives of srcs, ignoring
// conditionals, and records where each included file is read. A file is
// entered once; later inclusions are assumed guarded.
func inclusionOrder(srcs []cc.Source, quote, angle []string) fileOrder {
	w := &includeWalker{quote: quote, angle: angle, visited: make(map[string]bool)}
	for _, src := range srcs {
		data := []byte(src.Value)
		if src.Value == "" {
			b, err := os.ReadFile(src.Name)
			if err != nil {
				continue
			}
			data = b
		}
		w.walk(src.Name, data)
	}
	return w.order
}

func (w *includeWalker) walk(file string, src []byte) {
	if w.visited[file] {
		return
	}
	w.visited[file] = true

	from := 1
	line := 0
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line++
		name, angled, ok := includeDirective(sc.Bytes())
		if !ok {
			continue
		}
		path := w.resolve(file, name, angled)
		if path == "" || w.visited[path] {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		w.order = append(w.order, segment{file: file, from: from, to: line + 1})
		w.walk(path, data)
		from = line + 1
	}
	w.order = append(w.order, segment{file: file, from: from})
}

// includeDirective parses `#include "x"`, `#include <x>` and the
// include_next and import variants.
func includeDirective(line []byte) (name string, angled, ok bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '#' {
		return "", false, false
	}
	line = bytes.TrimSpace(line[1:])
	switch {
	case bytes.HasPrefix(line, []byte("include_next")):
		line = line[len("include_next"):]
	case bytes.HasPrefix(line, []byte("include")):
		line = line[len("include"):]
	case bytes.HasPrefix(line, []byte("import")):
		line = line[len("import"):]
	default:
		return "", false, false
	}
	line = bytes.TrimSpace(line)
	if len(line) < 2 {
		return "", false, false
	}
	end := byte('"')
	switch line[0] {
	case '"':
	case '<':
		end = '>'
		angled = true
	default:
		// computed includes are not followed
		return "", false, false
	}
	i := bytes.IndexByte(line[1:], end)
	if i <= 0 {
		return "", false, false
	}
	return string(line[1 : i+1]), angled, true
}

// resolve searches for name the way cc/v3 does: quoted names through the
// include paths, where "@" is the including file's directory, angled names
// through the system paths.
func (w *includeWalker) resolve(from, name string, angled bool) string {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return name
	}
	paths := w.quote
	if angled {
		paths = w.angle
	}
	dir := filepath.Dir(from)
	for _, p := range paths {
		if p == "@" {
			p = dir
		}
		candidate := filepath.Join(p, name)
		if strings.HasPrefix(name, "."+string(filepath.Separator)) {
			if wd, err := os.Getwd(); err == nil {
				candidate = filepath.Join(wd, name)
			}
		}
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate
		}
	}
	return ""
}
