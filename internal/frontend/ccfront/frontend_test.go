package ccfront

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alia5/cscan/internal/meta"
	"github.com/Alia5/cscan/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/cc/v3"
)

const pointHeader = `#ifndef POINT_H
#define POINT_H

#define LIMIT 10
#define DOUBLE_LIMIT (LIMIT * 2)
#define SQUARE(x) ((x) * (x))
#define AREA SQUARE(LIMIT)
#define NAME "point"

typedef struct {
	int x;
	int y;
} Point;

struct Node {
	struct Node *next;
	unsigned flags : 3;
	double weight;
};

struct Opaque;

union Value {
	int i;
	float f;
};

enum Color { RED, GREEN = 5, BLUE };

typedef enum { OFF, ON } Mode;

extern int counter;
static int hidden;
extern Mode mode;

int area(Point p);
static int helper(void);
int old_style();
int logf_(const char *fmt, ...);
char name_buf[16];

#endif
`

func writeHeader(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func scan(t *testing.T, file string, opts Options) *meta.Unit {
	t.Helper()
	fe, err := New(opts, nil)
	require.NoError(t, err)

	c := meta.NewCollector(file)
	s := &scanner.Scanner{FrontEnd: fe}
	require.NoError(t, s.Scan(context.Background(), file, c))
	return c.Unit
}

func byName(entries []meta.Entry, name string) (meta.Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return meta.Entry{}, false
}

func TestFrontEndPointHeader(t *testing.T) {
	u := scan(t, writeHeader(t, "point.h", pointHeader), Options{})

	t.Run("macros", func(t *testing.T) {
		macros := u.Filter(meta.EntryMacro)
		var names []string
		for _, m := range macros {
			names = append(names, m.Name)
		}
		assert.Equal(t, []string{"LIMIT", "DOUBLE_LIMIT", "NAME"}, names)
		assert.Equal(t, "10", macros[0].Value)
		assert.Equal(t, "( 10 * 2 )", macros[1].Value)
		assert.Equal(t, `"point"`, macros[2].Value)
	})

	t.Run("anonymous struct through typedef", func(t *testing.T) {
		s, ok := byName(u.Filter(meta.EntryStruct), "Point")
		require.True(t, ok)
		assert.True(t, s.Anonymous)
		require.Len(t, s.Members, 2)
		assert.Equal(t, "x", s.Members[0].Name)
		assert.Equal(t, scanner.Int32, s.Members[1].Type.Int)

		td, ok := byName(u.Filter(meta.EntryTypedef), "Point")
		require.True(t, ok)
		assert.Equal(t, scanner.KindStruct, td.Type.Kind)
		assert.True(t, td.Type.Anonymous)
		assert.Len(t, td.Type.Members, 2)
	})

	t.Run("self-referential struct", func(t *testing.T) {
		s, ok := byName(u.Filter(meta.EntryStruct), "Node")
		require.True(t, ok)
		assert.False(t, s.Anonymous)
		require.Len(t, s.Members, 3)
		next := s.Members[0].Type
		assert.Equal(t, scanner.KindPointer, next.Kind)
		assert.Equal(t, "Node", next.Pointee.Name)
		assert.Empty(t, next.Pointee.Members)
		assert.Equal(t, 3, s.Members[1].BitWidth)
		assert.Equal(t, scanner.FloatDouble, s.Members[2].Type.Float)
	})

	t.Run("forward and union", func(t *testing.T) {
		fwd, ok := byName(u.Filter(meta.EntryForward), "Opaque")
		require.True(t, ok)
		assert.Equal(t, scanner.KindStruct, fwd.Tag)
		_, ok = byName(u.Filter(meta.EntryForward), "Node")
		assert.False(t, ok)

		v, ok := byName(u.Filter(meta.EntryUnion), "Value")
		require.True(t, ok)
		require.Len(t, v.Members, 2)
		assert.Equal(t, scanner.FloatSingle, v.Members[1].Type.Float)
	})

	t.Run("enums", func(t *testing.T) {
		color, ok := byName(u.Filter(meta.EntryEnum), "Color")
		require.True(t, ok)
		assert.Equal(t, []scanner.Enumerator{{Name: "RED", Value: 0}, {Name: "GREEN", Value: 5}, {Name: "BLUE", Value: 6}}, color.Enumerators)

		mode, ok := byName(u.Filter(meta.EntryEnum), "Mode")
		require.True(t, ok)
		assert.Len(t, mode.Enumerators, 2)
	})

	t.Run("variables", func(t *testing.T) {
		vars := u.Filter(meta.EntryVariable)
		_, ok := byName(vars, "hidden")
		assert.False(t, ok)

		counter, ok := byName(vars, "counter")
		require.True(t, ok)
		assert.Equal(t, scanner.Int32, counter.Type.Int)

		mode, ok := byName(vars, "mode")
		require.True(t, ok)
		assert.Equal(t, scanner.KindEnum, mode.Type.Kind)
		assert.Equal(t, "Mode", mode.Type.Name)

		buf, ok := byName(vars, "name_buf")
		require.True(t, ok)
		assert.Equal(t, scanner.KindArray, buf.Type.Kind)
		assert.Equal(t, uint64(16), buf.Type.Len)
	})

	t.Run("functions", func(t *testing.T) {
		fns := u.Filter(meta.EntryFunction)

		area, ok := byName(fns, "area")
		require.True(t, ok)
		require.Len(t, area.Params, 1)
		assert.Equal(t, "Point", area.Params[0].Name)
		assert.Equal(t, scanner.Int32, area.Return.Int)

		helper, ok := byName(fns, "helper")
		require.True(t, ok)
		assert.True(t, helper.Prototyped)
		assert.Empty(t, helper.Params)

		old, ok := byName(fns, "old_style")
		require.True(t, ok)
		assert.False(t, old.Prototyped)

		logf, ok := byName(fns, "logf_")
		require.True(t, ok)
		assert.True(t, logf.Variadic)
		require.Len(t, logf.Params, 1)
		assert.Equal(t, scanner.KindPointer, logf.Params[0].Kind)
		assert.Equal(t, scanner.KindInteger, logf.Params[0].Pointee.Kind)
	})
}

func TestFrontEndScopeExcludesIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.h"), []byte("#define WIDTH 4\ntypedef unsigned char u8;\n"), 0o644))
	main := filepath.Join(dir, "main.h")
	require.NoError(t, os.WriteFile(main, []byte("#include \"types.h\"\n#define HEIGHT (WIDTH + 1)\nu8 pixel(u8 x);\n"), 0o644))

	u := scan(t, main, Options{})
	assert.Equal(t, []string{"macro:HEIGHT", "function:pixel"}, channels(u))
	assert.Equal(t, "( 4 + 1 )", u.Entries[0].Value)
	assert.Equal(t, scanner.UInt8, u.Entries[1].Params[0].Int)
}

func TestFrontEndDefines(t *testing.T) {
	file := writeHeader(t, "flags.h", "#ifdef FEATURE\n#define MODE FEATURE\n#endif\n")
	u := scan(t, file, Options{Args: []string{"-DFEATURE=7"}})
	require.Len(t, u.Entries, 1)
	assert.Equal(t, "7", u.Entries[0].Value)
}

func TestFrontEndErrors(t *testing.T) {
	fe, err := New(Options{}, nil)
	require.NoError(t, err)

	_, err = fe.Decls(context.Background(), filepath.Join(t.TempDir(), "missing.h"))
	assert.ErrorIs(t, err, ErrFrontEnd)

	bad := writeHeader(t, "bad.h", "int broken(;\n")
	_, err = fe.Decls(context.Background(), bad)
	assert.ErrorIs(t, err, ErrFrontEnd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fe.Macros(ctx, bad)
	assert.ErrorIs(t, err, context.Canceled)
}

func channels(u *meta.Unit) []string {
	out := make([]string, 0, len(u.Entries))
	for _, e := range u.Entries {
		out = append(out, string(e.Kind)+":"+e.Name)
	}
	return out
}

func TestFrontEndInt128(t *testing.T) {
	u := scan(t, writeHeader(t, "wide.h", `__int128 wide;
unsigned __int128 uwide;
unsigned long ul;
unsigned char uc;
signed char sc;
`), Options{})

	want := map[string]scanner.IntClass{
		"wide":  scanner.Int128,
		"uwide": scanner.UInt128,
		"ul":    scanner.UInt64,
		"uc":    scanner.UInt8,
		"sc":    scanner.Int8,
	}
	if goos, goarch := (&Options{}).target(); goos == "windows" || goarch == "386" || goarch == "arm" {
		want["ul"] = scanner.UInt32
	}
	vars := u.Filter(meta.EntryVariable)
	require.Len(t, vars, len(want))
	for _, v := range vars {
		assert.Equal(t, scanner.KindInteger, v.Type.Kind, v.Name)
		assert.Equal(t, want[v.Name], v.Type.Int, v.Name)
	}
}

func TestFrontEndUntaggedEnums(t *testing.T) {
	u := scan(t, writeHeader(t, "enums.h", `struct S {
	enum { X, Y } field;
	int plain;
};
enum { LONE } lone;
enum { P0, P1 } *cursor;
typedef enum { OFF, ON } Mode;
enum Tagged { T1, T2 } tagged_var;
`), Options{})

	t.Run("struct member", func(t *testing.T) {
		s, ok := byName(u.Filter(meta.EntryStruct), "S")
		require.True(t, ok)
		require.Len(t, s.Members, 2)
		assert.Equal(t, scanner.KindEnum, s.Members[0].Type.Kind)
		assert.True(t, s.Members[0].Type.Anonymous)
		assert.Empty(t, s.Members[0].Type.Name)
		assert.Equal(t, scanner.KindInteger, s.Members[1].Type.Kind)
	})

	t.Run("variables", func(t *testing.T) {
		vars := u.Filter(meta.EntryVariable)
		lone, ok := byName(vars, "lone")
		require.True(t, ok)
		assert.Equal(t, scanner.KindEnum, lone.Type.Kind)
		assert.True(t, lone.Type.Anonymous)

		cursor, ok := byName(vars, "cursor")
		require.True(t, ok)
		require.Equal(t, scanner.KindPointer, cursor.Type.Kind)
		assert.Equal(t, scanner.KindEnum, cursor.Type.Pointee.Kind)

		tagged, ok := byName(vars, "tagged_var")
		require.True(t, ok)
		assert.Equal(t, scanner.KindEnum, tagged.Type.Kind)
		assert.Equal(t, "Tagged", tagged.Type.Name)
		assert.False(t, tagged.Type.Anonymous)
	})

	t.Run("typedef target", func(t *testing.T) {
		td, ok := byName(u.Filter(meta.EntryTypedef), "Mode")
		require.True(t, ok)
		assert.Equal(t, scanner.KindEnum, td.Type.Kind)
		assert.True(t, td.Type.Anonymous)

		mode, ok := byName(u.Filter(meta.EntryEnum), "Mode")
		require.True(t, ok)
		assert.Len(t, mode.Enumerators, 2)
	})
}

func TestFrontEndQualifiedSpelling(t *testing.T) {
	u := scan(t, writeHeader(t, "quals.h", `extern const char *greeting;
extern char *const fixed;
extern volatile int flag;
extern int plain;
`), Options{})

	want := map[string]string{
		"greeting": "const char *",
		"fixed":    "char * const",
		"flag":     "volatile int",
		"plain":    "int",
	}
	for name, spelling := range want {
		v, ok := byName(u.Filter(meta.EntryVariable), name)
		require.True(t, ok, name)
		assert.Equal(t, spelling, v.Type.Spelling, name)
	}
}

func TestFrontEndMacroInclusionOrder(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "a_inner.h")
	require.NoError(t, os.WriteFile(inner, []byte("#define MIDDLE 2\n"), 0o644))
	main := filepath.Join(dir, "z_main.h")
	require.NoError(t, os.WriteFile(main, []byte("#define FIRST 1\n#include \"a_inner.h\"\n#define LAST 3\n"), 0o644))

	fe, err := New(Options{}, nil)
	require.NoError(t, err)
	c := meta.NewCollector(main)
	s := &scanner.Scanner{FrontEnd: fe, Scope: scanner.NewScope(main, inner)}
	require.NoError(t, s.Scan(context.Background(), main, c))

	assert.Equal(t, []string{"macro:FIRST", "macro:MIDDLE", "macro:LAST"}, channels(c.Unit))
}

func TestFrontEndDefineOrder(t *testing.T) {
	file := writeHeader(t, "mode.h", "#ifdef MODE\n#define OUT MODE\n#endif\n")
	u := scan(t, file, Options{Args: []string{"-DMODE=1", "-UMODE", "-DMODE=2"}})
	require.Len(t, u.Entries, 1)
	assert.Equal(t, "2", u.Entries[0].Value)
}

func TestFrontEndParserPanic(t *testing.T) {
	_, err := guard(func() (*cc.AST, error) { panic("nil dereference") })
	assert.ErrorIs(t, err, ErrFrontEnd)
	assert.ErrorContains(t, err, "nil dereference")

	fe, err := New(Options{}, nil)
	require.NoError(t, err)
	file := writeHeader(t, "complex.h", "_Complex double z;\n")
	assert.NotPanics(t, func() {
		s := &scanner.Scanner{FrontEnd: fe}
		err = s.Scan(context.Background(), file, meta.NewCollector(file))
	})
	assert.Error(t, err)
}
