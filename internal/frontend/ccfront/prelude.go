package ccfront

import (
	"fmt"
	"strings"
)

// builtinPrelude is parsed ahead of every file. It maps common GCC
// extensions onto what the parser accepts and declares the types the type
// checker looks up by name.
const builtinPrelude = `#define __extension__
#define __restrict
#define __restrict__
#define __inline inline
#define __inline__ inline
#define __signed__ signed
#define __const const
#define __volatile__ volatile

typedef void *__builtin_va_list;
typedef __SIZE_TYPE__ size_t;
typedef __PTRDIFF_TYPE__ ptrdiff_t;
typedef __WCHAR_TYPE__ wchar_t;
`

// builtinPredefined stands in for a host preprocessor's predefined macros
// when none is configured.
func builtinPredefined(goos, goarch string) string {
	sizeType, ptrdiffType, wcharType := "unsigned long", "long", "int"
	ptrBits := 64
	switch goarch {
	case "386", "arm", "mips", "mipsle":
		sizeType, ptrdiffType = "unsigned int", "int"
		ptrBits = 32
	}
	if goos == "windows" {
		wcharType = "unsigned short"
		if ptrBits == 64 {
			sizeType, ptrdiffType = "unsigned long long", "long long"
		}
	}

	var b strings.Builder
	b.WriteString("#define __STDC__ 1\n")
	b.WriteString("#define __STDC_HOSTED__ 1\n")
	b.WriteString("#define __STDC_VERSION__ 201112L\n")
	// Enables the GNU keywords, __int128 among them.
	b.WriteString("#define __GNUC__ 4\n")
	b.WriteString("#define __CHAR_BIT__ 8\n")
	b.WriteString("#define __INTMAX_WIDTH__ 64\n")
	fmt.Fprintf(&b, "#define __SIZE_TYPE__ %s\n", sizeType)
	fmt.Fprintf(&b, "#define __PTRDIFF_TYPE__ %s\n", ptrdiffType)
	fmt.Fprintf(&b, "#define __WCHAR_TYPE__ %s\n", wcharType)
	fmt.Fprintf(&b, "#define __SIZEOF_POINTER__ %d\n", ptrBits/8)
	return b.String()
}
