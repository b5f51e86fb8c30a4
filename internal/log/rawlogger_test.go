package log

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/Alia5/cscan/internal/scanner"
	"github.com/stretchr/testify/assert"
)

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	r := NewRaw(&buf)

	raw := []scanner.Token{scanner.Punct("("), scanner.Ident("LIMIT"), scanner.Punct("*"), scanner.Punct("2"), scanner.Punct(")")}
	r.TraceFold("DOUBLE_LIMIT", raw, "( 10 * 2 )", nil)
	r.TraceFold("AREA", []scanner.Token{scanner.Ident("SQUARE")}, "", scanner.ErrRejected)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if assert.Len(t, lines, 2) {
		assert.Regexp(t, regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} DOUBLE_LIMIT raw: \[\( \$LIMIT \* 2 \)\] => \( 10 \* 2 \)$`), string(lines[0]))
		assert.Contains(t, string(lines[1]), "AREA raw: [$SQUARE] rejected:")
	}

	// nil writer is a no-op
	NewRaw(nil).TraceFold("X", nil, "1", nil)
}
