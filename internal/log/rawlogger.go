package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/cscan/internal/scanner"
)

// RawLogger records every macro fold attempt with optional file output.
type RawLogger interface {
	scanner.FoldTracer
}

// rawLogger implements RawLogger with thread-safe log.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// TraceFold emits a single line with timestamp, macro name, raw replacement
// tokens and either the folded value or the rejection.
func (r *rawLogger) TraceFold(name string, raw []scanner.Token, value string, err error) {
	if r.w == nil {
		return
	}

	var rawbuf strings.Builder
	for i, t := range raw {
		if i > 0 {
			rawbuf.WriteByte(' ')
		}
		if t.Ident {
			rawbuf.WriteByte('$')
		}
		rawbuf.WriteString(t.Text)
	}

	result := "=> " + value
	if err != nil {
		result = "rejected: " + err.Error()
	}

	line := fmt.Sprintf("%s %s raw: [%s] %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		name,
		rawbuf.String(),
		result)

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
