package manifest

import (
	"fmt"

	"github.com/itchyny/gojq"
)

// Query is a compiled jq program applied to each manifest.
type Query struct {
	src string
	q   *gojq.Query
}

func ParseQuery(src string) (*Query, error) {
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", src, err)
	}
	return &Query{src: src, q: q}, nil
}

// Run evaluates the query against a plain document and collects every
// result.
func (q *Query) Run(doc any) ([]any, error) {
	var out []any
	iter := q.q.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("query %q: %w", q.src, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (q *Query) String() string { return q.src }
