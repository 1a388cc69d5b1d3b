package formats

import (
	"context"
	"io"

	"github.com/travigo/hrdf/pkg/dataimporter/issues"
)

// Result summarises one parsed file.
type Result struct {
	Records int
	Issues  issues.List
}

// Format parses a single dataset file. Recoverable record defects are
// reported in the Result; a returned error means the file could not be read
// and the load must stop.
type Format interface {
	ParseFile(ctx context.Context, r io.Reader) (Result, error)
}

// FormatFunc adapts a function to the Format interface.
type FormatFunc func(ctx context.Context, r io.Reader) (Result, error)

func (f FormatFunc) ParseFile(ctx context.Context, r io.Reader) (Result, error) {
	return f(ctx, r)
}
