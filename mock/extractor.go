package mock

import (
	"context"

	"github.com/fwojciec/socialarchive"
)

var _ socialarchive.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of socialarchive.Extractor.
type Extractor struct {
	ExtractTextFn func(ctx context.Context, path string) (string, error)
}

func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	return e.ExtractTextFn(ctx, path)
}
