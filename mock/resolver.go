package mock

import (
	"context"

	"github.com/fwojciec/socialarchive"
)

var _ socialarchive.Resolver = (*Resolver)(nil)

// Resolver is a mock implementation of socialarchive.Resolver.
type Resolver struct {
	ResolveFn func(ctx context.Context, dir string, link socialarchive.Link) (*socialarchive.ResolvedAttachment, error)
}

func (r *Resolver) Resolve(ctx context.Context, dir string, link socialarchive.Link) (*socialarchive.ResolvedAttachment, error) {
	return r.ResolveFn(ctx, dir, link)
}
