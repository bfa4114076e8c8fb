package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/socialarchive"
)

// Ensure Resolver implements socialarchive.Resolver at compile time.
var _ socialarchive.Resolver = (*Resolver)(nil)

// Resolver finds attachment files by probing the candidates of
// socialarchive.Strategies in order.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve maps the link's upload prefix to the course's upload directory and
// returns the first candidate that names a regular file inside dir.
// Candidates that would escape dir are skipped.
func (r *Resolver) Resolve(ctx context.Context, dir string, link socialarchive.Link) (*socialarchive.ResolvedAttachment, error) {
	ref := socialarchive.MapUploadPath(link.URL)
	for _, strategy := range socialarchive.Strategies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate, ok := strategy.Generate(ref)
		if !ok || !filepath.IsLocal(candidate) {
			continue
		}
		path := filepath.Join(dir, candidate)
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return &socialarchive.ResolvedAttachment{
				Path:     path,
				Ref:      link.URL,
				Created:  link.Created,
				Strategy: strategy.Name,
			}, nil
		}
	}
	return nil, socialarchive.Errorf(socialarchive.ENOTFOUND, "failed to find path %q in %q", ref, dir)
}
