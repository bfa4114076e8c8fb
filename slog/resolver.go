package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/socialarchive"
)

// Ensure LoggingResolver implements socialarchive.Resolver.
var _ socialarchive.Resolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a Resolver with debug logging.
type LoggingResolver struct {
	next   socialarchive.Resolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next socialarchive.Resolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs which strategy matched.
func (r *LoggingResolver) Resolve(ctx context.Context, dir string, link socialarchive.Link) (att *socialarchive.ResolvedAttachment, err error) {
	defer func(begin time.Time) {
		strategy := ""
		if att != nil {
			strategy = att.Strategy
		}
		r.logger.DebugContext(ctx, "attachment resolution",
			"dir", dir,
			"ref", link.URL,
			"strategy", strategy,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Resolve(ctx, dir, link)
}
