package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/socialarchive"
)

// Ensure LoggingExtractor implements socialarchive.Extractor.
var _ socialarchive.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   socialarchive.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next socialarchive.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// ExtractText delegates to the wrapped extractor and logs the operation.
func (e *LoggingExtractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	defer func(begin time.Time) {
		e.logger.DebugContext(ctx, "text extraction",
			"path", path,
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractText(ctx, path)
}
