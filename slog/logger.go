// Package slog provides log/slog decorators and logger setup for socialarchive.
package slog

import (
	"io"
	"log/slog"

	"github.com/fwojciec/socialarchive"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger returns a logger writing records in format to w. Debug records
// are kept only when verbose is set.
func NewLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	switch format {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, socialarchive.Errorf(socialarchive.EINVALID, "unknown log format %q", format)
}
