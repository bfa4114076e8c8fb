package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/socialarchive"
	"github.com/fwojciec/socialarchive/archive"
	"github.com/fwojciec/socialarchive/etree"
	"github.com/fwojciec/socialarchive/fs"
	"github.com/fwojciec/socialarchive/goquery"
	"github.com/fwojciec/socialarchive/poppler"
	sslog "github.com/fwojciec/socialarchive/slog"
	"github.com/fwojciec/socialarchive/slug"
	"github.com/fwojciec/socialarchive/sqlite"
	"github.com/fwojciec/socialarchive/toml"
	"github.com/google/uuid"
)

// Dependencies holds the I/O of a command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config         string        `short:"c" env:"SOCIALARCHIVE_CONFIG" help:"TOML config file"`
	Jobs           int           `short:"j" help:"Courses processed at once (default: one per CPU)"`
	Isolate        bool          `help:"Skip a failing course instead of aborting the run"`
	Pdftotext      string        `help:"Text extraction executable (default: pdftotext)"`
	ExtractTimeout time.Duration `help:"Timeout for a single text extraction, rounded up to whole seconds (default: 60s)"`
	Cache          string        `help:"Extraction cache database"`
	LogFormat      string        `help:"Log format: text or json"`
	Verbose        bool          `short:"v" help:"Log debug records"`
	Summary        bool          `short:"s" help:"Print a summary table when done"`
	Source         string        `arg:"" type:"existingdir" help:"Exported course tree"`
	Output         string        `arg:"" help:"Output directory, replaced on success"`
}

// config merges the config file with the flags. Flags left at their zero
// value do not override the file.
func (c *CLI) config() (toml.Config, error) {
	cfg := toml.Default()
	if c.Config != "" {
		loaded, err := toml.Load(c.Config)
		if err != nil {
			return toml.Config{}, err
		}
		cfg = loaded
	}

	if c.Jobs != 0 {
		cfg.Jobs = c.Jobs
	}
	cfg.Isolate = cfg.Isolate || c.Isolate
	if c.Pdftotext != "" {
		cfg.Extract.Binary = c.Pdftotext
	}
	if c.ExtractTimeout < 0 {
		return toml.Config{}, socialarchive.Errorf(socialarchive.EINVALID, "extract timeout must be positive")
	}
	if c.ExtractTimeout > 0 {
		cfg.Extract.TimeoutSeconds = int((c.ExtractTimeout + time.Second - 1) / time.Second)
	}
	if c.Cache != "" {
		path, err := toml.ExpandPath(c.Cache)
		if err != nil {
			return toml.Config{}, err
		}
		cfg.Cache = path
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	cfg.Log.Verbose = cfg.Log.Verbose || c.Verbose

	if err := cfg.Validate(); err != nil {
		return toml.Config{}, err
	}
	return cfg, nil
}

// Run wires the archiver and archives the source tree into the output
// directory.
func (c *CLI) Run(m *Main, deps *Dependencies) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	logger, err := sslog.NewLogger(deps.Stderr, cfg.Log.Format, cfg.Log.Verbose)
	if err != nil {
		return err
	}
	logger = logger.With("run", uuid.NewString())

	src, err := filepath.Abs(c.Source)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(c.Output)
	if err != nil {
		return err
	}
	if err := checkOverlap(src, out); err != nil {
		return err
	}

	pdftotext := poppler.NewExtractor(
		poppler.WithBinary(cfg.Extract.Binary),
		poppler.WithTimeout(cfg.Extract.Timeout()),
	)
	if err := pdftotext.Check(); err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: install poppler-utils or set --pdftotext")
		return err
	}
	var extractor socialarchive.Extractor = sslog.NewLoggingExtractor(pdftotext, logger)

	var cache *sqlite.CachingExtractor
	if cfg.Cache != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache), 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
		m.DB = sqlite.NewDB(cfg.Cache)
		if err := m.DB.Open(deps.Ctx); err != nil {
			return fmt.Errorf("failed to open cache at %q: %w", cfg.Cache, err)
		}
		cache = sqlite.NewCachingExtractor(m.DB, extractor)
		extractor = cache
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create output parent: %w", err)
	}
	store := fs.NewFileStore(filepath.Dir(out), filepath.Base(out))
	if err := store.Reset(); err != nil {
		return fmt.Errorf("failed to clear staging directory: %w", err)
	}

	archiver := &archive.Archiver{
		Source:      fs.NewSource(src),
		Resolver:    sslog.NewLoggingResolver(fs.NewResolver(), logger),
		Extractor:   extractor,
		Namer:       slug.NewNamer(),
		Store:       store,
		Report:      etree.NewReport(),
		Scanner:     goquery.NewReferenceScanner(),
		Logger:      logger,
		Concurrency: cfg.Jobs,
		Isolate:     cfg.Isolate,
	}

	result, err := archiver.Run(deps.Ctx)
	if err != nil {
		return err
	}

	if c.Summary {
		var hits, misses int64
		if cache != nil {
			hits, misses = cache.Stats()
		}
		fmt.Fprintln(deps.Stdout, renderSummary(result, hits, misses))
	}
	return nil
}

// checkOverlap rejects an output directory inside the source tree or the
// reverse, since the run replaces the output wholesale.
func checkOverlap(src, out string) error {
	if within(src, out) || within(out, src) {
		return socialarchive.Errorf(socialarchive.EINVALID, "source %q and output %q overlap", src, out)
	}
	return nil
}

func within(parent, path string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
