// Package toml loads socialarchive settings from TOML files using
// github.com/pelletier/go-toml/v2.
package toml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/socialarchive"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings of an archive run.
type Config struct {
	// Jobs bounds the number of courses processed at once; 0 means one per CPU.
	Jobs int `toml:"jobs"`
	// Isolate keeps going when a course fails instead of aborting the run.
	Isolate bool `toml:"isolate"`
	// Cache is the extraction cache database; empty disables caching.
	Cache   string        `toml:"cache"`
	Extract ExtractConfig `toml:"extract"`
	Log     LogConfig     `toml:"log"`
}

// ExtractConfig configures the external text extractor.
type ExtractConfig struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LogConfig configures diagnostics output.
type LogConfig struct {
	Format  string `toml:"format"`
	Verbose bool   `toml:"verbose"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Extract: ExtractConfig{
			Binary:         "pdftotext",
			TimeoutSeconds: 60,
		},
		Log: LogConfig{
			Format: "text",
		},
	}
}

// Timeout returns the extraction timeout as a duration.
func (c ExtractConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate returns an error if the config contains invalid fields.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return socialarchive.Errorf(socialarchive.EINVALID, "jobs must not be negative")
	}
	if strings.TrimSpace(c.Extract.Binary) == "" {
		return socialarchive.Errorf(socialarchive.EINVALID, "extract binary required")
	}
	if c.Extract.TimeoutSeconds <= 0 {
		return socialarchive.Errorf(socialarchive.EINVALID, "extract timeout must be positive")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return socialarchive.Errorf(socialarchive.EINVALID, "unknown log format %q", c.Log.Format)
	}
	return nil
}

// Load decodes the file at path over the defaults. A missing file returns
// ENOTFOUND and unknown keys return EINVALID.
func Load(path string) (Config, error) {
	cfg := Default()

	expanded, err := ExpandPath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, socialarchive.Errorf(socialarchive.ENOTFOUND, "config file %q not found", expanded)
	} else if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return Config{}, socialarchive.Errorf(socialarchive.EINVALID, "unknown config keys in %q:\n%s", expanded, missing.String())
		}
		return Config{}, socialarchive.Errorf(socialarchive.EINVALID, "parse config %q: %v", expanded, err)
	}

	cfg.Cache, err = ExpandPath(cfg.Cache)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ExpandPath resolves a leading ~ to the home directory and makes the path
// absolute. Empty paths stay empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else if len(path) > 1 && (path[1] == '/' || path[1] == '\\') {
			path = filepath.Join(home, path[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return absolute, nil
}
