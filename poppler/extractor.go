// Package poppler extracts document text with poppler's pdftotext utility.
package poppler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/fwojciec/socialarchive"
)

// Ensure Extractor implements socialarchive.Extractor at compile time.
var _ socialarchive.Extractor = (*Extractor)(nil)

// Default settings.
const (
	DefaultBinary  = "pdftotext"
	DefaultTimeout = 60 * time.Second
)

// benignFailures are complete stderr outputs of pdftotext that mean the
// document has no extractable text rather than that the tool failed.
var benignFailures = [][]byte{
	[]byte("Syntax Error: Document stream is empty\n"),
	[]byte("Command Line Error: Incorrect password\n"),
}

// Extractor runs pdftotext and captures the text it writes to stdout.
type Extractor struct {
	binary  string
	timeout time.Duration
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBinary sets the pdftotext executable name or path.
func WithBinary(binary string) Option {
	return func(e *Extractor) {
		if binary = strings.TrimSpace(binary); binary != "" {
			e.binary = binary
		}
	}
}

// WithTimeout bounds a single extraction. Non-positive durations keep
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Binary returns the configured executable.
func (e *Extractor) Binary() string {
	return e.binary
}

// Timeout returns the bound on a single extraction.
func (e *Extractor) Timeout() time.Duration {
	return e.timeout
}

// Check verifies that the executable can be found.
func (e *Extractor) Check() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%s not found: %w", e.binary, err)
	}
	return nil
}

// ExtractText runs `pdftotext <path> -`. Empty and password-protected
// documents yield "" with a nil error; every other failure, including a
// timeout, returns ETOOL.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, e.binary, path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", socialarchive.Errorf(socialarchive.ETOOL, "%s timed out after %s for %q", e.binary, e.timeout, path)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if isBenign(stderr.Bytes()) {
				return "", nil
			}
			return "", socialarchive.Errorf(socialarchive.ETOOL, "%s failed for %q: %s: %s",
				e.binary, path, exitErr, strings.TrimSpace(stderr.String()))
		}
		return "", socialarchive.Errorf(socialarchive.ETOOL, "%s failed for %q: %v", e.binary, path, err)
	}

	return strings.ToValidUTF8(stdout.String(), "\uFFFD"), nil
}

func isBenign(stderr []byte) bool {
	for _, msg := range benignFailures {
		if bytes.Equal(stderr, msg) {
			return true
		}
	}
	return false
}
