package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/socialarchive"
)

// Compile-time interface verification.
var _ socialarchive.Extractor = (*CachingExtractor)(nil)

// hashContent computes the xxHash of data as a hex string.
func hashContent(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// CachingExtractor remembers the text of documents by content hash, so a
// document is only handed to the wrapped extractor once.
type CachingExtractor struct {
	db     *DB
	next   socialarchive.Extractor
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachingExtractor creates a new CachingExtractor.
func NewCachingExtractor(db *DB, next socialarchive.Extractor) *CachingExtractor {
	return &CachingExtractor{db: db, next: next}
}

// ExtractText returns the cached text of the document at path, or extracts
// and stores it. Only successful extractions are cached.
func (e *CachingExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The wrapped extractor reports unreadable input in its own terms.
		return e.next.ExtractText(ctx, path)
	}
	hash := hashContent(data)

	text, found, err := e.lookup(ctx, hash, len(data))
	if err != nil {
		return "", err
	}
	if found {
		e.hits.Add(1)
		return text, nil
	}
	e.misses.Add(1)

	text, err = e.next.ExtractText(ctx, path)
	if err != nil {
		return "", err
	}
	if err := e.store(ctx, hash, len(data), text); err != nil {
		return "", err
	}
	return text, nil
}

// Stats returns the number of cache hits and misses since creation.
func (e *CachingExtractor) Stats() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}

func (e *CachingExtractor) lookup(ctx context.Context, hash string, size int) (string, bool, error) {
	var text string
	err := e.db.QueryRowContext(ctx, `
		SELECT text FROM extractions WHERE hash = ? AND size = ?
	`, hash, size).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read extraction cache: %w", err)
	}
	return text, true, nil
}

func (e *CachingExtractor) store(ctx context.Context, hash string, size int, text string) error {
	_, err := e.db.ExecContext(ctx, `
		INSERT INTO extractions (hash, size, text, extracted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET size = excluded.size, text = excluded.text, extracted_at = excluded.extracted_at
	`, hash, size, text, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write extraction cache: %w", err)
	}
	return nil
}
