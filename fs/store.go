// Package fs provides the on-disk input tree and output package.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/socialarchive"
)

// Ensure FileStore implements socialarchive.OutputStore at compile time.
var _ socialarchive.OutputStore = (*FileStore)(nil)

// FileStore implements socialarchive.OutputStore with atomic update semantics.
// Files are written to a temporary directory, then moved into place on Commit.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

func (s *FileStore) courseDir(ref socialarchive.CourseRef) string {
	return filepath.Join(s.tempDir(), ref.Letter, ref.Code)
}

// Reset discards a staging directory left behind by an interrupted run.
func (s *FileStore) Reset() error {
	return os.RemoveAll(s.tempDir())
}

func (s *FileStore) CreateCourse(ref socialarchive.CourseRef) error {
	if err := checkName(ref.Letter); err != nil {
		return err
	}
	if err := checkName(ref.Code); err != nil {
		return err
	}
	dir := s.courseDir(ref)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %q: %w", dir, err)
	}
	return nil
}

func (s *FileStore) WriteFile(ref socialarchive.CourseRef, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	path := filepath.Join(s.courseDir(ref), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

func (s *FileStore) RemoveCourse(ref socialarchive.CourseRef) error {
	return os.RemoveAll(s.courseDir(ref))
}

func (s *FileStore) WriteReport(name string, report io.WriterTo) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	path := filepath.Join(s.tempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	if _, err := report.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return f.Close()
}

func (s *FileStore) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	// Atomically rename temp to final
	if err := os.Rename(s.tempDir(), s.finalDir()); err != nil {
		return err
	}

	return nil
}

func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// checkName rejects names that would leave their directory.
func checkName(name string) error {
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return socialarchive.Errorf(socialarchive.EINVALID, "path traversal in %q", name)
	}
	return nil
}
