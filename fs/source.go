package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/socialarchive"
)

// Manifest filenames inside each course directory.
const (
	PagesManifest = "00-pages.json"
	InfoManifest  = "00-info.json"
)

// Ensure Source implements socialarchive.CourseSource at compile time.
var _ socialarchive.CourseSource = (*Source)(nil)

// Source reads courses from an exported tree laid out as
// <root>/<letter>/<code>/.
type Source struct {
	root string
}

// NewSource creates a Source rooted at root.
func NewSource(root string) *Source {
	return &Source{root: root}
}

// ListCourses returns every course directory. os.ReadDir sorts by name, so
// the result is ordered by letter, then code. Plain files are ignored.
func (s *Source) ListCourses(ctx context.Context) ([]socialarchive.CourseRef, error) {
	letters, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var refs []socialarchive.CourseRef
	for _, letter := range letters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !letter.IsDir() {
			continue
		}
		letterDir := filepath.Join(s.root, letter.Name())
		codes, err := os.ReadDir(letterDir)
		if err != nil {
			return nil, err
		}
		for _, code := range codes {
			if !code.IsDir() {
				continue
			}
			refs = append(refs, socialarchive.CourseRef{
				Letter: letter.Name(),
				Code:   code.Name(),
				Dir:    filepath.Join(letterDir, code.Name()),
			})
		}
	}
	return refs, nil
}

// LoadCourse reads the page list and info manifests of a course.
func (s *Source) LoadCourse(ctx context.Context, ref socialarchive.CourseRef) (*socialarchive.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pages []*socialarchive.Page
	if err := readJSON(filepath.Join(ref.Dir, PagesManifest), &pages); err != nil {
		return nil, err
	}

	var info socialarchive.CourseInfo
	if err := readJSON(filepath.Join(ref.Dir, InfoManifest), &info); err != nil {
		return nil, err
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if info.Code != ref.Code {
		return nil, socialarchive.Errorf(socialarchive.EINVALID,
			"course info code %q does not match directory %q", info.Code, ref.Code)
	}

	return &socialarchive.Course{Ref: ref, Info: info, Pages: pages}, nil
}

// ReadPageBody returns the <slug>.html body of a page.
func (s *Source) ReadPageBody(ctx context.Context, ref socialarchive.CourseRef, page *socialarchive.Page) (string, error) {
	path := filepath.Join(ref.Dir, page.BodyName())
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", socialarchive.Errorf(socialarchive.ENOTFOUND, "page body %q not found", path)
	} else if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadAttachment returns the content of a resolved attachment.
func (s *Source) ReadAttachment(ctx context.Context, att *socialarchive.ResolvedAttachment) ([]byte, error) {
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return nil, socialarchive.Errorf(socialarchive.EUNREADABLE, "failed to read %q: %v", att.Path, err)
	}
	return data, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return socialarchive.Errorf(socialarchive.ENOTFOUND, "failed to open %q", path)
	} else if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		var appErr *socialarchive.Error
		if errors.As(err, &appErr) {
			return socialarchive.Errorf(appErr.Code, "failed to parse %q: %s", path, appErr.Message)
		}
		return socialarchive.Errorf(socialarchive.EINVALID, "failed to parse %q: %v", path, err)
	}
	return nil
}
