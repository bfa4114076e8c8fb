package socialarchive

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"sort"
)

// CourseRef locates one course in the exported input tree.
type CourseRef struct {
	// Letter is the first-level directory, usually the code's first letter.
	Letter string
	// Code is the course code and the second-level directory name.
	Code string
	// Dir is the course directory in the input tree.
	Dir string
}

// RelPath returns the slash-separated path of name relative to the tree
// root, as it appears in report links.
func (r CourseRef) RelPath(name string) string {
	return path.Join(r.Letter, r.Code, name)
}

// CourseInfo is the metadata record of a course.
type CourseInfo struct {
	Code  string            `json:"code"`
	Names map[string]string `json:"name"`
}

// Validate returns an error if the info record contains invalid fields.
func (i *CourseInfo) Validate() error {
	if i.Code == "" {
		return Errorf(EINVALID, "course info code required")
	}
	return nil
}

// Languages returns the language tags of the localized names in sorted order.
func (i *CourseInfo) Languages() []string {
	langs := make([]string, 0, len(i.Names))
	for lang := range i.Names {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Course is a loaded course manifest.
type Course struct {
	Ref   CourseRef
	Info  CourseInfo
	Pages []*Page
}

// Page is one course page as recorded in the page list manifest.
// Its document body lives next to the manifest as <slug>.html.
type Page struct {
	Slug     string
	Created  string
	Modified string
	Links    []Link
	// Group is the occasion identifier. It is meaningful only when Grouped
	// is set; an occasion may be recorded with an empty identifier.
	Group   string
	Grouped bool
}

// BodyName returns the filename of the page's document body.
func (p *Page) BodyName() string {
	return p.Slug + ".html"
}

// FileLinks returns the links eligible for resolution, in manifest order.
func (p *Page) FileLinks() []Link {
	var links []Link
	for _, link := range p.Links {
		if link.Category == LinkFile {
			links = append(links, link)
		}
	}
	return links
}

// UnmarshalJSON decodes a page list entry.
func (p *Page) UnmarshalJSON(data []byte) error {
	var raw struct {
		Slug         string `json:"slug"`
		CreatedTime  string `json:"created_time"`
		LastModified struct {
			Time string `json:"time"`
		} `json:"last_modified"`
		Links      []Link  `json:"links"`
		RoundGroup *string `json:"roundgroup"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Slug == "" {
		return Errorf(EINVALID, "page slug required")
	}
	p.Slug = raw.Slug
	p.Created = raw.CreatedTime
	p.Modified = raw.LastModified.Time
	p.Links = raw.Links
	p.Group, p.Grouped = "", false
	if raw.RoundGroup != nil {
		p.Group, p.Grouped = *raw.RoundGroup, true
	}
	return nil
}

// Link is a reference recorded on a page.
type Link struct {
	// URL is the reference exactly as stored. It may carry malformed
	// percent-encoding or a mix of encodings.
	URL string `json:"url"`
	// Created is the upload timestamp; empty when not recorded.
	Created  string       `json:"created_time"`
	Category LinkCategory `json:"category"`
}

// LinkCategory classifies a recorded link.
type LinkCategory int

// Link categories. Only LinkFile links are resolved to attachments.
const (
	LinkFile LinkCategory = iota
	LinkExternal
	LinkInCourse
)

// ParseLinkCategory maps a manifest category value to a LinkCategory.
// A missing category denotes a file.
func ParseLinkCategory(s string) (LinkCategory, error) {
	switch s {
	case "", "file":
		return LinkFile, nil
	case "ext":
		return LinkExternal, nil
	case "incourse":
		return LinkInCourse, nil
	}
	return 0, Errorf(EINVALID, "unknown link category %q", s)
}

// String returns the manifest spelling of the category.
func (c LinkCategory) String() string {
	switch c {
	case LinkFile:
		return "file"
	case LinkExternal:
		return "ext"
	case LinkInCourse:
		return "incourse"
	}
	return "unknown"
}

// UnmarshalJSON decodes a category string, treating null as a file link.
func (c *LinkCategory) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return Errorf(EINVALID, "link category must be a string")
	}
	var v string
	if s != nil {
		v = *s
	}
	parsed, err := ParseLinkCategory(v)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ResolvedAttachment is a File link that was found on disk.
type ResolvedAttachment struct {
	// Path is the attachment's location in the input tree.
	Path string
	// Ref is the originating link's reference string.
	Ref string
	// Created is the upload timestamp; empty when not recorded.
	Created string
	// Strategy names the candidate that matched.
	Strategy string
}

// CourseSource reads exported courses from the input tree.
type CourseSource interface {
	// ListCourses returns every course in the tree, ordered by letter, then code.
	ListCourses(ctx context.Context) ([]CourseRef, error)

	// LoadCourse reads the page list and info records of a course.
	// Returns ENOTFOUND if a manifest is missing and EINVALID if it is malformed.
	LoadCourse(ctx context.Context, ref CourseRef) (*Course, error)

	// ReadPageBody returns the document body of a page.
	ReadPageBody(ctx context.Context, ref CourseRef, page *Page) (string, error)

	// ReadAttachment returns the content of a resolved attachment.
	// Returns EUNREADABLE if the file cannot be read.
	ReadAttachment(ctx context.Context, att *ResolvedAttachment) ([]byte, error)
}

// Resolver maps recorded references to files in a course directory.
type Resolver interface {
	// Resolve returns the attachment a File link refers to.
	// Returns ENOTFOUND if no candidate path exists.
	Resolve(ctx context.Context, dir string, link Link) (*ResolvedAttachment, error)
}

// OutputStore persists the delivery package. Writes go to a staging area;
// Commit makes them permanent and Abort discards them.
type OutputStore interface {
	// CreateCourse creates the destination directory of a course.
	CreateCourse(ref CourseRef) error

	// WriteFile writes one file into a course directory.
	WriteFile(ref CourseRef, name string, data []byte) error

	// RemoveCourse deletes a course directory and everything in it.
	RemoveCourse(ref CourseRef) error

	// WriteReport writes the root manifest document.
	WriteReport(name string, report io.WriterTo) error

	Commit() error
	Abort() error
}
