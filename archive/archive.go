// Package archive selects assessment material from exported courses and
// writes it, with its manifest, into a delivery package.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/fwojciec/socialarchive"
	"golang.org/x/sync/errgroup"
)

// Archiver walks every course of a source tree and archives its relevant
// pages.
type Archiver struct {
	Source    socialarchive.CourseSource
	Resolver  socialarchive.Resolver
	Extractor socialarchive.Extractor
	Namer     socialarchive.Namer
	Store     socialarchive.OutputStore
	Report    socialarchive.Report
	// Scanner is optional. When set, rewritten pages are checked for
	// references into the upload area that were left untouched.
	Scanner socialarchive.ReferenceScanner
	Logger  *slog.Logger

	// Concurrency bounds the courses processed at once; 0 means one per CPU.
	Concurrency int
	// Isolate logs a failing course, removes its output and continues.
	// Otherwise the first failure aborts the run.
	Isolate bool
}

// CourseStatus is the outcome of one course.
type CourseStatus int

const (
	StatusArchived CourseStatus = iota
	StatusSkipped
	StatusFailed
)

// String returns a short name of the status.
func (s CourseStatus) String() string {
	switch s {
	case StatusArchived:
		return "archived"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// CourseResult holds the outcome of archiving a single course.
type CourseResult struct {
	Ref    socialarchive.CourseRef
	Status CourseStatus
	// Pages counts the relevant pages written.
	Pages int
	// Attachments counts the attachments copied.
	Attachments int
	// Missing counts File links that could not be resolved.
	Missing int
	// Unreadable counts resolved attachments that could not be read.
	Unreadable int
	// Bytes is the size of the copied attachments.
	Bytes int64
	Err   error
}

// Result holds the outcome of an archive run, with courses in run order.
type Result struct {
	Courses []CourseResult
}

// Count returns the number of courses with the given status.
func (r *Result) Count(status CourseStatus) int {
	n := 0
	for _, c := range r.Courses {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Totals sums the page, attachment and byte counts of all courses.
func (r *Result) Totals() (pages, attachments int, bytes int64) {
	for _, c := range r.Courses {
		pages += c.Pages
		attachments += c.Attachments
		bytes += c.Bytes
	}
	return pages, attachments, bytes
}

// page is a relevant page waiting to be written. contents holds attachment
// bytes already read during classification.
type page struct {
	page     *socialarchive.Page
	body     string
	atts     []*socialarchive.ResolvedAttachment
	contents map[*socialarchive.ResolvedAttachment][]byte
}

// Run archives every course. Course subtrees are built concurrently and
// attached to the report in course order. On success the report is written
// and the output committed; on failure the output is discarded.
func (a *Archiver) Run(ctx context.Context) (*Result, error) {
	result, err := a.run(ctx)
	if err != nil {
		if abortErr := a.Store.Abort(); abortErr != nil {
			a.Logger.Error("failed to discard output", "err", abortErr)
		}
		return nil, err
	}
	return result, nil
}

func (a *Archiver) run(ctx context.Context) (*Result, error) {
	refs, err := a.Source.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	a.Logger.Info("archive started", "courses", len(refs))

	fragments := make([]socialarchive.ElementWriter, len(refs))
	for i := range refs {
		fragments[i] = a.Report.NewFragment()
	}
	results := make([]CourseResult, len(refs))
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	for i, ref := range refs {
		g.Go(func() error {
			res, err := a.ArchiveCourse(gctx, ref, fragments[i])
			if err != nil {
				err = fmt.Errorf("course %q: %w", ref.Code, err)
				if !a.Isolate || gctx.Err() != nil {
					return err
				}
				a.Logger.Error("course failed", "letter", ref.Letter, "course", ref.Code, "err", err)
				if rmErr := a.Store.RemoveCourse(ref); rmErr != nil {
					return fmt.Errorf("course %q: %w", ref.Code, rmErr)
				}
				res = &CourseResult{Ref: ref, Status: StatusFailed, Err: err}
			}
			results[i] = *res
			a.Logger.Debug("course done",
				"course", ref.Code,
				"status", res.Status,
				"completed", completed.Add(1),
				"total", len(refs),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, res := range results {
		if res.Status != StatusArchived {
			continue
		}
		if err := a.Report.Attach(fragments[i]); err != nil {
			return nil, fmt.Errorf("course %q: %w", res.Ref.Code, err)
		}
	}
	if err := a.Store.WriteReport(socialarchive.ReportFilename, a.Report); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if err := a.Store.Commit(); err != nil {
		return nil, fmt.Errorf("commit output: %w", err)
	}

	result := &Result{Courses: results}
	pages, atts, bytes := result.Totals()
	a.Logger.Info("archive finished",
		"archived", result.Count(StatusArchived),
		"skipped", result.Count(StatusSkipped),
		"failed", result.Count(StatusFailed),
		"pages", pages,
		"attachments", atts,
		"bytes", bytes,
	)
	return result, nil
}

func (a *Archiver) concurrency() int {
	if a.Concurrency > 0 {
		return a.Concurrency
	}
	return runtime.NumCPU()
}

func (a *Archiver) classifier() *Classifier {
	return &Classifier{Source: a.Source, Extractor: a.Extractor, Logger: a.Logger}
}

// ArchiveCourse classifies the pages of one course and, if any is relevant,
// writes them with their attachments and emits the course subtree into w.
// A course without relevant pages leaves no output and w empty.
func (a *Archiver) ArchiveCourse(ctx context.Context, ref socialarchive.CourseRef, w socialarchive.ElementWriter) (*CourseResult, error) {
	course, err := a.Source.LoadCourse(ctx, ref)
	if err != nil {
		return nil, err
	}
	res := &CourseResult{Ref: ref, Status: StatusSkipped}
	classifier := a.classifier()
	classifier.Contents = make(map[*socialarchive.ResolvedAttachment][]byte)

	var ungrouped []*page
	groups := make(map[string][]*page)
	for _, p := range course.Pages {
		body, err := a.Source.ReadPageBody(ctx, ref, p)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", p.Slug, err)
		}
		atts, err := a.resolve(ctx, ref, p, res)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", p.Slug, err)
		}
		relevant, err := classifier.Page(ctx, body, atts)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", p.Slug, err)
		}
		if !relevant {
			for _, att := range atts {
				delete(classifier.Contents, att)
			}
			continue
		}
		entry := &page{page: p, body: body, atts: atts, contents: classifier.Contents}
		if !p.Grouped {
			ungrouped = append(ungrouped, entry)
		} else {
			groups[p.Group] = append(groups[p.Group], entry)
		}
	}
	if len(ungrouped) == 0 && len(groups) == 0 {
		a.Logger.Info("course skipped", "course", ref.Code, "reason", "no relevant pages")
		if err := w.Close(); err != nil {
			return nil, err
		}
		return res, nil
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := a.Store.CreateCourse(ref); err != nil {
		return nil, err
	}
	res.Status = StatusArchived
	names := make(map[string]string)

	if err := w.Start(socialarchive.ElemCourse); err != nil {
		return nil, err
	}
	if err := leaf(w, socialarchive.ElemCourseCode, ref.Code); err != nil {
		return nil, err
	}
	for _, lang := range course.Info.Languages() {
		lattr := socialarchive.Attr{Name: socialarchive.AttrLang, Value: lang}
		if err := leaf(w, socialarchive.ElemCourseName, course.Info.Names[lang], lattr); err != nil {
			return nil, err
		}
	}
	if err := a.writeContent(ctx, ref, w, ungrouped, names, res); err != nil {
		return nil, err
	}
	for _, key := range keys {
		if err := w.Start(socialarchive.ElemOccasion); err != nil {
			return nil, err
		}
		if err := leaf(w, socialarchive.ElemOccasionCode, key); err != nil {
			return nil, err
		}
		if err := a.writeContent(ctx, ref, w, groups[key], names, res); err != nil {
			return nil, err
		}
		if err := w.End(); err != nil {
			return nil, err
		}
	}
	if err := w.End(); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	a.Logger.Info("course archived",
		"course", ref.Code,
		"pages", res.Pages,
		"attachments", res.Attachments,
		"missing", res.Missing,
	)
	return res, nil
}

// resolve finds the File links of p on disk. Misses are logged and counted.
func (a *Archiver) resolve(ctx context.Context, ref socialarchive.CourseRef, p *socialarchive.Page, res *CourseResult) ([]*socialarchive.ResolvedAttachment, error) {
	var atts []*socialarchive.ResolvedAttachment
	for _, link := range p.FileLinks() {
		att, err := a.Resolver.Resolve(ctx, ref.Dir, link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			a.Logger.Warn("attachment not found",
				"course", ref.Code,
				"page", p.Slug,
				"link", link.URL,
				"err", err,
			)
			res.Missing++
			continue
		}
		atts = append(atts, att)
	}
	return atts, nil
}

// writeContent emits one content group. Empty groups are omitted.
func (a *Archiver) writeContent(ctx context.Context, ref socialarchive.CourseRef, w socialarchive.ElementWriter, pages []*page, names map[string]string, res *CourseResult) error {
	if len(pages) == 0 {
		return nil
	}
	if err := w.Start(socialarchive.ElemContent); err != nil {
		return err
	}
	for _, p := range pages {
		if err := a.writePage(ctx, ref, w, p, names, res); err != nil {
			return fmt.Errorf("page %q: %w", p.page.Slug, err)
		}
	}
	return w.End()
}

// writePage copies the readable attachments of p under their normalized
// names, rewrites the body to point at them and emits the page node.
func (a *Archiver) writePage(ctx context.Context, ref socialarchive.CourseRef, w socialarchive.ElementWriter, p *page, names map[string]string, res *CourseResult) error {
	bodyName := p.page.BodyName()
	link, err := reportLink(ref, bodyName)
	if err != nil {
		return err
	}
	if err := w.Start(socialarchive.ElemNode,
		socialarchive.Attr{Name: socialarchive.AttrLink, Value: link},
		socialarchive.Attr{Name: socialarchive.AttrCreated, Value: p.page.Created},
		socialarchive.Attr{Name: socialarchive.AttrModified, Value: p.page.Modified},
	); err != nil {
		return err
	}

	var replacements []socialarchive.Replacement
	for _, att := range p.atts {
		data, err := a.content(ctx, p, att)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			a.Logger.Warn("attachment skipped",
				"course", ref.Code,
				"page", p.page.Slug,
				"link", att.Ref,
				"err", err,
			)
			res.Unreadable++
			continue
		}

		name := a.Namer.DestName(att.Ref)
		if prev, ok := names[name]; ok && prev != att.Ref {
			a.Logger.Warn("attachment name collision",
				"course", ref.Code,
				"page", p.page.Slug,
				"name", name,
				"link", att.Ref,
				"previous", prev,
			)
		}
		names[name] = att.Ref

		attLink, err := reportLink(ref, name)
		if err != nil {
			return err
		}
		if err := a.Store.WriteFile(ref, name, data); err != nil {
			return fmt.Errorf("attachment %q: %w", att.Ref, err)
		}
		replacements = append(replacements, socialarchive.Replacement{From: att.Ref, To: name})

		attrs := []socialarchive.Attr{
			{Name: socialarchive.AttrLink, Value: attLink},
			{Name: socialarchive.AttrFilename, Value: name},
			{Name: socialarchive.AttrSize, Value: strconv.Itoa(len(data))},
		}
		if att.Created != "" {
			attrs = append(attrs, socialarchive.Attr{Name: socialarchive.AttrUploadDate, Value: att.Created})
		}
		if err := w.Start(socialarchive.ElemAttachment, attrs...); err != nil {
			return err
		}
		if err := w.End(); err != nil {
			return err
		}
		res.Attachments++
		res.Bytes += int64(len(data))
	}
	if err := w.End(); err != nil {
		return err
	}

	body := socialarchive.Rewrite(p.body, replacements)
	a.audit(ref, p.page, body)
	if err := a.Store.WriteFile(ref, bodyName, []byte(body)); err != nil {
		return err
	}
	res.Pages++
	return nil
}

// content returns the bytes of att, reusing what classification read.
func (a *Archiver) content(ctx context.Context, p *page, att *socialarchive.ResolvedAttachment) ([]byte, error) {
	if data, ok := p.contents[att]; ok {
		return data, nil
	}
	return a.Source.ReadAttachment(ctx, att)
}

// audit warns about references into the upload area that survived the
// rewrite, such as links that never resolved or embedded images.
func (a *Archiver) audit(ref socialarchive.CourseRef, p *socialarchive.Page, body string) {
	if a.Scanner == nil {
		return
	}
	refs, err := a.Scanner.References(body)
	if err != nil {
		a.Logger.Warn("reference audit failed", "course", ref.Code, "page", p.Slug, "err", err)
		return
	}
	for _, r := range refs {
		if isUploadRef(r) {
			a.Logger.Warn("reference not rewritten", "course", ref.Code, "page", p.Slug, "link", r)
		}
	}
}

func isUploadRef(ref string) bool {
	return strings.HasPrefix(ref, socialarchive.UploadDir) ||
		strings.Contains(ref, socialarchive.UploadURLPrefix)
}

// reportLink returns the report link of a file in the course directory.
// The report can only carry valid UTF-8.
func reportLink(ref socialarchive.CourseRef, name string) (string, error) {
	link := ref.RelPath(name)
	if !utf8.ValidString(link) {
		return "", socialarchive.Errorf(socialarchive.EINVALID, "path %q is not valid UTF-8", link)
	}
	return link, nil
}

// leaf emits an element holding only text.
func leaf(w socialarchive.ElementWriter, name, text string, attrs ...socialarchive.Attr) error {
	if err := w.Start(name, attrs...); err != nil {
		return err
	}
	if err := w.Text(text); err != nil {
		return err
	}
	return w.End()
}
