package mock

import (
	"context"

	"github.com/fwojciec/socialarchive"
)

var _ socialarchive.CourseSource = (*CourseSource)(nil)

// CourseSource is a mock implementation of socialarchive.CourseSource.
type CourseSource struct {
	ListCoursesFn    func(ctx context.Context) ([]socialarchive.CourseRef, error)
	LoadCourseFn     func(ctx context.Context, ref socialarchive.CourseRef) (*socialarchive.Course, error)
	ReadPageBodyFn   func(ctx context.Context, ref socialarchive.CourseRef, page *socialarchive.Page) (string, error)
	ReadAttachmentFn func(ctx context.Context, att *socialarchive.ResolvedAttachment) ([]byte, error)
}

func (s *CourseSource) ListCourses(ctx context.Context) ([]socialarchive.CourseRef, error) {
	return s.ListCoursesFn(ctx)
}

func (s *CourseSource) LoadCourse(ctx context.Context, ref socialarchive.CourseRef) (*socialarchive.Course, error) {
	return s.LoadCourseFn(ctx, ref)
}

func (s *CourseSource) ReadPageBody(ctx context.Context, ref socialarchive.CourseRef, page *socialarchive.Page) (string, error) {
	return s.ReadPageBodyFn(ctx, ref, page)
}

func (s *CourseSource) ReadAttachment(ctx context.Context, att *socialarchive.ResolvedAttachment) ([]byte, error) {
	return s.ReadAttachmentFn(ctx, att)
}
