package mock

import (
	"io"

	"github.com/fwojciec/socialarchive"
)

var _ socialarchive.OutputStore = (*OutputStore)(nil)

// OutputStore is a mock implementation of socialarchive.OutputStore.
type OutputStore struct {
	CreateCourseFn func(ref socialarchive.CourseRef) error
	WriteFileFn    func(ref socialarchive.CourseRef, name string, data []byte) error
	RemoveCourseFn func(ref socialarchive.CourseRef) error
	WriteReportFn  func(name string, report io.WriterTo) error
	CommitFn       func() error
	AbortFn        func() error
}

func (s *OutputStore) CreateCourse(ref socialarchive.CourseRef) error {
	return s.CreateCourseFn(ref)
}

func (s *OutputStore) WriteFile(ref socialarchive.CourseRef, name string, data []byte) error {
	return s.WriteFileFn(ref, name, data)
}

func (s *OutputStore) RemoveCourse(ref socialarchive.CourseRef) error {
	return s.RemoveCourseFn(ref)
}

func (s *OutputStore) WriteReport(name string, report io.WriterTo) error {
	return s.WriteReportFn(name, report)
}

func (s *OutputStore) Commit() error {
	return s.CommitFn()
}

func (s *OutputStore) Abort() error {
	return s.AbortFn()
}
