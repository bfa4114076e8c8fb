package mock

import "github.com/fwojciec/socialarchive"

var _ socialarchive.ReferenceScanner = (*ReferenceScanner)(nil)

// ReferenceScanner is a mock implementation of socialarchive.ReferenceScanner.
type ReferenceScanner struct {
	ReferencesFn func(doc string) ([]string, error)
}

func (s *ReferenceScanner) References(doc string) ([]string, error) {
	return s.ReferencesFn(doc)
}
