package mock

import "github.com/fwojciec/socialarchive"

var _ socialarchive.Namer = (*Namer)(nil)

// Namer is a mock implementation of socialarchive.Namer.
type Namer struct {
	DestNameFn func(ref string) string
}

func (n *Namer) DestName(ref string) string {
	return n.DestNameFn(ref)
}
