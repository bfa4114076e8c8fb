// Package etree builds the delivery manifest with github.com/beevik/etree.
package etree

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/socialarchive"
)

// Ensure Builder implements socialarchive.ElementWriter at compile time.
var _ socialarchive.ElementWriter = (*Builder)(nil)

// Builder writes one detached element subtree. It keeps a single stack of
// open elements, so nesting is always well formed.
type Builder struct {
	holder   *etree.Element
	stack    []*etree.Element
	closed   bool
	attached bool
}

// NewBuilder creates a new, empty Builder.
func NewBuilder() *Builder {
	return &Builder{holder: etree.NewElement("fragment")}
}

// Start opens a child of the current element.
func (b *Builder) Start(name string, attrs ...socialarchive.Attr) error {
	if b.closed {
		return socialarchive.Errorf(socialarchive.EINVALID, "start %q on closed builder", name)
	}
	if name == "" {
		return socialarchive.Errorf(socialarchive.EINVALID, "element name required")
	}

	el := b.current().CreateElement(name)
	for _, a := range attrs {
		el.CreateAttr(a.Name, a.Value)
	}
	b.stack = append(b.stack, el)
	return nil
}

// Text appends character data to the current element.
func (b *Builder) Text(text string) error {
	if len(b.stack) == 0 {
		return socialarchive.Errorf(socialarchive.EINVALID, "text outside of an element")
	}
	b.stack[len(b.stack)-1].CreateText(text)
	return nil
}

// End closes the current element.
func (b *Builder) End() error {
	if len(b.stack) == 0 {
		return socialarchive.Errorf(socialarchive.EINVALID, "end without an open element")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// Close finishes the fragment.
func (b *Builder) Close() error {
	if n := len(b.stack); n > 0 {
		names := make([]string, n)
		for i, el := range b.stack {
			names[i] = el.Tag
		}
		return socialarchive.Errorf(socialarchive.EINVALID, "%d element(s) still open: %s", n, strings.Join(names, "/"))
	}
	b.closed = true
	return nil
}

// Depth returns the number of open elements.
func (b *Builder) Depth() int {
	return len(b.stack)
}

// Elements returns the top-level elements written so far.
func (b *Builder) Elements() []*etree.Element {
	return b.holder.ChildElements()
}

func (b *Builder) current() *etree.Element {
	if len(b.stack) == 0 {
		return b.holder
	}
	return b.stack[len(b.stack)-1]
}
