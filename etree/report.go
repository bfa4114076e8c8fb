package etree

import (
	"io"

	"github.com/beevik/etree"
	"github.com/fwojciec/socialarchive"
)

// Ensure Report implements socialarchive.Report at compile time.
var _ socialarchive.Report = (*Report)(nil)

// DefaultIndent is the number of spaces per nesting level in the output.
const DefaultIndent = 2

// Report owns the manifest document and its root element.
type Report struct {
	doc    *etree.Document
	root   *etree.Element
	indent int
}

// NewReport creates a document holding the root element and the system name.
func NewReport() *Report {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(socialarchive.ElemRoot)
	root.CreateAttr("xmlns", socialarchive.SchemaNamespace)
	root.CreateAttr("xmlns:xsi", socialarchive.XSINamespace)
	root.CreateAttr("xsi:schemaLocation", socialarchive.SchemaLocation)
	root.CreateElement(socialarchive.ElemSystemName).SetText(socialarchive.SystemName)

	return &Report{doc: doc, root: root, indent: DefaultIndent}
}

// NewFragment returns a detached Builder for one course subtree.
func (r *Report) NewFragment() socialarchive.ElementWriter {
	return NewBuilder()
}

// Attach moves the elements of a closed fragment under the root element.
// A fragment can be attached once.
func (r *Report) Attach(fragment socialarchive.ElementWriter) error {
	b, ok := fragment.(*Builder)
	if !ok {
		return socialarchive.Errorf(socialarchive.EINVALID, "fragment %T was not created by this report", fragment)
	}
	if !b.closed {
		return socialarchive.Errorf(socialarchive.EINVALID, "fragment is not closed")
	}
	if b.attached {
		return socialarchive.Errorf(socialarchive.EINVALID, "fragment already attached")
	}

	for _, el := range b.Elements() {
		b.holder.RemoveChild(el)
		r.root.AddChild(el)
	}
	b.attached = true
	return nil
}

// Len returns the number of elements under the root, SystemNamn included.
func (r *Report) Len() int {
	return len(r.root.ChildElements())
}

// WriteTo writes the indented document to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	r.doc.Indent(r.indent)
	return r.doc.WriteTo(w)
}
