package socialarchive

import "io"

// Report document constants. Element and attribute names are consumed by the
// downstream schema and must not change.
const (
	ReportFilename = "social.xml"
	SystemName     = "Social"

	SchemaNamespace = "Schema_social"
	SchemaLocation  = "Schema_social schema-social.xsd"
	XSINamespace    = "http://www.w3.org/2001/XMLSchema-instance"

	ElemRoot         = "Leveransobjekt"
	ElemSystemName   = "SystemNamn"
	ElemCourse       = "Kurs"
	ElemCourseCode   = "Kurskod"
	ElemCourseName   = "Kursnamn"
	ElemContent      = "Innehall"
	ElemOccasion     = "Kurstillfalle"
	ElemOccasionCode = "Kurstillfalleskod"
	ElemNode         = "Nod"
	ElemAttachment   = "Bilaga"
	AttrLang         = "Lang"
	AttrLink         = "Lank"
	AttrCreated      = "Skapad"
	AttrModified     = "Andrad"
	AttrFilename     = "Filnamn"
	AttrSize         = "Storlek"
	AttrUploadDate   = "Uppladdningsdatum"
)

// Attr is an XML attribute.
type Attr struct {
	Name  string
	Value string
}

// ElementWriter emits a well-nested element tree. Every Start must be
// matched by an End, in reverse order.
type ElementWriter interface {
	Start(name string, attrs ...Attr) error
	Text(text string) error
	End() error

	// Close returns EINVALID if any element is still open.
	Close() error
}

// Report assembles the delivery manifest from independently built course
// fragments. Fragments appear in the order they are attached.
type Report interface {
	io.WriterTo

	// NewFragment returns a detached writer for one course subtree.
	NewFragment() ElementWriter

	// Attach appends a closed fragment under the root element.
	Attach(fragment ElementWriter) error
}
