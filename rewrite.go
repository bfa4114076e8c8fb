package socialarchive

import "strings"

// Replacement relocates one attachment reference inside a document.
type Replacement struct {
	// From is the reference as recorded in the page manifest.
	From string
	// To is the attachment's normalized destination name.
	To string
}

// Rewrite replaces every literal occurrence of each replacement's From with
// its To. Replacements apply in order, so a To that contains a later From is
// rewritten again; callers pass them in manifest order.
func Rewrite(doc string, replacements []Replacement) string {
	for _, r := range replacements {
		if r.From == "" || r.From == r.To {
			continue
		}
		doc = strings.ReplaceAll(doc, r.From, r.To)
	}
	return doc
}

// Namer derives destination filenames for attachments.
type Namer interface {
	// DestName returns a filesystem-safe ASCII filename for a recorded
	// reference. Equal references always yield equal names.
	DestName(ref string) string
}

// ReferenceScanner lists the references a document body points at.
type ReferenceScanner interface {
	// References returns href and src values in document order.
	References(doc string) ([]string, error)
}
