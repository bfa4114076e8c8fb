// Package slug derives filesystem-safe attachment names using gosimple/slug.
package slug

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/socialarchive"
	"github.com/gosimple/slug"
	"golang.org/x/text/encoding/charmap"
)

// Ensure Namer implements socialarchive.Namer at compile time.
var _ socialarchive.Namer = (*Namer)(nil)

// fallbackName replaces a stem that slugifies to nothing.
const fallbackName = "file"

// Namer converts recorded attachment references into destination filenames.
type Namer struct {
	prefixes []string
}

// NewNamer creates a Namer that strips the given upload prefixes before
// naming. Without prefixes it strips the export's upload directory and the
// web upload path.
func NewNamer(prefixes ...string) *Namer {
	if len(prefixes) == 0 {
		prefixes = []string{socialarchive.UploadDir, socialarchive.UploadURLPrefix}
	}
	return &Namer{prefixes: prefixes}
}

// DestName returns the normalized filename for ref. The stem is slugified and
// the extension kept verbatim, so "01-files/Lab 1+assignment.pdf" becomes
// "lab-1-assignment.pdf".
func (n *Namer) DestName(ref string) string {
	name := n.trimPrefix(ref)
	if strings.Contains(name, "%") {
		name = decodeName(name)
	}
	if stem, ext, ok := splitExt(name); ok {
		return slugify(stem) + "." + ext
	}
	return slugify(name)
}

func (n *Namer) trimPrefix(ref string) string {
	for _, prefix := range n.prefixes {
		if trimmed, ok := strings.CutPrefix(ref, prefix); ok {
			return trimmed
		}
	}
	return ref
}

// decodeName percent-decodes name. Byte sequences that are not UTF-8 are
// read as ISO-8859-1, which maps every byte, so decoding never fails.
func decodeName(name string) string {
	raw := socialarchive.DecodePercent(name)
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(bytes.ToValidUTF8(raw, []byte("\uFFFD")))
	}
	return string(decoded)
}

// splitExt splits on the last dot. Extensions that are empty or not plain
// ASCII alphanumerics are treated as part of the name so they cannot carry
// separators or escapes into the result.
func splitExt(name string) (stem, ext string, ok bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	ext = name[i+1:]
	if ext == "" {
		return "", "", false
	}
	for j := 0; j < len(ext); j++ {
		c := ext[j]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return "", "", false
		}
	}
	return name[:i], ext, true
}

func slugify(s string) string {
	if out := slug.Make(s); out != "" {
		return out
	}
	return fallbackName
}
