package socialarchive

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

// keywordPattern matches assessment-related terms in Swedish and English.
// Each keyword must stand alone: a letter, digit or underscore on either side
// prevents the match. Go's \b is ASCII-only, so the boundaries are spelled out.
var keywordPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:` +
	`omtenta|tenta|exams?|` +
	`assign?e?ments?|` +
	`labs?|` +
	`[öo]vning|exercises?|` +
	`l[äa]xa|homework|` +
	`inl[äa]mning|submissions?|` +
	`munta|` +
	`quiz|` +
	`examination|` +
	`uppgift|tasks?|` +
	`seminar|` +
	`facit|answer[- ]keys?|` +
	`kontrollskrivning|sals?skrivning|` +
	`formelsamling|formula[- ]sheets?` +
	`)(?:$|[^\p{L}\p{N}_])`)

// IsRelevant reports whether text mentions any assessment keyword.
func IsRelevant(text string) bool {
	return keywordPattern.MatchString(text)
}

// AttachmentKind selects how an attachment's relevance is decided.
type AttachmentKind int

const (
	// KindText attachments are read and scanned as text.
	KindText AttachmentKind = iota
	// KindOpaque attachments are binary formats that are never relevant.
	KindOpaque
	// KindExtract attachments need an external text extractor.
	KindExtract
)

// String returns a short name of the kind.
func (k AttachmentKind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindExtract:
		return "extract"
	}
	return "text"
}

// KindOf classifies an attachment by its lower-cased file extension.
func KindOf(path string) AttachmentKind {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "doc", "docx", "odt": // word processors
		return KindOpaque
	case "dxf": // autocad
		return KindOpaque
	case "idml", "indd": // indesign
		return KindOpaque
	case "jpg", "jpeg", "png", "tif", "tiff", "webm":
		return KindOpaque
	case "mp3", "wav":
		return KindOpaque
	case "pcap": // network dump
		return KindOpaque
	case "ppt", "pptx", "xls", "xlsx":
		return KindOpaque
	case "webarchive", "zip":
		return KindOpaque
	case "pdf", "ai":
		return KindExtract
	}
	return KindText
}

// Extractor turns a document into plain text.
type Extractor interface {
	// ExtractText returns the text of the document at path.
	// An empty or password-protected document yields "" and a nil error.
	// Tool failures return ETOOL.
	ExtractText(ctx context.Context, path string) (string, error)
}
