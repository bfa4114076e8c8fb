package socialarchive

import "strings"

// Upload locations. Attachment links are recorded against the web upload
// path; the export stores the files under UploadDir in each course directory.
const (
	UploadURLPrefix = "/social/upload/"
	UploadDir       = "01-files/"
)

// Resolution strategy names, in evaluation order.
const (
	StrategyLiteral            = "literal"
	StrategyPlusToSpace        = "plus-to-space"
	StrategyEncodedPlusToSpace = "encoded-plus-to-space"
	StrategyPercentDecoded     = "percent-decoded"
	StrategyReencodedFilename  = "reencoded-filename"
)

// Strategy derives one lookup candidate from a reference. Generate reports
// false when the strategy does not apply to the reference.
type Strategy struct {
	Name     string
	Generate func(ref string) (string, bool)
}

// Candidate is a path, relative to the course directory, to probe for an
// attachment.
type Candidate struct {
	Strategy string
	Path     string
}

// Strategies returns the resolution strategies in the order they must be
// tried. Cheap and common cases come first, encoding repairs last.
func Strategies() []Strategy {
	return []Strategy{
		{Name: StrategyLiteral, Generate: func(ref string) (string, bool) {
			return ref, true
		}},
		{Name: StrategyPlusToSpace, Generate: func(ref string) (string, bool) {
			return strings.ReplaceAll(ref, "+", "%20"), true
		}},
		{Name: StrategyEncodedPlusToSpace, Generate: func(ref string) (string, bool) {
			return strings.ReplaceAll(ref, "%2B", "%20"), true
		}},
		{Name: StrategyPercentDecoded, Generate: func(ref string) (string, bool) {
			return string(DecodePercent(ref)), true
		}},
		{Name: StrategyReencodedFilename, Generate: func(ref string) (string, bool) {
			i := strings.LastIndexByte(ref, '/')
			if i < 0 {
				return "", false
			}
			return ref[:i+1] + EncodePercent(ref[i+1:]), true
		}},
	}
}

// Candidates returns every applicable lookup candidate for ref, in
// evaluation order. Duplicates are kept so the list mirrors the strategies.
func Candidates(ref string) []Candidate {
	var candidates []Candidate
	for _, s := range Strategies() {
		if path, ok := s.Generate(ref); ok {
			candidates = append(candidates, Candidate{Strategy: s.Name, Path: path})
		}
	}
	return candidates
}

// MapUploadPath rewrites the web upload prefix of a recorded reference to
// the export's upload directory.
func MapUploadPath(ref string) string {
	return strings.ReplaceAll(ref, UploadURLPrefix, UploadDir)
}

// DecodePercent decodes %XX escapes into raw bytes. Malformed escapes are
// kept literally and '+' is not treated as a space. The result need not be
// valid UTF-8.
func DecodePercent(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				out = append(out, hi<<4|lo)
				i += 2
				continue
			}
		}
		out = append(out, s[i])
	}
	return out
}

// EncodePercent escapes every byte outside the RFC 3986 unreserved set.
func EncodePercent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
