// Package goquery inspects page documents with github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/socialarchive"
)

// Ensure ReferenceScanner implements socialarchive.ReferenceScanner.
var _ socialarchive.ReferenceScanner = (*ReferenceScanner)(nil)

// referenceAttrs are the attributes that point at other resources.
var referenceAttrs = []string{"href", "src", "data"}

// referenceSelector matches every element carrying a reference attribute.
const referenceSelector = "[href], [src], object[data]"

// ReferenceScanner lists the resources a document refers to.
type ReferenceScanner struct{}

// NewReferenceScanner creates a new ReferenceScanner.
func NewReferenceScanner() *ReferenceScanner {
	return &ReferenceScanner{}
}

// References returns the non-empty href, src and object data values of doc
// in document order. Entities in attribute values are decoded.
func (s *ReferenceScanner) References(doc string) ([]string, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, socialarchive.Errorf(socialarchive.EINVALID, "failed to parse HTML: %v", err)
	}

	var refs []string
	d.Find(referenceSelector).Each(func(_ int, sel *goquery.Selection) {
		for _, name := range referenceAttrs {
			if name == "data" && goquery.NodeName(sel) != "object" {
				continue
			}
			if v, ok := sel.Attr(name); ok {
				if v = strings.TrimSpace(v); v != "" {
					refs = append(refs, v)
				}
			}
		}
	})
	return refs, nil
}
