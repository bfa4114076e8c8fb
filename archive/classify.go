package archive

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/socialarchive"
)

// Classifier decides whether pages and their attachments are
// assessment-related.
type Classifier struct {
	Source    socialarchive.CourseSource
	Extractor socialarchive.Extractor
	Logger    *slog.Logger

	// Contents, when set, receives the bytes of every text attachment read
	// during classification.
	Contents map[*socialarchive.ResolvedAttachment][]byte
}

// Page reports whether a page is relevant: its body matches, or else one of
// its attachments does. Attachments are checked in order and the first match
// wins. Only cancellation is returned as an error.
func (c *Classifier) Page(ctx context.Context, body string, atts []*socialarchive.ResolvedAttachment) (bool, error) {
	if socialarchive.IsRelevant(body) {
		return true, nil
	}
	for _, att := range atts {
		ok, err := c.Attachment(ctx, att)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Attachment reports whether one attachment is relevant. Opaque formats are
// never read. Extraction faults and unreadable files are logged and count as
// not relevant.
func (c *Classifier) Attachment(ctx context.Context, att *socialarchive.ResolvedAttachment) (bool, error) {
	switch socialarchive.KindOf(att.Path) {
	case socialarchive.KindOpaque:
		return false, nil

	case socialarchive.KindExtract:
		text, err := c.Extractor.ExtractText(ctx, att.Path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			c.Logger.WarnContext(ctx, "text extraction failed",
				"path", att.Path,
				"ref", att.Ref,
				"code", socialarchive.ErrorCode(err),
				"err", err,
			)
			return false, nil
		}
		return socialarchive.IsRelevant(text), nil
	}

	data, err := c.Source.ReadAttachment(ctx, att)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.Logger.WarnContext(ctx, "attachment unreadable",
			"path", att.Path,
			"ref", att.Ref,
			"err", err,
		)
		return false, nil
	}
	if c.Contents != nil {
		c.Contents[att] = data
	}
	return socialarchive.IsRelevant(strings.ToValidUTF8(string(data), "\uFFFD")), nil
}
