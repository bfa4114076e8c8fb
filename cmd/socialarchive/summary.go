package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/socialarchive/archive"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderSummary formats the per-course outcome of a run as a table.
// Skipped courses are left out of the rows but counted in the footer.
func renderSummary(result *archive.Result, cacheHits, cacheMisses int64) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Course", "Status", "Pages", "Attachments", "Missing", "Size"})

	for _, c := range result.Courses {
		if c.Status == archive.StatusSkipped {
			continue
		}
		tw.AppendRow(table.Row{
			c.Ref.Letter + "/" + c.Ref.Code,
			c.Status.String(),
			c.Pages,
			c.Attachments,
			c.Missing + c.Unreadable,
			humanize.Bytes(uint64(c.Bytes)),
		})
	}

	pages, atts, size := result.Totals()
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d archived", result.Count(archive.StatusArchived)),
		fmt.Sprintf("%d skipped, %d failed", result.Count(archive.StatusSkipped), result.Count(archive.StatusFailed)),
		pages,
		atts,
		"",
		humanize.Bytes(uint64(size)),
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	out := tw.Render()
	if cacheHits+cacheMisses > 0 {
		out += fmt.Sprintf("\nextraction cache: %s hits, %s misses",
			humanize.Comma(cacheHits), humanize.Comma(cacheMisses))
	}
	return out
}
