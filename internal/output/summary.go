package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// SummaryRow is one line of the end-of-batch table.
type SummaryRow struct {
	Source   string
	Result   string
	Dest     string
	Duration time.Duration
}

// SummaryCounts aggregates the batch for the footer line.
type SummaryCounts struct {
	Converted    int
	PassedThru   int
	Deduplicated int
	Skipped      int
	Failed       int
}

func (c SummaryCounts) Total() int {
	return c.Converted + c.PassedThru + c.Deduplicated + c.Skipped + c.Failed
}

// RenderSummary writes the batch result table and a one-line tally.
func RenderSummary(w io.Writer, rows []SummaryRow, counts SummaryCounts) {
	if len(rows) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Source", "Result", "Destination", "Time"})
		for _, row := range rows {
			t.AppendRow(table.Row{row.Source, row.Result, row.Dest, row.Duration.Round(time.Millisecond)})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Source", WidthMax: 48},
			{Name: "Destination", WidthMax: 48},
		})
		t.Render()
	}

	fmt.Fprintf(w, "%d tracks: %d converted, %d passed through, %d duplicates, %d skipped, %d failed\n",
		counts.Total(), counts.Converted, counts.PassedThru, counts.Deduplicated, counts.Skipped, counts.Failed)
}
