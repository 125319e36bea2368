package batch

import (
	"sync"
	"time"

	"github.com/jaa/music-convert/internal/output"
)

// TrackState is the final state of one track in the report.
type TrackState string

const (
	StateConverted     TrackState = "converted"
	StatePassedThrough TrackState = "passed_through"
	StateDeduplicated  TrackState = "deduplicated"
	StateSkipped       TrackState = "skipped"
	StateFailed        TrackState = "failed"
)

// TrackResult records the outcome for one source file.
type TrackResult struct {
	Source   string
	State    TrackState
	Dest     string
	Reason   string
	Duration time.Duration
}

// Report collects per-track results across workers.
type Report struct {
	mu      sync.Mutex
	results []TrackResult
}

func (r *Report) Add(result TrackResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

// Results returns a copy of the collected results.
func (r *Report) Results() []TrackResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TrackResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Report) HasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, result := range r.results {
		if result.State == StateFailed {
			return true
		}
	}
	return false
}

// Counts tallies the report for the summary footer.
func (r *Report) Counts() output.SummaryCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	var counts output.SummaryCounts
	for _, result := range r.results {
		switch result.State {
		case StateConverted:
			counts.Converted++
		case StatePassedThrough:
			counts.PassedThru++
		case StateDeduplicated:
			counts.Deduplicated++
		case StateSkipped:
			counts.Skipped++
		case StateFailed:
			counts.Failed++
		}
	}
	return counts
}

// SummaryRows renders the report into table rows, in insertion order.
func (r *Report) SummaryRows() []output.SummaryRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]output.SummaryRow, 0, len(r.results))
	for _, result := range r.results {
		label := string(result.State)
		if result.Reason != "" {
			label = label + ": " + result.Reason
		}
		rows = append(rows, output.SummaryRow{
			Source:   result.Source,
			Result:   label,
			Dest:     result.Dest,
			Duration: result.Duration,
		})
	}
	return rows
}
