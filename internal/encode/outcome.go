package encode

import (
	"fmt"
	"time"
)

// Reason classifies why an encode attempt failed.
type Reason string

const (
	ReasonToolNotFound           Reason = "tool_not_found"
	ReasonEncodeFailed           Reason = "encode_failed"
	ReasonEncodeTimedOut         Reason = "encode_timed_out"
	ReasonOutputValidationFailed Reason = "output_validation_failed"
	ReasonInterrupted            Reason = "interrupted"
)

// Error carries the failure reason for one encode step. ToolNotFound is
// the only batch-fatal reason; every other reason fails a single track.
type Error struct {
	Reason   Reason
	Tool     string
	ExitCode int
	Detail   string
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonToolNotFound:
		return fmt.Sprintf("required tool %q not found in PATH", e.Tool)
	case ReasonEncodeTimedOut:
		return fmt.Sprintf("%s timed out", e.Tool)
	case ReasonOutputValidationFailed:
		return fmt.Sprintf("%s produced invalid output: %s", e.Tool, e.Detail)
	case ReasonInterrupted:
		return fmt.Sprintf("%s interrupted", e.Tool)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Detail)
		}
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
}

// BatchFatal reports whether the failure must stop the whole batch.
// A missing tool would fail every remaining track the same way.
func (e *Error) BatchFatal() bool {
	return e.Reason == ReasonToolNotFound
}

// Outcome describes one successfully executed conversion plan.
type Outcome struct {
	OutputPath string
	Bytes      int64
	Duration   time.Duration
}
