package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jaa/music-convert/internal/exitcode"
)

func TestMapExitCodeNil(t *testing.T) {
	if got := mapExitCode(nil); got != exitcode.Success {
		t.Fatalf("expected success, got %d", got)
	}
}

func TestMapExitCodeUsesExitError(t *testing.T) {
	err := withExitCode(exitcode.MissingTool, errors.New("lame not found"))
	if got := mapExitCode(err); got != exitcode.MissingTool {
		t.Fatalf("expected %d, got %d", exitcode.MissingTool, got)
	}
}

func TestMapExitCodeUnwrapsWrappedExitError(t *testing.T) {
	inner := withExitCode(exitcode.PartialFailure, errors.New("3 tracks failed"))
	wrapped := fmt.Errorf("convert: %w", inner)
	if got := mapExitCode(wrapped); got != exitcode.PartialFailure {
		t.Fatalf("expected %d, got %d", exitcode.PartialFailure, got)
	}
}

func TestMapExitCodeUnknownFlag(t *testing.T) {
	if got := mapExitCode(errors.New(`unknown flag: --frobnicate`)); got != exitcode.InvalidUsage {
		t.Fatalf("expected invalid usage, got %d", got)
	}
}

func TestMapExitCodePlainErrorIsRuntimeFailure(t *testing.T) {
	if got := mapExitCode(errors.New("boom")); got != exitcode.RuntimeFailure {
		t.Fatalf("expected runtime failure, got %d", got)
	}
}

func TestWithExitCodeNilStaysNil(t *testing.T) {
	if withExitCode(exitcode.RuntimeFailure, nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}
